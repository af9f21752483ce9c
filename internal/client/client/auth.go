package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/eutype/internal/client/models"
)

// Validate calls the validation endpoint without the guard and without the
// unauthorized hook: its caller decides what a rejection means.
func (c *HTTPClient) Validate(ctx context.Context) (*models.SessionStatus, error) {
	var st models.SessionStatus
	err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: pathSegments(c.validatePath),
		public:   true,
	}, &st)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"auth", "me"}}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout asks the backend to end the session. It is public so that it can
// still be attempted after a rejection.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, segments: []string{"auth", "logout"}, public: true}, nil)
}
