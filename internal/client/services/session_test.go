package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/eutype/internal/client/client"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginURL = "https://sso.example.com/login"

func newGate(fc *fakeClient) *SessionGate {
	return NewSessionGate(fc, loginURL, "/eutype", logging.Nop())
}

func TestLoginRedirect(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		current string
		want    string
	}{
		{name: "editor path", login: loginURL, current: "/editor?file=42", want: loginURL + "?redirect=%2Feditor%3Ffile%3D42"},
		{name: "root rewritten", login: loginURL, current: "/", want: loginURL + "?redirect=%2Feutype"},
		{name: "empty rewritten", login: loginURL, current: "", want: loginURL + "?redirect=%2Feutype"},
		{name: "spaces as %20", login: loginURL, current: "/a b", want: loginURL + "?redirect=%2Fa%20b"},
		{name: "login portal path never loops", login: loginURL, current: "/login?redirect=%2Fx", want: loginURL + "?redirect=%2Feutype"},
		{name: "absolute login url never loops", login: loginURL, current: "https://sso.example.com/login/callback", want: loginURL + "?redirect=%2Feutype"},
		{name: "other host kept", login: loginURL, current: "https://app.example.com/login", want: loginURL + "?redirect=https%3A%2F%2Fapp.example.com%2Flogin"},
		{name: "login url with query", login: loginURL + "?tenant=a", current: "/x", want: loginURL + "?tenant=a&redirect=%2Fx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoginRedirect(tt.login, tt.current, "/eutype"))
		})
	}
}

func TestValidate_Authenticated(t *testing.T) {
	fc := &fakeClient{ValidateRet: &models.SessionStatus{Valid: true, Username: "ann", Email: "ann@example.com"}}
	g := newGate(fc)
	assert.Equal(t, GateUnvalidated, g.State())

	u, nav := g.Validate(context.Background(), "/")

	require.NotNil(t, u)
	assert.Equal(t, "ann", u.Username)
	assert.Equal(t, models.NavigateNone, nav.Kind)
	assert.Equal(t, GateAuthenticated, g.State())
	assert.NoError(t, g.Guard())
	assert.Equal(t, "ann@example.com", g.User().Email)
}

func TestValidate_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeClient
	}{
		{name: "invalid session", fc: &fakeClient{ValidateRet: &models.SessionStatus{Valid: false}}},
		{name: "valid without username", fc: &fakeClient{ValidateRet: &models.SessionStatus{Valid: true}}},
		{name: "valid with blank username", fc: &fakeClient{ValidateRet: &models.SessionStatus{Valid: true, Username: "  "}}},
		{name: "401", fc: &fakeClient{ValidateErr: &client.APIError{StatusCode: 401}}},
		{name: "server error", fc: &fakeClient{ValidateErr: &client.APIError{StatusCode: 500}}},
		{name: "network", fc: &fakeClient{ValidateErr: fmt.Errorf("%w: dial", client.ErrUnavailable)}},
		{name: "nil status", fc: &fakeClient{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGate(tt.fc)

			u, nav := g.Validate(context.Background(), "/editor?file=7")

			assert.Nil(t, u)
			assert.Equal(t, models.NavigateRedirect, nav.Kind)
			assert.Equal(t, loginURL+"?redirect=%2Feditor%3Ffile%3D7", nav.Target)
			assert.Equal(t, GateRedirecting, g.State())
			assert.ErrorIs(t, g.Guard(), ErrNotAuthenticated)
		})
	}
}

func TestDemote_PublishesOncePerCall(t *testing.T) {
	g := newGate(&fakeClient{ValidateRet: &models.SessionStatus{Valid: true, Username: "ann"}})
	g.Validate(context.Background(), "/")
	require.Equal(t, GateAuthenticated, g.State())

	var got []models.Navigation
	unsubscribe := g.Subscribe(func(n models.Navigation) { got = append(got, n) })

	nav := g.Demote("/editor?file=3")
	require.Len(t, got, 1)
	assert.Equal(t, nav, got[0])
	assert.Equal(t, GateRedirecting, g.State())
	assert.Nil(t, g.User())

	unsubscribe()
	g.Demote("/")
	assert.Len(t, got, 1)
}

func TestLogout_AlwaysRedirects(t *testing.T) {
	for _, logoutErr := range []error{nil, errors.New("network down")} {
		fc := &fakeClient{ValidateRet: &models.SessionStatus{Valid: true, Username: "ann"}, LogoutErr: logoutErr}
		g := newGate(fc)
		g.Validate(context.Background(), "/")
		require.Equal(t, GateAuthenticated, g.State())

		nav := g.Logout(context.Background())

		assert.Equal(t, 1, fc.LogoutCalls)
		assert.Equal(t, models.Redirect(loginURL+"?redirect=%2Feutype"), nav)
		assert.Equal(t, GateRedirecting, g.State())
	}
}

func TestRefresh_UpdatesCachedUser(t *testing.T) {
	fc := &fakeClient{
		ValidateRet: &models.SessionStatus{Valid: true, Username: "ann"},
		MeRet:       &models.User{Username: "ann", Email: "ann@new.example.com"},
	}
	g := newGate(fc)
	g.Validate(context.Background(), "/")

	u, err := g.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ann@new.example.com", u.Email)
	assert.Equal(t, "ann@new.example.com", g.User().Email)
	assert.Equal(t, 1, fc.MeCalls)
}

func TestRefresh_EmptyProfileKeepsCachedUser(t *testing.T) {
	fc := &fakeClient{
		ValidateRet: &models.SessionStatus{Valid: true, Username: "ann", Email: "ann@example.com"},
		MeRet:       &models.User{},
	}
	g := newGate(fc)
	g.Validate(context.Background(), "/")

	u, err := g.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Username)
	assert.Equal(t, "ann@example.com", u.Email)
}

func TestRefresh_Errors(t *testing.T) {
	fc := &fakeClient{ValidateRet: &models.SessionStatus{Valid: false}}
	g := newGate(fc)
	g.Validate(context.Background(), "/")

	_, err := g.Refresh(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, fc.MeCalls)

	fc = &fakeClient{
		ValidateRet: &models.SessionStatus{Valid: true, Username: "ann"},
		MeErr:       &client.APIError{StatusCode: 401},
	}
	g = newGate(fc)
	g.Validate(context.Background(), "/")

	_, err = g.Refresh(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "ann", g.User().Username)
}

func TestGateState_String(t *testing.T) {
	assert.Equal(t, "unvalidated", GateUnvalidated.String())
	assert.Equal(t, "validating", GateValidating.String())
	assert.Equal(t, "authenticated", GateAuthenticated.String())
	assert.Equal(t, "redirecting", GateRedirecting.String())
}
