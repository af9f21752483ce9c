package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eutype/internal/common"
	"github.com/dmitrijs2005/eutype/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HTTPClient talks to the REST backend. Credentials travel as cookies held in
// the client's jar. Every 401 or 403 response to a protected call invokes
// the registered unauthorized hook exactly once.
type HTTPClient struct {
	baseURL      *url.URL
	validatePath string
	http         *http.Client
	jar          http.CookieJar
	limiter      *rate.Limiter
	log          logging.Logger
	traceTo      io.Writer

	mu             sync.RWMutex
	onUnauthorized func(status int)
	guard          func() error
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its Jar, when nil,
// is set to the gateway's cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(rps float64) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithValidatePath overrides the session validation endpoint, relative to
// the base URL.
func WithValidatePath(p string) Option {
	return func(c *HTTPClient) {
		if p != "" {
			c.validatePath = p
		}
	}
}

// WithTrace dumps raw HTTP traffic to w.
func WithTrace(w io.Writer) Option {
	return func(c *HTTPClient) { c.traceTo = w }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		baseURL:      u,
		validatePath: "/auth/validate",
		http:         &http.Client{},
		jar:          jar,
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		c.http.Jar = c.jar
	} else {
		c.jar = c.http.Jar
	}
	if c.traceTo != nil {
		c.http.Transport = newTraceTransport(c.http.Transport, c.traceTo)
	}

	return c, nil
}

// SetSessionCookie seeds the jar from a "name=value[; name2=value2]" string,
// as copied from a browser after signing in at the portal.
func (c *HTTPClient) SetSessionCookie(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return fmt.Errorf("parse session cookie: %w", err)
	}
	for _, ck := range cookies {
		ck.Path = "/"
	}
	c.jar.SetCookies(c.baseURL, cookies)
	return nil
}

// OnUnauthorized registers the hook run for each 401/403 response to a
// protected call. A later registration replaces the earlier one.
func (c *HTTPClient) OnUnauthorized(fn func(status int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// SetGuard installs a check run before every protected call; a non-nil
// result aborts the call before anything is sent.
func (c *HTTPClient) SetGuard(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard = fn
}

type request struct {
	method      string
	segments    []string
	query       url.Values
	body        io.Reader
	contentType string
	// public requests skip the guard and the unauthorized hook.
	public bool
}

func (c *HTTPClient) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL.String())
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func pathSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// do sends r and decodes a 2xx body into out. out may be nil, a *[]byte for
// the raw body, or a pointer for JSON decoding.
func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	c.mu.RLock()
	guard, hook := c.guard, c.onUnauthorized
	c.mu.RUnlock()

	if !r.public && guard != nil {
		if err := guard(); err != nil {
			return err
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	target := c.endpoint(r.segments...)
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	log := c.log.With("method", r.method, "path", req.URL.Path, "request_id", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn(ctx, "request failed", "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start).String())

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr := newAPIError(resp.StatusCode, body)
		if !r.public && hook != nil {
			hook(resp.StatusCode)
		}
		return apiErr
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return newAPIError(resp.StatusCode, body)
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*o = body
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
