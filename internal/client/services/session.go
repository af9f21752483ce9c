package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/eutype/internal/client/client"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/logging"
)

// GateState is the lifecycle state of the Session Gate.
type GateState int

const (
	GateUnvalidated GateState = iota
	GateValidating
	GateAuthenticated
	GateRedirecting
)

func (s GateState) String() string {
	switch s {
	case GateValidating:
		return "validating"
	case GateAuthenticated:
		return "authenticated"
	case GateRedirecting:
		return "redirecting"
	default:
		return "unvalidated"
	}
}

var ErrNotAuthenticated = errors.New("session is not authenticated")

// SessionGate decides whether the user may use the application and, when
// not, produces the redirect to the login portal. Protected functionality
// is only reachable while the gate is Authenticated.
type SessionGate struct {
	client   client.Client
	loginURL string
	appPath  string
	log      logging.Logger

	mu        sync.Mutex
	state     GateState
	user      *models.User
	listeners map[int]func(models.Navigation)
	nextID    int
}

func NewSessionGate(c client.Client, loginURL, appPath string, log logging.Logger) *SessionGate {
	if appPath == "" {
		appPath = "/"
	}
	return &SessionGate{
		client:    c,
		loginURL:  loginURL,
		appPath:   appPath,
		log:       log,
		listeners: make(map[int]func(models.Navigation)),
	}
}

func (g *SessionGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// User returns the identity cached by the last successful validation.
func (g *SessionGate) User() *models.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil {
		return nil
	}
	u := *g.user
	return &u
}

// Refresh re-reads the signed-in user's profile from the backend and updates
// the cached identity. A rejection goes through the gateway's unauthorized
// hook like any other protected call.
func (g *SessionGate) Refresh(ctx context.Context) (*models.User, error) {
	if err := g.Guard(); err != nil {
		return nil, err
	}
	u, err := g.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh profile: %w", err)
	}
	if u == nil || strings.TrimSpace(u.Username) == "" {
		return g.User(), nil
	}

	g.mu.Lock()
	if g.state == GateAuthenticated {
		cp := *u
		g.user = &cp
	}
	g.mu.Unlock()
	return g.User(), nil
}

// Guard returns ErrNotAuthenticated unless the gate is Authenticated.
func (g *SessionGate) Guard() error {
	if g.State() != GateAuthenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// Subscribe registers fn to receive every redirect the gate issues and
// returns a function that removes it.
func (g *SessionGate) Subscribe(fn func(models.Navigation)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.listeners, id)
	}
}

// Validate checks the session with the backend. A session counts as valid
// only when the backend reports it valid and names the user. On success it
// returns the user and a zero Navigation. Any failure, including an unreachable backend,
// leaves the gate Redirecting and returns the redirect intent.
func (g *SessionGate) Validate(ctx context.Context, currentPath string) (*models.User, models.Navigation) {
	g.mu.Lock()
	g.state = GateValidating
	g.mu.Unlock()

	st, err := g.client.Validate(ctx)
	switch {
	case err != nil:
		g.log.Warn(ctx, "session validation failed", "error", err)
	case st == nil || !st.Valid || strings.TrimSpace(st.Username) == "":
		g.log.Info(ctx, "session not valid")
	default:
		u := st.User()
		g.mu.Lock()
		g.state = GateAuthenticated
		g.user = u
		g.mu.Unlock()
		g.log.Info(ctx, "session validated", "username", u.Username)
		return g.User(), models.Navigation{}
	}

	return nil, g.Demote(currentPath)
}

// Demote moves the gate to Redirecting and publishes the redirect for
// currentPath to subscribers. It is called once for each rejected response.
func (g *SessionGate) Demote(currentPath string) models.Navigation {
	nav := models.Redirect(LoginRedirect(g.loginURL, currentPath, g.appPath))

	g.mu.Lock()
	g.state = GateRedirecting
	g.user = nil
	listeners := make([]func(models.Navigation), 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(nav)
	}
	return nav
}

// Logout tells the backend to end the session, ignoring any failure, and
// always returns the redirect to the login portal with the app path as
// return target.
func (g *SessionGate) Logout(ctx context.Context) models.Navigation {
	if err := g.client.Logout(ctx); err != nil {
		g.log.Warn(ctx, "logout request failed", "error", err)
	}

	g.mu.Lock()
	g.state = GateRedirecting
	g.user = nil
	g.mu.Unlock()

	return models.Redirect(LoginRedirect(g.loginURL, g.appPath, g.appPath))
}

// LoginRedirect builds the login portal URL with the return path in the
// "redirect" query parameter. An empty or root path, and any path that
// points back into the login portal, is replaced by appPath.
func LoginRedirect(loginURL, currentPath, appPath string) string {
	target := returnPath(loginURL, currentPath, appPath)

	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "redirect=" + encodeURIComponent(target)
}

func returnPath(loginURL, currentPath, appPath string) string {
	if currentPath == "" || currentPath == "/" {
		return appPath
	}

	login, err := url.Parse(loginURL)
	if err != nil {
		return currentPath
	}
	cur, err := url.Parse(currentPath)
	if err != nil {
		return currentPath
	}

	sameHost := cur.Host == "" || strings.EqualFold(cur.Host, login.Host)
	loginPath := strings.TrimRight(login.Path, "/")
	if sameHost && loginPath != "" && (cur.Path == loginPath || strings.HasPrefix(cur.Path, loginPath+"/")) {
		return appPath
	}
	return currentPath
}

// encodeURIComponent escapes s for use as a query value, encoding spaces as
// %20 rather than "+".
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
