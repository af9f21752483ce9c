package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/dmitrijs2005/eutype/internal/client/client"
	"github.com/dmitrijs2005/eutype/internal/client/config"
	"github.com/dmitrijs2005/eutype/internal/client/editor"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/client/repositories"
	"github.com/dmitrijs2005/eutype/internal/client/services"
	"github.com/dmitrijs2005/eutype/internal/logging"
)

// recentLimit is how many recent documents are kept and shown.
const recentLimit = 10

type App struct {
	config *config.Config
	log    logging.Logger
	repos  *repositories.Repositories
	gate   *services.SessionGate
	files  services.FileService
	docs   services.DocumentStore
	buffer *editor.Buffer
	editor *editor.Controller
	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	redirect *models.Navigation
	stopGate func()
}

// NewApp wires configuration, the local state database, the API gateway and
// the services behind the shell.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel, c.LogFormat)

	repos, err := repositories.InitDatabase(ctx, c.StateDBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	opts := []client.Option{
		client.WithLogger(log),
		client.WithTimeout(c.HTTPTimeout),
		client.WithRateLimit(c.RequestsPerSecond),
		client.WithValidatePath(c.ValidatePath),
	}
	if c.Trace {
		opts = append(opts, client.WithTrace(os.Stderr))
	}
	api, err := client.NewHTTPClient(c.APIBaseURL, opts...)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	if err := api.SetSessionCookie(c.SessionCookie); err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := newApp(c, api, repos, log, bufio.NewReader(os.Stdin), os.Stdout)
	a.connect(api)
	return a, nil
}

func newApp(c *config.Config, api client.Client, repos *repositories.Repositories, log logging.Logger,
	reader *bufio.Reader, out io.Writer, opts ...editor.Option) *App {

	a := &App{
		config: c,
		log:    log,
		repos:  repos,
		gate:   services.NewSessionGate(api, c.LoginURL, c.AppPath, log),
		files:  services.NewFileService(api, repos.Metadata, repos.Recent, log),
		docs:   services.NewDocumentStore(api, repos.Recent, log),
		buffer: editor.NewBuffer(),
		reader: reader,
		out:    out,
	}

	opts = append([]editor.Option{
		editor.WithAutoSaveDelay(c.AutoSaveDelay),
		editor.WithLogger(log.With("component", "editor")),
	}, opts...)
	a.editor = editor.NewController(a.docs, a.buffer, opts...)
	a.stopGate = a.gate.Subscribe(a.setRedirect)
	return a
}

// connect routes gateway rejections to the session gate and blocks
// protected calls once the gate has left Authenticated.
func (a *App) connect(api *client.HTTPClient) {
	api.SetGuard(a.gate.Guard)
	api.OnUnauthorized(func(status int) {
		a.log.Warn(context.Background(), "session rejected by backend", "status", status)
		a.gate.Demote(a.currentPath())
	})
}

// Run validates the session and, when it is valid, runs the REPL until the
// user exits or the session ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	if !a.start(ctx) {
		return
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	a.editor.Close()
	if a.stopGate != nil {
		a.stopGate()
	}
	if err := a.repos.Close(); err != nil {
		a.log.Warn(context.Background(), "close state database", "error", err)
	}
}

func (a *App) start(ctx context.Context) bool {
	fmt.Fprintln(a.out, "Checking session...")
	user, nav := a.gate.Validate(ctx, a.currentPath())
	if nav.IsRedirect() {
		a.printRedirect(nav)
		return false
	}

	a.rememberUser(ctx, user)
	fmt.Fprintf(a.out, "Signed in as %s. Type 'help' for commands.\n", user.Username)
	if err := a.list(ctx, nil); err != nil {
		fmt.Fprintln(a.out, "Error:", describe(err))
	}
	return true
}

// rememberUser drops the recent documents of a previous account.
func (a *App) rememberUser(ctx context.Context, u *models.User) {
	changed, err := a.repos.SwitchUser(ctx, u.Username)
	if err != nil {
		a.log.Warn(ctx, "remember user", "error", err)
		return
	}
	if changed {
		a.log.Info(ctx, "recent documents cleared for new user", "username", u.Username)
	}
}

// abandon reports an open document with unsaved changes when the shell
// stops without an exit command.
func (a *App) abandon(ctx context.Context) {
	st := a.editor.Status()
	if !st.Dirty {
		return
	}
	a.log.Warn(context.WithoutCancel(ctx), "shell stopped with unsaved changes", "file_id", st.FileID, "name", st.Name)
	fmt.Fprintf(a.out, "Warning: unsaved changes to %q were discarded.\n", st.Name)
}

func (a *App) inEditor() bool {
	return a.editor.Status().State != editor.StateIdle
}

// currentPath is the in-app location the login portal should return to.
func (a *App) currentPath() string {
	st := a.editor.Status()
	if st.State == editor.StateIdle || st.FileID == "" {
		return a.config.AppPath
	}
	return path.Join(a.config.AppPath, "editor") + "?file=" + url.QueryEscape(st.FileID.String())
}

func (a *App) setRedirect(nav models.Navigation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.redirect == nil {
		a.redirect = &nav
	}
}

func (a *App) pendingRedirect() (models.Navigation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.redirect == nil {
		return models.Navigation{}, false
	}
	return *a.redirect, true
}

func (a *App) printRedirect(nav models.Navigation) {
	fmt.Fprintln(a.out, "Please sign in at the login portal:")
	fmt.Fprintln(a.out, nav.Target)
}

// follow carries out a navigation intent.
func (a *App) follow(ctx context.Context, nav models.Navigation) error {
	switch nav.Kind {
	case models.NavigateList:
		return a.list(ctx, nil)
	case models.NavigateEditor:
		return a.openDocument(ctx, models.FileID(nav.Target))
	case models.NavigateRedirect:
		a.setRedirect(nav)
	}
	return nil
}

// leaveEditor closes the open document, asking first when it has unsaved
// changes. It is a no-op in the File Picker.
func (a *App) leaveEditor(to models.Navigation) error {
	if !a.inEditor() {
		return nil
	}
	_, err := a.editor.Navigate(to, a.confirm)
	return err
}

func (a *App) confirm(prompt string) bool {
	return GetConfirm(a.reader, prompt, a.out)
}

func (a *App) getStatus() string {
	var parts []string
	if u := a.gate.User(); u != nil {
		parts = append(parts, u.Username)
	}
	if st := a.editor.Status(); st.State != editor.StateIdle {
		doc := st.Name
		if st.Dirty {
			doc += "*"
		}
		if st.State == editor.StateSaving {
			doc += " saving"
		}
		parts = append(parts, doc)
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ": ") + ")"
}

// execute runs a command. Editor commands take precedence while a document
// is open; File Picker commands are available everywhere.
func (a *App) execute(ctx context.Context, cmd string, args []string) error {
	if a.inEditor() {
		if h, ok := a.editorCommands()[cmd]; ok {
			return h(ctx, args)
		}
	}
	if h, ok := a.pickerCommands()[cmd]; ok {
		return h(ctx, args)
	}
	return errUnknownCommand
}

// exit leaves the application, guarding unsaved work.
func (a *App) exit(ctx context.Context) error {
	return a.leaveEditor(models.Navigation{})
}
