package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/client/services"
	"github.com/dmitrijs2005/eutype/internal/logging"
)

// State is the lifecycle state of an editing session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateSaving
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateClosing:
		return "closing"
	default:
		return "idle"
	}
}

const DefaultAutoSaveDelay = 3 * time.Second

// UnsavedChangesPrompt is asked before leaving a dirty document.
const UnsavedChangesPrompt = "You have unsaved changes. Continue without saving?"

var (
	ErrNoDocument          = errors.New("no document is open")
	ErrDocumentOpen        = errors.New("a document is already open")
	ErrSaveInFlight        = errors.New("a save is already in progress")
	ErrNavigationCancelled = errors.New("navigation cancelled")
	ErrInvalidName         = errors.New("document name must not be empty")
	ErrLoadFailed          = errors.New("document could not be loaded")
	ErrSaveFailed          = errors.New("document could not be saved")
)

// Store is the persistence the controller needs.
type Store interface {
	Load(ctx context.Context, id models.FileID) (*services.LoadedDocument, error)
	Save(ctx context.Context, id models.FileID, env models.Envelope) error
}

// Confirm asks the user a yes/no question.
type Confirm func(prompt string) bool

// SaveEvent describes a finished or skipped save.
type SaveEvent struct {
	FileID  models.FileID
	Auto    bool
	Skipped bool
	Err     error
}

// Status is a point-in-time view of the session.
type Status struct {
	State     State
	FileID    models.FileID
	Name      string
	Dirty     bool
	LastSaved time.Time
}

// Controller owns one editing session at a time: it loads a document into
// the Surface, tracks unsaved changes, debounces auto-saves, serializes
// saves and guards navigation away from unsaved work.
type Controller struct {
	store   Store
	surface Surface
	sched   Scheduler
	delay   time.Duration
	log     logging.Logger
	now     func() time.Time
	onSave  func(SaveEvent)
	pdf     PDFRenderer

	mu          sync.Mutex
	state       State
	session     uint64
	fileID      models.FileID
	base        models.Envelope
	name        string
	dirty       bool
	revision    uint64
	saving      bool
	lastSaved   time.Time
	timer       Timer
	timerGen    uint64
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func WithAutoSaveDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithPDFRenderer(r PDFRenderer) Option {
	return func(c *Controller) { c.pdf = r }
}

// WithSaveObserver registers fn to be told about every save attempt.
func WithSaveObserver(fn func(SaveEvent)) Option {
	return func(c *Controller) { c.onSave = fn }
}

func NewController(store Store, surface Surface, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		surface: surface,
		sched:   realScheduler{},
		delay:   DefaultAutoSaveDelay,
		log:     logging.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pdf == nil {
		c.pdf = NewChromePDF(0)
	}
	return c
}

// Open loads a document and seeds the surface with its body. On failure
// the controller stays Idle and the returned intent sends the user back to
// the list.
func (c *Controller) Open(ctx context.Context, id models.FileID) (models.Navigation, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return models.Navigation{}, ErrDocumentOpen
	}
	c.state = StateLoading
	c.session++
	c.mu.Unlock()

	doc, err := c.store.Load(ctx, id)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.log.Warn(ctx, "open document failed", "file_id", id, "error", err)
		return models.ToList(), fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	c.surface.SetContent(doc.Envelope.HTML)
	unsubscribe := c.surface.Subscribe(c.handleChange)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fileID = id
	c.base = doc.Envelope
	c.name = doc.Envelope.Name
	c.dirty = false
	c.revision = 0
	c.saving = false
	c.lastSaved = doc.ModifiedAt
	if c.lastSaved.IsZero() {
		c.lastSaved = doc.Envelope.Modified.Time
	}
	c.unsubscribe = unsubscribe
	c.ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.state = StateReady

	c.log.Info(ctx, "document opened", "file_id", id, "name", c.name, "native", doc.Native)
	return models.ToEditor(id), nil
}

func (c *Controller) isOpenLocked() bool {
	return c.state == StateReady || c.state == StateSaving
}

func (c *Controller) handleChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpenLocked() {
		return
	}
	c.dirty = true
	c.revision++
	c.armTimerLocked()
}

// armTimerLocked restarts the debounce window.
func (c *Controller) armTimerLocked() {
	c.stopTimerLocked()
	gen := c.timerGen
	c.timer = c.sched.AfterFunc(c.delay, func() { c.autoSave(gen) })
}

// stopTimerLocked cancels the pending auto-save. Bumping the generation
// also disarms a callback that already started running.
func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

type saveJob struct {
	session  uint64
	fileID   models.FileID
	envelope models.Envelope
	revision uint64
}

func (c *Controller) beginSaveLocked() saveJob {
	env := c.base.Revise(c.name, c.surface.GetHTML(), c.surface.GetText(), c.now())
	c.saving = true
	c.state = StateSaving
	return saveJob{session: c.session, fileID: c.fileID, envelope: env, revision: c.revision}
}

// finishSave records the outcome. The dirty flag is cleared only if nothing
// changed while the save was in flight.
func (c *Controller) finishSave(job saveJob, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if job.session != c.session {
		return
	}
	c.saving = false
	if c.state == StateSaving {
		c.state = StateReady
	}
	if err != nil {
		return
	}
	c.base = job.envelope
	c.lastSaved = job.envelope.Modified.Time
	if c.revision == job.revision {
		c.dirty = false
	}
}

func (c *Controller) autoSave(gen uint64) {
	c.mu.Lock()
	if gen != c.timerGen || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if !c.isOpenLocked() || !c.dirty {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	if c.saving {
		id := c.fileID
		c.mu.Unlock()
		c.log.Debug(ctx, "auto-save skipped, save in flight", "file_id", id)
		c.notify(SaveEvent{FileID: id, Auto: true, Skipped: true})
		return
	}
	job := c.beginSaveLocked()
	c.mu.Unlock()

	err := c.store.Save(ctx, job.fileID, job.envelope)
	c.finishSave(job, err)
	if err != nil {
		c.log.Warn(ctx, "auto-save failed", "file_id", job.fileID, "error", err)
	} else {
		c.log.Debug(ctx, "auto-saved", "file_id", job.fileID)
	}
	c.notify(SaveEvent{FileID: job.fileID, Auto: true, Err: err})
}

// Save persists the current body now, superseding any pending auto-save.
// It returns ErrSaveInFlight without saving when another save is running.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if !c.isOpenLocked() {
		c.mu.Unlock()
		return ErrNoDocument
	}
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	c.stopTimerLocked()
	job := c.beginSaveLocked()
	c.mu.Unlock()

	err := c.store.Save(ctx, job.fileID, job.envelope)
	c.finishSave(job, err)
	c.notify(SaveEvent{FileID: job.fileID, Err: err})
	if err != nil {
		c.log.Warn(ctx, "save failed", "file_id", job.fileID, "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	c.log.Info(ctx, "document saved", "file_id", job.fileID, "name", job.envelope.Name)
	return nil
}

// Rename changes the document name locally. It marks the session dirty and
// is persisted by the next save.
func (c *Controller) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpenLocked() {
		return ErrNoDocument
	}
	if name == c.name {
		return nil
	}
	c.name = name
	c.dirty = true
	c.revision++
	return nil
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:     c.state,
		FileID:    c.fileID,
		Name:      c.name,
		Dirty:     c.dirty,
		LastSaved: c.lastSaved,
	}
}

// ConfirmLeave asks confirm when there are unsaved changes and returns
// ErrNavigationCancelled unless the user agrees.
func (c *Controller) ConfirmLeave(confirm Confirm) error {
	c.mu.Lock()
	dirty := c.dirty && c.isOpenLocked()
	c.mu.Unlock()

	if !dirty {
		return nil
	}
	if confirm != nil && confirm(UnsavedChangesPrompt) {
		return nil
	}
	return ErrNavigationCancelled
}

// Navigate guards the navigation to, closes the session when allowed, and
// returns the intent for the shell to carry out.
func (c *Controller) Navigate(to models.Navigation, confirm Confirm) (models.Navigation, error) {
	if err := c.ConfirmLeave(confirm); err != nil {
		return models.Navigation{}, err
	}
	c.Close()
	return to, nil
}

// Close ends the session: the pending auto-save is discarded, the surface
// listener is removed and any in-flight save loses its context.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateClosing
	c.stopTimerLocked()
	unsubscribe, cancel := c.unsubscribe, c.cancel
	c.unsubscribe, c.cancel = nil, nil
	c.session++
	c.fileID = ""
	c.base = models.Envelope{}
	c.name = ""
	c.dirty = false
	c.revision = 0
	c.saving = false
	c.lastSaved = time.Time{}
	c.state = StateIdle
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) notify(ev SaveEvent) {
	if c.onSave != nil {
		c.onSave(ev)
	}
}
