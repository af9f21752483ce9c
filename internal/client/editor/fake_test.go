package editor

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/client/services"
)

// manualScheduler records timers and fires them on demand.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) pending() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (s *manualScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *manualScheduler) last() *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

// fire runs every pending timer as if its delay elapsed.
func (s *manualScheduler) fire() {
	for _, t := range s.pending() {
		s.mu.Lock()
		t.fired = true
		s.mu.Unlock()
		t.f()
	}
}

type fakeStore struct {
	mu sync.Mutex

	doc     *services.LoadedDocument
	loadErr error
	saveErr error
	saves   []models.Envelope
	saveIDs []models.FileID

	// When set, Save signals started and then waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeStore) Load(ctx context.Context, id models.FileID) (*services.LoadedDocument, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	doc := *f.doc
	doc.FileID = id
	return &doc, nil
}

func (f *fakeStore) Save(ctx context.Context, id models.FileID, env models.Envelope) error {
	f.mu.Lock()
	f.saves = append(f.saves, env)
	f.saveIDs = append(f.saveIDs, id)
	started, release, err := f.started, f.release, f.saveErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return err
}

func (f *fakeStore) saved() []models.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Envelope(nil), f.saves...)
}

type fakePDF struct {
	page string
	err  error
}

func (f *fakePDF) PrintPDF(ctx context.Context, page string) ([]byte, error) {
	f.page = page
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}
