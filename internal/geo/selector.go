package geo

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a selection that finished after a newer one was made.
var ErrSuperseded = errors.New("geo: selection superseded by a newer request")

// Selection is the committed state of a Selector.
type Selection struct {
	RequestID  uint64
	Resolution *Resolution
}

// Selector tracks one client's kelurahan/RW choice. Each Select takes the next request id and
// cancels the one before it; only the latest request may commit, so a slow response for an
// old choice can never replace the overlay of a newer one.
type Selector struct {
	loader *Loader

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	current  *Selection
	lastUsed time.Time
}

func NewSelector(loader *Loader) *Selector {
	return &Selector{loader: loader, lastUsed: time.Now()}
}

func (s *Selector) Select(ctx context.Context, kelurahan, rw string) (*Selection, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	id := s.seq
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lastUsed = time.Now()
	s.mu.Unlock()
	defer cancel()

	res, err := s.loader.Resolve(ctx, kelurahan, rw)

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.seq {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	s.current = &Selection{RequestID: id, Resolution: res}
	return s.current, nil
}

// Current returns the last committed selection, or nil before the first one.
func (s *Selector) Current() *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// stop cancels the in-flight selection, if any.
func (s *Selector) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Selector) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Registry keeps one Selector per dashboard session.
type Registry struct {
	loader *Loader

	mu        sync.Mutex
	selectors map[string]*Selector
}

func NewRegistry(loader *Loader) *Registry {
	return &Registry{loader: loader, selectors: make(map[string]*Selector)}
}

func (r *Registry) Get(sessionID string) *Selector {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.selectors[sessionID]
	if !ok {
		s = NewSelector(r.loader)
		r.selectors[sessionID] = s
	}
	return s
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.selectors[sessionID]; ok {
		s.stop()
		delete(r.selectors, sessionID)
	}
}

// Sweep drops selectors that have been idle longer than maxIdle and returns how many went.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.selectors {
		if s.idleSince().Before(cutoff) {
			s.stop()
			delete(r.selectors, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.selectors)
}
