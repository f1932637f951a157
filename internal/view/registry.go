package view

import (
	"context"
	"sync"
	"time"
)

// SessionChangeFunc observes state transitions of any session.
type SessionChangeFunc func(sessionID string, state State)

// Registry holds one Controller per browser session.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	onChange    SessionChangeFunc
}

// NewRegistry constructs an empty registry. onChange may be nil.
func NewRegistry(onChange SessionChangeFunc) *Registry {
	return &Registry{
		controllers: make(map[string]*Controller),
		onChange:    onChange,
	}
}

// Get returns the controller for sessionID, creating it on first use.
func (r *Registry) Get(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[sessionID]; ok {
		return c
	}
	var hook ChangeFunc
	if r.onChange != nil {
		onChange := r.onChange
		hook = func(s State) { onChange(sessionID, s) }
	}
	c := NewController(hook)
	r.controllers[sessionID] = c
	return c
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep drops sessions idle for longer than ttl and returns how many were removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, c := range r.controllers {
		if c.LastTouched().Before(cutoff) {
			delete(r.controllers, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, interval, ttl time.Duration, onSweep func(int)) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ttl); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
