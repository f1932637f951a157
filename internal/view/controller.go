package view

import (
	"sync"
	"time"
)

// ChangeFunc observes every state transition a controller applies, in the
// order they were applied. It must not start another transition on the same
// controller.
type ChangeFunc func(State)

// Controller owns the view state of one browser session. Each submit is tagged
// with a token; a response is applied only while its token is still current.
type Controller struct {
	mu       sync.Mutex
	emitMu   sync.Mutex
	active   Mode
	states   map[Mode]*State
	seq      uint64
	onChange ChangeFunc
	pending  []State
	touched  time.Time
}

// NewController returns a controller with both workflows idle and the single
// tab active. onChange may be nil.
func NewController(onChange ChangeFunc) *Controller {
	c := &Controller{
		active:   ModeSingle,
		states:   make(map[Mode]*State, len(Modes)),
		onChange: onChange,
		touched:  time.Now(),
	}
	for _, mode := range Modes {
		c.states[mode] = &State{Mode: mode, Phase: PhaseIdle}
	}
	return c
}

// Begin enters Loading for mode and returns the token identifying this submit.
// Any previous result or error of the mode is discarded.
func (c *Controller) Begin(mode Mode, input string) uint64 {
	c.mu.Lock()
	c.seq++
	token := c.seq
	next := State{Mode: mode, Phase: PhaseLoading, Token: token, Input: input}
	c.states[mode] = &next
	c.touched = time.Now()
	c.unlockAndEmit(next)
	return token
}

// Succeed shows payload for mode if token is still current.
func (c *Controller) Succeed(mode Mode, token uint64, payload Payload) bool {
	return c.settle(mode, token, func(s *State) {
		s.Phase = PhaseSuccess
		s.Single = payload.Single
		s.Batch = payload.Batch
	})
}

// Fail shows message for mode if token is still current.
func (c *Controller) Fail(mode Mode, token uint64, kind ErrorKind, message string) bool {
	return c.settle(mode, token, func(s *State) {
		s.Phase = PhaseFailure
		s.Kind = kind
		s.Message = message
	})
}

// Reject shows a validation message without a request. It supersedes any
// request still in flight for mode.
func (c *Controller) Reject(mode Mode, input, message string) State {
	c.mu.Lock()
	c.seq++
	next := State{
		Mode:    mode,
		Phase:   PhaseFailure,
		Token:   c.seq,
		Input:   input,
		Kind:    KindValidation,
		Message: message,
	}
	c.states[mode] = &next
	c.touched = time.Now()
	c.unlockAndEmit(next)
	return next
}

// Reset returns mode to Idle, clearing input and prior results.
func (c *Controller) Reset(mode Mode) State {
	c.mu.Lock()
	next := c.resetLocked(mode)
	c.touched = time.Now()
	c.unlockAndEmit(next)
	return next
}

// SwitchTab makes mode the active tab and resets both workflows.
func (c *Controller) SwitchTab(mode Mode) Snapshot {
	c.mu.Lock()
	c.active = mode
	changed := make([]State, 0, len(Modes))
	for _, m := range Modes {
		changed = append(changed, c.resetLocked(m))
	}
	c.touched = time.Now()
	snap := c.snapshotLocked()
	c.unlockAndEmit(changed...)
	return snap
}

// State returns a copy of the current state of mode.
func (c *Controller) State(mode Mode) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.states[mode]
}

// Snapshot returns a copy of both workflows.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// LastTouched reports when the session last changed state.
func (c *Controller) LastTouched() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

func (c *Controller) settle(mode Mode, token uint64, apply func(*State)) bool {
	c.mu.Lock()
	current := c.states[mode]
	if current.Token != token || current.Phase != PhaseLoading {
		c.mu.Unlock()
		return false
	}
	next := State{Mode: mode, Token: token, Input: current.Input}
	apply(&next)
	c.states[mode] = &next
	c.touched = time.Now()
	c.unlockAndEmit(next)
	return true
}

// resetLocked bumps the sequence so a response still in flight is dropped.
func (c *Controller) resetLocked(mode Mode) State {
	c.seq++
	next := State{Mode: mode, Phase: PhaseIdle, Token: c.seq}
	c.states[mode] = &next
	return next
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Active: c.active,
		Single: *c.states[ModeSingle],
		Batch:  *c.states[ModeBatch],
	}
}

// unlockAndEmit must be called with c.mu held. Transitions are queued in the
// order they were applied and delivered by one drainer at a time, so a slow
// observer delays later events without reordering them or blocking readers.
func (c *Controller) unlockAndEmit(states ...State) {
	if c.onChange != nil {
		c.pending = append(c.pending, states...)
	}
	c.mu.Unlock()
	if c.onChange == nil {
		return
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	for {
		c.mu.Lock()
		batch := c.pending
		c.pending = nil
		c.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, s := range batch {
			c.onChange(s)
		}
	}
}
