package view

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/render"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/validate"
)

func TestControllerLifecycle(t *testing.T) {
	var seen []Phase
	c := NewController(func(s State) { seen = append(seen, s.Phase) })

	if !c.State(ModeSingle).Idle() {
		t.Fatalf("expected idle start")
	}
	token := c.Begin(ModeSingle, "hello")
	if !c.State(ModeSingle).Loading() {
		t.Fatalf("expected loading after begin")
	}
	view := render.Single(classifier.Result{Comment: "hello", Confidence: 80})
	if !c.Succeed(ModeSingle, token, Payload{Single: &view}) {
		t.Fatalf("expected current token to apply")
	}
	state := c.State(ModeSingle)
	if !state.Succeeded() || state.Single == nil || state.Message != "" {
		t.Fatalf("unexpected state %+v", state)
	}
	if !c.Reset(ModeSingle).Idle() {
		t.Fatalf("expected reset to idle")
	}
	if state := c.State(ModeSingle); state.Single != nil || state.Input != "" {
		t.Fatalf("reset must clear result and input: %+v", state)
	}
	want := []Phase{PhaseLoading, PhaseSuccess, PhaseIdle}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Fatalf("expected transitions %v got %v", want, seen)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	c := NewController(nil)
	first := c.Begin(ModeBatch, "https://x.com/a/status/1")
	second := c.Begin(ModeBatch, "https://x.com/a/status/2")

	if c.Fail(ModeBatch, first, KindTransport, "late failure") {
		t.Fatalf("stale token must be ignored")
	}
	if !c.State(ModeBatch).Loading() {
		t.Fatalf("stale response changed the state")
	}
	batch := render.Batch(classifier.BatchResponse{})
	if !c.Succeed(ModeBatch, second, Payload{Batch: &batch}) {
		t.Fatalf("current token must apply")
	}
	if c.Succeed(ModeBatch, second, Payload{Batch: &batch}) {
		t.Fatalf("a settled token must not apply twice")
	}
	if got := c.State(ModeBatch).Input; got != "https://x.com/a/status/2" {
		t.Fatalf("expected newest input got %q", got)
	}
}

func TestRejectSupersedesInFlight(t *testing.T) {
	c := NewController(nil)
	token := c.Begin(ModeSingle, "first")
	state := c.Reject(ModeSingle, "", "Please enter a comment to analyze.")
	if !state.Failed() || state.Kind != KindValidation {
		t.Fatalf("unexpected reject state %+v", state)
	}
	view := render.Single(classifier.Result{})
	if c.Succeed(ModeSingle, token, Payload{Single: &view}) {
		t.Fatalf("in-flight response must not overwrite a newer validation error")
	}
}

func TestSwitchTabResetsBothModes(t *testing.T) {
	c := NewController(nil)
	single := c.Begin(ModeSingle, "text")
	c.Fail(ModeSingle, single, KindAPI, "boom")
	c.Begin(ModeBatch, "https://x.com/a")

	snap := c.SwitchTab(ModeBatch)
	if snap.Active != ModeBatch {
		t.Fatalf("expected batch tab active got %s", snap.Active)
	}
	for _, mode := range Modes {
		s := snap.State(mode)
		if !s.Idle() || s.Input != "" || s.Message != "" || s.Batch != nil || s.Single != nil {
			t.Fatalf("mode %s not reset: %+v", mode, s)
		}
	}
}

func TestControllerConcurrentSubmits(t *testing.T) {
	c := NewController(nil)
	var wg sync.WaitGroup
	tokens := make(chan uint64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens <- c.Begin(ModeSingle, fmt.Sprint(i))
		}(i)
	}
	wg.Wait()
	close(tokens)

	applied := 0
	for token := range tokens {
		view := render.Single(classifier.Result{})
		if c.Succeed(ModeSingle, token, Payload{Single: &view}) {
			applied++
		}
	}
	if applied != 1 {
		t.Fatalf("expected exactly one response to apply got %d", applied)
	}
}

func TestObserverSeesTransitionsInOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		last    = map[Mode]State{}
		entered = make(chan struct{})
		release = make(chan struct{})
	)
	c := NewController(func(s State) {
		if s.Phase == PhaseSuccess {
			close(entered)
			<-release
		}
		mu.Lock()
		last[s.Mode] = s
		mu.Unlock()
	})

	token := c.Begin(ModeSingle, "hello")
	view := render.Single(classifier.Result{Comment: "hello"})
	succeeded := make(chan bool)
	go func() { succeeded <- c.Succeed(ModeSingle, token, Payload{Single: &view}) }()
	<-entered

	switched := make(chan struct{})
	go func() {
		c.SwitchTab(ModeBatch)
		close(switched)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !c.State(ModeSingle).Idle() {
		if time.Now().After(deadline) {
			t.Fatalf("switch did not apply while the observer was busy")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	if !<-succeeded {
		t.Fatalf("expected success to apply before the switch")
	}
	<-switched

	mu.Lock()
	defer mu.Unlock()
	for _, mode := range Modes {
		current := c.State(mode)
		seen := last[mode]
		if seen.Phase != current.Phase || seen.Token != current.Token {
			t.Fatalf("mode %s: last event %s/%d disagrees with state %s/%d", mode, seen.Phase, seen.Token, current.Phase, current.Token)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		mode     Mode
		kind     ErrorKind
		contains string
	}{
		{"transport", &classifier.TransportError{Op: "POST", URL: "http://x", Err: errors.New("connection refused")}, ModeSingle, KindTransport, "Could not reach the server"},
		{"api 500", &classifier.APIError{Status: 500, StatusText: "Internal Server Error"}, ModeSingle, KindAPI, "500"},
		{"api batch", fmt.Errorf("wrapped: %w", &classifier.APIError{Status: 502, StatusText: "Bad Gateway"}), ModeBatch, KindAPI, "Error processing the comments"},
		{"generic", errors.New("decode response: EOF"), ModeSingle, KindProcessing, "Error processing the comment: decode response: EOF"},
		{"validation", &validate.ValidationError{Field: "comment", Message: "Please enter a comment to analyze."}, ModeSingle, KindValidation, "Please enter"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, msg := Classify(tc.err, tc.mode)
			if kind != tc.kind {
				t.Fatalf("expected kind %q got %q", tc.kind, kind)
			}
			if !strings.Contains(msg, tc.contains) {
				t.Fatalf("expected %q in %q", tc.contains, msg)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	var mu sync.Mutex
	events := map[string]int{}
	r := NewRegistry(func(id string, _ State) {
		mu.Lock()
		events[id]++
		mu.Unlock()
	})
	a := r.Get("a")
	if r.Get("a") != a {
		t.Fatalf("expected the same controller for a session")
	}
	r.Get("b").Begin(ModeSingle, "x")
	a.Reset(ModeBatch)
	if events["a"] != 1 || events["b"] != 1 {
		t.Fatalf("unexpected events %v", events)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions got %d", r.Len())
	}
	time.Sleep(5 * time.Millisecond)
	if removed := r.Sweep(time.Millisecond); removed != 2 {
		t.Fatalf("expected sweep to remove 2 got %d", removed)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Batch "); err != nil || m != ModeBatch {
		t.Fatalf("expected batch got %v %v", m, err)
	}
	if _, err := ParseMode("video"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}
