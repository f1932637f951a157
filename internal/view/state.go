package view

import (
	"fmt"
	"strings"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/render"
)

// Mode selects one of the two analysis workflows.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// Modes lists every workflow in tab order.
var Modes = []Mode{ModeSingle, ModeBatch}

// ParseMode accepts a tab identifier such as "single" or "batch".
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeSingle:
		return ModeSingle, nil
	case ModeBatch:
		return ModeBatch, nil
	}
	return "", fmt.Errorf("unknown analysis mode %q", value)
}

// Phase is the visible state of one workflow.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// ErrorKind classifies the message carried by a failure.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindAPI        ErrorKind = "api"
	KindProcessing ErrorKind = "processing"
)

// Payload carries the rendered data of a successful analysis.
type Payload struct {
	Single *render.SingleView
	Batch  *render.BatchView
}

// State is the view of one workflow. Only the fields of the active phase are set.
type State struct {
	Mode    Mode               `json:"mode"`
	Phase   Phase              `json:"phase"`
	Token   uint64             `json:"token"`
	Input   string             `json:"input"`
	Single  *render.SingleView `json:"single,omitempty"`
	Batch   *render.BatchView  `json:"batch,omitempty"`
	Kind    ErrorKind          `json:"kind,omitempty"`
	Message string             `json:"message,omitempty"`
}

// Idle reports whether nothing but the input form is visible.
func (s State) Idle() bool { return s.Phase == PhaseIdle }

// Loading reports whether a request is in flight.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

// Succeeded reports whether a result is shown.
func (s State) Succeeded() bool { return s.Phase == PhaseSuccess }

// Failed reports whether an error message is shown.
func (s State) Failed() bool { return s.Phase == PhaseFailure }

// Snapshot is a consistent copy of both workflows and the active tab.
type Snapshot struct {
	Active Mode  `json:"active"`
	Single State `json:"single"`
	Batch  State `json:"batch"`
}

// State returns the workflow state for mode.
func (s Snapshot) State(mode Mode) State {
	if mode == ModeBatch {
		return s.Batch
	}
	return s.Single
}
