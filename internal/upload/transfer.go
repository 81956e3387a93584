package upload

import (
	"errors"
	"fmt"

	"github.com/talentlens/console/internal/models"
)

// EventKind is an input to the transfer state machine.
type EventKind string

const (
	EventStart   EventKind = "start"
	EventSucceed EventKind = "succeed"
	EventFail    EventKind = "fail"
	EventReset   EventKind = "reset"
)

// Event drives a TransferState transition.
type Event struct {
	Kind    EventKind
	Results []models.Resume
	Reason  string
}

// ErrInvalidTransition is returned when an event does not apply to the current status.
var ErrInvalidTransition = errors.New("invalid transfer transition")

// transitions is the complete transition table; anything absent is invalid.
var transitions = map[models.TransferStatus]map[EventKind]models.TransferStatus{
	models.TransferStatusIdle: {
		EventStart: models.TransferStatusInProgress,
		EventReset: models.TransferStatusIdle,
	},
	models.TransferStatusInProgress: {
		EventSucceed: models.TransferStatusSucceeded,
		EventFail:    models.TransferStatusFailed,
	},
	models.TransferStatusSucceeded: {
		EventStart: models.TransferStatusInProgress,
		EventReset: models.TransferStatusIdle,
	},
	models.TransferStatusFailed: {
		EventStart: models.TransferStatusInProgress,
		EventReset: models.TransferStatusIdle,
	},
}

// Reduce returns the state that follows ev. The input state is left unchanged.
func Reduce(state models.TransferState, ev Event) (models.TransferState, error) {
	next, ok := transitions[state.Status][ev.Kind]
	if !ok {
		return state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev.Kind, state.Status)
	}

	out := models.TransferState{Status: next}
	switch next {
	case models.TransferStatusSucceeded:
		out.Results = ev.Results
	case models.TransferStatusFailed:
		out.Reason = ev.Reason
	}
	return out, nil
}
