package models

import (
	"time"

	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/google/uuid"
)

// WaitResult is how a recorded wait ended
type WaitResult string

// Wait results
const (
	WaitSatisfied WaitResult = "satisfied"
	WaitTimedOut  WaitResult = "timed_out"
	WaitCancelled WaitResult = "cancelled"
)

// WaitOutcome is one persisted poll, kept so that failed runs show what was
// awaited and for how long
type WaitOutcome struct {
	ID        string
	RunID     string
	Condition string
	Result    WaitResult
	Attempts  int
	Elapsed   time.Duration
	Timeout   time.Duration
	LastError string
	CreatedAt time.Time
}

// NewWaitOutcome builds a record from a finished poll
func NewWaitOutcome(runID string, o poll.Outcome) *WaitOutcome {
	w := &WaitOutcome{
		ID:        uuid.New().String(),
		RunID:     runID,
		Condition: o.Description,
		Attempts:  o.Attempts,
		Elapsed:   o.Elapsed,
		Timeout:   o.Policy.Timeout,
	}
	switch {
	case o.Satisfied:
		w.Result = WaitSatisfied
	case o.Cancelled:
		w.Result = WaitCancelled
	default:
		w.Result = WaitTimedOut
	}
	if o.LastErr != nil {
		w.LastError = o.LastErr.Error()
	}
	return w
}

// Failed returns true for waits that did not see their condition pass
func (w *WaitOutcome) Failed() bool {
	return w.Result != WaitSatisfied
}

// Slack is the share of the timeout left over when the wait ended. Values close
// to zero flag waits that passed just in time.
func (w *WaitOutcome) Slack() float64 {
	if w.Timeout <= 0 {
		return 0
	}
	s := 1 - float64(w.Elapsed)/float64(w.Timeout)
	if s < 0 {
		return 0
	}
	return s
}
