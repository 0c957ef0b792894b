// Package poll retries document checks on a backoff schedule until they pass
// or a deadline elapses.
//
// Every wait takes its Policy explicitly. Check is the soft entry point and
// reports a timeout as false; Wait is the hard one and returns a *TimeoutError.
// Errors and panics raised by a condition are treated as "not yet true".
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrTimeout matches every *TimeoutError via errors.Is.
var ErrTimeout = errors.New("poll: condition not met before deadline")

// Condition inspects the current document state.
type Condition func(ctx context.Context) (bool, error)

// Outcome describes one finished poll.
type Outcome struct {
	Description string
	Satisfied   bool
	// Cancelled is set when the caller's context ended the poll before the deadline.
	Cancelled bool
	Attempts  int
	Elapsed   time.Duration
	Policy    Policy
	// LastErr is the most recent transient error raised by the condition.
	LastErr error

	// stop is the context or policy error that ended the poll early.
	stop error
}

// TimedOut reports whether the deadline elapsed without the condition passing.
func (o Outcome) TimedOut() bool {
	return !o.Satisfied && o.stop == nil
}

// Observer is notified after every poll.
type Observer interface {
	ObservePoll(ctx context.Context, o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, o Outcome)

func (f ObserverFunc) ObservePoll(ctx context.Context, o Outcome) { f(ctx, o) }

// TimeoutError is returned by Wait when the condition never became true.
type TimeoutError struct {
	Description string
	Elapsed     time.Duration
	Timeout     time.Duration
	Attempts    int
	LastErr     error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out waiting for %s after %s (timeout %s, %d attempts)",
		e.Description, e.Elapsed.Round(time.Millisecond), e.Timeout, e.Attempts)
	if e.LastErr != nil {
		msg += ": last error: " + e.LastErr.Error()
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// Poller runs conditions against a clock.
type Poller struct {
	clock     Clock
	logger    *zap.Logger
	observers []Observer
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithLogger sets the logger used for timeout diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithObserver registers an observer for every finished poll.
func WithObserver(o Observer) Option {
	return func(p *Poller) { p.observers = append(p.observers, o) }
}

// New returns a Poller on the wall clock.
func New(opts ...Option) *Poller {
	p := &Poller{clock: realClock{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run evaluates cond until it passes, the policy deadline elapses or ctx is done.
// The condition runs at the schedule boundaries 0, I0, I0+I1, ...; the final sleep
// is clipped so one last attempt happens exactly at the deadline.
func (p *Poller) Run(ctx context.Context, policy Policy, desc string, cond Condition) Outcome {
	out := Outcome{Description: desc, Policy: policy}
	if err := policy.Validate(); err != nil {
		out.stop = err
		p.finish(ctx, out)
		return out
	}

	start := p.clock.Now()
	deadline := start.Add(policy.Timeout)
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			out.Cancelled, out.stop = true, err
			break
		}

		out.Attempts++
		ok, err := p.evaluate(ctx, deadline, cond)
		if err != nil {
			out.LastErr = err
		}
		if ok {
			out.Satisfied = true
			break
		}

		remaining := deadline.Sub(p.clock.Now())
		if remaining <= 0 {
			break
		}
		wait := policy.Interval(n)
		if wait > remaining {
			wait = remaining
		}
		if err := p.clock.Sleep(ctx, wait); err != nil {
			out.Cancelled, out.stop = true, err
			break
		}
	}
	out.Elapsed = p.clock.Now().Sub(start)
	p.finish(ctx, out)
	return out
}

// Check is the soft entry point: it reports whether cond passed in time.
func (p *Poller) Check(ctx context.Context, policy Policy, desc string, cond Condition) bool {
	return p.Run(ctx, policy, desc, cond).Satisfied
}

// Wait is the hard entry point: it returns a *TimeoutError when cond never passed,
// or the context error when the caller gave up first.
func (p *Poller) Wait(ctx context.Context, policy Policy, desc string, cond Condition) error {
	return p.Run(ctx, policy, desc, cond).Err()
}

// Err converts an outcome into the error a hard wait reports.
func (o Outcome) Err() error {
	switch {
	case o.Satisfied:
		return nil
	case o.stop != nil:
		return fmt.Errorf("poll: waiting for %s: %w", o.Description, o.stop)
	default:
		return &TimeoutError{
			Description: o.Description,
			Elapsed:     o.Elapsed,
			Timeout:     o.Policy.Timeout,
			Attempts:    o.Attempts,
			LastErr:     o.LastErr,
		}
	}
}

func (p *Poller) evaluate(ctx context.Context, deadline time.Time, cond Condition) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("poll: condition panicked: %v", r)
		}
	}()
	condCtx, cancel := context.WithTimeout(ctx, max(deadline.Sub(p.clock.Now()), time.Millisecond))
	defer cancel()
	ok, err = cond(condCtx)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (p *Poller) finish(ctx context.Context, out Outcome) {
	switch {
	case out.Satisfied && out.Attempts > 1:
		p.logger.Debug("Condition satisfied after retries.",
			zap.String("condition", out.Description),
			zap.Int("attempts", out.Attempts),
			zap.Duration("elapsed", out.Elapsed))
	case out.TimedOut():
		p.logger.Debug("Condition timed out.",
			zap.String("condition", out.Description),
			zap.Int("attempts", out.Attempts),
			zap.Duration("elapsed", out.Elapsed),
			zap.Duration("timeout", out.Policy.Timeout),
			zap.Error(out.LastErr))
	}
	for _, o := range p.observers {
		o.ObservePoll(ctx, out)
	}
}
