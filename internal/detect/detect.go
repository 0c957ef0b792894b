// Package detect decides coarse page states from several unreliable signals.
//
// A Detector combines its signals with an explicit policy: Any (OR) when one
// strong signal suffices, All (AND) when every signal must agree. A signal that
// errors or panics counts as false. All signals of one evaluation run
// concurrently and are joined before the composite is computed.
package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/adyen/storefront-e2e/internal/poll"
	"golang.org/x/sync/errgroup"
)

// Mode is the logical policy a Detector applies.
type Mode int

const (
	// ModeAny is OR-composition.
	ModeAny Mode = iota
	// ModeAll is AND-composition.
	ModeAll
)

func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "any"
}

// Signal is one independently evaluated check.
type Signal struct {
	Name string
	Eval func(ctx context.Context) (bool, error)
}

// Func builds a signal from a function.
func Func(name string, eval func(ctx context.Context) (bool, error)) Signal {
	return Signal{Name: name, Eval: eval}
}

// Result is the outcome of one signal within a Report.
type Result struct {
	Name  string
	Value bool
	Err   error
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s=error(%v)", r.Name, r.Err)
	}
	return fmt.Sprintf("%s=%t", r.Name, r.Value)
}

// Report is one evaluation of a Detector.
type Report struct {
	Detector string
	Mode     Mode
	State    bool
	Signals  []Result
}

// Fired lists the signals that evaluated true.
func (r Report) Fired() []string {
	var names []string
	for _, s := range r.Signals {
		if s.Value {
			names = append(names, s.Name)
		}
	}
	return names
}

func (r Report) String() string {
	parts := make([]string, len(r.Signals))
	for i, s := range r.Signals {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s (%s of: %s) = %t", r.Detector, r.Mode, strings.Join(parts, ", "), r.State)
}

// StateError is the transient error a Detector condition reports while its
// state does not hold, so a timed-out wait shows every signal's last reading.
type StateError struct {
	Report Report
}

func (e *StateError) Error() string { return "state not reached: " + e.Report.String() }

// Detector evaluates a named state.
type Detector struct {
	name    string
	mode    Mode
	signals []Signal
	limit   int
}

// Any holds when at least one signal is true, regardless of the others failing.
func Any(name string, signals ...Signal) *Detector {
	return &Detector{name: name, mode: ModeAny, signals: signals}
}

// All holds only when every signal is true. A detector without signals never holds.
func All(name string, signals ...Signal) *Detector {
	return &Detector{name: name, mode: ModeAll, signals: signals}
}

// WithConcurrency caps how many signals run at once; 1 evaluates them in order.
func (d *Detector) WithConcurrency(n int) *Detector {
	cp := *d
	cp.limit = n
	return &cp
}

// Name of the state.
func (d *Detector) Name() string { return d.name }

// Detect evaluates every signal of d once.
func (d *Detector) Detect(ctx context.Context) Report {
	results := make([]Result, len(d.signals))

	var g errgroup.Group
	if d.limit > 0 {
		g.SetLimit(d.limit)
	}
	for i, s := range d.signals {
		g.Go(func() error {
			results[i] = evaluate(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	return Report{Detector: d.name, Mode: d.mode, State: combine(d.mode, results), Signals: results}
}

// Evaluate is Detect reduced to the composite state.
func (d *Detector) Evaluate(ctx context.Context) bool {
	return d.Detect(ctx).State
}

// Condition adapts d for poll.Wait and poll.Check.
func (d *Detector) Condition() poll.Condition {
	return func(ctx context.Context) (bool, error) {
		r := d.Detect(ctx)
		if !r.State {
			return false, &StateError{Report: r}
		}
		return true, nil
	}
}

// Signal exposes d as a signal of an enclosing detector.
func (d *Detector) Signal() Signal {
	return Func(d.name, func(ctx context.Context) (bool, error) {
		return d.Evaluate(ctx), nil
	})
}

func combine(mode Mode, results []Result) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if mode == ModeAny && r.Value {
			return true
		}
		if mode == ModeAll && !r.Value {
			return false
		}
	}
	return mode == ModeAll
}

func evaluate(ctx context.Context, s Signal) (res Result) {
	res.Name = s.Name
	defer func() {
		if r := recover(); r != nil {
			res.Value, res.Err = false, fmt.Errorf("signal panicked: %v", r)
		}
	}()
	if s.Eval == nil {
		res.Err = fmt.Errorf("signal %q has no evaluator", s.Name)
		return res
	}
	v, err := s.Eval(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Value = v
	return res
}
