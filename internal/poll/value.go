package poll

import (
	"context"
)

// Value produces a reading of the document, e.g. a count or a parsed total.
type Value[T any] func(ctx context.Context) (T, error)

// WaitValue polls produce until accept holds for its result, returning the
// accepted value, or the last successful reading together with the wait error.
func WaitValue[T any](ctx context.Context, p *Poller, policy Policy, desc string, produce Value[T], accept func(T) bool) (T, error) {
	last, out := runValue(ctx, p, policy, desc, produce, accept)
	return last, out.Err()
}

// CheckValue is the soft counterpart of WaitValue.
func CheckValue[T any](ctx context.Context, p *Poller, policy Policy, desc string, produce Value[T], accept func(T) bool) (T, bool) {
	last, out := runValue(ctx, p, policy, desc, produce, accept)
	return last, out.Satisfied
}

func runValue[T any](ctx context.Context, p *Poller, policy Policy, desc string, produce Value[T], accept func(T) bool) (T, Outcome) {
	var last T
	out := p.Run(ctx, policy, desc, func(ctx context.Context) (bool, error) {
		v, err := produce(ctx)
		if err != nil {
			return false, err
		}
		last = v
		return accept(v), nil
	})
	return last, out
}

// Always adapts a plain predicate into a Condition that never errors.
func Always(fn func() bool) Condition {
	return func(context.Context) (bool, error) { return fn(), nil }
}
