package poll

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPolicy is returned for policies without a positive timeout or interval.
var ErrInvalidPolicy = errors.New("poll: invalid policy")

// Policy bounds a poll: Timeout is the overall deadline, Intervals is the backoff
// schedule consumed in order, with the last interval repeating until the deadline.
type Policy struct {
	Timeout   time.Duration
	Intervals []time.Duration
}

// DefaultIntervals is the backoff schedule used by DefaultPolicy.
func DefaultIntervals() []time.Duration {
	return []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		500 * time.Millisecond,
	}
}

// DefaultPolicy waits up to ten seconds on the 100/200/300/500ms schedule.
func DefaultPolicy() Policy {
	return Policy{Timeout: 10 * time.Second, Intervals: DefaultIntervals()}
}

// Quick is meant for soft checks of optional markup.
func Quick() Policy {
	return Policy{
		Timeout:   2 * time.Second,
		Intervals: []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond},
	}
}

// WithTimeout returns a copy of p with a different deadline and the same schedule.
func (p Policy) WithTimeout(d time.Duration) Policy {
	return Policy{Timeout: d, Intervals: append([]time.Duration(nil), p.Intervals...)}
}

// Validate reports whether p can drive a poll.
func (p Policy) Validate() error {
	if p.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidPolicy, p.Timeout)
	}
	if len(p.Intervals) == 0 {
		return fmt.Errorf("%w: at least one interval is required", ErrInvalidPolicy)
	}
	for i, d := range p.Intervals {
		if d <= 0 {
			return fmt.Errorf("%w: interval %d must be positive, got %s", ErrInvalidPolicy, i, d)
		}
	}
	return nil
}

// Interval returns the wait before attempt n+1 (n counts from zero).
func (p Policy) Interval(n int) time.Duration {
	if n < len(p.Intervals) {
		return p.Intervals[n]
	}
	return p.Last()
}

// Last is the interval that repeats once the schedule is exhausted.
func (p Policy) Last() time.Duration {
	if len(p.Intervals) == 0 {
		return 0
	}
	return p.Intervals[len(p.Intervals)-1]
}

func (p Policy) String() string {
	parts := make([]string, len(p.Intervals))
	for i, d := range p.Intervals {
		parts[i] = d.String()
	}
	return fmt.Sprintf("%s [%s]", p.Timeout, strings.Join(parts, " "))
}

// ParseIntervals reads a comma separated list of millisecond values, e.g. "100,200,500".
func ParseIntervals(s string) ([]time.Duration, error) {
	var out []time.Duration
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		ms, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: interval %q is not a millisecond count", ErrInvalidPolicy, field)
		}
		if ms <= 0 {
			return nil, fmt.Errorf("%w: interval %q must be positive", ErrInvalidPolicy, field)
		}
		out = append(out, time.Duration(ms)*time.Millisecond)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no intervals in %q", ErrInvalidPolicy, s)
	}
	return out, nil
}
