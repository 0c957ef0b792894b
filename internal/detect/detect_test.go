package detect

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/adyen/storefront-e2e/internal/poll/polltest"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errDetached = errors.New("element is not attached to the DOM")

func fixed(name string, v bool) Signal {
	return Func(name, func(context.Context) (bool, error) { return v, nil })
}

func failing(name string) Signal {
	return Func(name, func(context.Context) (bool, error) { return true, errDetached })
}

func panicking(name string) Signal {
	return Func(name, func(context.Context) (bool, error) { panic("boom") })
}

func TestAny_OneTrueSignalSuffices(t *testing.T) {
	tests := []struct {
		name    string
		signals []Signal
		want    bool
	}{
		{name: "only first true", signals: []Signal{fixed("a", true), fixed("b", false), fixed("c", false)}, want: true},
		{name: "true among failures", signals: []Signal{failing("a"), fixed("b", true), panicking("c")}, want: true},
		{name: "all false", signals: []Signal{fixed("a", false), fixed("b", false)}, want: false},
		{name: "all failing", signals: []Signal{failing("a"), panicking("b")}, want: false},
		{name: "no signals", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Any("state", tt.signals...).Evaluate(context.Background()))
		})
	}
}

func TestAll_OneFalseOrFailingSignalVetoes(t *testing.T) {
	tests := []struct {
		name    string
		signals []Signal
		want    bool
	}{
		{name: "all true", signals: []Signal{fixed("a", true), fixed("b", true)}, want: true},
		{name: "one false", signals: []Signal{fixed("a", true), fixed("b", false)}, want: false},
		{name: "one failing", signals: []Signal{fixed("a", true), failing("b")}, want: false},
		{name: "one panicking", signals: []Signal{panicking("a"), fixed("b", true)}, want: false},
		{name: "no signals", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, All("state", tt.signals...).Evaluate(context.Background()))
		})
	}
}

func TestDetect_ReportKeepsEverySignal(t *testing.T) {
	r := Any("cart is empty", fixed("banner", false), failing("rows"), fixed("total zero", true)).Detect(context.Background())

	require.Len(t, r.Signals, 3)
	assert.True(t, r.State)
	assert.Equal(t, []string{"total zero"}, r.Fired())
	assert.ErrorIs(t, r.Signals[1].Err, errDetached)
	assert.False(t, r.Signals[1].Value, "an erroring signal is never true")
	assert.Contains(t, r.String(), "rows=error(")
	assert.Contains(t, r.String(), "cart is empty (any of:")
}

func TestDetect_SignalsRunConcurrentlyAndJoin(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	barrier := func(name string) Signal {
		return Func(name, func(context.Context) (bool, error) {
			started.Done()
			select {
			case <-release:
				return true, nil
			case <-time.After(2 * time.Second):
				return false, errors.New("peer signal never started")
			}
		})
	}

	r := All("both", barrier("a"), barrier("b")).Detect(context.Background())
	assert.True(t, r.State, r.String())
}

func TestDetect_SequentialWithConcurrencyOne(t *testing.T) {
	var order []string
	var mu sync.Mutex
	record := func(name string) Signal {
		return Func(name, func(context.Context) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return true, nil
		})
	}

	d := All("ordered", record("a"), record("b"), record("c")).WithConcurrency(1)
	assert.True(t, d.Evaluate(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestCondition_WithPoller(t *testing.T) {
	clock := polltest.NewClock()
	p := poll.New(poll.WithClock(clock))
	policy := poll.Policy{Timeout: time.Second, Intervals: []time.Duration{100 * time.Millisecond}}

	calls := 0
	eventually := Func("rows gone", func(context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return false, errDetached
		}
		return true, nil
	})
	require.NoError(t, p.Wait(context.Background(), policy, "cart is empty", Any("cart is empty", eventually).Condition()))

	err := p.Wait(context.Background(), policy, "shipping step loaded",
		All("shipping step loaded", fixed("route", true), fixed("options", false)).Condition())
	require.ErrorIs(t, err, poll.ErrTimeout)
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "shipping step loaded", se.Report.Detector)
	assert.Contains(t, err.Error(), "options=false")
}

func TestNestedDetectorSignal(t *testing.T) {
	inner := All("inner", fixed("x", true), fixed("y", true))
	outer := Any("outer", fixed("z", false), inner.Signal())
	assert.True(t, outer.Evaluate(context.Background()))
}

// The cart-empty determination: any single one of its four signals suffices.
func TestCartEmptyScenario(t *testing.T) {
	names := []string{"empty banner visible", "no item rows", "summary total is zero", "no checkout action"}
	for winner := range names {
		t.Run(names[winner], func(t *testing.T) {
			signals := make([]Signal, len(names))
			for i, n := range names {
				switch {
				case i == winner:
					signals[i] = fixed(n, true)
				case i%2 == 0:
					signals[i] = failing(n)
				default:
					signals[i] = fixed(n, false)
				}
			}
			r := Any("cart is empty", signals...).Detect(context.Background())
			assert.True(t, r.State)
			assert.Equal(t, []string{names[winner]}, r.Fired())
		})
	}
}

type fakeElement struct {
	visible bool
	text    string
	count   int
	err     error
}

func (f fakeElement) IsVisible(...playwright.LocatorIsVisibleOptions) (bool, error) {
	return f.visible, f.err
}

func (f fakeElement) TextContent(...playwright.LocatorTextContentOptions) (string, error) {
	return f.text, f.err
}

func (f fakeElement) Count() (int, error) { return f.count, f.err }

type fakePage string

func (p fakePage) URL() string { return string(p) }

func TestSignalHelpers(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		signal Signal
		want   bool
	}{
		{name: "visible", signal: Visible("v", fakeElement{visible: true}), want: true},
		{name: "visible error", signal: Visible("v", fakeElement{visible: true, err: errDetached}), want: false},
		{name: "count at least", signal: CountAtLeast("c", fakeElement{count: 2}, 2), want: true},
		{name: "count at least short", signal: CountAtLeast("c", fakeElement{count: 1}, 2), want: false},
		{name: "absent", signal: Absent("a", fakeElement{}), want: true},
		{name: "absent on error is not absence", signal: Absent("a", fakeElement{err: errDetached}), want: false},
		{name: "text matches", signal: TextMatches("t", fakeElement{text: "Your cart is empty"}, regexp.MustCompile(`(?i)cart is empty`)), want: true},
		{name: "money zero", signal: MoneyEquals("m", fakeElement{text: "Order total: €0.00"}, 0), want: true},
		{name: "money nonzero", signal: MoneyEquals("m", fakeElement{text: "€12.50"}, 0), want: false},
		{name: "money unparseable is not zero", signal: MoneyEquals("m", fakeElement{text: "N/A"}, 0), want: false},
		{name: "url", signal: URLMatches("u", fakePage("https://shop.test/en_US/checkout/select-shipping"), regexp.MustCompile(`/checkout/select-shipping`)), want: true},
		{name: "not", signal: Not(fixed("x", false)), want: true},
		{name: "not of failing stays false", signal: Not(failing("x")), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Any("one", tt.signal).Evaluate(ctx)
			assert.Equal(t, tt.want, got)
		})
	}
}
