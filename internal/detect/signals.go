package detect

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/money"
	"github.com/playwright-community/playwright-go"
)

// readTimeout caps a single text read inside a signal so one absent element
// cannot stall a whole evaluation.
const readTimeout = time.Second

// Visibler is the visibility query of a playwright.Locator.
type Visibler interface {
	IsVisible(options ...playwright.LocatorIsVisibleOptions) (bool, error)
}

// Texter is the text query of a playwright.Locator.
type Texter interface {
	TextContent(options ...playwright.LocatorTextContentOptions) (string, error)
}

// Addresser is the URL query of a playwright.Page.
type Addresser interface {
	URL() string
}

// Visible is true while v is rendered and visible.
func Visible(name string, v Visibler) Signal {
	return Func(name, func(context.Context) (bool, error) {
		return v.IsVisible()
	})
}

// CountAtLeast is true while m matches n or more elements.
func CountAtLeast(name string, m locate.Matcher, n int) Signal {
	return Func(name, func(context.Context) (bool, error) {
		c, err := m.Count()
		if err != nil {
			return false, err
		}
		return c >= n, nil
	})
}

// CountIs is true while m matches exactly n elements.
func CountIs(name string, m locate.Matcher, n int) Signal {
	return Func(name, func(context.Context) (bool, error) {
		c, err := m.Count()
		if err != nil {
			return false, err
		}
		return c == n, nil
	})
}

// Absent is true while m matches nothing. A failing count query is not absence.
func Absent(name string, m locate.Matcher) Signal {
	return CountIs(name, m, 0)
}

// TextMatches is true while the text of t matches re.
func TextMatches(name string, t Texter, re *regexp.Regexp) Signal {
	return Func(name, func(ctx context.Context) (bool, error) {
		txt, err := t.TextContent(playwright.LocatorTextContentOptions{Timeout: timeoutMs(ctx)})
		if err != nil {
			return false, err
		}
		return re.MatchString(txt), nil
	})
}

// MoneyEquals is true while the text of t normalizes to want. Unparseable text is
// reported as an error, never read as zero.
func MoneyEquals(name string, t Texter, want float64) Signal {
	return Func(name, func(ctx context.Context) (bool, error) {
		txt, err := t.TextContent(playwright.LocatorTextContentOptions{Timeout: timeoutMs(ctx)})
		if err != nil {
			return false, err
		}
		v, err := money.Require(txt)
		if err != nil {
			return false, err
		}
		return money.Equal(v, want), nil
	})
}

// URLMatches is true while the page address matches re.
func URLMatches(name string, a Addresser, re *regexp.Regexp) Signal {
	return Func(name, func(context.Context) (bool, error) {
		return re.MatchString(a.URL()), nil
	})
}

// Not inverts a signal. An erroring signal stays false rather than flipping to true.
func Not(s Signal) Signal {
	return Func("not "+s.Name, func(ctx context.Context) (bool, error) {
		r := evaluate(ctx, s)
		if r.Err != nil {
			return false, fmt.Errorf("%s: %w", s.Name, r.Err)
		}
		return !r.Value, nil
	})
}

func timeoutMs(ctx context.Context) *float64 {
	d := readTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < d {
			d = max(remaining, 10*time.Millisecond)
		}
	}
	return playwright.Float(float64(d.Milliseconds()))
}
