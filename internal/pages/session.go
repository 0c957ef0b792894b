// Package pages holds the page objects that script storefront journeys.
//
// Every page object works on a *Session. Targets are resolved through
// locate chains, actions are confirmed with the poller, and coarse states
// (cart empty, shipping step loaded, logged in) are detect detectors, so the
// same journey runs against both markup generations of the shop.
package pages

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Session bundles what every page object needs: the browser page and the
// waiting rules for it.
type Session struct {
	Page   playwright.Page
	Poller *poll.Poller
	// Policy bounds hard waits.
	Policy poll.Policy
	// Soft bounds optional checks that must not slow a passing journey down.
	Soft   poll.Policy
	Logger *zap.Logger

	base          *url.URL
	actionTimeout time.Duration
	demoUser      string
	demoPass      string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPoller replaces the session poller, e.g. to attach a wait log.
func WithPoller(p *poll.Poller) SessionOption {
	return func(s *Session) { s.Poller = p }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.Logger = l }
}

// WithSoftPolicy replaces the policy of optional checks.
func WithSoftPolicy(p poll.Policy) SessionOption {
	return func(s *Session) { s.Soft = p }
}

// NewSession wraps page with the waiting rules of cfg.
func NewSession(page playwright.Page, cfg *config.SuiteConfig, opts ...SessionOption) (*Session, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	s := &Session{
		Page:          page,
		Policy:        cfg.Policy(),
		Soft:          poll.Quick(),
		Logger:        zap.NewNop(),
		base:          base,
		actionTimeout: cfg.ActionTimeout,
		demoUser:      cfg.DemoUser,
		demoPass:      cfg.DemoPass,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Poller == nil {
		s.Poller = poll.New(poll.WithLogger(s.Logger))
	}
	if page != nil && s.actionTimeout > 0 {
		page.SetDefaultTimeout(float64(s.actionTimeout.Milliseconds()))
	}
	return s, nil
}

// Resolve turns a route relative to the base URL into an absolute address.
// Leading slashes are dropped so a base path such as /en_US/ is kept.
func (s *Session) Resolve(rel string) string {
	clean := strings.TrimLeft(strings.TrimSpace(rel), "/")
	if clean == "" {
		clean = "."
	}
	ref, err := url.Parse(clean)
	if err != nil {
		return s.base.String() + clean
	}
	return s.base.ResolveReference(ref).String()
}

// GotoPath navigates to a route relative to the base URL.
func (s *Session) GotoPath(rel string) error {
	target := s.Resolve(rel)
	if _, err := s.Page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// Wait is a hard wait under the session policy.
func (s *Session) Wait(ctx context.Context, desc string, cond poll.Condition) error {
	return s.Poller.Wait(ctx, s.Policy, desc, cond)
}

// Check is a soft wait under the soft policy.
func (s *Session) Check(ctx context.Context, desc string, cond poll.Condition) bool {
	return s.Poller.Check(ctx, s.Soft, desc, cond)
}

// WaitVisible hard-waits for l to become visible.
func (s *Session) WaitVisible(ctx context.Context, desc string, l playwright.Locator) error {
	return s.Wait(ctx, desc+" visible", visibleCond(l))
}

// CheckVisible soft-waits for l to become visible.
func (s *Session) CheckVisible(ctx context.Context, desc string, l playwright.Locator) bool {
	return s.Check(ctx, desc+" visible", visibleCond(l))
}

// WaitChainVisible hard-waits for the winner of chain to become visible.
// The chain is resolved again on every attempt, so a candidate that renders
// late still wins.
func (s *Session) WaitChainVisible(ctx context.Context, desc string, chain *locate.Chain[playwright.Locator]) error {
	_, err := s.WaitFirstVisible(ctx, desc, chain)
	return err
}

// CheckChainVisible soft-waits for the winner of chain to become visible.
func (s *Session) CheckChainVisible(ctx context.Context, desc string, chain *locate.Chain[playwright.Locator]) bool {
	return s.Check(ctx, desc+" visible", chainVisibleCond(chain, nil))
}

// WaitFirstVisible hard-waits like WaitChainVisible and returns the first
// element of the candidate that was visible.
func (s *Session) WaitFirstVisible(ctx context.Context, desc string, chain *locate.Chain[playwright.Locator]) (playwright.Locator, error) {
	var winner playwright.Locator
	if err := s.Wait(ctx, desc+" visible", chainVisibleCond(chain, &winner)); err != nil {
		return nil, err
	}
	return winner, nil
}

// WaitFirst hard-waits until some candidate of chain matches and returns the
// first element of the winner, visible or not.
func (s *Session) WaitFirst(ctx context.Context, desc string, chain *locate.Chain[playwright.Locator]) (playwright.Locator, error) {
	var winner playwright.Locator
	err := s.Wait(ctx, desc+" present", func(ctx context.Context) (bool, error) {
		r := chain.Resolve(ctx)
		if !r.Matched() {
			return false, nil
		}
		winner = r.Locator.First()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return winner, nil
}

// chainVisibleCond resolves chain per attempt; winner receives the visible
// element when it is non-nil.
func chainVisibleCond(chain *locate.Chain[playwright.Locator], winner *playwright.Locator) poll.Condition {
	return func(ctx context.Context) (bool, error) {
		r := chain.Resolve(ctx)
		if !r.Matched() {
			return false, nil
		}
		first := r.Locator.First()
		ok, err := first.IsVisible()
		if err != nil || !ok {
			return false, err
		}
		if winner != nil {
			*winner = first
		}
		return true, nil
	}
}

// WaitURL hard-waits until match accepts the page address.
func (s *Session) WaitURL(ctx context.Context, desc string, match func(string) bool) error {
	return s.Wait(ctx, "url "+desc, poll.Always(func() bool { return match(s.Page.URL()) }))
}

// CheckURL soft-waits until match accepts the page address.
func (s *Session) CheckURL(ctx context.Context, desc string, match func(string) bool) bool {
	return s.Check(ctx, "url "+desc, poll.Always(func() bool { return match(s.Page.URL()) }))
}

func visibleCond(l playwright.Locator) poll.Condition {
	return func(context.Context) (bool, error) {
		return l.IsVisible()
	}
}

// isVisible swallows errors: a locator that cannot be queried is not visible.
func isVisible(l playwright.Locator) bool {
	ok, err := l.IsVisible()
	return err == nil && ok
}

func count(l playwright.Locator) int {
	n, err := l.Count()
	if err != nil {
		return 0
	}
	return n
}

// text reads the text content of l within the poll step deadline.
func text(ctx context.Context, l playwright.Locator) (string, error) {
	return l.TextContent(playwright.LocatorTextContentOptions{Timeout: stepTimeout(ctx)})
}

func stepTimeout(ctx context.Context) *float64 {
	d := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < d {
			d = max(remaining, 10*time.Millisecond)
		}
	}
	return ms(d)
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// squash trims text and collapses runs of whitespace.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// closedConnection reports navigation errors worth one retry.
func closedConnection(err error) bool {
	return err != nil && (errors.Is(err, playwright.ErrTargetClosed) ||
		strings.Contains(err.Error(), "ERR_CONNECTION_CLOSED") ||
		strings.Contains(err.Error(), "ERR_CONNECTION_RESET"))
}
