package pages

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/adyen/storefront-e2e/internal/detect"
	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/playwright-community/playwright-go"
)

// SearchExpectation tells Search what the listing should show afterwards.
type SearchExpectation int

const (
	// ExpectAnything only waits for the search route.
	ExpectAnything SearchExpectation = iota
	ExpectResults
	ExpectNoResults
)

const searchQueryKey = "criteria%5Bsearch%5D%5Bvalue%5D="

var (
	dressesName   = regexp.MustCompile(`(?i)^dresses$`)
	noResultsText = regexp.MustCompile(`(?i)there are no results to display`)
	clearName     = regexp.MustCompile(`(?i)clear`)
	searchName    = regexp.MustCompile(`(?i)search`)
)

// Baseline is the listing state captured before a search or sort.
type Baseline struct {
	Titles   []string
	Count    int
	ShowText string
	SortText string
}

// DressesPage is the Dresses listing with its search form and sort menu.
type DressesPage struct {
	s   *Session
	cat *CategoryPage
}

func NewDressesPage(s *Session) *DressesPage {
	return &DressesPage{s: s, cat: NewCategoryPage(s)}
}

func (d *DressesPage) heading() playwright.Locator {
	return d.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: dressesName}).First()
}

func (d *DressesPage) searchInput() *locate.Chain[playwright.Locator] {
	return locate.Of(
		d.s.Page.Locator(`input[name="criteria[search][value]"]`),
		d.s.Page.Locator(`input[name*="criteria"][name*="search"][name*="[value]"]`),
		d.s.Page.GetByPlaceholder(regexp.MustCompile(`(?i)value`)),
	)
}

func (d *DressesPage) searchForm() playwright.Locator {
	return d.s.Page.Locator(`form:has(input[name="criteria[search][value]"])`).First()
}

// NoResults is the "There are no results to display" banner.
func (d *DressesPage) NoResults() playwright.Locator {
	return d.s.Page.Locator(".alert").Filter(playwright.LocatorFilterOptions{HasText: noResultsText}).First()
}

func (d *DressesPage) titles() *locate.Chain[playwright.Locator] {
	return locate.Of(
		d.s.Page.Locator(".products-grid > div .h6.text-break"),
		d.s.Page.Locator(".products-grid .h6.text-break"),
		d.s.Page.Locator(".ui.cards .sylius-product-name"),
	)
}

// Open goes home and follows the Dresses menu link, or opens the route directly.
func (d *DressesPage) Open(ctx context.Context) error {
	if err := d.s.GotoPath(RouteHome); err != nil {
		return err
	}
	d.s.DismissWidget(ctx)

	link := d.s.Page.Locator("header, nav").First().
		GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: dressesName}).First()
	if count(link) == 0 {
		link = d.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: dressesName}).First()
	}
	if count(link) > 0 && link.Click() == nil {
		if err := d.s.WaitURL(ctx, "dresses", dressesURL.MatchString); err != nil {
			return err
		}
	} else if err := d.s.GotoPath(RouteDresses); err != nil {
		return err
	}

	return d.s.Wait(ctx, "dresses listing", detect.Any("dresses ready",
		detect.Visible("heading", d.heading()),
		detect.Func("search input", chainVisibleCond(d.searchInput(), nil)),
	).Condition())
}

// Titles lists the product names of the grid in order.
func (d *DressesPage) Titles(ctx context.Context) ([]string, error) {
	res := d.titles().Resolve(ctx)
	if !res.Matched() {
		return nil, nil
	}
	texts, err := res.Locator.AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("failed to read titles: %w", err)
	}
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = squash(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// Prices lists the normalized grid prices in order.
func (d *DressesPage) Prices(ctx context.Context) ([]float64, error) {
	res := d.cat.Prices().Resolve(ctx)
	if !res.Matched() {
		return nil, nil
	}
	texts, err := res.Locator.AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("failed to read prices: %w", err)
	}
	return parsePrices(texts), nil
}

// SearchURL reports whether address carries the search query q.
func SearchURL(address, q string) bool {
	return strings.Contains(address, searchQueryKey+url.QueryEscape(q))
}

// Search submits q and waits for the outcome expect asks for.
func (d *DressesPage) Search(ctx context.Context, q string, expect SearchExpectation) error {
	input := d.searchInput().Resolve(ctx)
	if !input.Matched() {
		return fmt.Errorf("search input not found")
	}
	if err := input.Locator.First().Fill(q); err != nil {
		return fmt.Errorf("failed to type query: %w", err)
	}
	form := d.searchForm()
	button := locate.Of(
		form.GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: searchName}),
		form.Locator(`button[type="submit"]`),
		form.Locator("button:has(svg.bi-search)"),
	).Resolve(ctx)
	if !button.Matched() {
		return fmt.Errorf("search button not found")
	}
	if err := button.Locator.First().Click(); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	if err := d.s.WaitURL(ctx, "search "+q, func(u string) bool { return SearchURL(u, q) }); err != nil {
		return err
	}

	switch expect {
	case ExpectResults:
		return d.s.Wait(ctx, "search results", detect.CountAtLeast("titles", d.titles(), 1).Eval)
	case ExpectNoResults:
		return d.s.WaitVisible(ctx, "no results banner", d.NoResults())
	}
	return nil
}

// Clear removes the search filter and waits for the query to leave the URL.
func (d *DressesPage) Clear(ctx context.Context) error {
	form := d.searchForm()
	res := locate.Of(
		form.GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: clearName}),
		form.Locator(`a[aria-label*="clear" i]`),
		form.Locator(`button[type="reset"]`),
	).Resolve(ctx)
	if !res.Matched() {
		return fmt.Errorf("clear filter control not found")
	}
	if err := res.Locator.First().Click(); err != nil {
		return fmt.Errorf("failed to clear search: %w", err)
	}
	if err := d.s.WaitURL(ctx, "search cleared", func(u string) bool {
		return !strings.Contains(u, searchQueryKey)
	}); err != nil {
		return err
	}
	d.s.Check(ctx, "no results banner hidden", func(context.Context) (bool, error) {
		v, err := d.NoResults().IsVisible()
		return !v, err
	})
	return nil
}

// WaitForResults waits for the search route of q, then for either the
// banner or the first card.
func (d *DressesPage) WaitForResults(ctx context.Context, q string) error {
	if err := d.s.WaitURL(ctx, "search "+q, func(u string) bool { return SearchURL(u, q) }); err != nil {
		return err
	}
	return d.s.Wait(ctx, "search settled", detect.Any("results or banner",
		detect.Visible("no results banner", d.NoResults()),
		detect.CountAtLeast("titles", d.titles(), 1),
	).Condition())
}

var sortRoutes = []struct {
	label *regexp.Regexp
	route *regexp.Regexp
}{
	{regexp.MustCompile(`(?i)from a to z`), regexp.MustCompile(`(?i)sorting.*name.*asc`)},
	{regexp.MustCompile(`(?i)from z to a`), regexp.MustCompile(`(?i)sorting.*name.*desc`)},
	{regexp.MustCompile(`(?i)newest`), regexp.MustCompile(`(?i)sorting.*createdat.*desc`)},
	{regexp.MustCompile(`(?i)oldest`), regexp.MustCompile(`(?i)sorting.*createdat.*asc`)},
	{regexp.MustCompile(`(?i)cheapest`), regexp.MustCompile(`(?i)sorting.*price.*asc`)},
	{regexp.MustCompile(`(?i)most expensive`), regexp.MustCompile(`(?i)sorting.*price.*desc`)},
}

// SortRoute returns the URL pattern a sort label leads to, or nil when the
// label is unknown.
func SortRoute(label string) *regexp.Regexp {
	for _, r := range sortRoutes {
		if r.label.MatchString(label) {
			return r.route
		}
	}
	return nil
}

// SortByLabel picks a sort option by its visible label and waits for the
// URL, or the sort button text when the label has no known route.
func (d *DressesPage) SortByLabel(ctx context.Context, label string) error {
	exact := regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(label) + `\s*$`)
	if route := SortRoute(label); route != nil {
		return d.cat.sortBy(ctx, exact, route)
	}

	if err := d.cat.sortButton().Click(); err != nil {
		return fmt.Errorf("failed to open sort menu: %w", err)
	}
	menu := d.cat.sortMenu()
	d.s.CheckVisible(ctx, "sort menu", menu)
	item := menu.GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: exact}).First()
	if err := item.Click(); err != nil {
		return fmt.Errorf("failed to pick sort %q: %w", label, err)
	}
	want := regexp.MustCompile(`(?i)sort:\s*` + regexp.QuoteMeta(label))
	return d.s.Wait(ctx, "sort button shows "+label,
		detect.TextMatches("sort button", d.cat.sortButton(), want).Eval)
}

// CaptureBaseline records titles and the Show and Sort controls.
func (d *DressesPage) CaptureBaseline(ctx context.Context) (Baseline, error) {
	titles, err := d.Titles(ctx)
	if err != nil {
		return Baseline{}, err
	}
	b := Baseline{Titles: titles, Count: len(titles)}
	controls := d.s.Page.Locator("main, #main, [role=main]").First()
	if show := controls.Locator("text=Show:").Locator("xpath=..").First(); count(show) > 0 {
		t, _ := text(ctx, show)
		b.ShowText = squash(t)
	}
	if sort := controls.Locator("text=Sort:").Locator("xpath=..").First(); count(sort) > 0 {
		t, _ := text(ctx, sort)
		b.SortText = squash(t)
	}
	return b, nil
}
