package pages

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/playwright-community/playwright-go"
)

var errNoElement = errors.New("no element matches")

// node is what a selector path matches on the fake page.
type node struct {
	count  int
	after  time.Duration // not rendered before this much time passed
	hidden bool
	text   string
	texts  []string
	value  string
}

// fakePage stands in for a browser page. Locators are reduced to selector
// paths such as ".order-summary >> .. >> div", and every query looks the
// path up in nodes at the time it runs, so the page can change between
// attempts of a wait.
type fakePage struct {
	playwright.Page

	mu      sync.Mutex
	start   time.Time
	url     string
	nodes   map[string]node
	onClick map[string]func(*fakePage)
	onEvent map[string]func(*fakePage)
	clicked []string
}

func newFakePage(url string, nodes map[string]node) *fakePage {
	if nodes == nil {
		nodes = map[string]node{}
	}
	return &fakePage{
		start:   time.Now(),
		url:     url,
		nodes:   nodes,
		onClick: map[string]func(*fakePage){},
		onEvent: map[string]func(*fakePage){},
	}
}

// newFakeSession wires page into a session with short policies.
func newFakeSession(t *testing.T, page *fakePage) *Session {
	t.Helper()
	s := newTestSession(t, "http://shop.test/")
	s.Page = page
	s.Policy = poll.Policy{Timeout: 2 * time.Second, Intervals: []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}}
	s.Soft = poll.Policy{Timeout: 300 * time.Millisecond, Intervals: []time.Duration{10 * time.Millisecond}}
	return s
}

// set replaces the node at path.
func (p *fakePage) set(path string, n node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodes[path] = n
}

func (p *fakePage) remove(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.nodes, path)
}

// lookup returns the node at path if it has rendered by now.
func (p *fakePage) lookup(path string) (node, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[path]
	if !ok || n.count == 0 || time.Since(p.start) < n.after {
		return node{}, false
	}
	return n, true
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *fakePage) Locator(selector string, _ ...playwright.PageLocatorOptions) playwright.Locator {
	return p.at(selector)
}

func (p *fakePage) GetByRole(role playwright.AriaRole, options ...playwright.PageGetByRoleOptions) playwright.Locator {
	var name interface{}
	if len(options) > 0 {
		name = options[0].Name
	}
	return p.at(rolePath(role, name))
}

func (p *fakePage) GetByText(text interface{}, _ ...playwright.PageGetByTextOptions) playwright.Locator {
	return p.at("text=" + fmt.Sprint(text))
}

func (p *fakePage) GetByLabel(text interface{}, _ ...playwright.PageGetByLabelOptions) playwright.Locator {
	return p.at("label=" + fmt.Sprint(text))
}

func (p *fakePage) at(path string) *fakeLocator {
	return &fakeLocator{page: p, path: path}
}

func rolePath(role playwright.AriaRole, name interface{}) string {
	if name == nil {
		return "role=" + string(role)
	}
	return fmt.Sprintf("role=%s[%v]", role, name)
}

// locatorAPI lets fakeLocator embed the interface and still define Locator.
type locatorAPI interface{ playwright.Locator }

// fakeLocator is a selector path on a fakePage. First, Last, Nth and Filter
// keep the path.
type fakeLocator struct {
	locatorAPI

	page   *fakePage
	path   string
	single bool
}

func (l *fakeLocator) child(sel string) *fakeLocator {
	return &fakeLocator{page: l.page, path: l.path + " >> " + sel}
}

func (l *fakeLocator) one() *fakeLocator {
	return &fakeLocator{page: l.page, path: l.path, single: true}
}

func (l *fakeLocator) First() playwright.Locator { return l.one() }
func (l *fakeLocator) Last() playwright.Locator  { return l.one() }
func (l *fakeLocator) Nth(int) playwright.Locator {
	return l.one()
}

func (l *fakeLocator) Filter(...playwright.LocatorFilterOptions) playwright.Locator {
	return &fakeLocator{page: l.page, path: l.path, single: l.single}
}

func (l *fakeLocator) Locator(sel interface{}, _ ...playwright.LocatorLocatorOptions) playwright.Locator {
	return l.child(fmt.Sprint(sel))
}

func (l *fakeLocator) GetByText(text interface{}, _ ...playwright.LocatorGetByTextOptions) playwright.Locator {
	return l.child("text=" + fmt.Sprint(text))
}

func (l *fakeLocator) GetByLabel(text interface{}, _ ...playwright.LocatorGetByLabelOptions) playwright.Locator {
	return l.child("label=" + fmt.Sprint(text))
}

func (l *fakeLocator) GetByRole(role playwright.AriaRole, options ...playwright.LocatorGetByRoleOptions) playwright.Locator {
	var name interface{}
	if len(options) > 0 {
		name = options[0].Name
	}
	return l.child(rolePath(role, name))
}

func (l *fakeLocator) Count() (int, error) {
	n, ok := l.page.lookup(l.path)
	if !ok {
		return 0, nil
	}
	if l.single {
		return 1, nil
	}
	return n.count, nil
}

func (l *fakeLocator) IsVisible(...playwright.LocatorIsVisibleOptions) (bool, error) {
	n, ok := l.page.lookup(l.path)
	return ok && !n.hidden, nil
}

func (l *fakeLocator) TextContent(...playwright.LocatorTextContentOptions) (string, error) {
	n, ok := l.page.lookup(l.path)
	if !ok {
		return "", fmt.Errorf("%w: %s", errNoElement, l.path)
	}
	return n.text, nil
}

func (l *fakeLocator) AllTextContents() ([]string, error) {
	n, ok := l.page.lookup(l.path)
	if !ok {
		return nil, nil
	}
	return n.texts, nil
}

func (l *fakeLocator) InputValue(...playwright.LocatorInputValueOptions) (string, error) {
	n, ok := l.page.lookup(l.path)
	if !ok {
		return "", fmt.Errorf("%w: %s", errNoElement, l.path)
	}
	return n.value, nil
}

func (l *fakeLocator) Fill(value string, _ ...playwright.LocatorFillOptions) error {
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	n, ok := l.page.nodes[l.path]
	if !ok || n.count == 0 {
		return fmt.Errorf("%w: %s", errNoElement, l.path)
	}
	n.value = value
	l.page.nodes[l.path] = n
	return nil
}

func (l *fakeLocator) Click(...playwright.LocatorClickOptions) error {
	if _, ok := l.page.lookup(l.path); !ok {
		return fmt.Errorf("%w: %s", errNoElement, l.path)
	}
	l.page.mu.Lock()
	l.page.clicked = append(l.page.clicked, l.path)
	hook := l.page.onClick[l.path]
	l.page.mu.Unlock()
	if hook != nil {
		hook(l.page)
	}
	return nil
}

func (l *fakeLocator) DispatchEvent(typ string, _ interface{}, _ ...playwright.LocatorDispatchEventOptions) error {
	if _, ok := l.page.lookup(l.path); !ok {
		return fmt.Errorf("%w: %s", errNoElement, l.path)
	}
	l.page.mu.Lock()
	hook := l.page.onEvent[typ+" "+l.path]
	l.page.mu.Unlock()
	if hook != nil {
		hook(l.page)
	}
	return nil
}
