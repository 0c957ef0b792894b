package handlers

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/config"
	"go.uber.org/zap/zaptest"
)

// shopClient drives a fixture shop over HTTP and keeps the session cookie
type shopClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newShopClient(t *testing.T, cfg config.ServerConfig) *shopClient {
	t.Helper()

	shop, err := NewStorefront(Options{Config: cfg, Logger: zaptest.NewLogger(t)})
	if err != nil {
		t.Fatalf("Failed to create storefront: %v", err)
	}
	srv := httptest.NewServer(shop.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &shopClient{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *shopClient) do(req *http.Request) (int, string) {
	c.t.Helper()
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("Failed to read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func (c *shopClient) get(path string) (int, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		c.t.Fatalf("Failed to create request: %v", err)
	}
	return c.do(req)
}

func (c *shopClient) post(path string, form url.Values) (int, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// addToCart posts the product page form
func (c *shopClient) addToCart(slug string, qty string) (int, string) {
	c.t.Helper()
	return c.post("/cart/add", url.Values{
		"sylius_shop_add_to_cart[cartItem][product]":  {slug},
		"sylius_shop_add_to_cart[cartItem][quantity]": {qty},
	})
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, content := range want {
		if !strings.Contains(body, content) {
			t.Errorf("expected response to contain '%s', but it was not found", content)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, content := range unwanted {
		if strings.Contains(body, content) {
			t.Errorf("expected response not to contain '%s'", content)
		}
	}
}

func TestStorefront_Pages(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		checkContent   []string
	}{
		{
			name:           "home page",
			path:           "/",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"Fashion Plus Web Store", `href="/login"`, `href="/register"`, `aria-label="cart button"`, "View and edit cart", `id="info-box"`},
		},
		{
			name:           "header menu",
			path:           "/",
			expectedStatus: http.StatusOK,
			checkContent:   []string{`data-bs-toggle="dropdown"`, ">Caps</button>", `href="/taxons/fashion-category/caps/simple">Simple</a>`, `href="/taxons/fashion-category/dresses">Dresses</a>`},
		},
		{
			name:           "category page",
			path:           "/taxons/fashion-category/caps/simple",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"<h1>Simple</h1>", "Go level up", "products-grid", "Beautiful cap for woman", "€45.99", "€1,234.56", "Sort: Default"},
		},
		{
			name:           "category alias without root segment",
			path:           "/taxons/caps/simple",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"<h1>Simple</h1>"},
		},
		{
			name:           "legacy theme",
			path:           "/taxons/caps/simple?theme=legacy",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"ui breadcrumb", "ui three doubling cards", "45,99 €", "1.234,56 €"},
		},
		{
			name:           "unknown category",
			path:           "/taxons/fashion-category/hats",
			expectedStatus: http.StatusNotFound,
			checkContent:   []string{"The page you are looking for does not exist."},
		},
		{
			name:           "unknown route",
			path:           "/nowhere",
			expectedStatus: http.StatusNotFound,
			checkContent:   []string{"The page you are looking for does not exist."},
		},
		{
			name:           "empty cart",
			path:           "/cart",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"Your shopping cart", "Your cart is empty"},
		},
		{
			name:           "checkout with empty cart goes back to cart",
			path:           "/checkout/address",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"Your cart is empty"},
		},
		{
			name:           "static script",
			path:           "/static/storefront.js",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"data-render-delay"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newShopClient(t, config.ServerConfig{})

			status, body := c.get(tt.path)

			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			assertContains(t, body, tt.checkContent...)
		})
	}
}

func TestStorefront_ThemeSticksViaCookie(t *testing.T) {
	c := newShopClient(t, config.ServerConfig{})

	c.get("/?theme=legacy")
	_, body := c.get("/taxons/caps/simple")
	assertContains(t, body, `data-theme="legacy"`, "45,99 €")

	c.get("/?theme=current")
	_, body = c.get("/taxons/caps/simple")
	assertContains(t, body, `data-theme="current"`, "€45.99")
}

func TestStorefront_RenderDelayIsPublished(t *testing.T) {
	c := newShopClient(t, config.ServerConfig{RenderDelay: 250 * time.Millisecond})

	_, body := c.get("/")
	assertContains(t, body, `data-render-delay="250"`)
}

func TestStorefront_Breadcrumbs(t *testing.T) {
	s, err := NewStorefront(Options{})
	if err != nil {
		t.Fatalf("Failed to create storefront: %v", err)
	}

	crumbs := s.crumbs("fashion-category/caps/simple")
	want := []Crumb{
		{Name: "Home", URL: "/"},
		{Name: "Fashion Category", URL: "/taxons/fashion-category"},
		{Name: "Caps", URL: "/taxons/fashion-category/caps"},
		{Name: "Simple", URL: "/taxons/fashion-category/caps/simple"},
	}
	if len(crumbs) != len(want) {
		t.Fatalf("expected %d crumbs, got %d: %v", len(want), len(crumbs), crumbs)
	}
	for i := range want {
		if crumbs[i] != want[i] {
			t.Errorf("crumb %d: expected %v, got %v", i, want[i], crumbs[i])
		}
	}
}

func TestStorefront_Menu(t *testing.T) {
	s, err := NewStorefront(Options{})
	if err != nil {
		t.Fatalf("Failed to create storefront: %v", err)
	}

	menu := s.menu()
	if len(menu) != 2 {
		t.Fatalf("expected 2 menu entries, got %d", len(menu))
	}
	if menu[0].Name != "Caps" || len(menu[0].Children) != 1 || menu[0].Children[0].Name != "Simple" {
		t.Errorf("unexpected caps entry: %+v", menu[0])
	}
	if menu[1].Name != "Dresses" || len(menu[1].Children) != 0 {
		t.Errorf("unexpected dresses entry: %+v", menu[1])
	}
}
