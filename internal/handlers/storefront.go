package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
	"github.com/adyen/storefront-e2e/internal/services"
	"go.uber.org/zap"
)

// Storefront is the fixture shop the page objects are exercised against. It
// reproduces two markup generations of one catalog and re-renders parts of
// its pages asynchronously.
type Storefront struct {
	catalog  *models.Catalog
	carts    services.CartService
	accounts *services.AccountService
	demoUser models.User
	sessions *SessionStore
	renderer *Renderer
	config   config.ServerConfig
	logger   *zap.Logger
}

// Options configures NewStorefront. Zero values get in-memory defaults.
type Options struct {
	Config   config.ServerConfig
	Catalog  *models.Catalog
	Carts    services.CartService
	Accounts *services.AccountService
	// DemoUser is the account advertised in the login page banner.
	DemoUser models.User
	Logger   *zap.Logger
}

// DefaultDemoUser is the account the demo shop advertises
func DefaultDemoUser() models.User {
	return models.User{
		FirstName: "Fashion",
		LastName:  "Shopper",
		Email:     "fashion@example.com",
		Password:  "sylius",
	}
}

// NewStorefront builds the fixture shop
func NewStorefront(opts Options) (*Storefront, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = models.DefaultCatalog()
	}
	if opts.Carts == nil {
		opts.Carts = services.NewCartService(repository.NewCartStore(), opts.Catalog)
	}
	if opts.DemoUser.Email == "" {
		opts.DemoUser = DefaultDemoUser()
	}
	if opts.Accounts == nil {
		opts.Accounts = services.NewAccountService(repository.NewAccountStore(opts.DemoUser))
	}
	if opts.Config.Theme == "" {
		opts.Config.Theme = ThemeCurrent
	}

	renderer, err := NewRenderer(opts.Config.Theme, opts.Config.RenderDelay, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Storefront{
		catalog:  opts.Catalog,
		carts:    opts.Carts,
		accounts: opts.Accounts,
		demoUser: opts.DemoUser,
		sessions: NewSessionStore(),
		renderer: renderer,
		config:   opts.Config,
		logger:   opts.Logger,
	}, nil
}

// Handler returns the routed, request-logging shop handler
func (s *Storefront) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/{$}", &HomeHandler{s})
	mux.Handle("/taxons/{path...}", &CategoryHandler{s})
	mux.Handle("/products/{slug}", &ProductHandler{s})

	cart := &CartHandler{s}
	mux.Handle("/cart", cart)
	mux.HandleFunc("POST /cart/add", cart.Add)
	mux.HandleFunc("POST /cart/items/{index}/quantity", cart.SetQuantity)
	mux.HandleFunc("POST /cart/items/{index}/remove", cart.Remove)
	mux.HandleFunc("POST /cart/clear", cart.Clear)

	mux.Handle("/checkout/{step}", &CheckoutHandler{s})
	mux.Handle("/order/thank-you", &ConfirmationHandler{s})

	account := &AccountHandler{s}
	mux.HandleFunc("/login", account.Login)
	mux.HandleFunc("/logout", account.Logout)
	mux.HandleFunc("/register", account.Register)
	mux.HandleFunc("/register/thank-you", account.Registered)
	mux.HandleFunc("/forgotten-password", account.ForgottenPassword)
	mux.HandleFunc("/account", account.Dashboard)

	mux.Handle("/api/v2/shop/products", &ProductsAPIHandler{s})
	mux.Handle("/static/", StaticHandler())
	mux.Handle("/", &FailureHandler{s})

	return s.logRequests(mux)
}

// page assembles the layout data shared by every HTML page
func (s *Storefront) page(w http.ResponseWriter, r *http.Request, title string) PageData {
	id := s.sessions.ID(w, r)
	data := PageData{
		Title:   title,
		Theme:   s.renderer.Theme(w, r),
		User:    s.sessions.User(id),
		Flashes: s.sessions.PopFlashes(id),
		Menu:    s.menu(),
	}
	if c, err := s.carts.Cart(id); err == nil {
		data.CartUnits = c.Units()
		data.CartTotal = c.ItemsTotal()
	}
	return data
}

func (s *Storefront) menu() []MenuItem {
	root, ok := s.catalog.Taxon("fashion-category")
	if !ok {
		return nil
	}
	var item func(path string) (MenuItem, bool)
	item = func(path string) (MenuItem, bool) {
		t, ok := s.catalog.Taxon(path)
		if !ok {
			return MenuItem{}, false
		}
		m := MenuItem{Name: t.Name, URL: "/taxons/" + t.Path}
		for _, c := range t.Children {
			if child, ok := item(c); ok {
				m.Children = append(m.Children, child)
			}
		}
		return m, true
	}
	var out []MenuItem
	for _, path := range root.Children {
		if m, ok := item(path); ok {
			out = append(out, m)
		}
	}
	return out
}

// crumbs builds Home > ancestors > taxon for a taxon path
func (s *Storefront) crumbs(path string) []Crumb {
	var chain []models.Taxon
	for p := path; p != ""; {
		t, ok := s.catalog.Taxon(p)
		if !ok {
			break
		}
		chain = append([]models.Taxon{t}, chain...)
		p = t.Parent
	}
	out := []Crumb{{Name: "Home", URL: "/"}}
	for _, t := range chain {
		out = append(out, Crumb{Name: t.Name, URL: "/taxons/" + t.Path})
	}
	return out
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Storefront) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if r.URL.Path == "/favicon.ico" || strings.HasPrefix(r.URL.Path, "/static/") {
			return
		}
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.RequestURI()),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
