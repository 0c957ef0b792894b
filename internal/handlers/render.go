package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/money"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Theme names
const (
	ThemeCurrent = "current"
	ThemeLegacy  = "legacy"
)

// Crumb is one breadcrumb entry; the last one has no URL
type Crumb struct {
	Name string
	URL  string
}

// MenuItem is a header menu entry; entries with children render as a dropdown
type MenuItem struct {
	Name     string
	URL      string
	Children []MenuItem
}

// Card is one product tile of a listing
type Card struct {
	Name  string
	URL   string
	Price string
}

// Grid is a product listing in the active theme
type Grid struct {
	Legacy bool
	Cards  []Card
}

// PageData is the root value of every rendered page
type PageData struct {
	Title         string
	Theme         string
	RenderDelayMs int64
	User          *models.User
	CartUnits     int
	CartTotal     int64
	Menu          []MenuItem
	Flashes       []Flash
	Breadcrumbs   []Crumb
	Page          any
}

// Legacy reports whether the older markup generation is rendered
func (d PageData) Legacy() bool {
	return d.Theme == ThemeLegacy
}

// Money formats minor units the way the active theme does
func (d PageData) Money(minor int64) string {
	if d.Legacy() {
		return money.FormatMinor(minor, money.SymbolLast)
	}
	return money.FormatEUR(minor)
}

// Grid lays products out as listing tiles with theme formatted prices
func (d PageData) Grid(products []models.Product) Grid {
	g := Grid{Legacy: d.Legacy(), Cards: make([]Card, 0, len(products))}
	for _, p := range products {
		g.Cards = append(g.Cards, Card{Name: p.Name, URL: "/products/" + p.Slug, Price: d.Money(p.Price)})
	}
	return g
}

// Renderer executes the embedded page templates inside the shared layout
type Renderer struct {
	pages        map[string]*template.Template
	defaultTheme string
	renderDelay  time.Duration
	logger       *zap.Logger
}

// NewRenderer parses layout.html plus every page template
func NewRenderer(defaultTheme string, renderDelay time.Duration, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	funcs := template.FuncMap{
		"optionValue": models.OptionValue,
		"add":         func(a, b int) int { return a + b },
		"lower":       strings.ToLower,
	}
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "layout" {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, defaultTheme: defaultTheme, renderDelay: renderDelay, logger: logger}, nil
}

// Theme picks the markup generation: ?theme= wins and sticks via cookie
func (rd *Renderer) Theme(w http.ResponseWriter, r *http.Request) string {
	if t := r.URL.Query().Get("theme"); t == ThemeCurrent || t == ThemeLegacy {
		http.SetCookie(w, &http.Cookie{Name: themeCookieName, Value: t, Path: "/"})
		return t
	}
	if c, err := r.Cookie(themeCookieName); err == nil && (c.Value == ThemeCurrent || c.Value == ThemeLegacy) {
		return c.Value
	}
	return rd.defaultTheme
}

// Render writes page with the given status. Output is buffered so a failing
// template still produces a clean 500.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	t, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown template", zap.String("page", page))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.RenderDelayMs = rd.renderDelay.Milliseconds()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		rd.logger.Error("failed to render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// StaticHandler serves the embedded script and stylesheet under /static/
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
