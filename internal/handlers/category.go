package handlers

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/adyen/storefront-e2e/internal/models"
)

const searchParam = "criteria[search][value]"

// SortOption is one entry of the "Sort:" dropdown
type SortOption struct {
	Label string
	Field string
	Dir   string
}

// SortOptions lists the orderings the category page offers
func SortOptions() []SortOption {
	return []SortOption{
		{Label: "From A to Z", Field: "name", Dir: "asc"},
		{Label: "From Z to A", Field: "name", Dir: "desc"},
		{Label: "Newest first", Field: "createdAt", Dir: "desc"},
		{Label: "Oldest first", Field: "createdAt", Dir: "asc"},
		{Label: "Cheapest first", Field: "price", Dir: "asc"},
		{Label: "Most expensive first", Field: "price", Dir: "desc"},
	}
}

// Param returns the query key of the option, e.g. "sorting[price]"
func (o SortOption) Param() string {
	return "sorting[" + o.Field + "]"
}

// SortLink is a rendered dropdown entry
type SortLink struct {
	Label  string
	URL    string
	Active bool
}

// CategoryData represents the data for the category template
type CategoryData struct {
	Taxon     models.Taxon
	Parent    *models.Taxon
	Children  []models.Taxon
	Products  []models.Product
	Search    string
	SortLabel string
	SortLinks []SortLink
	// Hidden keeps the active sorting when the search form is submitted
	Hidden   map[string]string
	ClearURL string
}

// CategoryHandler renders taxon listings with search and sorting
type CategoryHandler struct {
	s *Storefront
}

// ServeHTTP handles GET /taxons/{path...}
func (h *CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	taxon, ok := h.s.catalog.Taxon(r.PathValue("path"))
	if !ok {
		h.s.notFound(w, r)
		return
	}

	q := r.URL.Query()
	search := strings.TrimSpace(q.Get(searchParam))
	active, sorted := activeSort(q)

	products := h.s.catalog.InTaxon(taxon.Path, search)
	sortProducts(products, active, sorted)

	data := h.s.page(w, r, taxon.Name)
	data.Breadcrumbs = h.s.crumbs(taxon.Path)

	page := CategoryData{
		Taxon:     taxon,
		Products:  products,
		Search:    search,
		SortLabel: "Default",
		Hidden:    map[string]string{},
	}
	if sorted {
		page.SortLabel = active.Label
		page.Hidden[active.Param()] = active.Dir
	}
	if parent, ok := h.s.catalog.Taxon(taxon.Parent); ok && parent.Parent != "" {
		page.Parent = &parent
	}
	for _, c := range taxon.Children {
		if child, ok := h.s.catalog.Taxon(c); ok {
			page.Children = append(page.Children, child)
		}
	}

	base := r.URL.Path
	for _, o := range SortOptions() {
		v := url.Values{}
		v.Set(o.Param(), o.Dir)
		if search != "" {
			v.Set(searchParam, search)
		}
		page.SortLinks = append(page.SortLinks, SortLink{
			Label:  o.Label,
			URL:    base + "?" + v.Encode(),
			Active: sorted && o == active,
		})
	}
	page.ClearURL = base
	if sorted {
		v := url.Values{}
		v.Set(active.Param(), active.Dir)
		page.ClearURL = base + "?" + v.Encode()
	}

	data.Page = page
	h.s.renderer.Render(w, http.StatusOK, "category", data)
}

func activeSort(q url.Values) (SortOption, bool) {
	for _, o := range SortOptions() {
		if strings.EqualFold(q.Get(o.Param()), o.Dir) {
			return o, true
		}
	}
	return SortOption{}, false
}

func sortProducts(products []models.Product, o SortOption, sorted bool) {
	if !sorted {
		return
	}
	less := func(a, b models.Product) bool {
		switch o.Field {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "price":
			return a.Price < b.Price
		default:
			return a.Position < b.Position
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		if o.Dir == "desc" {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}
