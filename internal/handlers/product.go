package handlers

import (
	"net/http"

	"github.com/adyen/storefront-e2e/internal/models"
)

// Option is a rendered <option> of a variant select
type Option struct {
	Label string
	Value string
}

// ProductData represents the data for the product template
type ProductData struct {
	Product models.Product
	Sizes   []Option
	Heights []Option
}

// ProductHandler handles the product page requests
type ProductHandler struct {
	s *Storefront
}

// ServeHTTP handles GET /products/{slug}
func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	product, ok := h.s.catalog.Product(r.PathValue("slug"))
	if !ok {
		h.s.notFound(w, r)
		return
	}

	data := h.s.page(w, r, product.Name)
	data.Breadcrumbs = append(h.s.crumbs(product.Taxon), Crumb{Name: product.Name})

	page := ProductData{Product: product}
	for _, s := range product.Sizes {
		page.Sizes = append(page.Sizes, Option{Label: s, Value: models.OptionValue("size", s)})
	}
	for _, ht := range product.Heights {
		page.Heights = append(page.Heights, Option{Label: ht, Value: models.OptionValue("height", ht)})
	}
	data.Page = page
	h.s.renderer.Render(w, http.StatusOK, "product", data)
}

// labelFor maps a submitted option value back to its label
func labelFor(kind string, labels []string, value string) (string, bool) {
	for _, l := range labels {
		if models.OptionValue(kind, l) == value {
			return l, true
		}
	}
	return "", false
}
