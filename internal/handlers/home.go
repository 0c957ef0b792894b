package handlers

import (
	"net/http"

	"github.com/adyen/storefront-e2e/internal/models"
)

// HomeHandler renders the shop front page
type HomeHandler struct {
	s *Storefront
}

// HomeData represents the data for the home template
type HomeData struct {
	Featured []models.Product
}

// ServeHTTP handles the GET / request
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := h.s.page(w, r, "Fashion Plus Web Store")
	featured := h.s.catalog.Products
	if len(featured) > 4 {
		featured = featured[:4]
	}
	data.Page = HomeData{Featured: featured}
	h.s.renderer.Render(w, http.StatusOK, "home", data)
}
