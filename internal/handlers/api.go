package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adyen/storefront-e2e/internal/models"
	"go.uber.org/zap"
)

// ProductResource is one product in the shop API collection
type ProductResource struct {
	ID          string            `json:"@id"`
	Type        string            `json:"@type"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Taxon       string            `json:"mainTaxon"`
	Options     map[string]string `json:"options,omitempty"`
}

// ProductCollection is a JSON-LD hydra collection of products
type ProductCollection struct {
	Context    string            `json:"@context"`
	ID         string            `json:"@id"`
	Type       string            `json:"@type"`
	Members    []ProductResource `json:"hydra:member"`
	TotalItems int               `json:"hydra:totalItems"`
}

// ProductsAPIHandler serves the product list of the shop API
type ProductsAPIHandler struct {
	s *Storefront
}

// ServeHTTP handles GET /api/v2/shop/products
func (h *ProductsAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	products := h.s.catalog.Products
	if taxon := r.URL.Query().Get("productTaxons.taxon.code"); taxon != "" {
		t, ok := h.s.catalog.Taxon(taxon)
		if !ok {
			sendErrorResponse(w, "Taxon not found", http.StatusNotFound)
			return
		}
		products = h.s.catalog.InTaxon(t.Path, "")
	}

	out := ProductCollection{
		Context: "/api/v2/contexts/Product",
		ID:      "/api/v2/shop/products",
		Type:    "hydra:Collection",
		Members: make([]ProductResource, 0, len(products)),
	}
	for _, p := range products {
		out.Members = append(out.Members, resourceOf(p))
	}
	out.TotalItems = len(out.Members)

	w.Header().Set("Content-Type", "application/ld+json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.s.logger.Error("failed to encode products", zap.Error(err))
	}
}

func resourceOf(p models.Product) ProductResource {
	res := ProductResource{
		ID:          "/api/v2/shop/products/" + p.Slug,
		Type:        "Product",
		Code:        p.Slug,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Taxon:       "/api/v2/shop/taxons/" + p.Taxon,
	}
	if len(p.Sizes) > 0 {
		res.Options = map[string]string{"dress_size": "/api/v2/shop/product-options/dress_size"}
	}
	if len(p.Heights) > 0 {
		if res.Options == nil {
			res.Options = map[string]string{}
		}
		res.Options["dress_height"] = "/api/v2/shop/product-options/dress_height"
	}
	return res
}
