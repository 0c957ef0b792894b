package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adyen/storefront-e2e/internal/models"
	"go.uber.org/zap"
)

// CartData represents the data for the cart template
type CartData struct {
	Cart     *models.Cart
	Shipping int64
}

// CartHandler renders the cart and applies cart form posts
type CartHandler struct {
	s *Storefront
}

// ServeHTTP handles GET /cart
func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := h.s.sessions.ID(w, r)
	cart, err := h.s.carts.Cart(id)
	if err != nil {
		h.s.serverError(w, r, err)
		return
	}

	data := h.s.page(w, r, "Your shopping cart")
	data.Page = CartData{Cart: cart, Shipping: cart.ShippingTotal()}
	h.s.renderer.Render(w, http.StatusOK, "cart", data)
}

// Add handles POST /cart/add from the product page form
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	id := h.s.sessions.ID(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if h.s.config.FlakyAdd && h.s.sessions.First(id, "cart/add") {
		h.s.serverError(w, r, errors.New("injected add-to-cart failure"))
		return
	}

	slug := r.PostFormValue("sylius_shop_add_to_cart[cartItem][product]")
	product, ok := h.s.catalog.Product(slug)
	if !ok {
		h.s.notFound(w, r)
		return
	}

	qty, err := strconv.Atoi(r.PostFormValue("sylius_shop_add_to_cart[cartItem][quantity]"))
	if err != nil {
		qty = 1
	}
	size := ""
	if len(product.Sizes) > 0 {
		v := r.PostFormValue("sylius_shop_add_to_cart[cartItem][variant][dress_size]")
		if size, ok = labelFor("size", product.Sizes, v); !ok {
			size = product.Sizes[0]
		}
	}

	if _, err := h.s.carts.AddItem(id, slug, size, qty); err != nil {
		if errors.Is(err, models.ErrInvalidQuantity) {
			h.s.sessions.AddFlash(id, Flash{Kind: "danger", Message: "Quantity must be at least 1."})
			http.Redirect(w, r, "/products/"+slug, http.StatusSeeOther)
			return
		}
		h.s.serverError(w, r, err)
		return
	}

	h.s.logger.Debug("item added to cart", zap.String("slug", slug), zap.Int("quantity", qty))
	h.s.sessions.AddFlash(id, Flash{Kind: "success", Message: "Item has been added to cart"})
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// SetQuantity handles POST /cart/items/{index}/quantity
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id := h.s.sessions.ID(w, r)
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	qty, err := strconv.Atoi(r.PostFormValue("sylius_shop_cart[items][" + r.PathValue("index") + "][quantity]"))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if _, err := h.s.carts.SetQuantity(id, index, qty); err != nil {
		if !errors.Is(err, models.ErrInvalidQuantity) && !errors.Is(err, models.ErrItemIndex) {
			h.s.serverError(w, r, err)
			return
		}
		h.s.sessions.AddFlash(id, Flash{Kind: "danger", Message: "Quantity must be at least 1."})
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Remove handles POST /cart/items/{index}/remove
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := h.s.sessions.ID(w, r)
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if _, err := h.s.carts.RemoveItem(id, index); err != nil && !errors.Is(err, models.ErrItemIndex) {
		h.s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Clear handles POST /cart/clear
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id := h.s.sessions.ID(w, r)
	if err := h.s.carts.Clear(id); err != nil {
		h.s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
