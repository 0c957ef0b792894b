package handlers

import "net/http"

// ConfirmationData represents the data for the thank-you template
type ConfirmationData struct {
	OrderNumber string
}

// ConfirmationHandler renders the page shown after an order was placed
type ConfirmationHandler struct {
	s *Storefront
}

// ServeHTTP handles GET /order/thank-you
func (h *ConfirmationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := h.s.sessions.ID(w, r)
	number := h.s.sessions.LastOrder(id)
	if number == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := h.s.page(w, r, "Thank you!")
	data.Page = ConfirmationData{OrderNumber: number}
	h.s.renderer.Render(w, http.StatusOK, "thank_you", data)
}
