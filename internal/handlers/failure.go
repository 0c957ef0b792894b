package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// FailureHandler renders the shop's error pages. Mounted at "/" it answers
// every unknown route with the not-found page.
type FailureHandler struct {
	s *Storefront
}

// FailureData represents the data for the error template
type FailureData struct {
	Status  int
	Message string
}

// ServeHTTP handles unknown routes
func (h *FailureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.s.notFound(w, r)
}

func (s *Storefront) notFound(w http.ResponseWriter, r *http.Request) {
	data := s.page(w, r, "Page not found")
	data.Page = FailureData{Status: http.StatusNotFound, Message: getFailureMessage(http.StatusNotFound)}
	s.renderer.Render(w, http.StatusNotFound, "error", data)
}

func (s *Storefront) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	data := s.page(w, r, "Error")
	data.Page = FailureData{Status: http.StatusInternalServerError, Message: getFailureMessage(http.StatusInternalServerError)}
	s.renderer.Render(w, http.StatusInternalServerError, "error", data)
}

// getFailureMessage returns the text the demo shop shows for a status
func getFailureMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "The page you are looking for does not exist."
	default:
		return "Unexpected error occurred."
	}
}
