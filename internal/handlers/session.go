package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "storefront_session"
	themeCookieName   = "storefront_theme"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Kind    string // bootstrap alert kind: success, info, danger
	Message string
}

type sessionState struct {
	user      *models.User
	flashes   []Flash
	lastOrder string
	seen      map[string]bool
}

// SessionStore keeps per-browser state keyed by a cookie
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionState)}
}

// ID returns the request's session ID, issuing a cookie on first visit
func (s *SessionStore) ID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	// Later reads in the same request see the new session
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: id})
	return id
}

func (s *SessionStore) state(id string) *sessionState {
	st, ok := s.sessions[id]
	if !ok {
		st = &sessionState{seen: make(map[string]bool)}
		s.sessions[id] = st
	}
	return st
}

// User returns the logged in user, or nil
func (s *SessionStore) User(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.state(id).user; u != nil {
		cp := *u
		return &cp
	}
	return nil
}

// SetUser logs a user in, or out when u is nil
func (s *SessionStore) SetUser(id string, u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(id).user = u
}

// AddFlash queues a message for the next page
func (s *SessionStore) AddFlash(id string, f Flash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(id)
	st.flashes = append(st.flashes, f)
}

// PopFlashes returns and clears queued messages
func (s *SessionStore) PopFlashes(id string) []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(id)
	out := st.flashes
	st.flashes = nil
	return out
}

// SetLastOrder remembers the order number shown on the thank-you page
func (s *SessionStore) SetLastOrder(id, number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(id).lastOrder = number
}

// LastOrder returns the most recent order number of the session
func (s *SessionStore) LastOrder(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(id).lastOrder
}

// First reports whether key is seen for the first time in this session
func (s *SessionStore) First(id, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(id)
	if st.seen[key] {
		return false
	}
	st.seen[key] = true
	return true
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
