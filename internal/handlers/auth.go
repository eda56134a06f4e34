package handlers

import (
	"net/http"

	"raffle-marketplace-platform/internal/middleware"
	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/services"

	"github.com/gorilla/sessions"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	users *services.UserService
	store sessions.Store
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(users *services.UserService, store sessions.Store) *AuthHandler {
	return &AuthHandler{
		users: users,
		store: store,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		// A corrupt cookie still yields a fresh session
		session, _ = h.store.New(r, middleware.SessionName)
	}
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err == nil {
		delete(session.Values, "user_id")
		session.Options.MaxAge = -1
		_ = session.Save(r, w)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
