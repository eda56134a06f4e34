package handlers

import (
	"net/http"

	"raffle-marketplace-platform/internal/middleware"
	"raffle-marketplace-platform/internal/services"
)

// AdminHandler handles moderation and admin-only endpoints
type AdminHandler struct {
	raffles *services.RaffleService
	users   *services.UserService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(raffles *services.RaffleService, users *services.UserService) *AdminHandler {
	return &AdminHandler{
		raffles: raffles,
		users:   users,
	}
}

type moderationRequest struct {
	Notes string `json:"notes"`
}

// ApproveRaffle handles POST /api/admin/raffles/{id}/approve
func (h *AdminHandler) ApproveRaffle(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req moderationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raffle, err := h.raffles.Approve(raffleID, req.Notes, admin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raffle)
}

// RejectRaffle handles POST /api/admin/raffles/{id}/reject
func (h *AdminHandler) RejectRaffle(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req moderationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raffle, err := h.raffles.Reject(raffleID, req.Notes, admin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raffle)
}

// ToggleFeatured handles POST /api/admin/raffles/{id}/feature
func (h *AdminHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	featured, err := h.raffles.ToggleFeatured(raffleID, admin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"raffle_id":   raffleID,
		"is_featured": featured,
	})
}

// CompleteRaffle handles POST /api/admin/raffles/{id}/complete
func (h *AdminHandler) CompleteRaffle(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.raffles.Complete(raffleID, admin); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type verifyUserRequest struct {
	Verified bool `json:"verified"`
}

// VerifyUser handles POST /api/admin/users/{id}/verify
func (h *AdminHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUserFromContext(r.Context())

	userID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req verifyUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.SetVerified(userID, req.Verified, admin); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
