package handlers

import (
	"net/http"

	"raffle-marketplace-platform/internal/middleware"
	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/services"
)

// DrawHandler handles draw scheduling, execution, verification and audit
type DrawHandler struct {
	draws *services.DrawService
}

// NewDrawHandler creates a new draw handler
func NewDrawHandler(draws *services.DrawService) *DrawHandler {
	return &DrawHandler{draws: draws}
}

// Schedule handles POST /api/raffles/{id}/draws
func (h *DrawHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.DrawScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draw, err := h.draws.Schedule(raffleID, &req, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, draw)
}

// ListByRaffle handles GET /api/raffles/{id}/draws
func (h *DrawHandler) ListByRaffle(w http.ResponseWriter, r *http.Request) {
	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draws, err := h.draws.ListByRaffle(raffleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"draws": draws})
}

// Get handles GET /api/draws/{id}
func (h *DrawHandler) Get(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draw, err := h.draws.Get(drawID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draw)
}

// Execute handles POST /api/draws/{id}/execute
func (h *DrawHandler) Execute(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draw, err := h.draws.Execute(drawID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draw)
}

// Cancel handles POST /api/draws/{id}/cancel
func (h *DrawHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	drawID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.draws.Cancel(drawID, user); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type verifyRequest struct {
	Notes string `json:"notes"`
}

// Verify handles POST /api/draws/{id}/verify
func (h *DrawHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	drawID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draw, err := h.draws.Verify(drawID, user, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draw)
}

// Audit handles GET /api/draws/{id}/audit. The report is public so anyone
// can recompute the winner from the committed seed.
func (h *DrawHandler) Audit(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.draws.Audit(drawID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
