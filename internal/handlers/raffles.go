package handlers

import (
	"net/http"

	"raffle-marketplace-platform/internal/middleware"
	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/repositories"
	"raffle-marketplace-platform/internal/services"
)

// RaffleHandler handles raffle listing, creation and lifecycle endpoints
type RaffleHandler struct {
	raffles   *services.RaffleService
	inventory *services.InventoryService
}

// NewRaffleHandler creates a new raffle handler
func NewRaffleHandler(raffles *services.RaffleService, inventory *services.InventoryService) *RaffleHandler {
	return &RaffleHandler{
		raffles:   raffles,
		inventory: inventory,
	}
}

// raffleListResponse is the paginated body returned by List
type raffleListResponse struct {
	Raffles []*models.Raffle `json:"raffles"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// List handles GET /api/raffles
func (h *RaffleHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repositories.RaffleSearchFilters{
		Status:    models.RaffleStatus(r.URL.Query().Get("status")),
		CreatorID: queryInt(r, "creator_id", 0),
		Limit:     queryInt(r, "limit", 20),
		Offset:    queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("featured"); raw != "" {
		featured := raw == "true"
		filters.Featured = &featured
	}

	raffles, total, err := h.raffles.Search(filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raffleListResponse{
		Raffles: raffles,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	})
}

// Get handles GET /api/raffles/{id}
func (h *RaffleHandler) Get(w http.ResponseWriter, r *http.Request) {
	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raffle, err := h.raffles.Get(raffleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raffle)
}

// Availability handles GET /api/raffles/{id}/availability
func (h *RaffleHandler) Availability(w http.ResponseWriter, r *http.Request) {
	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	numbers, err := h.inventory.AvailableNumbers(raffleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"raffle_id":         raffleID,
		"available_numbers": numbers,
	})
}

// Create handles POST /api/raffles
func (h *RaffleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.RaffleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raffle, err := h.raffles.Create(&req, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, raffle)
}

// Update handles PUT /api/raffles/{id}
func (h *RaffleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.RaffleUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raffle, err := h.raffles.Update(raffleID, &req, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raffle)
}

// Delete handles DELETE /api/raffles/{id}
func (h *RaffleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.raffles.Delete(raffleID, user); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /api/raffles/{id}/submit
func (h *RaffleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.raffles.SubmitForApproval(raffleID, user); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Cancel handles POST /api/raffles/{id}/cancel
func (h *RaffleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	raffleID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.raffles.Cancel(raffleID, user); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
