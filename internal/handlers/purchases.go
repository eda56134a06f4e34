package handlers

import (
	"net/http"

	"raffle-marketplace-platform/internal/middleware"
	"raffle-marketplace-platform/internal/services"
)

// PurchaseHandler handles ticket purchases, confirmations, refunds and
// wallet movements
type PurchaseHandler struct {
	purchases *services.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchases *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

type purchaseRequest struct {
	RaffleID      int    `json:"raffle_id"`
	TicketNumbers []int  `json:"ticket_numbers"`
	PaymentMethod string `json:"payment_method"`
}

// Purchase handles POST /api/purchases
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RaffleID <= 0 || len(req.TicketNumbers) == 0 {
		writeError(w, http.StatusBadRequest, "raffle_id and ticket_numbers are required")
		return
	}

	transaction, err := h.purchases.Purchase(req.RaffleID, req.TicketNumbers, user, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

// Confirm handles POST /api/purchases/{id}/confirm. Called by the payment
// gateway webhook once a charge settles.
func (h *PurchaseHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	transactionID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.purchases.Confirm(transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

// Refund handles POST /api/purchases/{id}/refund
func (h *PurchaseHandler) Refund(w http.ResponseWriter, r *http.Request) {
	transactionID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.purchases.Refund(transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

// Fail handles POST /api/purchases/{id}/fail. Called by the payment gateway
// webhook when a pending charge is declined or times out.
func (h *PurchaseHandler) Fail(w http.ResponseWriter, r *http.Request) {
	transactionID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.purchases.Fail(transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

type walletRequest struct {
	Amount        int    `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

// Deposit handles POST /api/wallet/deposit
func (h *PurchaseHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.purchases.Deposit(user, req.Amount, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

// Withdraw handles POST /api/wallet/withdraw
func (h *PurchaseHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.purchases.Withdraw(user, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

// Get handles GET /api/purchases/{id}
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	transactionID, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.purchases.GetTransaction(transactionID, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

// List handles GET /api/purchases
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	transactions, err := h.purchases.ListUserTransactions(user, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
	})
}
