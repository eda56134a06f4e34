package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"raffle-marketplace-platform/internal/models"

	"github.com/go-chi/chi/v5"
)

// errorResponse is the JSON body returned for all error statuses
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to do
		return
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service error to an HTTP status code
func writeServiceError(w http.ResponseWriter, err error) {
	var unavailable *models.TicketUnavailableError
	var invalidState *models.InvalidStateError
	var stateConflict *models.TransactionStateConflictError
	var external *models.ExternalFailureError

	switch {
	case errors.Is(err, models.ErrRaffleNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrTransactionNotFound),
		errors.Is(err, models.ErrDrawNotFound),
		errors.Is(err, models.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.As(err, &unavailable),
		errors.As(err, &invalidState),
		errors.As(err, &stateConflict),
		errors.Is(err, models.ErrRaffleNotActive),
		errors.Is(err, models.ErrDuplicateDraw),
		errors.Is(err, models.ErrNoEligibleTickets):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &external):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		// Unexpected errors carry storage detail that must not reach
		// the client.
		log.Printf("handler: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// urlParamInt extracts an integer URL parameter from the chi route context
func urlParamInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || value <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return value, nil
}

// queryInt parses an integer query parameter with a default value
func queryInt(r *http.Request, name string, defaultValue int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			return value
		}
	}
	return defaultValue
}
