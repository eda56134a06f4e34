package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrRaffleNotFound      = errors.New("raffle not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDrawNotFound        = errors.New("draw not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRaffleNotActive     = errors.New("raffle is not active")
	ErrDuplicateDraw       = errors.New("a draw is already scheduled for this raffle")
	ErrNoEligibleTickets   = errors.New("raffle has no sold tickets")
	ErrInsufficientFunds   = errors.New("insufficient funds")
)

// TicketUnavailableError is returned when a claim hits a ticket that is not
// available. TicketNumber is the lowest conflicting number so callers can
// tell the buyer exactly which pick to change.
type TicketUnavailableError struct {
	RaffleID     int
	TicketNumber int
}

func (e *TicketUnavailableError) Error() string {
	return fmt.Sprintf("ticket %d is not available for raffle %d", e.TicketNumber, e.RaffleID)
}

// InvalidStateError is returned when an operation is attempted against an
// entity that is not in the expected lifecycle state.
type InvalidStateError struct {
	Entity   string
	ID       int
	State    string
	Expected string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %d is %s, expected %s", e.Entity, e.ID, e.State, e.Expected)
}

// TransactionStateConflictError is returned when confirm/refund/fail is
// called on a transaction that already left the required state.
type TransactionStateConflictError struct {
	TransactionID int
	Status        TransactionStatus
	Required      TransactionStatus
}

func (e *TransactionStateConflictError) Error() string {
	return fmt.Sprintf("transaction %d is %s, operation requires %s", e.TransactionID, e.Status, e.Required)
}

// ExternalFailureError wraps a collaborator (payment gateway, identity
// provider) error without leaking its internals to API clients.
type ExternalFailureError struct {
	Service string
	Err     error
}

func (e *ExternalFailureError) Error() string {
	return fmt.Sprintf("%s service failure: %v", e.Service, e.Err)
}

func (e *ExternalFailureError) Unwrap() error {
	return e.Err
}
