package models

import (
	"time"
)

// TicketStatus represents the status of a raffle ticket
type TicketStatus string

const (
	TicketAvailable TicketStatus = "available"
	TicketReserved  TicketStatus = "reserved"
	TicketSold      TicketStatus = "sold"
)

// Ticket represents a single numbered ticket of a raffle. TicketNumber is
// unique within the raffle (1..TotalTickets), enforced by the storage layer.
type Ticket struct {
	ID                   int          `json:"id" db:"id"`
	RaffleID             int          `json:"raffle_id" db:"raffle_id"`
	TicketNumber         int          `json:"ticket_number" db:"ticket_number"`
	Status               TicketStatus `json:"status" db:"status"`
	UserID               *int         `json:"user_id" db:"user_id"`
	TransactionID        *int         `json:"transaction_id" db:"transaction_id"`
	ReservationExpiresAt *time.Time   `json:"reservation_expires_at" db:"reservation_expires_at"`
	PurchasedAt          *time.Time   `json:"purchased_at" db:"purchased_at"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" db:"updated_at"`
}

// CanTransitionTo reports whether the ticket status may move to target.
// A sold ticket can only return to available (refund), never to reserved.
func (t *Ticket) CanTransitionTo(target TicketStatus) bool {
	switch t.Status {
	case TicketAvailable:
		return target == TicketReserved
	case TicketReserved:
		return target == TicketSold || target == TicketAvailable
	case TicketSold:
		return target == TicketAvailable
	default:
		return false
	}
}

// IsAvailable returns true if the ticket can be claimed
func (t *Ticket) IsAvailable() bool {
	return t.Status == TicketAvailable
}

// IsReserved returns true if the ticket is held by a pending purchase
func (t *Ticket) IsReserved() bool {
	return t.Status == TicketReserved
}

// IsSold returns true if the ticket has been sold
func (t *Ticket) IsSold() bool {
	return t.Status == TicketSold
}

// ReservationExpired returns true if a reservation has outlived its expiry
func (t *Ticket) ReservationExpired(now time.Time) bool {
	return t.Status == TicketReserved &&
		t.ReservationExpiresAt != nil &&
		now.After(*t.ReservationExpiresAt)
}
