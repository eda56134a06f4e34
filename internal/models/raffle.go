package models

import (
	"errors"
	"strings"
	"time"
)

// RaffleStatus represents the operational status of a raffle
type RaffleStatus string

const (
	RaffleDraft           RaffleStatus = "draft"
	RafflePendingApproval RaffleStatus = "pending_approval"
	RaffleActive          RaffleStatus = "active"
	RaffleCompleted       RaffleStatus = "completed"
	RaffleCancelled       RaffleStatus = "cancelled"
)

// ApprovalStatus represents the moderation status of a raffle
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// DrawMethod represents how the draw for a raffle is conducted
type DrawMethod string

const (
	DrawAutomatic DrawMethod = "automatic"
	DrawManual    DrawMethod = "manual"
	DrawLive      DrawMethod = "live"
)

// Raffle represents a raffle listing. TotalTickets is immutable once the
// ticket rows have been generated; TicketsSold must always equal the count
// of tickets in sold status for this raffle.
type Raffle struct {
	ID                int            `json:"id" db:"id"`
	CreatorID         int            `json:"creator_id" db:"creator_id"`
	Title             string         `json:"title" db:"title"`
	Description       string         `json:"description" db:"description"`
	PrizeDescription  string         `json:"prize_description" db:"prize_description"`
	TicketPrice       int            `json:"ticket_price" db:"ticket_price"` // Price in cents
	TotalTickets      int            `json:"total_tickets" db:"total_tickets"`
	TicketsSold       int            `json:"tickets_sold" db:"tickets_sold"`
	Status            RaffleStatus   `json:"status" db:"status"`
	ApprovalStatus    ApprovalStatus `json:"approval_status" db:"approval_status"`
	ApprovalNotes     string         `json:"approval_notes" db:"approval_notes"`
	DrawMethod        DrawMethod     `json:"draw_method" db:"draw_method"`
	DrawDate          *time.Time     `json:"draw_date" db:"draw_date"`
	MinimumSalesPct   int            `json:"minimum_sales_percent" db:"minimum_sales_percent"`
	HasAutoDraw       bool           `json:"has_auto_draw" db:"has_auto_draw"`
	IsFeatured        bool           `json:"is_featured" db:"is_featured"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
	EndedAt           *time.Time     `json:"ended_at" db:"ended_at"`
}

// RaffleCreateRequest represents the data needed to create a raffle
type RaffleCreateRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	PrizeDescription string     `json:"prize_description"`
	TicketPrice      int        `json:"ticket_price"`
	TotalTickets     int        `json:"total_tickets"`
	DrawMethod       DrawMethod `json:"draw_method"`
	DrawDate         *time.Time `json:"draw_date"`
	MinimumSalesPct  int        `json:"minimum_sales_percent"`
	HasAutoDraw      bool       `json:"has_auto_draw"`
}

// RaffleUpdateRequest represents updatable raffle metadata. Ticket count and
// price are fixed after creation because ticket rows already exist.
type RaffleUpdateRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	PrizeDescription string     `json:"prize_description"`
	DrawDate         *time.Time `json:"draw_date"`
	HasAutoDraw      bool       `json:"has_auto_draw"`
}

// Validate validates raffle creation data
func (req *RaffleCreateRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if len(req.Title) > 200 {
		return errors.New("title must be less than 200 characters")
	}
	if strings.TrimSpace(req.PrizeDescription) == "" {
		return errors.New("prize description is required")
	}
	if req.TicketPrice <= 0 {
		return errors.New("ticket price must be greater than 0")
	}
	if req.TotalTickets <= 0 {
		return errors.New("total tickets must be greater than 0")
	}
	if req.TotalTickets > 100000 {
		return errors.New("total tickets cannot exceed 100,000")
	}
	if req.MinimumSalesPct < 0 || req.MinimumSalesPct > 100 {
		return errors.New("minimum sales percent must be between 0 and 100")
	}
	switch req.DrawMethod {
	case "", DrawAutomatic, DrawManual, DrawLive:
	default:
		return errors.New("invalid draw method")
	}
	return nil
}

// Validate validates raffle update data
func (req *RaffleUpdateRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if len(req.Title) > 200 {
		return errors.New("title must be less than 200 characters")
	}
	return nil
}

// CanTransitionTo reports whether the raffle status may move to target.
// Transitions are monotonic except cancellation, which is allowed from any
// non-terminal state.
func (r *Raffle) CanTransitionTo(target RaffleStatus) bool {
	switch target {
	case RafflePendingApproval:
		return r.Status == RaffleDraft
	case RaffleActive:
		return r.Status == RafflePendingApproval && r.ApprovalStatus == ApprovalApproved
	case RaffleCompleted:
		return r.Status == RaffleActive
	case RaffleCancelled:
		return r.Status != RaffleCompleted && r.Status != RaffleCancelled
	default:
		return false
	}
}

// IsActive returns true if tickets may currently be claimed or sold
func (r *Raffle) IsActive() bool {
	return r.Status == RaffleActive
}

// IsEditable returns true if metadata updates and deletion are permitted
func (r *Raffle) IsEditable() bool {
	return r.Status == RaffleDraft || r.Status == RafflePendingApproval
}

// IsSoldOut returns true if every ticket has been sold
func (r *Raffle) IsSoldOut() bool {
	return r.TicketsSold >= r.TotalTickets
}

// ShouldAutoDraw returns true if a successful sale should trigger the draw
func (r *Raffle) ShouldAutoDraw() bool {
	return r.HasAutoDraw && r.IsSoldOut()
}

// MeetsMinimumSales returns true if enough tickets sold for a valid draw
func (r *Raffle) MeetsMinimumSales() bool {
	if r.MinimumSalesPct == 0 {
		return true
	}
	return r.TicketsSold*100 >= r.TotalTickets*r.MinimumSalesPct
}
