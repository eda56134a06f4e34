package services

import (
	"time"

	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/repositories"
)

// RaffleRepository interface for raffle data operations
type RaffleRepository interface {
	Create(req *models.RaffleCreateRequest, creatorID int) (*models.Raffle, error)
	GetByID(id int) (*models.Raffle, error)
	Search(filters repositories.RaffleSearchFilters) ([]*models.Raffle, int, error)
	Update(id int, req *models.RaffleUpdateRequest) (*models.Raffle, error)
	UpdateStatus(id int, from, to models.RaffleStatus) error
	SetApproval(id int, approval models.ApprovalStatus, notes string) (*models.Raffle, error)
	ToggleFeatured(id int) (bool, error)
	Delete(id int) error
	SetDrawDate(id int, drawDate time.Time) error
}

// TicketRepository interface for ticket data operations. Its three mutation
// primitives (claim/finalize/release) are the only way ticket status changes.
type TicketRepository interface {
	GetByID(id int) (*models.Ticket, error)
	GetByNumber(raffleID, ticketNumber int) (*models.Ticket, error)
	GetByNumbers(raffleID int, numbers []int) ([]*models.Ticket, error)
	GetByTransaction(transactionID int) ([]*models.Ticket, error)
	GetSoldByRaffle(raffleID int) ([]*models.Ticket, error)
	GetAvailableNumbers(raffleID int) ([]int, error)
	ClaimTickets(raffleID int, numbers []int, userID int, expiresAt time.Time) error
	FinalizeTickets(raffleID int, numbers []int, userID, transactionID int) error
	ReleaseTickets(raffleID int, numbers []int, userID, transactionID int) error
	ReleaseExpired(raffleID int) (int, error)
	CountByStatus(raffleID int, status models.TicketStatus) (int, error)
}

// TransactionRepository interface for transaction data operations
type TransactionRepository interface {
	Create(req *models.TransactionCreateRequest) (*models.Transaction, error)
	GetByID(id int) (*models.Transaction, error)
	GetByUser(userID, limit, offset int) ([]*models.Transaction, error)
	GetByRaffle(raffleID, limit, offset int) ([]*models.Transaction, error)
	UpdateStatus(id int, from, to models.TransactionStatus, gatewayTransactionID string) (*models.Transaction, error)
	SetGatewayReference(id int, gatewayTransactionID string) error
}

// DrawRepository interface for draw data operations
type DrawRepository interface {
	Create(raffleID int, req *models.DrawScheduleRequest) (*models.Draw, error)
	GetByID(id int) (*models.Draw, error)
	GetByRaffle(raffleID int) ([]*models.Draw, error)
	GetScheduledByRaffle(raffleID int) (*models.Draw, error)
	CommitSeed(id int, seed string) error
	Complete(id, winningTicketID int, resultHash string, eligibleCount int, completedAt time.Time) (*models.Draw, error)
	Cancel(id int) error
	RecordVerification(id, verifierID int, notes string) (*models.Draw, error)
}

// UserRepository interface for user data operations
type UserRepository interface {
	Create(req *models.UserCreateRequest, passwordHash string) (*models.User, error)
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	SetVerified(id int, verified bool) error
	AdjustWalletBalance(id, delta int) error
}

// PaymentGateway interface for the external payment collaborator
type PaymentGateway interface {
	Charge(amount int, paymentMethod string) (*ChargeResult, error)
	Refund(gatewayTransactionID string, amount int) error
}

// ChargeResult represents the gateway's response to a charge attempt
type ChargeResult struct {
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	Status               string    `json:"status"` // "success", "pending", "declined"
	ProcessedAt          time.Time `json:"processed_at"`
}

// Notifier interface for the fire-and-forget notification collaborator.
// Delivery failures are the notifier's problem, never the caller's.
type Notifier interface {
	Notify(userID int, event string, payload map[string]interface{})
}

// DrawTrigger is the seam the purchase coordinator uses to kick off an
// automatic draw once a raffle sells out
type DrawTrigger interface {
	ExecuteAutoDraw(raffleID int) error
}

// Notification event names emitted by the core
const (
	EventTicketPurchased = "ticket_purchased"
	EventDrawCompleted   = "draw_completed"
	EventRaffleApproved  = "raffle_approved"
	EventRaffleRejected  = "raffle_rejected"
)
