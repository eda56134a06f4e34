package models

import (
	"errors"
	"time"
)

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// TransactionType represents the kind of monetary movement
type TransactionType string

const (
	TransactionTicketPurchase TransactionType = "ticket_purchase"
	TransactionDeposit        TransactionType = "deposit"
	TransactionWithdrawal     TransactionType = "withdrawal"
	TransactionRefund         TransactionType = "refund"
	TransactionCommission     TransactionType = "commission"
)

// Transaction represents a monetary movement. A completed ticket_purchase
// implies all linked tickets are sold; a refunded one implies they are all
// back to available.
type Transaction struct {
	ID                   int               `json:"id" db:"id"`
	UserID               int               `json:"user_id" db:"user_id"`
	RaffleID             *int              `json:"raffle_id" db:"raffle_id"`
	Amount               int               `json:"amount" db:"amount"` // Amount in cents
	Type                 TransactionType   `json:"type" db:"type"`
	Status               TransactionStatus `json:"status" db:"status"`
	PaymentGateway       string            `json:"payment_gateway" db:"payment_gateway"`
	GatewayTransactionID string            `json:"gateway_transaction_id" db:"gateway_transaction_id"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at" db:"updated_at"`
	CompletedAt          *time.Time        `json:"completed_at" db:"completed_at"`
}

// TransactionCreateRequest represents the data needed to record a transaction
type TransactionCreateRequest struct {
	UserID         int             `json:"user_id"`
	RaffleID       *int            `json:"raffle_id"`
	Amount         int             `json:"amount"`
	Type           TransactionType `json:"type"`
	PaymentGateway string          `json:"payment_gateway"`
	TicketIDs      []int           `json:"ticket_ids"`
}

// Validate validates transaction creation data
func (req *TransactionCreateRequest) Validate() error {
	if req.UserID <= 0 {
		return errors.New("user id is required")
	}
	if req.Amount <= 0 {
		return errors.New("amount must be greater than 0")
	}
	switch req.Type {
	case TransactionTicketPurchase, TransactionDeposit, TransactionWithdrawal,
		TransactionRefund, TransactionCommission:
	default:
		return errors.New("invalid transaction type")
	}
	if req.Type == TransactionTicketPurchase {
		if req.RaffleID == nil {
			return errors.New("raffle id is required for ticket purchases")
		}
		if len(req.TicketIDs) == 0 {
			return errors.New("at least one ticket is required for ticket purchases")
		}
	}
	return nil
}

// IsPending returns true if the transaction awaits payment confirmation
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionPending
}

// IsCompleted returns true if the payment was confirmed
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionCompleted
}

// IsTerminal returns true if no further status changes are allowed
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionFailed || t.Status == TransactionRefunded
}

// MovesWallet returns true for types that adjust the user's wallet balance
func (t *Transaction) MovesWallet() bool {
	return t.Type == TransactionDeposit || t.Type == TransactionWithdrawal
}
