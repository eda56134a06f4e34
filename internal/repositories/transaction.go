package repositories

import (
	"database/sql"
	"fmt"

	"raffle-marketplace-platform/internal/models"
)

// TransactionRepository handles transaction data operations
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, raffle_id, amount, type, status, payment_gateway,
	gateway_transaction_id, created_at, updated_at, completed_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.RaffleID,
		&t.Amount,
		&t.Type,
		&t.Status,
		&t.PaymentGateway,
		&t.GatewayTransactionID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a pending transaction and its ticket links in one database
// transaction
func (r *TransactionRepository) Create(req *models.TransactionCreateRequest) (*models.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (user_id, raffle_id, amount, type, status, payment_gateway, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, NOW(), NOW())
		RETURNING ` + transactionColumns

	transaction, err := scanTransaction(tx.QueryRow(
		query, req.UserID, req.RaffleID, req.Amount, req.Type, req.PaymentGateway,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	for _, ticketID := range req.TicketIDs {
		_, err = tx.Exec(
			`INSERT INTO transaction_tickets (transaction_id, ticket_id) VALUES ($1, $2)`,
			transaction.ID, ticketID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to link ticket %d: %w", ticketID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction creation: %w", err)
	}

	return transaction, nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(id int) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	transaction, err := scanTransaction(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

// GetByUser returns a user's transactions, newest first
func (r *TransactionRepository) GetByUser(userID, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get user transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetByRaffle returns a raffle's transactions, newest first
func (r *TransactionRepository) GetByRaffle(raffleID, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE raffle_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, raffleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// UpdateStatus moves a transaction between statuses conditionally: the row
// is only touched if it is still in the expected state, so concurrent
// confirm/refund calls cannot both win.
func (r *TransactionRepository) UpdateStatus(id int, from, to models.TransactionStatus, gatewayTransactionID string) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $3,
		    gateway_transaction_id = CASE WHEN $4 <> '' THEN $4 ELSE gateway_transaction_id END,
		    completed_at = CASE WHEN $3 = 'completed' THEN NOW() ELSE completed_at END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + transactionColumns

	transaction, err := scanTransaction(r.db.QueryRow(query, id, from, to, gatewayTransactionID))
	if err != nil {
		if err == sql.ErrNoRows {
			current, getErr := r.GetByID(id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &models.TransactionStateConflictError{
				TransactionID: id,
				Status:        current.Status,
				Required:      from,
			}
		}
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}
	return transaction, nil
}

// SetGatewayReference records the gateway's transaction identifier once the
// charge has been initiated
func (r *TransactionRepository) SetGatewayReference(id int, gatewayTransactionID string) error {
	result, err := r.db.Exec(
		`UPDATE transactions SET gateway_transaction_id = $2, updated_at = NOW() WHERE id = $1`,
		id, gatewayTransactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to set gateway reference: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count gateway reference update: %w", err)
	}
	if affected == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

func collectTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}
