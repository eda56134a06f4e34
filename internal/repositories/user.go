package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"raffle-marketplace-platform/internal/models"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, is_verified, is_admin, wallet_balance, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.IsVerified,
		&u.IsAdmin,
		&u.WalletBalance,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user with the given password hash
func (r *UserRepository) Create(req *models.UserCreateRequest, passwordHash string) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := scanUser(r.db.QueryRow(query, email, strings.TrimSpace(req.Name), passwordHash))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("email already registered: %w", models.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(query, strings.TrimSpace(strings.ToLower(email))))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SetVerified marks a user as verified to create raffles
func (r *UserRepository) SetVerified(id int, verified bool) error {
	result, err := r.db.Exec(
		`UPDATE users SET is_verified = $2, updated_at = NOW() WHERE id = $1`,
		id, verified,
	)
	if err != nil {
		return fmt.Errorf("failed to set verified: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count update: %w", err)
	}
	if affected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// AdjustWalletBalance moves the wallet by delta cents (negative for
// withdrawals). The balance check is part of the update so a concurrent
// withdrawal cannot overdraw.
func (r *UserRepository) AdjustWalletBalance(id, delta int) error {
	result, err := r.db.Exec(
		`UPDATE users SET wallet_balance = wallet_balance + $2, updated_at = NOW()
		 WHERE id = $1 AND wallet_balance + $2 >= 0`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust wallet balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count wallet update: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetByID(id); getErr != nil {
			return getErr
		}
		return models.ErrInsufficientFunds
	}
	return nil
}
