package models

import (
	"errors"
	"strings"
	"time"
)

// User represents a marketplace account. WalletBalance is held in cents and
// moves only through completed deposit/withdrawal transactions.
type User struct {
	ID            int       `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Name          string    `json:"name" db:"name"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	IsVerified    bool      `json:"is_verified" db:"is_verified"`
	IsAdmin       bool      `json:"is_admin" db:"is_admin"`
	WalletBalance int       `json:"wallet_balance" db:"wallet_balance"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// UserCreateRequest represents the data needed to register a user
type UserCreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate validates the registration data
func (req *UserCreateRequest) Validate() error {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email is not valid")
	}
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// CanCreateRaffles returns true if the user may create raffles
func (u *User) CanCreateRaffles() bool {
	return u.IsVerified
}

// CanWithdraw returns true if the wallet covers the given amount in cents
func (u *User) CanWithdraw(amount int) bool {
	return amount > 0 && u.WalletBalance >= amount
}
