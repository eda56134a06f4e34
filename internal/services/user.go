package services

import (
	"errors"

	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/utils"
)

// UserService handles registration, authentication and the narrow identity
// queries the core consumes (is this user verified? is this user an admin?).
type UserService struct {
	users UserRepository
}

// NewUserService constructs a user service
func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates a new account
func (s *UserService) Register(req *models.UserCreateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(req, hash)
}

// Authenticate verifies credentials and returns the account. Lookup
// failures and bad passwords both come back as ErrUnauthorized so callers
// cannot probe for registered emails.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}

	ok, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrUnauthorized
	}
	return user, nil
}

// Get returns a user by ID
func (s *UserService) Get(userID int) (*models.User, error) {
	return s.users.GetByID(userID)
}

// IsVerified reports whether the user may create raffles
func (s *UserService) IsVerified(userID int) (bool, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return false, err
	}
	return user.IsVerified, nil
}

// IsAdmin reports whether the user holds the administrative capability
func (s *UserService) IsAdmin(userID int) (bool, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// SetVerified flips the verification flag. Admin only.
func (s *UserService) SetVerified(userID int, verified bool, admin *models.User) error {
	if !admin.IsAdmin {
		return models.ErrForbidden
	}
	return s.users.SetVerified(userID, verified)
}
