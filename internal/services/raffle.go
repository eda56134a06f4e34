package services

import (
	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/repositories"
)

// RaffleService governs the raffle lifecycle: draft, approval, activation,
// completion and cancellation. Every transition is gated by the state
// machine on the model plus the actor's capability.
type RaffleService struct {
	raffles  RaffleRepository
	users    UserRepository
	notifier Notifier
}

// NewRaffleService constructs the raffle lifecycle service
func NewRaffleService(raffles RaffleRepository, users UserRepository, notifier Notifier) *RaffleService {
	return &RaffleService{
		raffles:  raffles,
		users:    users,
		notifier: notifier,
	}
}

// Create creates a draft raffle with its full ticket range. Only verified
// users may create raffles.
func (s *RaffleService) Create(req *models.RaffleCreateRequest, creator *models.User) (*models.Raffle, error) {
	if !creator.CanCreateRaffles() {
		return nil, models.ErrForbidden
	}
	return s.raffles.Create(req, creator.ID)
}

// Get returns a raffle by ID
func (s *RaffleService) Get(raffleID int) (*models.Raffle, error) {
	return s.raffles.GetByID(raffleID)
}

// Search returns raffles matching the filters plus the total match count
func (s *RaffleService) Search(filters repositories.RaffleSearchFilters) ([]*models.Raffle, int, error) {
	return s.raffles.Search(filters)
}

// Update updates raffle metadata. Only the creator may update, and only
// while the raffle is in draft or pending approval.
func (s *RaffleService) Update(raffleID int, req *models.RaffleUpdateRequest, actor *models.User) (*models.Raffle, error) {
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return nil, err
	}
	if raffle.CreatorID != actor.ID {
		return nil, models.ErrForbidden
	}
	if !raffle.IsEditable() {
		return nil, &models.InvalidStateError{
			Entity:   "raffle",
			ID:       raffleID,
			State:    string(raffle.Status),
			Expected: "draft or pending_approval",
		}
	}
	return s.raffles.Update(raffleID, req)
}

// Delete removes a raffle. Same gating as Update.
func (s *RaffleService) Delete(raffleID int, actor *models.User) error {
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return err
	}
	if raffle.CreatorID != actor.ID {
		return models.ErrForbidden
	}
	if !raffle.IsEditable() {
		return &models.InvalidStateError{
			Entity:   "raffle",
			ID:       raffleID,
			State:    string(raffle.Status),
			Expected: "draft or pending_approval",
		}
	}
	return s.raffles.Delete(raffleID)
}

// SubmitForApproval moves a draft raffle into the moderation queue
func (s *RaffleService) SubmitForApproval(raffleID int, actor *models.User) error {
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return err
	}
	if raffle.CreatorID != actor.ID {
		return models.ErrForbidden
	}
	if !raffle.CanTransitionTo(models.RafflePendingApproval) {
		return &models.InvalidStateError{
			Entity:   "raffle",
			ID:       raffleID,
			State:    string(raffle.Status),
			Expected: string(models.RaffleDraft),
		}
	}
	return s.raffles.UpdateStatus(raffleID, models.RaffleDraft, models.RafflePendingApproval)
}

// Approve records an admin approval and activates the raffle
func (s *RaffleService) Approve(raffleID int, notes string, admin *models.User) (*models.Raffle, error) {
	if !admin.IsAdmin {
		return nil, models.ErrForbidden
	}

	raffle, err := s.raffles.SetApproval(raffleID, models.ApprovalApproved, notes)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(raffle.CreatorID, EventRaffleApproved, map[string]interface{}{
		"raffle_id": raffle.ID,
	})
	return raffle, nil
}

// Reject records an admin rejection; the raffle stays out of the market
func (s *RaffleService) Reject(raffleID int, notes string, admin *models.User) (*models.Raffle, error) {
	if !admin.IsAdmin {
		return nil, models.ErrForbidden
	}

	raffle, err := s.raffles.SetApproval(raffleID, models.ApprovalRejected, notes)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(raffle.CreatorID, EventRaffleRejected, map[string]interface{}{
		"raffle_id": raffle.ID,
		"notes":     notes,
	})
	return raffle, nil
}

// ToggleFeatured flips the home-page featured flag. Admin only, active
// raffles only.
func (s *RaffleService) ToggleFeatured(raffleID int, admin *models.User) (bool, error) {
	if !admin.IsAdmin {
		return false, models.ErrForbidden
	}

	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return false, err
	}
	if !raffle.IsActive() {
		return false, models.ErrRaffleNotActive
	}
	return s.raffles.ToggleFeatured(raffleID)
}

// Cancel cancels a raffle from any non-terminal state. Creator or admin.
func (s *RaffleService) Cancel(raffleID int, actor *models.User) error {
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return err
	}
	if raffle.CreatorID != actor.ID && !actor.IsAdmin {
		return models.ErrForbidden
	}
	if !raffle.CanTransitionTo(models.RaffleCancelled) {
		return &models.InvalidStateError{
			Entity:   "raffle",
			ID:       raffleID,
			State:    string(raffle.Status),
			Expected: "any non-terminal state",
		}
	}
	return s.raffles.UpdateStatus(raffleID, raffle.Status, models.RaffleCancelled)
}

// Complete marks an active raffle completed without a draw outcome. Admin
// escape hatch; the normal path is draw execution.
func (s *RaffleService) Complete(raffleID int, admin *models.User) error {
	if !admin.IsAdmin {
		return models.ErrForbidden
	}
	return s.raffles.UpdateStatus(raffleID, models.RaffleActive, models.RaffleCompleted)
}
