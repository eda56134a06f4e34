package services

import (
	"fmt"
	"sort"
	"time"

	"raffle-marketplace-platform/internal/models"
)

// InventoryService owns the ticket lifecycle for every raffle. All ticket
// status mutations funnel through its claim/finalize/release primitives; no
// other service writes ticket state.
type InventoryService struct {
	tickets        TicketRepository
	raffles        RaffleRepository
	reservationTTL time.Duration
}

// NewInventoryService constructs an inventory service. reservationTTL is how
// long a claim holds tickets before the sweeper may release them.
func NewInventoryService(tickets TicketRepository, raffles RaffleRepository, reservationTTL time.Duration) *InventoryService {
	if reservationTTL <= 0 {
		reservationTTL = 15 * time.Minute
	}
	return &InventoryService{
		tickets:        tickets,
		raffles:        raffles,
		reservationTTL: reservationTTL,
	}
}

// Claim reserves the given ticket numbers for the actor as a single atomic
// unit. Either every number is reserved or none is; a contested or missing
// number fails the whole claim with TicketUnavailableError naming the lowest
// conflicting number.
func (s *InventoryService) Claim(raffleID int, numbers []int, actor *models.User) error {
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return err
	}
	if !raffle.IsActive() {
		return models.ErrRaffleNotActive
	}

	cleaned, err := normalizeNumbers(numbers, raffle.TotalTickets)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.reservationTTL)
	return s.tickets.ClaimTickets(raffleID, cleaned, actor.ID, expiresAt)
}

// Finalize transitions previously claimed tickets to sold and bumps the
// raffle's tickets_sold counter in the same storage transaction
func (s *InventoryService) Finalize(raffleID int, numbers []int, buyerID, transactionID int) error {
	return s.tickets.FinalizeTickets(raffleID, numbers, buyerID, transactionID)
}

// Release returns tickets to the available pool, clearing owner and
// transaction. Only tickets still held by the releasing party move: sold
// tickets belonging to transactionID, reserved tickets belonging to ownerID.
// Used for refunds and failed payments.
func (s *InventoryService) Release(raffleID int, numbers []int, ownerID, transactionID int) error {
	return s.tickets.ReleaseTickets(raffleID, numbers, ownerID, transactionID)
}

// ReleaseExpired releases all reserved tickets of a raffle whose expiry has
// passed; raffleID 0 sweeps every raffle
func (s *InventoryService) ReleaseExpired(raffleID int) (int, error) {
	return s.tickets.ReleaseExpired(raffleID)
}

// AvailableNumbers returns the claimable ticket numbers of a raffle
func (s *InventoryService) AvailableNumbers(raffleID int) ([]int, error) {
	if _, err := s.raffles.GetByID(raffleID); err != nil {
		return nil, err
	}
	return s.tickets.GetAvailableNumbers(raffleID)
}

// ReservationTTL returns the configured claim lifetime
func (s *InventoryService) ReservationTTL() time.Duration {
	return s.reservationTTL
}

// normalizeNumbers sorts, deduplicates and range-checks a requested number
// set
func normalizeNumbers(numbers []int, totalTickets int) ([]int, error) {
	if len(numbers) == 0 {
		return nil, fmt.Errorf("at least one ticket number is required: %w", models.ErrInvalidInput)
	}

	seen := make(map[int]bool, len(numbers))
	cleaned := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > totalTickets {
			return nil, fmt.Errorf("ticket number %d is out of range 1..%d: %w", n, totalTickets, models.ErrInvalidInput)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		cleaned = append(cleaned, n)
	}
	sort.Ints(cleaned)
	return cleaned, nil
}
