package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/utils"
)

// DrawService selects raffle winners from a committed seed so that every
// outcome can be reproduced and audited from public data. It reads ticket
// state but never writes it, except for recording the winning reference on
// the draw row.
type DrawService struct {
	draws    DrawRepository
	raffles  RaffleRepository
	tickets  TicketRepository
	notifier Notifier
}

// NewDrawService constructs the draw engine
func NewDrawService(draws DrawRepository, raffles RaffleRepository, tickets TicketRepository, notifier Notifier) *DrawService {
	return &DrawService{
		draws:    draws,
		raffles:  raffles,
		tickets:  tickets,
		notifier: notifier,
	}
}

// Schedule creates a scheduled draw for an active raffle. Only the raffle
// creator or an admin may schedule, and a raffle can hold at most one
// non-terminal draw.
func (s *DrawService) Schedule(raffleID int, req *models.DrawScheduleRequest, actor *models.User) (*models.Draw, error) {
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return nil, err
	}
	if raffle.CreatorID != actor.ID && !actor.IsAdmin {
		return nil, models.ErrForbidden
	}
	if !raffle.IsActive() {
		return nil, models.ErrRaffleNotActive
	}

	if _, err := s.draws.GetScheduledByRaffle(raffleID); err == nil {
		return nil, models.ErrDuplicateDraw
	} else if !errors.Is(err, models.ErrDrawNotFound) {
		return nil, err
	}

	draw, err := s.draws.Create(raffleID, req)
	if err != nil {
		return nil, err
	}

	if err := s.raffles.SetDrawDate(raffleID, draw.DrawDate); err != nil {
		log.Printf("draw: failed to mirror draw date on raffle %d: %v", raffleID, err)
	}
	return draw, nil
}

// Execute runs a scheduled draw. If no seed was supplied at scheduling time
// one is generated from a cryptographically strong source and persisted
// BEFORE the winner is derived, so the outcome can never be steered by
// picking a seed to match a wanted winner. The winner is the sold ticket at
// index SHA-256(seed) mod N, over sold tickets ordered by ticket number
// ascending.
func (s *DrawService) Execute(drawID int) (*models.Draw, error) {
	draw, err := s.draws.GetByID(drawID)
	if err != nil {
		return nil, err
	}
	if !draw.IsScheduled() {
		return nil, &models.InvalidStateError{
			Entity:   "draw",
			ID:       drawID,
			State:    string(draw.Status),
			Expected: string(models.DrawScheduled),
		}
	}

	sold, err := s.tickets.GetSoldByRaffle(draw.RaffleID)
	if err != nil {
		return nil, err
	}
	if len(sold) == 0 {
		return nil, models.ErrNoEligibleTickets
	}

	seed := draw.Seed
	if seed == "" {
		seed, err = utils.GenerateSeed()
		if err != nil {
			return nil, fmt.Errorf("failed to generate draw seed: %w", err)
		}
		// Commit the seed before deriving anything from it.
		if err := s.draws.CommitSeed(drawID, seed); err != nil {
			return nil, err
		}
	}

	index, err := models.WinnerIndex(seed, len(sold))
	if err != nil {
		return nil, err
	}
	winner := sold[index]
	resultHash := models.ComputeResultHash(seed, winner.ID)

	completed, err := s.draws.Complete(drawID, winner.ID, resultHash, len(sold), time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.raffles.UpdateStatus(draw.RaffleID, models.RaffleActive, models.RaffleCompleted); err != nil {
		log.Printf("draw: failed to complete raffle %d: %v", draw.RaffleID, err)
	}

	if winner.UserID != nil {
		s.notifier.Notify(*winner.UserID, EventDrawCompleted, map[string]interface{}{
			"draw_id":       completed.ID,
			"raffle_id":     completed.RaffleID,
			"ticket_number": winner.TicketNumber,
			"result_hash":   completed.ResultHash,
		})
	}

	return completed, nil
}

// ExecuteAutoDraw runs the draw for a raffle that just sold out. It reuses
// the scheduled draw when one exists, otherwise it creates an automatic one
// dated now.
func (s *DrawService) ExecuteAutoDraw(raffleID int) error {
	draw, err := s.draws.GetScheduledByRaffle(raffleID)
	if errors.Is(err, models.ErrDrawNotFound) {
		draw, err = s.draws.Create(raffleID, &models.DrawScheduleRequest{
			DrawDate: time.Now(),
			Method:   models.DrawAutomatic,
		})
	}
	if err != nil {
		return err
	}

	_, err = s.Execute(draw.ID)
	return err
}

// Cancel cancels a scheduled draw. Restricted to the raffle creator or an
// admin.
func (s *DrawService) Cancel(drawID int, actor *models.User) error {
	draw, err := s.draws.GetByID(drawID)
	if err != nil {
		return err
	}
	raffle, err := s.raffles.GetByID(draw.RaffleID)
	if err != nil {
		return err
	}
	if raffle.CreatorID != actor.ID && !actor.IsAdmin {
		return models.ErrForbidden
	}
	return s.draws.Cancel(drawID)
}

// Verify records an administrative attestation on a completed draw. The
// outcome itself is immutable.
func (s *DrawService) Verify(drawID int, verifier *models.User, notes string) (*models.Draw, error) {
	if !verifier.IsAdmin {
		return nil, models.ErrForbidden
	}
	return s.draws.RecordVerification(drawID, verifier.ID, notes)
}

// Get returns a draw by ID
func (s *DrawService) Get(drawID int) (*models.Draw, error) {
	return s.draws.GetByID(drawID)
}

// ListByRaffle returns a raffle's draws
func (s *DrawService) ListByRaffle(raffleID int) ([]*models.Draw, error) {
	if _, err := s.raffles.GetByID(raffleID); err != nil {
		return nil, err
	}
	return s.draws.GetByRaffle(raffleID)
}

// AuditReport is an independent recomputation of a completed draw from its
// public inputs: the committed seed, the eligible-set size snapshotted at
// execution time, and the stored winning ticket.
type AuditReport struct {
	DrawID          int    `json:"draw_id"`
	Seed            string `json:"seed"`
	EligibleCount   int    `json:"eligible_count"`
	SoldTicketCount int    `json:"sold_ticket_count"`
	WinnerIndex     int    `json:"winner_index"`
	WinningTicketID int    `json:"winning_ticket_id"`
	ComputedHash    string `json:"computed_hash"`
	StoredHash      string `json:"stored_hash"`
	SoldSetChanged  bool   `json:"sold_set_changed"`
	Matches         bool   `json:"matches"`
}

// Audit recomputes the winner index and result hash of a completed draw and
// compares them with the stored values. The index is derived against the
// eligible count recorded at execution, so a legitimate post-draw refund
// does not fail the audit; when the current sold set still matches that
// snapshot the winner's position in it is re-derived as well. Anyone can run
// this; it is the third-party verification path.
func (s *DrawService) Audit(drawID int) (*AuditReport, error) {
	draw, err := s.draws.GetByID(drawID)
	if err != nil {
		return nil, err
	}
	if !draw.IsCompleted() {
		return nil, &models.InvalidStateError{
			Entity:   "draw",
			ID:       drawID,
			State:    string(draw.Status),
			Expected: string(models.DrawCompleted),
		}
	}
	if draw.WinningTicketID == nil {
		return nil, fmt.Errorf("completed draw %d has no winning ticket recorded", drawID)
	}

	sold, err := s.tickets.GetSoldByRaffle(draw.RaffleID)
	if err != nil {
		return nil, err
	}

	index, err := models.WinnerIndex(draw.Seed, draw.EligibleCount)
	if err != nil {
		return nil, err
	}
	computed := models.ComputeResultHash(draw.Seed, *draw.WinningTicketID)

	report := &AuditReport{
		DrawID:          draw.ID,
		Seed:            draw.Seed,
		EligibleCount:   draw.EligibleCount,
		SoldTicketCount: len(sold),
		WinnerIndex:     index,
		WinningTicketID: *draw.WinningTicketID,
		ComputedHash:    computed,
		StoredHash:      draw.ResultHash,
		SoldSetChanged:  len(sold) != draw.EligibleCount,
	}
	report.Matches = computed == draw.ResultHash
	if !report.SoldSetChanged {
		// The sold set is intact, so the winner's position can be
		// re-derived directly.
		report.Matches = report.Matches && sold[index].ID == *draw.WinningTicketID
	}
	return report, nil
}
