package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DrawStatus represents the status of a draw
type DrawStatus string

const (
	DrawScheduled DrawStatus = "scheduled"
	DrawCompleted DrawStatus = "completed"
	DrawCancelled DrawStatus = "cancelled"
)

// Draw represents a scheduled or executed winner selection for a raffle.
// Seed is committed before the winner is derived so that the outcome can be
// audited from public data; ResultHash binds the seed to the winning ticket.
// EligibleCount snapshots the sold-ticket count at execution time so the
// index derivation stays checkable after later refunds shrink the sold set.
type Draw struct {
	ID                int        `json:"id" db:"id"`
	RaffleID          int        `json:"raffle_id" db:"raffle_id"`
	WinningTicketID   *int       `json:"winning_ticket_id" db:"winning_ticket_id"`
	DrawDate          time.Time  `json:"draw_date" db:"draw_date"`
	Method            DrawMethod `json:"method" db:"method"`
	Seed              string     `json:"seed" db:"seed"`
	VideoURL          string     `json:"video_url" db:"video_url"`
	Status            DrawStatus `json:"status" db:"status"`
	ResultHash        string     `json:"result_hash" db:"result_hash"`
	EligibleCount     int        `json:"eligible_count" db:"eligible_count"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	CompletedAt       *time.Time `json:"completed_at" db:"completed_at"`
	VerifiedBy        *int       `json:"verified_by" db:"verified_by"`
	VerificationNotes string     `json:"verification_notes" db:"verification_notes"`
}

// DrawScheduleRequest represents the data needed to schedule a draw
type DrawScheduleRequest struct {
	DrawDate time.Time  `json:"draw_date"`
	Method   DrawMethod `json:"method"`
	Seed     string     `json:"seed"`
	VideoURL string     `json:"video_url"`
}

// Validate validates draw scheduling data
func (req *DrawScheduleRequest) Validate() error {
	if req.DrawDate.IsZero() {
		return errors.New("draw date is required")
	}
	switch req.Method {
	case "", DrawAutomatic, DrawManual, DrawLive:
	default:
		return errors.New("invalid draw method")
	}
	return nil
}

// IsScheduled returns true if the draw has not been executed or cancelled
func (d *Draw) IsScheduled() bool {
	return d.Status == DrawScheduled
}

// IsCompleted returns true if a winner has been selected
func (d *Draw) IsCompleted() bool {
	return d.Status == DrawCompleted
}

// IsTerminal returns true if the draw can no longer change state
func (d *Draw) IsTerminal() bool {
	return d.Status == DrawCompleted || d.Status == DrawCancelled
}

// WinnerIndex derives the deterministic winner index in [0, n) from a seed.
// The seed is hashed with SHA-256 and the first 8 hex digits are reduced
// modulo n. The modulo bias is negligible for n well below 2^32, which the
// 100,000 ticket cap guarantees.
func WinnerIndex(seed string, n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("winner index requires at least one sold ticket")
	}
	sum := sha256.Sum256([]byte(seed))
	digest := hex.EncodeToString(sum[:])
	value, err := strconv.ParseUint(digest[:8], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse seed digest: %w", err)
	}
	return int(value % uint64(n)), nil
}

// ComputeResultHash returns the published digest binding a seed to the
// winning ticket: SHA-256 of "<seed>-<ticketID>", hex encoded.
func ComputeResultHash(seed string, winningTicketID int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", seed, winningTicketID)))
	return hex.EncodeToString(sum[:])
}
