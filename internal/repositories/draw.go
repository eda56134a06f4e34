package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"raffle-marketplace-platform/internal/models"
)

// DrawRepository handles draw data operations
type DrawRepository struct {
	db *sql.DB
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *sql.DB) *DrawRepository {
	return &DrawRepository{db: db}
}

const drawColumns = `id, raffle_id, winning_ticket_id, draw_date, method, seed, video_url,
	status, result_hash, eligible_count, created_at, completed_at, verified_by, verification_notes`

func scanDraw(row interface{ Scan(...interface{}) error }) (*models.Draw, error) {
	d := &models.Draw{}
	err := row.Scan(
		&d.ID,
		&d.RaffleID,
		&d.WinningTicketID,
		&d.DrawDate,
		&d.Method,
		&d.Seed,
		&d.VideoURL,
		&d.Status,
		&d.ResultHash,
		&d.EligibleCount,
		&d.CreatedAt,
		&d.CompletedAt,
		&d.VerifiedBy,
		&d.VerificationNotes,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create schedules a draw for a raffle. The partial unique index on
// scheduled draws rejects a second non-terminal draw for the same raffle.
func (r *DrawRepository) Create(raffleID int, req *models.DrawScheduleRequest) (*models.Draw, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	method := req.Method
	if method == "" {
		method = models.DrawAutomatic
	}

	query := `
		INSERT INTO draws (raffle_id, draw_date, method, seed, video_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'scheduled', NOW())
		RETURNING ` + drawColumns

	draw, err := scanDraw(r.db.QueryRow(query, raffleID, req.DrawDate, method, req.Seed, req.VideoURL))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, models.ErrDuplicateDraw
		}
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}
	return draw, nil
}

// GetByID retrieves a draw by ID
func (r *DrawRepository) GetByID(id int) (*models.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`

	draw, err := scanDraw(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	return draw, nil
}

// GetByRaffle returns all draws for a raffle, newest first
func (r *DrawRepository) GetByRaffle(raffleID int) ([]*models.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE raffle_id = $1 ORDER BY draw_date DESC`

	rows, err := r.db.Query(query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle draws: %w", err)
	}
	defer rows.Close()

	var draws []*models.Draw
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, draw)
	}
	return draws, rows.Err()
}

// GetScheduledByRaffle returns the scheduled draw for a raffle, if any
func (r *DrawRepository) GetScheduledByRaffle(raffleID int) (*models.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE raffle_id = $1 AND status = 'scheduled'`

	draw, err := scanDraw(r.db.QueryRow(query, raffleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get scheduled draw: %w", err)
	}
	return draw, nil
}

// CommitSeed persists the draw seed before any winner derivation. A seed
// already present is never overwritten; committing first is what makes the
// draw auditable.
func (r *DrawRepository) CommitSeed(id int, seed string) error {
	result, err := r.db.Exec(
		`UPDATE draws SET seed = $2 WHERE id = $1 AND status = 'scheduled' AND seed = ''`,
		id, seed,
	)
	if err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count seed commit: %w", err)
	}
	if affected == 0 {
		return &models.InvalidStateError{
			Entity:   "draw",
			ID:       id,
			State:    "seed already committed or draw not scheduled",
			Expected: string(models.DrawScheduled),
		}
	}
	return nil
}

// Complete records the draw outcome, including the size of the eligible set
// the winner was drawn from. The conditional status check means a concurrent
// execution of the same draw loses cleanly.
func (r *DrawRepository) Complete(id, winningTicketID int, resultHash string, eligibleCount int, completedAt time.Time) (*models.Draw, error) {
	query := `
		UPDATE draws
		SET status = 'completed', winning_ticket_id = $2, result_hash = $3,
		    eligible_count = $4, completed_at = $5
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + drawColumns

	draw, err := scanDraw(r.db.QueryRow(query, id, winningTicketID, resultHash, eligibleCount, completedAt))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.InvalidStateError{
				Entity:   "draw",
				ID:       id,
				State:    "not scheduled",
				Expected: string(models.DrawScheduled),
			}
		}
		return nil, fmt.Errorf("failed to complete draw: %w", err)
	}
	return draw, nil
}

// Cancel moves a scheduled draw to cancelled
func (r *DrawRepository) Cancel(id int) error {
	result, err := r.db.Exec(
		`UPDATE draws SET status = 'cancelled' WHERE id = $1 AND status = 'scheduled'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel draw: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count cancellation: %w", err)
	}
	if affected == 0 {
		return &models.InvalidStateError{
			Entity:   "draw",
			ID:       id,
			State:    "not scheduled",
			Expected: string(models.DrawScheduled),
		}
	}
	return nil
}

// RecordVerification stores an administrative attestation on a completed
// draw without touching the outcome fields
func (r *DrawRepository) RecordVerification(id, verifierID int, notes string) (*models.Draw, error) {
	query := `
		UPDATE draws
		SET verified_by = $2, verification_notes = $3
		WHERE id = $1 AND status = 'completed'
		RETURNING ` + drawColumns

	draw, err := scanDraw(r.db.QueryRow(query, id, verifierID, notes))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.InvalidStateError{
				Entity:   "draw",
				ID:       id,
				State:    "not completed",
				Expected: string(models.DrawCompleted),
			}
		}
		return nil, fmt.Errorf("failed to record verification: %w", err)
	}
	return draw, nil
}
