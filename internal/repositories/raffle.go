package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"raffle-marketplace-platform/internal/models"
)

// RaffleRepository handles raffle data operations
type RaffleRepository struct {
	db *sql.DB
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(db *sql.DB) *RaffleRepository {
	return &RaffleRepository{db: db}
}

// RaffleSearchFilters represents filters for raffle search
type RaffleSearchFilters struct {
	Status    models.RaffleStatus // Filter by status; defaults to active
	CreatorID int                 // Filter by creator
	Featured  *bool               // Filter by featured flag
	Limit     int                 // Number of results to return
	Offset    int                 // Number of results to skip
}

const raffleColumns = `id, creator_id, title, description, prize_description, ticket_price,
	total_tickets, tickets_sold, status, approval_status, approval_notes, draw_method,
	draw_date, minimum_sales_percent, has_auto_draw, is_featured, created_at, updated_at, ended_at`

func scanRaffle(row interface{ Scan(...interface{}) error }) (*models.Raffle, error) {
	r := &models.Raffle{}
	err := row.Scan(
		&r.ID,
		&r.CreatorID,
		&r.Title,
		&r.Description,
		&r.PrizeDescription,
		&r.TicketPrice,
		&r.TotalTickets,
		&r.TicketsSold,
		&r.Status,
		&r.ApprovalStatus,
		&r.ApprovalNotes,
		&r.DrawMethod,
		&r.DrawDate,
		&r.MinimumSalesPct,
		&r.HasAutoDraw,
		&r.IsFeatured,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.EndedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Create inserts a new raffle and bulk-generates its ticket rows
// (1..total_tickets) in the same database transaction. The ticket count is
// fixed from this point on.
func (r *RaffleRepository) Create(req *models.RaffleCreateRequest, creatorID int) (*models.Raffle, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	drawMethod := req.DrawMethod
	if drawMethod == "" {
		drawMethod = models.DrawAutomatic
	}

	query := `
		INSERT INTO raffles (creator_id, title, description, prize_description, ticket_price,
			total_tickets, status, approval_status, draw_method, draw_date,
			minimum_sales_percent, has_auto_draw, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'draft', 'pending', $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + raffleColumns

	raffle, err := scanRaffle(tx.QueryRow(
		query,
		creatorID,
		req.Title,
		req.Description,
		req.PrizeDescription,
		req.TicketPrice,
		req.TotalTickets,
		drawMethod,
		req.DrawDate,
		req.MinimumSalesPct,
		req.HasAutoDraw,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	// Single bulk insert for the whole number range.
	_, err = tx.Exec(`
		INSERT INTO raffle_tickets (raffle_id, ticket_number, status, created_at, updated_at)
		SELECT $1, n, 'available', NOW(), NOW() FROM generate_series(1, $2) AS n`,
		raffle.ID, req.TotalTickets,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tickets: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit raffle creation: %w", err)
	}

	return raffle, nil
}

// GetByID retrieves a raffle by ID
func (r *RaffleRepository) GetByID(id int) (*models.Raffle, error) {
	query := `SELECT ` + raffleColumns + ` FROM raffles WHERE id = $1`

	raffle, err := scanRaffle(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	return raffle, nil
}

// Search returns raffles matching the filters plus the total match count
func (r *RaffleRepository) Search(filters RaffleSearchFilters) ([]*models.Raffle, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	status := filters.Status
	if status == "" {
		status = models.RaffleActive
	}
	conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
	args = append(args, status)
	argIndex++

	if filters.CreatorID > 0 {
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", argIndex))
		args = append(args, filters.CreatorID)
		argIndex++
	}

	if filters.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("is_featured = $%d", argIndex))
		args = append(args, *filters.Featured)
		argIndex++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM raffles " + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count raffles: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := fmt.Sprintf(
		"SELECT "+raffleColumns+" FROM raffles %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, argIndex, argIndex+1,
	)
	args = append(args, limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search raffles: %w", err)
	}
	defer rows.Close()

	var raffles []*models.Raffle
	for rows.Next() {
		raffle, err := scanRaffle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan raffle: %w", err)
		}
		raffles = append(raffles, raffle)
	}
	return raffles, total, rows.Err()
}

// Update updates raffle metadata. Lifecycle gating (draft/pending only) is
// enforced by the service layer.
func (r *RaffleRepository) Update(id int, req *models.RaffleUpdateRequest) (*models.Raffle, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE raffles
		SET title = $2, description = $3, prize_description = $4, draw_date = $5,
		    has_auto_draw = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + raffleColumns

	raffle, err := scanRaffle(r.db.QueryRow(
		query, id, req.Title, req.Description, req.PrizeDescription, req.DrawDate, req.HasAutoDraw,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to update raffle: %w", err)
	}
	return raffle, nil
}

// UpdateStatus sets the raffle status. The expected current status makes the
// transition conditional so concurrent lifecycle changes cannot race past
// each other.
func (r *RaffleRepository) UpdateStatus(id int, from, to models.RaffleStatus) error {
	query := `UPDATE raffles SET status = $3, updated_at = NOW()`
	if to == models.RaffleCompleted || to == models.RaffleCancelled {
		query += `, ended_at = NOW()`
	}
	query += ` WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update raffle status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count status update: %w", err)
	}
	if affected == 0 {
		return &models.InvalidStateError{
			Entity:   "raffle",
			ID:       id,
			State:    "changed concurrently",
			Expected: string(from),
		}
	}
	return nil
}

// SetApproval records the moderation decision and, when approved, activates
// the raffle in the same statement.
func (r *RaffleRepository) SetApproval(id int, approval models.ApprovalStatus, notes string) (*models.Raffle, error) {
	query := `
		UPDATE raffles
		SET approval_status = $2, approval_notes = $3,
		    status = CASE WHEN $2 = 'approved' THEN 'active' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND approval_status = 'pending'
		RETURNING ` + raffleColumns

	raffle, err := scanRaffle(r.db.QueryRow(query, id, approval, notes))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.InvalidStateError{
				Entity:   "raffle",
				ID:       id,
				State:    "not pending approval",
				Expected: string(models.ApprovalPending),
			}
		}
		return nil, fmt.Errorf("failed to set approval: %w", err)
	}
	return raffle, nil
}

// ToggleFeatured flips the featured flag and returns the new value
func (r *RaffleRepository) ToggleFeatured(id int) (bool, error) {
	var featured bool
	err := r.db.QueryRow(
		`UPDATE raffles SET is_featured = NOT is_featured, updated_at = NOW() WHERE id = $1 RETURNING is_featured`,
		id,
	).Scan(&featured)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, models.ErrRaffleNotFound
		}
		return false, fmt.Errorf("failed to toggle featured: %w", err)
	}
	return featured, nil
}

// Delete removes a raffle and its tickets (cascaded by the schema)
func (r *RaffleRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM raffles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete raffle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deletion: %w", err)
	}
	if affected == 0 {
		return models.ErrRaffleNotFound
	}
	return nil
}

// SetDrawDate records the scheduled draw date on the raffle row
func (r *RaffleRepository) SetDrawDate(id int, drawDate time.Time) error {
	_, err := r.db.Exec(
		`UPDATE raffles SET draw_date = $2, updated_at = NOW() WHERE id = $1`,
		id, drawDate,
	)
	if err != nil {
		return fmt.Errorf("failed to set draw date: %w", err)
	}
	return nil
}
