package repositories

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"raffle-marketplace-platform/internal/models"
)

// TicketRepository handles raffle ticket data operations. It is the only
// place in the codebase that writes ticket status; every mutation runs as a
// single database transaction so the raffle's tickets_sold counter can never
// diverge from the actual sold-ticket count.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, raffle_id, ticket_number, status, user_id, transaction_id, reservation_expires_at, purchased_at, created_at, updated_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(
		&t.ID,
		&t.RaffleID,
		&t.TicketNumber,
		&t.Status,
		&t.UserID,
		&t.TransactionID,
		&t.ReservationExpiresAt,
		&t.PurchasedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByNumber retrieves a single ticket by raffle and ticket number
func (r *TicketRepository) GetByNumber(raffleID, ticketNumber int) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM raffle_tickets WHERE raffle_id = $1 AND ticket_number = $2`

	ticket, err := scanTicket(r.db.QueryRow(query, raffleID, ticketNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// GetByID retrieves a single ticket by ID
func (r *TicketRepository) GetByID(id int) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM raffle_tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// GetByNumbers retrieves the tickets for a set of numbers within a raffle,
// ordered by ticket number
func (r *TicketRepository) GetByNumbers(raffleID int, numbers []int) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM raffle_tickets
		WHERE raffle_id = $1 AND ticket_number = ANY($2)
		ORDER BY ticket_number`

	rows, err := r.db.Query(query, raffleID, pq.Array(numbers))
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows)
}

// GetByTransaction retrieves all tickets linked to a transaction
func (r *TicketRepository) GetByTransaction(transactionID int) ([]*models.Ticket, error) {
	query := `
		SELECT t.id, t.raffle_id, t.ticket_number, t.status, t.user_id, t.transaction_id,
		       t.reservation_expires_at, t.purchased_at, t.created_at, t.updated_at
		FROM raffle_tickets t
		JOIN transaction_tickets tt ON tt.ticket_id = t.id
		WHERE tt.transaction_id = $1
		ORDER BY t.ticket_number`

	rows, err := r.db.Query(query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction tickets: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows)
}

// GetSoldByRaffle returns all sold tickets for a raffle ordered by ticket
// number ascending. The ordering is the stable key the draw winner index is
// defined over, so it must not change.
func (r *TicketRepository) GetSoldByRaffle(raffleID int) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM raffle_tickets
		WHERE raffle_id = $1 AND status = 'sold'
		ORDER BY ticket_number ASC`

	rows, err := r.db.Query(query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sold tickets: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows)
}

// GetAvailableNumbers returns the available ticket numbers for a raffle
func (r *TicketRepository) GetAvailableNumbers(raffleID int) ([]int, error) {
	rows, err := r.db.Query(
		`SELECT ticket_number FROM raffle_tickets WHERE raffle_id = $1 AND status = 'available' ORDER BY ticket_number`,
		raffleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get available numbers: %w", err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan ticket number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// ClaimTickets transitions the given ticket numbers from available to
// reserved for the given user as a single atomic unit. The claim is a
// conditional update: if the affected-row count does not match the request,
// some ticket was contested or missing, the whole transaction rolls back and
// the lowest conflicting number is reported. Two concurrent claims over
// overlapping sets therefore serialize to exactly one winner per number.
func (r *TicketRepository) ClaimTickets(raffleID int, numbers []int, userID int, expiresAt time.Time) error {
	if len(numbers) == 0 {
		return fmt.Errorf("no ticket numbers requested: %w", models.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE raffle_tickets
		SET status = 'reserved', user_id = $3, reservation_expires_at = $4, updated_at = NOW()
		WHERE raffle_id = $1 AND ticket_number = ANY($2) AND status = 'available'`,
		raffleID, pq.Array(numbers), userID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to claim tickets: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count claimed tickets: %w", err)
	}

	if int(affected) != len(numbers) {
		// Roll back the partial claim before reporting the conflict.
		tx.Rollback()
		return r.firstConflict(raffleID, numbers)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim: %w", err)
	}
	return nil
}

// firstConflict reports the lowest requested number that is missing or not
// available. The read runs outside the aborted claim transaction; it is only
// used to build the error message.
func (r *TicketRepository) firstConflict(raffleID int, numbers []int) error {
	rows, err := r.db.Query(
		`SELECT ticket_number FROM raffle_tickets
		 WHERE raffle_id = $1 AND ticket_number = ANY($2) AND status = 'available'`,
		raffleID, pq.Array(numbers),
	)
	if err != nil {
		return fmt.Errorf("failed to identify conflicting ticket: %w", err)
	}
	defer rows.Close()

	available := make(map[int]bool)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return fmt.Errorf("failed to scan ticket number: %w", err)
		}
		available[n] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to identify conflicting ticket: %w", err)
	}

	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	for _, n := range sorted {
		if !available[n] {
			return &models.TicketUnavailableError{RaffleID: raffleID, TicketNumber: n}
		}
	}
	// Every number reads available now; the contester released between our
	// update and this read. Report the lowest requested number.
	return &models.TicketUnavailableError{RaffleID: raffleID, TicketNumber: sorted[0]}
}

// FinalizeTickets transitions previously reserved tickets to sold, stamps
// the owner, purchase time and transaction, and increments the raffle's
// tickets_sold counter in the same database transaction.
func (r *TicketRepository) FinalizeTickets(raffleID int, numbers []int, userID, transactionID int) error {
	if len(numbers) == 0 {
		return fmt.Errorf("no ticket numbers requested: %w", models.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE raffle_tickets
		SET status = 'sold', user_id = $3, transaction_id = $4,
		    purchased_at = NOW(), reservation_expires_at = NULL, updated_at = NOW()
		WHERE raffle_id = $1 AND ticket_number = ANY($2) AND status = 'reserved' AND user_id = $3`,
		raffleID, pq.Array(numbers), userID, transactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize tickets: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count finalized tickets: %w", err)
	}
	if int(affected) != len(numbers) {
		return &models.InvalidStateError{
			Entity:   "ticket",
			ID:       raffleID,
			State:    "not reserved by buyer",
			Expected: string(models.TicketReserved),
		}
	}

	result, err = tx.Exec(`
		UPDATE raffles
		SET tickets_sold = tickets_sold + $2, updated_at = NOW()
		WHERE id = $1 AND tickets_sold + $2 <= total_tickets`,
		raffleID, len(numbers),
	)
	if err != nil {
		return fmt.Errorf("failed to update tickets_sold: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to count counter update: %w", err)
	} else if n != 1 {
		return fmt.Errorf("tickets_sold would exceed total_tickets for raffle %d", raffleID)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit finalize: %w", err)
	}
	return nil
}

// ReleaseTickets transitions reserved or sold tickets back to available,
// clearing owner and transaction, and decrements tickets_sold for any that
// were sold. The release is scoped to the releasing party: sold tickets must
// belong to transactionID and reserved tickets to userID, so a late failure
// or refund for a stale transaction cannot release numbers that have since
// been reclaimed and sold to someone else. Tickets outside that scope are
// left untouched.
func (r *TicketRepository) ReleaseTickets(raffleID int, numbers []int, userID, transactionID int) error {
	if len(numbers) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var soldCount int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM raffle_tickets
		WHERE raffle_id = $1 AND ticket_number = ANY($2)
		  AND status = 'sold' AND transaction_id = $3`,
		raffleID, pq.Array(numbers), transactionID,
	).Scan(&soldCount)
	if err != nil {
		return fmt.Errorf("failed to count sold tickets: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE raffle_tickets
		SET status = 'available', user_id = NULL, transaction_id = NULL,
		    reservation_expires_at = NULL, purchased_at = NULL, updated_at = NOW()
		WHERE raffle_id = $1 AND ticket_number = ANY($2)
		  AND ((status = 'sold' AND transaction_id = $3)
		    OR (status = 'reserved' AND user_id = $4))`,
		raffleID, pq.Array(numbers), transactionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to release tickets: %w", err)
	}

	if soldCount > 0 {
		_, err = tx.Exec(`
			UPDATE raffles
			SET tickets_sold = tickets_sold - $2, updated_at = NOW()
			WHERE id = $1`,
			raffleID, soldCount,
		)
		if err != nil {
			return fmt.Errorf("failed to update tickets_sold: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit release: %w", err)
	}
	return nil
}

// ReleaseExpired releases every reserved ticket whose reservation expiry has
// passed. A raffleID of 0 sweeps all raffles. Returns the number of tickets
// released.
func (r *TicketRepository) ReleaseExpired(raffleID int) (int, error) {
	query := `
		UPDATE raffle_tickets
		SET status = 'available', user_id = NULL, transaction_id = NULL,
		    reservation_expires_at = NULL, updated_at = NOW()
		WHERE status = 'reserved' AND reservation_expires_at < NOW()`
	args := []interface{}{}

	if raffleID > 0 {
		query += ` AND raffle_id = $1`
		args = append(args, raffleID)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to release expired reservations: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count released tickets: %w", err)
	}
	return int(affected), nil
}

// CountByStatus returns the number of tickets in the given status for a
// raffle. Used by conservation checks and admin views.
func (r *TicketRepository) CountByStatus(raffleID int, status models.TicketStatus) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM raffle_tickets WHERE raffle_id = $1 AND status = $2`,
		raffleID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

func collectTickets(rows *sql.Rows) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
