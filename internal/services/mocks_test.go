package services

import (
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/repositories"
)

// memStore is an in-memory stand-in for the storage layer shared by the mock
// repositories. A single mutex gives the mocks the same serialization the
// database's conditional updates provide, which is what the concurrency
// tests exercise.
type memStore struct {
	mu sync.Mutex

	raffles      map[int]*models.Raffle
	tickets      map[int]*models.Ticket
	transactions map[int]*models.Transaction
	txTickets    map[int][]int // transaction ID -> ticket IDs
	draws        map[int]*models.Draw
	users        map[int]*models.User

	nextRaffleID      int
	nextTicketID      int
	nextTransactionID int
	nextDrawID        int
	nextUserID        int
}

func newMemStore() *memStore {
	return &memStore{
		raffles:           make(map[int]*models.Raffle),
		tickets:           make(map[int]*models.Ticket),
		transactions:      make(map[int]*models.Transaction),
		txTickets:         make(map[int][]int),
		draws:             make(map[int]*models.Draw),
		users:             make(map[int]*models.User),
		nextRaffleID:      1,
		nextTicketID:      1,
		nextTransactionID: 1,
		nextDrawID:        1,
		nextUserID:        1,
	}
}

// seedUser inserts a user directly
func (s *memStore) seedUser(user *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = user
	return user
}

// seedRaffle inserts a raffle with its ticket rows directly
func (s *memStore) seedRaffle(raffle *models.Raffle) *models.Raffle {
	s.mu.Lock()
	defer s.mu.Unlock()
	raffle.ID = s.nextRaffleID
	s.nextRaffleID++
	if raffle.ApprovalStatus == "" {
		raffle.ApprovalStatus = models.ApprovalPending
	}
	s.raffles[raffle.ID] = raffle

	for n := 1; n <= raffle.TotalTickets; n++ {
		ticket := &models.Ticket{
			ID:           s.nextTicketID,
			RaffleID:     raffle.ID,
			TicketNumber: n,
			Status:       models.TicketAvailable,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		s.nextTicketID++
		s.tickets[ticket.ID] = ticket
	}
	return raffle
}

func (s *memStore) ticketsOf(raffleID int) []*models.Ticket {
	var out []*models.Ticket
	for _, t := range s.tickets {
		if t.RaffleID == raffleID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketNumber < out[j].TicketNumber })
	return out
}

func (s *memStore) ticketByNumber(raffleID, number int) *models.Ticket {
	for _, t := range s.tickets {
		if t.RaffleID == raffleID && t.TicketNumber == number {
			return t
		}
	}
	return nil
}

// --- raffle repository ---

type mockRaffleRepo struct {
	store *memStore
}

func (m *mockRaffleRepo) Create(req *models.RaffleCreateRequest, creatorID int) (*models.Raffle, error) {
	method := req.DrawMethod
	if method == "" {
		method = models.DrawAutomatic
	}
	return m.store.seedRaffle(&models.Raffle{
		CreatorID:        creatorID,
		Title:            req.Title,
		Description:      req.Description,
		PrizeDescription: req.PrizeDescription,
		TicketPrice:      req.TicketPrice,
		TotalTickets:     req.TotalTickets,
		Status:           models.RaffleDraft,
		ApprovalStatus:   models.ApprovalPending,
		DrawMethod:       method,
		DrawDate:         req.DrawDate,
		MinimumSalesPct:  req.MinimumSalesPct,
		HasAutoDraw:      req.HasAutoDraw,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}), nil
}

func (m *mockRaffleRepo) GetByID(id int) (*models.Raffle, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	raffle, ok := m.store.raffles[id]
	if !ok {
		return nil, models.ErrRaffleNotFound
	}
	copied := *raffle
	return &copied, nil
}

func (m *mockRaffleRepo) Search(filters repositories.RaffleSearchFilters) ([]*models.Raffle, int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	status := filters.Status
	if status == "" {
		status = models.RaffleActive
	}

	var out []*models.Raffle
	for _, r := range m.store.raffles {
		if r.Status != status {
			continue
		}
		if filters.CreatorID != 0 && r.CreatorID != filters.CreatorID {
			continue
		}
		if filters.Featured != nil && r.IsFeatured != *filters.Featured {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockRaffleRepo) Update(id int, req *models.RaffleUpdateRequest) (*models.Raffle, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	raffle, ok := m.store.raffles[id]
	if !ok {
		return nil, models.ErrRaffleNotFound
	}
	raffle.Title = req.Title
	raffle.Description = req.Description
	raffle.PrizeDescription = req.PrizeDescription
	raffle.DrawDate = req.DrawDate
	raffle.HasAutoDraw = req.HasAutoDraw
	raffle.UpdatedAt = time.Now()
	copied := *raffle
	return &copied, nil
}

func (m *mockRaffleRepo) UpdateStatus(id int, from, to models.RaffleStatus) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	raffle, ok := m.store.raffles[id]
	if !ok {
		return models.ErrRaffleNotFound
	}
	if raffle.Status != from {
		return &models.InvalidStateError{
			Entity:   "raffle",
			ID:       id,
			State:    string(raffle.Status),
			Expected: string(from),
		}
	}
	raffle.Status = to
	raffle.UpdatedAt = time.Now()
	return nil
}

func (m *mockRaffleRepo) SetApproval(id int, approval models.ApprovalStatus, notes string) (*models.Raffle, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	raffle, ok := m.store.raffles[id]
	if !ok {
		return nil, models.ErrRaffleNotFound
	}
	if raffle.ApprovalStatus != models.ApprovalPending {
		return nil, &models.InvalidStateError{
			Entity:   "raffle",
			ID:       id,
			State:    string(raffle.ApprovalStatus),
			Expected: string(models.ApprovalPending),
		}
	}
	raffle.ApprovalStatus = approval
	raffle.ApprovalNotes = notes
	if approval == models.ApprovalApproved {
		raffle.Status = models.RaffleActive
	}
	raffle.UpdatedAt = time.Now()
	copied := *raffle
	return &copied, nil
}

func (m *mockRaffleRepo) ToggleFeatured(id int) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	raffle, ok := m.store.raffles[id]
	if !ok {
		return false, models.ErrRaffleNotFound
	}
	raffle.IsFeatured = !raffle.IsFeatured
	return raffle.IsFeatured, nil
}

func (m *mockRaffleRepo) Delete(id int) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.raffles[id]; !ok {
		return models.ErrRaffleNotFound
	}
	delete(m.store.raffles, id)
	for ticketID, t := range m.store.tickets {
		if t.RaffleID == id {
			delete(m.store.tickets, ticketID)
		}
	}
	return nil
}

func (m *mockRaffleRepo) SetDrawDate(id int, drawDate time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	raffle, ok := m.store.raffles[id]
	if !ok {
		return models.ErrRaffleNotFound
	}
	raffle.DrawDate = &drawDate
	return nil
}

// --- ticket repository ---

type mockTicketRepo struct {
	store *memStore
}

func (m *mockTicketRepo) GetByID(id int) (*models.Ticket, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	ticket, ok := m.store.tickets[id]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (m *mockTicketRepo) GetByNumber(raffleID, ticketNumber int) (*models.Ticket, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	ticket := m.store.ticketByNumber(raffleID, ticketNumber)
	if ticket == nil {
		return nil, models.ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (m *mockTicketRepo) GetByNumbers(raffleID int, numbers []int) ([]*models.Ticket, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	wanted := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		wanted[n] = true
	}
	var out []*models.Ticket
	for _, t := range m.store.ticketsOf(raffleID) {
		if wanted[t.TicketNumber] {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTicketRepo) GetByTransaction(transactionID int) ([]*models.Ticket, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*models.Ticket
	for _, ticketID := range m.store.txTickets[transactionID] {
		if t, ok := m.store.tickets[ticketID]; ok {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketNumber < out[j].TicketNumber })
	return out, nil
}

func (m *mockTicketRepo) GetSoldByRaffle(raffleID int) ([]*models.Ticket, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*models.Ticket
	for _, t := range m.store.ticketsOf(raffleID) {
		if t.Status == models.TicketSold {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTicketRepo) GetAvailableNumbers(raffleID int) ([]int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var numbers []int
	for _, t := range m.store.ticketsOf(raffleID) {
		if t.Status == models.TicketAvailable {
			numbers = append(numbers, t.TicketNumber)
		}
	}
	return numbers, nil
}

// ClaimTickets mirrors the conditional-update semantics of the real
// repository: all requested numbers flip together or none do, and the
// lowest conflicting number is reported.
func (m *mockTicketRepo) ClaimTickets(raffleID int, numbers []int, userID int, expiresAt time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	for _, n := range sorted {
		t := m.store.ticketByNumber(raffleID, n)
		if t == nil || t.Status != models.TicketAvailable {
			return &models.TicketUnavailableError{RaffleID: raffleID, TicketNumber: n}
		}
	}

	expiry := expiresAt
	for _, n := range sorted {
		t := m.store.ticketByNumber(raffleID, n)
		t.Status = models.TicketReserved
		t.UserID = &userID
		t.ReservationExpiresAt = &expiry
		t.UpdatedAt = time.Now()
	}
	return nil
}

func (m *mockTicketRepo) FinalizeTickets(raffleID int, numbers []int, userID, transactionID int) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, n := range numbers {
		t := m.store.ticketByNumber(raffleID, n)
		if t == nil || t.Status != models.TicketReserved || t.UserID == nil || *t.UserID != userID {
			return &models.InvalidStateError{
				Entity:   "ticket",
				ID:       raffleID,
				State:    "not reserved by buyer",
				Expected: string(models.TicketReserved),
			}
		}
	}

	raffle, ok := m.store.raffles[raffleID]
	if !ok {
		return models.ErrRaffleNotFound
	}
	if raffle.TicketsSold+len(numbers) > raffle.TotalTickets {
		return errors.New("tickets_sold would exceed total_tickets")
	}

	now := time.Now()
	for _, n := range numbers {
		t := m.store.ticketByNumber(raffleID, n)
		t.Status = models.TicketSold
		t.TransactionID = &transactionID
		t.PurchasedAt = &now
		t.ReservationExpiresAt = nil
		t.UpdatedAt = now
	}
	raffle.TicketsSold += len(numbers)
	return nil
}

// ReleaseTickets mirrors the real repository's ownership guard: sold tickets
// move only for their transaction, reserved tickets only for their holder.
func (m *mockTicketRepo) ReleaseTickets(raffleID int, numbers []int, userID, transactionID int) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	soldCount := 0
	for _, n := range numbers {
		t := m.store.ticketByNumber(raffleID, n)
		if t == nil {
			continue
		}
		soldByTx := t.Status == models.TicketSold &&
			t.TransactionID != nil && *t.TransactionID == transactionID
		reservedByUser := t.Status == models.TicketReserved &&
			t.UserID != nil && *t.UserID == userID
		if !soldByTx && !reservedByUser {
			continue
		}
		if soldByTx {
			soldCount++
		}
		t.Status = models.TicketAvailable
		t.UserID = nil
		t.TransactionID = nil
		t.ReservationExpiresAt = nil
		t.PurchasedAt = nil
		t.UpdatedAt = time.Now()
	}

	if soldCount > 0 {
		if raffle, ok := m.store.raffles[raffleID]; ok {
			raffle.TicketsSold -= soldCount
		}
	}
	return nil
}

func (m *mockTicketRepo) ReleaseExpired(raffleID int) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	now := time.Now()
	released := 0
	for _, t := range m.store.tickets {
		if raffleID > 0 && t.RaffleID != raffleID {
			continue
		}
		if t.Status == models.TicketReserved && t.ReservationExpiresAt != nil && now.After(*t.ReservationExpiresAt) {
			t.Status = models.TicketAvailable
			t.UserID = nil
			t.TransactionID = nil
			t.ReservationExpiresAt = nil
			t.UpdatedAt = now
			released++
		}
	}
	return released, nil
}

func (m *mockTicketRepo) CountByStatus(raffleID int, status models.TicketStatus) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	count := 0
	for _, t := range m.store.ticketsOf(raffleID) {
		if t.Status == status {
			count++
		}
	}
	return count, nil
}

// --- transaction repository ---

type mockTransactionRepo struct {
	store *memStore
}

func (m *mockTransactionRepo) Create(req *models.TransactionCreateRequest) (*models.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	transaction := &models.Transaction{
		ID:             m.store.nextTransactionID,
		UserID:         req.UserID,
		RaffleID:       req.RaffleID,
		Amount:         req.Amount,
		Type:           req.Type,
		Status:         models.TransactionPending,
		PaymentGateway: req.PaymentGateway,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.store.nextTransactionID++
	m.store.transactions[transaction.ID] = transaction
	if len(req.TicketIDs) > 0 {
		m.store.txTickets[transaction.ID] = append([]int(nil), req.TicketIDs...)
	}
	copied := *transaction
	return &copied, nil
}

func (m *mockTransactionRepo) GetByID(id int) (*models.Transaction, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	transaction, ok := m.store.transactions[id]
	if !ok {
		return nil, models.ErrTransactionNotFound
	}
	copied := *transaction
	return &copied, nil
}

func (m *mockTransactionRepo) GetByUser(userID, limit, offset int) ([]*models.Transaction, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*models.Transaction
	for _, t := range m.store.transactions {
		if t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockTransactionRepo) GetByRaffle(raffleID, limit, offset int) ([]*models.Transaction, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*models.Transaction
	for _, t := range m.store.transactions {
		if t.RaffleID != nil && *t.RaffleID == raffleID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockTransactionRepo) UpdateStatus(id int, from, to models.TransactionStatus, gatewayTransactionID string) (*models.Transaction, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	transaction, ok := m.store.transactions[id]
	if !ok {
		return nil, models.ErrTransactionNotFound
	}
	if transaction.Status != from {
		return nil, &models.TransactionStateConflictError{
			TransactionID: id,
			Status:        transaction.Status,
			Required:      from,
		}
	}
	transaction.Status = to
	if gatewayTransactionID != "" {
		transaction.GatewayTransactionID = gatewayTransactionID
	}
	if to == models.TransactionCompleted {
		now := time.Now()
		transaction.CompletedAt = &now
	}
	transaction.UpdatedAt = time.Now()
	copied := *transaction
	return &copied, nil
}

func (m *mockTransactionRepo) SetGatewayReference(id int, gatewayTransactionID string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	transaction, ok := m.store.transactions[id]
	if !ok {
		return models.ErrTransactionNotFound
	}
	transaction.GatewayTransactionID = gatewayTransactionID
	return nil
}

// --- draw repository ---

type mockDrawRepo struct {
	store *memStore
}

func (m *mockDrawRepo) Create(raffleID int, req *models.DrawScheduleRequest) (*models.Draw, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, d := range m.store.draws {
		if d.RaffleID == raffleID && d.Status == models.DrawScheduled {
			return nil, models.ErrDuplicateDraw
		}
	}

	method := req.Method
	if method == "" {
		method = models.DrawAutomatic
	}
	draw := &models.Draw{
		ID:        m.store.nextDrawID,
		RaffleID:  raffleID,
		DrawDate:  req.DrawDate,
		Method:    method,
		Seed:      req.Seed,
		VideoURL:  req.VideoURL,
		Status:    models.DrawScheduled,
		CreatedAt: time.Now(),
	}
	m.store.nextDrawID++
	m.store.draws[draw.ID] = draw
	copied := *draw
	return &copied, nil
}

func (m *mockDrawRepo) GetByID(id int) (*models.Draw, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	draw, ok := m.store.draws[id]
	if !ok {
		return nil, models.ErrDrawNotFound
	}
	copied := *draw
	return &copied, nil
}

func (m *mockDrawRepo) GetByRaffle(raffleID int) ([]*models.Draw, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*models.Draw
	for _, d := range m.store.draws {
		if d.RaffleID == raffleID {
			copied := *d
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDrawRepo) GetScheduledByRaffle(raffleID int) (*models.Draw, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, d := range m.store.draws {
		if d.RaffleID == raffleID && d.Status == models.DrawScheduled {
			copied := *d
			return &copied, nil
		}
	}
	return nil, models.ErrDrawNotFound
}

func (m *mockDrawRepo) CommitSeed(id int, seed string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	draw, ok := m.store.draws[id]
	if !ok {
		return models.ErrDrawNotFound
	}
	if draw.Status != models.DrawScheduled || draw.Seed != "" {
		return &models.InvalidStateError{
			Entity:   "draw",
			ID:       id,
			State:    "seed already committed or draw not scheduled",
			Expected: string(models.DrawScheduled),
		}
	}
	draw.Seed = seed
	return nil
}

func (m *mockDrawRepo) Complete(id, winningTicketID int, resultHash string, eligibleCount int, completedAt time.Time) (*models.Draw, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	draw, ok := m.store.draws[id]
	if !ok {
		return nil, models.ErrDrawNotFound
	}
	if draw.Status != models.DrawScheduled {
		return nil, &models.InvalidStateError{
			Entity:   "draw",
			ID:       id,
			State:    "not scheduled",
			Expected: string(models.DrawScheduled),
		}
	}
	draw.Status = models.DrawCompleted
	draw.WinningTicketID = &winningTicketID
	draw.ResultHash = resultHash
	draw.EligibleCount = eligibleCount
	draw.CompletedAt = &completedAt
	copied := *draw
	return &copied, nil
}

func (m *mockDrawRepo) Cancel(id int) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	draw, ok := m.store.draws[id]
	if !ok {
		return models.ErrDrawNotFound
	}
	if draw.Status != models.DrawScheduled {
		return &models.InvalidStateError{
			Entity:   "draw",
			ID:       id,
			State:    "not scheduled",
			Expected: string(models.DrawScheduled),
		}
	}
	draw.Status = models.DrawCancelled
	return nil
}

func (m *mockDrawRepo) RecordVerification(id, verifierID int, notes string) (*models.Draw, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	draw, ok := m.store.draws[id]
	if !ok {
		return nil, models.ErrDrawNotFound
	}
	if draw.Status != models.DrawCompleted {
		return nil, &models.InvalidStateError{
			Entity:   "draw",
			ID:       id,
			State:    string(draw.Status),
			Expected: string(models.DrawCompleted),
		}
	}
	draw.VerifiedBy = &verifierID
	draw.VerificationNotes = notes
	copied := *draw
	return &copied, nil
}

// --- user repository ---

type mockUserRepo struct {
	store *memStore
}

func (m *mockUserRepo) Create(req *models.UserCreateRequest, passwordHash string) (*models.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, u := range m.store.users {
		if u.Email == req.Email {
			return nil, errors.New("email already registered")
		}
	}
	user := &models.User{
		ID:           m.store.nextUserID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.store.nextUserID++
	m.store.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByID(id int) (*models.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	user, ok := m.store.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, u := range m.store.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserRepo) SetVerified(id int, verified bool) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	user, ok := m.store.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.IsVerified = verified
	return nil
}

func (m *mockUserRepo) AdjustWalletBalance(id, delta int) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	user, ok := m.store.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	if user.WalletBalance+delta < 0 {
		return models.ErrInsufficientFunds
	}
	user.WalletBalance += delta
	return nil
}

// --- collaborators ---

// mockGateway is a configurable payment gateway double that records every
// charge and refund
type mockGateway struct {
	mu          sync.Mutex
	chargeState string // "success", "pending", "declined"
	chargeErr   error
	refundErr   error
	charges     []int
	refunds     []string
	nextRef     int
}

func newMockGateway() *mockGateway {
	return &mockGateway{chargeState: "success"}
}

func (g *mockGateway) Charge(amount int, paymentMethod string) (*ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.charges = append(g.charges, amount)
	g.nextRef++
	return &ChargeResult{
		GatewayTransactionID: "mock_" + strconv.Itoa(g.nextRef),
		Status:               g.chargeState,
		ProcessedAt:          time.Now(),
	}, nil
}

func (g *mockGateway) Refund(gatewayTransactionID string, amount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunds = append(g.refunds, gatewayTransactionID)
	return nil
}

// mockNotifier records emitted notifications
type mockNotifier struct {
	mu     sync.Mutex
	events []notification
}

type notification struct {
	UserID  int
	Event   string
	Payload map[string]interface{}
}

func (n *mockNotifier) Notify(userID int, event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{UserID: userID, Event: event, Payload: payload})
}

func (n *mockNotifier) eventsFor(event string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification
	for _, e := range n.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// --- test fixture ---

// fixture wires all services over a shared in-memory store
type fixture struct {
	store        *memStore
	raffles      *mockRaffleRepo
	tickets      *mockTicketRepo
	transactions *mockTransactionRepo
	draws        *mockDrawRepo
	users        *mockUserRepo
	gateway      *mockGateway
	notifier     *mockNotifier

	inventory *InventoryService
	purchases *PurchaseService
	drawSvc   *DrawService
	raffleSvc *RaffleService
	userSvc   *UserService
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:        store,
		raffles:      &mockRaffleRepo{store: store},
		tickets:      &mockTicketRepo{store: store},
		transactions: &mockTransactionRepo{store: store},
		draws:        &mockDrawRepo{store: store},
		users:        &mockUserRepo{store: store},
		gateway:      newMockGateway(),
		notifier:     &mockNotifier{},
	}

	f.inventory = NewInventoryService(f.tickets, f.raffles, 15*time.Minute)
	f.purchases = NewPurchaseService(f.raffles, f.tickets, f.transactions, f.users, f.inventory, f.gateway, f.notifier)
	f.drawSvc = NewDrawService(f.draws, f.raffles, f.tickets, f.notifier)
	f.raffleSvc = NewRaffleService(f.raffles, f.users, f.notifier)
	f.userSvc = NewUserService(f.users)
	f.purchases.SetDrawTrigger(f.drawSvc)
	return f
}

// activeRaffle seeds an approved active raffle with the given ticket count
func (f *fixture) activeRaffle(totalTickets int, creator *models.User) *models.Raffle {
	return f.store.seedRaffle(&models.Raffle{
		CreatorID:        creator.ID,
		Title:            "Test raffle",
		PrizeDescription: "A prize",
		TicketPrice:      500,
		TotalTickets:     totalTickets,
		Status:           models.RaffleActive,
		ApprovalStatus:   models.ApprovalApproved,
		DrawMethod:       models.DrawAutomatic,
	})
}

func (f *fixture) buyer(name string) *models.User {
	return f.store.seedUser(&models.User{
		Email:      name + "@example.com",
		Name:       name,
		IsVerified: true,
	})
}

func (f *fixture) admin() *models.User {
	return f.store.seedUser(&models.User{
		Email:      "admin@example.com",
		Name:       "Admin",
		IsVerified: true,
		IsAdmin:    true,
	})
}
