package services

import (
	"fmt"
	"log"

	"raffle-marketplace-platform/internal/models"
)

// PurchaseService coordinates a ticket purchase as one logical all-or-nothing
// operation: claim, transaction record, payment confirmation, finalize. Any
// failure after a successful claim compensates by releasing the claim, so
// tickets never stay stuck in reserved.
type PurchaseService struct {
	raffles      RaffleRepository
	tickets      TicketRepository
	transactions TransactionRepository
	users        UserRepository
	inventory    *InventoryService
	payments     PaymentGateway
	notifier     Notifier
	drawTrigger  DrawTrigger
}

// NewPurchaseService constructs the purchase coordinator
func NewPurchaseService(
	raffles RaffleRepository,
	tickets TicketRepository,
	transactions TransactionRepository,
	users UserRepository,
	inventory *InventoryService,
	payments PaymentGateway,
	notifier Notifier,
) *PurchaseService {
	return &PurchaseService{
		raffles:      raffles,
		tickets:      tickets,
		transactions: transactions,
		users:        users,
		inventory:    inventory,
		payments:     payments,
		notifier:     notifier,
	}
}

// SetDrawTrigger wires the draw engine in after construction; the draw
// service depends on repositories built alongside this one.
func (s *PurchaseService) SetDrawTrigger(trigger DrawTrigger) {
	s.drawTrigger = trigger
}

// Purchase claims the requested ticket numbers for the buyer, records a
// pending transaction and initiates the gateway charge. The returned
// transaction completes later through Confirm (gateway webhook) or dies
// through Fail.
func (s *PurchaseService) Purchase(raffleID int, numbers []int, buyer *models.User, paymentMethod string) (*models.Transaction, error) {
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		return nil, err
	}
	if !raffle.IsActive() {
		return nil, models.ErrRaffleNotActive
	}

	if err := s.inventory.Claim(raffleID, numbers, buyer); err != nil {
		return nil, err
	}

	// From here on every failure must release the claim.
	claimed, err := s.tickets.GetByNumbers(raffleID, numbers)
	if err != nil {
		s.compensate(raffleID, numbers, buyer.ID)
		return nil, fmt.Errorf("failed to load claimed tickets: %w", err)
	}

	ticketIDs := make([]int, len(claimed))
	for i, t := range claimed {
		ticketIDs[i] = t.ID
	}

	transaction, err := s.transactions.Create(&models.TransactionCreateRequest{
		UserID:         buyer.ID,
		RaffleID:       &raffleID,
		Amount:         raffle.TicketPrice * len(ticketIDs),
		Type:           models.TransactionTicketPurchase,
		PaymentGateway: paymentMethod,
		TicketIDs:      ticketIDs,
	})
	if err != nil {
		s.compensate(raffleID, numbers, buyer.ID)
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	result, err := s.payments.Charge(transaction.Amount, paymentMethod)
	if err != nil {
		s.compensate(raffleID, numbers, buyer.ID)
		if _, failErr := s.transactions.UpdateStatus(transaction.ID, models.TransactionPending, models.TransactionFailed, ""); failErr != nil {
			log.Printf("purchase: failed to mark transaction %d failed: %v", transaction.ID, failErr)
		}
		return nil, err
	}

	if result.Status == "declined" {
		s.compensate(raffleID, numbers, buyer.ID)
		if _, failErr := s.transactions.UpdateStatus(transaction.ID, models.TransactionPending, models.TransactionFailed, result.GatewayTransactionID); failErr != nil {
			return nil, failErr
		}
		return nil, models.ErrInsufficientFunds
	}

	if result.GatewayTransactionID != "" {
		if err := s.transactions.SetGatewayReference(transaction.ID, result.GatewayTransactionID); err != nil {
			log.Printf("purchase: failed to record gateway reference for transaction %d: %v", transaction.ID, err)
		} else {
			transaction.GatewayTransactionID = result.GatewayTransactionID
		}
	}

	return transaction, nil
}

// Confirm completes a pending transaction: finalizes its tickets (or moves
// the wallet for deposits/withdrawals), marks it completed and triggers the
// automatic draw when the raffle just sold out. Invoked by the payment
// confirmation path.
func (s *PurchaseService) Confirm(transactionID int) (*models.Transaction, error) {
	transaction, err := s.transactions.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if !transaction.IsPending() {
		return nil, &models.TransactionStateConflictError{
			TransactionID: transactionID,
			Status:        transaction.Status,
			Required:      models.TransactionPending,
		}
	}

	switch transaction.Type {
	case models.TransactionTicketPurchase:
		numbers, err := s.linkedNumbers(transactionID)
		if err != nil {
			return nil, err
		}
		// Finalize serializes concurrent confirms: the loser finds the
		// tickets no longer reserved and fails without side effects.
		if err := s.inventory.Finalize(*transaction.RaffleID, numbers, transaction.UserID, transactionID); err != nil {
			return nil, err
		}

	case models.TransactionDeposit:
		if err := s.users.AdjustWalletBalance(transaction.UserID, transaction.Amount); err != nil {
			return nil, err
		}

	case models.TransactionWithdrawal:
		if err := s.users.AdjustWalletBalance(transaction.UserID, -transaction.Amount); err != nil {
			return nil, err
		}
	}

	confirmed, err := s.transactions.UpdateStatus(transactionID, models.TransactionPending, models.TransactionCompleted, "")
	if err != nil {
		return nil, err
	}

	if confirmed.Type == models.TransactionTicketPurchase && confirmed.RaffleID != nil {
		s.notifier.Notify(confirmed.UserID, EventTicketPurchased, map[string]interface{}{
			"transaction_id": confirmed.ID,
			"raffle_id":      *confirmed.RaffleID,
			"amount":         confirmed.Amount,
		})
		s.maybeAutoDraw(*confirmed.RaffleID)
	}

	return confirmed, nil
}

// Refund reverses a completed transaction: releases its tickets (or the
// wallet movement) and marks it refunded. Only completed transactions can be
// refunded.
func (s *PurchaseService) Refund(transactionID int) (*models.Transaction, error) {
	transaction, err := s.transactions.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if !transaction.IsCompleted() {
		return nil, &models.TransactionStateConflictError{
			TransactionID: transactionID,
			Status:        transaction.Status,
			Required:      models.TransactionCompleted,
		}
	}

	if transaction.GatewayTransactionID != "" {
		if err := s.payments.Refund(transaction.GatewayTransactionID, transaction.Amount); err != nil {
			return nil, &models.ExternalFailureError{Service: "payment", Err: err}
		}
	}

	switch transaction.Type {
	case models.TransactionTicketPurchase:
		numbers, err := s.linkedNumbers(transactionID)
		if err != nil {
			return nil, err
		}
		if err := s.inventory.Release(*transaction.RaffleID, numbers, transaction.UserID, transactionID); err != nil {
			return nil, err
		}

	case models.TransactionDeposit:
		if err := s.users.AdjustWalletBalance(transaction.UserID, -transaction.Amount); err != nil {
			return nil, err
		}

	case models.TransactionWithdrawal:
		if err := s.users.AdjustWalletBalance(transaction.UserID, transaction.Amount); err != nil {
			return nil, err
		}
	}

	return s.transactions.UpdateStatus(transactionID, models.TransactionCompleted, models.TransactionRefunded, "")
}

// Fail marks a pending transaction failed and releases any tickets the
// buyer's claim still holds. A late failure webhook for a claim the sweeper
// already reclaimed releases nothing: tickets since sold to another buyer
// stay sold. Used by the gateway-declined path.
func (s *PurchaseService) Fail(transactionID int) (*models.Transaction, error) {
	transaction, err := s.transactions.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if !transaction.IsPending() {
		return nil, &models.TransactionStateConflictError{
			TransactionID: transactionID,
			Status:        transaction.Status,
			Required:      models.TransactionPending,
		}
	}

	if transaction.Type == models.TransactionTicketPurchase && transaction.RaffleID != nil {
		numbers, err := s.linkedNumbers(transactionID)
		if err != nil {
			return nil, err
		}
		if err := s.inventory.Release(*transaction.RaffleID, numbers, transaction.UserID, transactionID); err != nil {
			return nil, err
		}
	}

	return s.transactions.UpdateStatus(transactionID, models.TransactionPending, models.TransactionFailed, "")
}

// Deposit records a pending wallet top-up and initiates the gateway charge
func (s *PurchaseService) Deposit(user *models.User, amount int, paymentMethod string) (*models.Transaction, error) {
	transaction, err := s.transactions.Create(&models.TransactionCreateRequest{
		UserID:         user.ID,
		Amount:         amount,
		Type:           models.TransactionDeposit,
		PaymentGateway: paymentMethod,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.payments.Charge(amount, paymentMethod); err != nil {
		if _, failErr := s.transactions.UpdateStatus(transaction.ID, models.TransactionPending, models.TransactionFailed, ""); failErr != nil {
			log.Printf("deposit: failed to mark transaction %d failed: %v", transaction.ID, failErr)
		}
		return nil, err
	}
	return transaction, nil
}

// Withdraw records a pending wallet withdrawal. The balance check happens on
// confirmation, where the conditional wallet update rejects overdrafts.
func (s *PurchaseService) Withdraw(user *models.User, amount int) (*models.Transaction, error) {
	if !user.CanWithdraw(amount) {
		return nil, models.ErrInsufficientFunds
	}
	return s.transactions.Create(&models.TransactionCreateRequest{
		UserID: user.ID,
		Amount: amount,
		Type:   models.TransactionWithdrawal,
	})
}

// GetTransaction returns a transaction, restricted to its owner or an admin
func (s *PurchaseService) GetTransaction(transactionID int, actor *models.User) (*models.Transaction, error) {
	transaction, err := s.transactions.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.UserID != actor.ID && !actor.IsAdmin {
		return nil, models.ErrForbidden
	}
	return transaction, nil
}

// ListUserTransactions returns the actor's transaction history
func (s *PurchaseService) ListUserTransactions(actor *models.User, limit, offset int) ([]*models.Transaction, error) {
	return s.transactions.GetByUser(actor.ID, limit, offset)
}

func (s *PurchaseService) linkedNumbers(transactionID int) ([]int, error) {
	linked, err := s.tickets.GetByTransaction(transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction tickets: %w", err)
	}
	numbers := make([]int, len(linked))
	for i, t := range linked {
		numbers[i] = t.TicketNumber
	}
	return numbers, nil
}

func (s *PurchaseService) maybeAutoDraw(raffleID int) {
	if s.drawTrigger == nil {
		return
	}
	raffle, err := s.raffles.GetByID(raffleID)
	if err != nil {
		log.Printf("auto-draw: failed to load raffle %d: %v", raffleID, err)
		return
	}
	if !raffle.ShouldAutoDraw() {
		return
	}
	if err := s.drawTrigger.ExecuteAutoDraw(raffleID); err != nil {
		log.Printf("auto-draw: failed for raffle %d: %v", raffleID, err)
	}
}

// compensate releases a still-reserved claim after a post-claim failure.
// The tickets are not finalized yet, so scoping by buyer is sufficient.
func (s *PurchaseService) compensate(raffleID int, numbers []int, buyerID int) {
	if err := s.inventory.Release(raffleID, numbers, buyerID, 0); err != nil {
		log.Printf("purchase: failed to release claim for raffle %d: %v", raffleID, err)
	}
}
