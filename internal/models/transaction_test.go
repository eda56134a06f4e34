package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionCreateRequestValidate(t *testing.T) {
	raffleID := 7

	t.Run("valid ticket purchase", func(t *testing.T) {
		req := &TransactionCreateRequest{
			UserID:    1,
			RaffleID:  &raffleID,
			Amount:    1500,
			Type:      TransactionTicketPurchase,
			TicketIDs: []int{10, 11, 12},
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("ticket purchase without raffle", func(t *testing.T) {
		req := &TransactionCreateRequest{
			UserID:    1,
			Amount:    1500,
			Type:      TransactionTicketPurchase,
			TicketIDs: []int{10},
		}
		assert.Error(t, req.Validate())
	})

	t.Run("ticket purchase without tickets", func(t *testing.T) {
		req := &TransactionCreateRequest{
			UserID:   1,
			RaffleID: &raffleID,
			Amount:   1500,
			Type:     TransactionTicketPurchase,
		}
		assert.Error(t, req.Validate())
	})

	t.Run("deposit needs no raffle", func(t *testing.T) {
		req := &TransactionCreateRequest{
			UserID: 1,
			Amount: 5000,
			Type:   TransactionDeposit,
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("zero amount", func(t *testing.T) {
		req := &TransactionCreateRequest{
			UserID: 1,
			Amount: 0,
			Type:   TransactionDeposit,
		}
		assert.Error(t, req.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		req := &TransactionCreateRequest{
			UserID: 1,
			Amount: 100,
			Type:   "gift",
		}
		assert.Error(t, req.Validate())
	})
}

func TestTransactionPredicates(t *testing.T) {
	pending := &Transaction{Status: TransactionPending, Type: TransactionTicketPurchase}
	assert.True(t, pending.IsPending())
	assert.False(t, pending.IsCompleted())
	assert.False(t, pending.IsTerminal())
	assert.False(t, pending.MovesWallet())

	completed := &Transaction{Status: TransactionCompleted, Type: TransactionDeposit}
	assert.True(t, completed.IsCompleted())
	assert.True(t, completed.MovesWallet())

	failed := &Transaction{Status: TransactionFailed}
	assert.True(t, failed.IsTerminal())

	refunded := &Transaction{Status: TransactionRefunded}
	assert.True(t, refunded.IsTerminal())
}
