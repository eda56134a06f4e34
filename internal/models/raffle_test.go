package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRaffleCreateRequestValidate(t *testing.T) {
	valid := RaffleCreateRequest{
		Title:            "Win a mountain bike",
		PrizeDescription: "Trek Marlin 7",
		TicketPrice:      500,
		TotalTickets:     100,
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		req := valid
		req.Title = "   "
		assert.Error(t, req.Validate())
	})

	t.Run("missing prize description", func(t *testing.T) {
		req := valid
		req.PrizeDescription = ""
		assert.Error(t, req.Validate())
	})

	t.Run("zero ticket price", func(t *testing.T) {
		req := valid
		req.TicketPrice = 0
		assert.Error(t, req.Validate())
	})

	t.Run("too many tickets", func(t *testing.T) {
		req := valid
		req.TotalTickets = 100001
		assert.Error(t, req.Validate())
	})

	t.Run("invalid minimum sales percent", func(t *testing.T) {
		req := valid
		req.MinimumSalesPct = 101
		assert.Error(t, req.Validate())
	})

	t.Run("invalid draw method", func(t *testing.T) {
		req := valid
		req.DrawMethod = "telepathic"
		assert.Error(t, req.Validate())
	})
}

func TestRaffleCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		status   RaffleStatus
		approval ApprovalStatus
		target   RaffleStatus
		want     bool
	}{
		{"draft to pending approval", RaffleDraft, ApprovalPending, RafflePendingApproval, true},
		{"draft straight to active", RaffleDraft, ApprovalPending, RaffleActive, false},
		{"pending to active when approved", RafflePendingApproval, ApprovalApproved, RaffleActive, true},
		{"pending to active without approval", RafflePendingApproval, ApprovalPending, RaffleActive, false},
		{"active to completed", RaffleActive, ApprovalApproved, RaffleCompleted, true},
		{"active back to draft", RaffleActive, ApprovalApproved, RaffleDraft, false},
		{"active to cancelled", RaffleActive, ApprovalApproved, RaffleCancelled, true},
		{"draft to cancelled", RaffleDraft, ApprovalPending, RaffleCancelled, true},
		{"completed to cancelled", RaffleCompleted, ApprovalApproved, RaffleCancelled, false},
		{"cancelled to cancelled", RaffleCancelled, ApprovalApproved, RaffleCancelled, false},
		{"completed to active", RaffleCompleted, ApprovalApproved, RaffleActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Raffle{Status: tt.status, ApprovalStatus: tt.approval}
			assert.Equal(t, tt.want, r.CanTransitionTo(tt.target))
		})
	}
}

func TestRaffleSalesPredicates(t *testing.T) {
	r := &Raffle{TotalTickets: 100, TicketsSold: 99, HasAutoDraw: true}
	assert.False(t, r.IsSoldOut())
	assert.False(t, r.ShouldAutoDraw())

	r.TicketsSold = 100
	assert.True(t, r.IsSoldOut())
	assert.True(t, r.ShouldAutoDraw())

	r.HasAutoDraw = false
	assert.False(t, r.ShouldAutoDraw())
}

func TestRaffleMeetsMinimumSales(t *testing.T) {
	r := &Raffle{TotalTickets: 100, TicketsSold: 49, MinimumSalesPct: 50}
	assert.False(t, r.MeetsMinimumSales())

	r.TicketsSold = 50
	assert.True(t, r.MeetsMinimumSales())

	// Zero percent means any number of sales is enough
	r = &Raffle{TotalTickets: 100, TicketsSold: 0, MinimumSalesPct: 0}
	assert.True(t, r.MeetsMinimumSales())
}
