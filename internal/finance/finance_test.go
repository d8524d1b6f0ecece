package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dancereg/internal/model"
)

func price(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func TestSummarize_EmptyEvent(t *testing.T) {
	s := Summarize(nil, nil)

	assert.True(t, s.TotalCosts.IsZero())
	assert.True(t, s.ConfirmedRevenue.IsZero())
	assert.True(t, s.TheoreticalRevenue.IsZero())
	assert.True(t, s.PendingRevenue.IsZero())
	assert.True(t, s.NetProfitConfirmed.IsZero())
	assert.True(t, s.NetProfitTheoretical.IsZero())
	assert.True(t, s.PaymentCompletionRate.IsZero())
	assert.Zero(t, s.TotalAcceptedApplications)
	assert.Zero(t, s.PaidApplications)
	assert.NotNil(t, s.CostsByCategory)
	assert.Empty(t, s.CostsByCategory)
}

func TestSummarize_Arithmetic(t *testing.T) {
	costs := []model.EventCost{
		{Category: "rent", Amount: decimal.NewFromInt(1000)},
		{Category: "insurance", Amount: decimal.NewFromInt(500)},
	}
	apps := []model.Application{
		{Status: model.StatusAccepted, PaymentDone: true, TotalPrice: price(200)},
		{Status: model.StatusAccepted, PaymentDone: false, TotalPrice: price(200)},
		{Status: model.StatusWaitlisted, PaymentDone: false, TotalPrice: price(200)},
	}

	s := Summarize(costs, apps)

	assert.True(t, s.TotalCosts.Equal(decimal.NewFromInt(1500)), "total costs: %s", s.TotalCosts)
	assert.True(t, s.ConfirmedRevenue.Equal(decimal.NewFromInt(200)))
	assert.True(t, s.TheoreticalRevenue.Equal(decimal.NewFromInt(400)))
	assert.True(t, s.PendingRevenue.Equal(decimal.NewFromInt(200)))
	assert.True(t, s.NetProfitConfirmed.Equal(decimal.NewFromInt(-1300)))
	assert.True(t, s.NetProfitTheoretical.Equal(decimal.NewFromInt(-1100)))
	assert.True(t, s.PaymentCompletionRate.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 2, s.TotalAcceptedApplications)
	assert.Equal(t, 1, s.PaidApplications)

	assert.Len(t, s.CostsByCategory, 2)
	assert.True(t, s.CostsByCategory["rent"].Equal(decimal.NewFromInt(1000)))
	assert.True(t, s.CostsByCategory["insurance"].Equal(decimal.NewFromInt(500)))
}

func TestSummarize_CategoriesAccumulate(t *testing.T) {
	costs := []model.EventCost{
		{Category: "food", Amount: decimal.NewFromFloat(120.50)},
		{Category: "food", Amount: decimal.NewFromFloat(79.50)},
		{Category: "marketing", Amount: decimal.NewFromInt(40)},
	}

	s := Summarize(costs, nil)

	assert.True(t, s.TotalCosts.Equal(decimal.NewFromInt(240)))
	assert.True(t, s.CostsByCategory["food"].Equal(decimal.NewFromInt(200)))
	assert.True(t, s.CostsByCategory["marketing"].Equal(decimal.NewFromInt(40)))
	// Only categories with costs appear; no zero-valued entries.
	_, ok := s.CostsByCategory["rent"]
	assert.False(t, ok)
}

func TestSummarize_NullPriceCountsAsZero(t *testing.T) {
	apps := []model.Application{
		{Status: model.StatusAccepted, PaymentDone: true},
		{Status: model.StatusAccepted, PaymentDone: true, TotalPrice: price(300)},
	}

	s := Summarize(nil, apps)

	assert.True(t, s.ConfirmedRevenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, s.TheoreticalRevenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, s.TotalAcceptedApplications)
	assert.Equal(t, 2, s.PaidApplications)
	assert.True(t, s.PaymentCompletionRate.Equal(decimal.NewFromInt(100)))
}

// Rejected, cancelled, waitlisted and applied applications never count
// toward revenue, paid or not.
func TestSummarize_OnlyAcceptedCount(t *testing.T) {
	apps := []model.Application{
		{Status: model.StatusApplied, PaymentDone: true, TotalPrice: price(100)},
		{Status: model.StatusWaitlisted, PaymentDone: true, TotalPrice: price(100)},
		{Status: model.StatusRejected, PaymentDone: true, TotalPrice: price(100)},
		{Status: model.StatusCancelled, PaymentDone: true, TotalPrice: price(100)},
	}

	s := Summarize(nil, apps)

	assert.True(t, s.TheoreticalRevenue.IsZero())
	assert.True(t, s.ConfirmedRevenue.IsZero())
	assert.Zero(t, s.TotalAcceptedApplications)
	assert.True(t, s.PaymentCompletionRate.IsZero())
}
