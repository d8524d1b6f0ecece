// Package finance derives the financial dashboard for one event from its
// cost ledger and application set. Everything is recomputed per call from
// the rows handed in; nothing is cached or incrementally maintained.
package finance

import (
	"github.com/shopspring/decimal"

	"dancereg/internal/model"
)

// Summary is the dashboard for one event. All amounts are exact decimals;
// rounding is a display concern.
type Summary struct {
	TotalCosts                decimal.Decimal
	CostsByCategory           map[string]decimal.Decimal
	ConfirmedRevenue          decimal.Decimal
	TheoreticalRevenue        decimal.Decimal
	PendingRevenue            decimal.Decimal
	NetProfitConfirmed        decimal.Decimal
	NetProfitTheoretical      decimal.Decimal
	PaymentCompletionRate     decimal.Decimal
	TotalAcceptedApplications int
	PaidApplications          int
}

// Summarize folds the cost ledger and application set into a Summary.
// Confirmed revenue counts accepted+paid applications, theoretical revenue
// counts all accepted ones; a null total price contributes zero. Empty
// input yields an all-zero summary with an empty category map.
func Summarize(costs []model.EventCost, apps []model.Application) Summary {
	s := Summary{
		CostsByCategory: make(map[string]decimal.Decimal),
	}

	for _, c := range costs {
		s.TotalCosts = s.TotalCosts.Add(c.Amount)
		s.CostsByCategory[c.Category] = s.CostsByCategory[c.Category].Add(c.Amount)
	}

	for _, a := range apps {
		if a.Status != model.StatusAccepted {
			continue
		}
		price := decimal.Zero
		if a.TotalPrice.Valid {
			price = a.TotalPrice.Decimal
		}
		s.TotalAcceptedApplications++
		s.TheoreticalRevenue = s.TheoreticalRevenue.Add(price)
		if a.PaymentDone {
			s.PaidApplications++
			s.ConfirmedRevenue = s.ConfirmedRevenue.Add(price)
		}
	}

	s.PendingRevenue = s.TheoreticalRevenue.Sub(s.ConfirmedRevenue)
	s.NetProfitConfirmed = s.ConfirmedRevenue.Sub(s.TotalCosts)
	s.NetProfitTheoretical = s.TheoreticalRevenue.Sub(s.TotalCosts)

	if s.TotalAcceptedApplications > 0 {
		s.PaymentCompletionRate = decimal.NewFromInt(int64(s.PaidApplications) * 100).
			Div(decimal.NewFromInt(int64(s.TotalAcceptedApplications)))
	}

	return s
}
