package valuation

import (
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// InflationInput is the money already committed outside the open market.
type InflationInput struct {
	TotalBudget  int
	KeeperSalary int
	KeeperCount  int
	DraftedSpend int
}

// InflationReport breaks down the inflation rate. Rate is rounded to four
// decimals; Exact is the value applied to prices.
type InflationReport struct {
	Rate                 float64 `json:"inflation_rate"`
	Exact                float64 `json:"-"`
	TotalBudget          int     `json:"total_budget"`
	TotalKeeperSalary    int     `json:"total_keeper_salary"`
	KeeperProjectedValue float64 `json:"keeper_projected_value"`
	DraftedSpend         int     `json:"drafted_spend"`
	DraftedValue         float64 `json:"drafted_value"`
	RemainingBudget      int     `json:"remaining_budget"`
	RemainingValue       float64 `json:"remaining_value"`
	KeeperCount          int     `json:"keeper_count"`
	Degenerate           bool    `json:"degenerate"`
}

// Inflation computes remaining money over remaining value. When no value is
// left the market is degenerate and the rate falls back to 1.0.
func Inflation(players []*models.Player, in InflationInput) InflationReport {
	r := InflationReport{
		TotalBudget:       in.TotalBudget,
		TotalKeeperSalary: in.KeeperSalary,
		DraftedSpend:      in.DraftedSpend,
		KeeperCount:       in.KeeperCount,
	}
	for _, p := range players {
		switch {
		case p.IsKeeper:
			r.KeeperProjectedValue += p.DollarValue
		case p.IsDrafted:
			r.DraftedValue += p.DollarValue
		}
	}

	r.RemainingBudget = in.TotalBudget - (in.KeeperSalary + in.DraftedSpend)
	remainingValue := float64(in.TotalBudget) - (r.KeeperProjectedValue + r.DraftedValue)

	if remainingValue <= 0 {
		r.Exact = 1.0
		r.Degenerate = true
	} else {
		r.Exact = float64(r.RemainingBudget) / remainingValue
	}
	r.Rate = Round(r.Exact, 4)
	r.RemainingValue = Round1(remainingValue)
	r.KeeperProjectedValue = Round1(r.KeeperProjectedValue)
	r.DraftedValue = Round1(r.DraftedValue)
	return r
}
