package valuation

import (
	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// Result is the outcome of a full valuation run.
type Result struct {
	Allocation Allocation      `json:"allocation"`
	Inflation  InflationReport `json:"inflation"`
	// Rate is the multiplier applied to prices, exact rather than rounded.
	Rate float64 `json:"-"`
}

// Run scores the pool, prices it at rate 1, derives inflation from the
// committed money in, re-prices at that rate and scores breakouts. A
// non-nil rate skips the inflation step and is applied as given.
func Run(players []*models.Player, cfg config.League, in InflationInput, rate *float64) Result {
	ScoreAll(players, cfg)
	alloc := Allocate(players, cfg, 1.0)

	report := Inflation(players, in)
	applied := report.Exact
	if rate != nil {
		applied = *rate
		report.Exact = applied
		report.Rate = Round(applied, 4)
	} else if report.Degenerate {
		logger.Debug("No remaining value, inflation defaults to 1.0",
			"remaining_budget", report.RemainingBudget,
			"remaining_value", report.RemainingValue)
	}

	if applied != 1.0 {
		alloc = Allocate(players, cfg, applied)
	}
	ScoreAllBreakouts(players)

	return Result{Allocation: alloc, Inflation: report, Rate: applied}
}
