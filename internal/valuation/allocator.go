package valuation

import (
	"sort"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// Group is the outcome of allocation for hitters or pitchers.
type Group struct {
	Replacement   float64  `json:"replacement_sgp"`
	PoolDollars   float64  `json:"pool_dollars"`
	DollarsPerSGP float64  `json:"dollars_per_sgp"`
	Draftable     []string `json:"draftable"`
}

// Allocation summarizes one allocator run.
type Allocation struct {
	Hitters  Group   `json:"hitters"`
	Pitchers Group   `json:"pitchers"`
	Rate     float64 `json:"inflation_rate"`
}

// bySGP returns the players matching keep, sorted by SGP descending.
// Ties keep input order.
func bySGP(players []*models.Player, keep func(*models.Player) bool) []*models.Player {
	var out []*models.Player
	for _, p := range players {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SGP > out[j].SGP })
	return out
}

// replacementLevel is the SGP of the n-th ranked player, or 0 when the
// group is smaller than n.
func replacementLevel(ranked []*models.Player, n int) float64 {
	if n <= 0 || len(ranked) < n {
		return 0
	}
	return ranked[n-1].SGP
}

func allocateGroup(all []*models.Player, isHitter bool, n int, dollars float64) Group {
	nonKeepers := bySGP(all, func(p *models.Player) bool { return p.IsHitter == isHitter && !p.IsKeeper })
	ranked := bySGP(all, func(p *models.Player) bool { return p.IsHitter == isHitter })

	g := Group{
		Replacement: replacementLevel(nonKeepers, n),
		PoolDollars: dollars,
	}

	draftable := ranked
	if len(draftable) > n {
		draftable = draftable[:n]
	}
	above := 0.0
	for _, p := range draftable {
		g.Draftable = append(g.Draftable, p.ID)
		above += max(0, p.SGP-g.Replacement)
	}
	if above > 0 {
		g.DollarsPerSGP = dollars / above
	}
	return g
}

// PreBid derives the pre-bid thresholds of an inflated value.
func PreBid(inflated float64, m config.PreBidMultipliers) models.PreBidRange {
	return models.PreBidRange{
		StealBelow:      Round1(inflated * m.Steal),
		ValueBelow:      Round1(inflated * m.Value),
		FairLow:         Round1(inflated * m.FairLow),
		FairHigh:        Round1(inflated * m.FairHigh),
		OverpayAbove:    Round1(inflated * m.Overpay),
		BigOverpayAbove: Round1(inflated * m.BigOverpay),
	}
}

// Allocate converts SGP into dollar values for every player in the pool.
//
// Replacement level comes from non-keepers only, while the draftable pool
// and the dollars it divides come from the whole pool including keepers.
// Every player, draftable or not, is priced at
// max(0, sgp-replacement)*dollars_per_sgp + 1 and then inflated by rate.
func Allocate(players []*models.Player, cfg config.League, rate float64) Allocation {
	nh, np := cfg.HittersDrafted(), cfg.PitchersDrafted()
	available := float64(cfg.TotalBudget() - (nh + np))

	alloc := Allocation{
		Hitters:  allocateGroup(players, true, nh, available*cfg.HitterPitcherSplit),
		Pitchers: allocateGroup(players, false, np, available*(1-cfg.HitterPitcherSplit)),
		Rate:     rate,
	}

	for _, p := range players {
		g := alloc.Pitchers
		if p.IsHitter {
			g = alloc.Hitters
		}
		base := max(0, p.SGP-g.Replacement)*g.DollarsPerSGP + 1
		p.DollarValue = Round1(base)
		p.InflatedValue = Round1(p.DollarValue * rate)
		r := PreBid(p.InflatedValue, cfg.PreBid)
		p.PreBidRange = &r
	}
	return alloc
}
