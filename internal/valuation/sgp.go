// Package valuation turns projections into auction dollars: category
// scoring, replacement-level allocation, inflation, pre-bid thresholds,
// pick classification and breakout scoring.
package valuation

import (
	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// Scoring categories.
const (
	CatR    = "R"
	CatHR   = "HR"
	CatRBI  = "RBI"
	CatSB   = "SB"
	CatBA   = "BA"
	CatW    = "W"
	CatSV   = "SV"
	CatK    = "K"
	CatERA  = "ERA"
	CatWHIP = "WHIP"
)

var (
	HittingCategories  = []string{CatR, CatHR, CatRBI, CatSB, CatBA}
	PitchingCategories = []string{CatW, CatSV, CatK, CatERA, CatWHIP}
)

func perDenominator(stat, den float64) float64 {
	if den == 0 {
		return 0
	}
	return stat / den
}

// ScoreHitting returns the per-category SGP of a hitting line. BA is scored
// as hits above a league-average hitter with the same at-bats, spread over
// a full team's at-bats.
func ScoreHitting(h *models.HittingProjection, cfg config.League) map[string]float64 {
	if h == nil {
		return map[string]float64{}
	}
	d := cfg.Denominators
	sgp := map[string]float64{
		CatR:   perDenominator(h.R, d.R),
		CatHR:  perDenominator(h.HR, d.HR),
		CatRBI: perDenominator(h.RBI, d.RBI),
		CatSB:  perDenominator(h.SB, d.SB),
		CatBA:  0,
	}
	teamAB := cfg.Baselines.ABPerHitterSlot * float64(cfg.Roster.TotalHitters())
	if h.AB > 0 && d.BA > 0 && teamAB > 0 {
		marginal := (h.H - cfg.Baselines.BA*h.AB) / teamAB
		sgp[CatBA] = marginal / d.BA
	}
	return sgp
}

// ScorePitching returns the per-category SGP of a pitching line. ERA and
// WHIP are inverted so a rate below the baseline scores positive.
func ScorePitching(p *models.PitchingProjection, cfg config.League) map[string]float64 {
	if p == nil {
		return map[string]float64{}
	}
	d := cfg.Denominators
	sgp := map[string]float64{
		CatW:    perDenominator(p.W, d.W),
		CatSV:   perDenominator(p.SV, d.SV),
		CatK:    perDenominator(p.K, d.K),
		CatERA:  0,
		CatWHIP: 0,
	}
	if p.IP > 0 && cfg.MinIP > 0 {
		if d.ERA > 0 {
			marginal := (p.ERA - cfg.Baselines.ERA) * p.IP / cfg.MinIP
			sgp[CatERA] = -marginal / d.ERA
		}
		if d.WHIP > 0 {
			marginal := (p.WHIP - cfg.Baselines.WHIP) * p.IP / cfg.MinIP
			sgp[CatWHIP] = -marginal / d.WHIP
		}
	}
	return sgp
}

// Total sums category scores.
func Total(sgp map[string]float64) float64 {
	total := 0.0
	for _, v := range sgp {
		total += v
	}
	return total
}

// ScorePlayer computes and stores a player's SGP.
func ScorePlayer(p *models.Player, cfg config.League) {
	var sgp map[string]float64
	if p.IsHitter {
		sgp = ScoreHitting(p.Hitting, cfg)
	} else {
		sgp = ScorePitching(p.Pitching, cfg)
	}
	p.SGPPerCategory = sgp
	p.SGP = Total(sgp)
}

// ScoreAll scores every player.
func ScoreAll(players []*models.Player, cfg config.League) {
	for _, p := range players {
		ScorePlayer(p, cfg)
	}
}
