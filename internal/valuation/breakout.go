package valuation

import (
	"fmt"

	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// Breakout labels.
const (
	LabelHighUpside     = "High Upside"
	LabelModerateUpside = "Moderate Upside"
	LabelStable         = "Stable"
	LabelDeclineRisk    = "Decline Risk"
)

const defaultAge = 28

// band adds delta to the score when in(v) holds. Bands of a rule are tried
// in order and the first match wins.
type band struct {
	in     func(v float64) bool
	delta  float64
	format string
}

type rule struct {
	metric string
	bands  []band
}

func above(t float64) func(float64) bool { return func(v float64) bool { return v > t } }
func below(t float64) func(float64) bool { return func(v float64) bool { return v < t } }
func atLeast(t float64) func(float64) bool {
	return func(v float64) bool { return v >= t }
}
func atMost(t float64) func(float64) bool {
	return func(v float64) bool { return v <= t }
}
func between(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

var hitterAge = []band{
	{between(22, 26), 0.20, "Age %.0f (prime breakout window)"},
	{atMost(21), 0.15, "Age %.0f (young upside)"},
	{atLeast(33), -0.20, "Age %.0f (decline risk)"},
	{atLeast(30), -0.10, "Age %.0f (aging)"},
}

var pitcherAge = []band{
	{between(23, 27), 0.20, "Age %.0f (prime breakout window)"},
	{atLeast(34), -0.25, "Age %.0f (decline risk)"},
	{atLeast(31), -0.10, "Age %.0f (aging)"},
}

var hitterRules = []rule{
	{models.MetricXSLG, []band{
		{above(0.500), 0.15, "xSLG %.3f (elite power)"},
		{above(0.430), 0.05, "xSLG %.3f (above avg power)"},
		{below(0.340), -0.10, "xSLG %.3f (weak power)"},
	}},
	{models.MetricXWOBA, []band{
		{above(0.370), 0.15, "xwOBA %.3f (elite)"},
		{above(0.330), 0.05, "xwOBA %.3f (above avg)"},
		{below(0.280), -0.10, "xwOBA %.3f (poor)"},
	}},
	{models.MetricBarrelPct, []band{
		{above(12), 0.15, "Barrel %.1f%% (elite)"},
		{above(8), 0.08, "Barrel %.1f%% (above avg)"},
		{below(4), -0.10, "Barrel %.1f%% (poor)"},
	}},
	{models.MetricHardHitPct, []band{
		{above(45), 0.12, "Hard hit %.1f%% (elite)"},
		{above(40), 0.05, "Hard hit %.1f%% (above avg)"},
		{below(30), -0.10, "Hard hit %.1f%% (poor)"},
	}},
	{models.MetricSpd, []band{
		{above(6.0), 0.12, "Spd %.1f (elite speed)"},
		{above(4.5), 0.05, "Spd %.1f (above avg speed)"},
		{below(2.5), -0.05, "Spd %.1f (slow)"},
	}},
}

var pitcherRules = []rule{
	{models.MetricStuffPlus, []band{
		{above(120), 0.25, "Stuff+ %.0f (elite)"},
		{above(110), 0.12, "Stuff+ %.0f (above avg)"},
		{below(90), -0.15, "Stuff+ %.0f (below avg)"},
	}},
	{models.MetricKPct, []band{
		{above(28), 0.15, "K%% %.1f%% (elite)"},
		{above(23), 0.05, "K%% %.1f%% (above avg)"},
		{below(16), -0.10, "K%% %.1f%% (low)"},
	}},
	{models.MetricCSWPct, []band{
		{above(32), 0.12, "CSW%% %.1f%% (elite command)"},
		{above(29), 0.05, "CSW%% %.1f%% (above avg command)"},
		{below(25), -0.10, "CSW%% %.1f%% (poor command)"},
	}},
	{models.MetricXERA, []band{
		{below(3.20), 0.15, "xERA %.2f (elite)"},
		{below(3.80), 0.05, "xERA %.2f (above avg)"},
		{above(5.00), -0.10, "xERA %.2f (poor)"},
	}},
	{models.MetricLocationPlus, []band{
		{above(110), 0.10, "Location+ %.0f (elite command)"},
		{above(100), 0.03, "Location+ %.0f (above avg)"},
		{below(85), -0.08, "Location+ %.0f (poor command)"},
	}},
	{models.MetricSwStrPct, []band{
		{above(13), 0.10, "SwStr%% %.1f%% (elite)"},
		{above(11), 0.03, "SwStr%% %.1f%% (above avg)"},
		{below(8), -0.08, "SwStr%% %.1f%% (low)"},
	}},
}

// apply scores v against the first matching band.
func apply(bands []band, v float64, score *float64, factors *[]string) {
	for _, b := range bands {
		if b.in(v) {
			*score += b.delta
			*factors = append(*factors, fmt.Sprintf(b.format, v))
			return
		}
	}
}

// ScoreBreakout builds a breakout profile from a player's advanced metrics.
// The score is clamped to [-1, 1]; a player without metrics is Stable.
func ScoreBreakout(p *models.Player) models.BreakoutProfile {
	score := 0.0
	factors := []string{}

	age, ok := p.Metric(models.MetricAge)
	if !ok {
		age = defaultAge
	}

	rules := pitcherRules
	if p.IsHitter {
		rules = hitterRules
		apply(hitterAge, age, &score, &factors)

		// Expected average well above the projection reads as bad luck.
		if xba, ok := p.Metric(models.MetricXBA); ok && p.Hitting != nil && p.Hitting.BA > 0 {
			gap := xba - p.Hitting.BA
			switch {
			case gap > 0.020:
				score += 0.20
				factors = append(factors, fmt.Sprintf("xBA gap +%.3f (unlucky)", gap))
			case gap < -0.020:
				score -= 0.15
				factors = append(factors, fmt.Sprintf("xBA gap %.3f (overperforming)", gap))
			}
		}
	} else {
		apply(pitcherAge, age, &score, &factors)
	}

	for _, r := range rules {
		if v, ok := p.Metric(r.metric); ok {
			apply(r.bands, v, &score, &factors)
		}
	}

	score = min(1, max(-1, score))

	label := LabelStable
	switch {
	case score >= 0.4:
		label = LabelHighUpside
	case score >= 0.15:
		label = LabelModerateUpside
	case score <= -0.3:
		label = LabelDeclineRisk
	}

	return models.BreakoutProfile{Score: Round(score, 2), Label: label, Factors: factors}
}

// ScoreAllBreakouts stores a breakout profile on every player.
func ScoreAllBreakouts(players []*models.Player) {
	for _, p := range players {
		b := ScoreBreakout(p)
		p.Breakout = &b
	}
}
