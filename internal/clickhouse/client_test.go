package clickhouse

import (
	"testing"
)

func TestRowToHitter(t *testing.T) {
	r := Row{
		PlayerID:  "660271",
		Name:      "Shohei Ohtani",
		Team:      "LAD",
		Positions: []string{"DH"},
		IsHitter:  true,
		Stats:     map[string]float64{"AB": 600, "H": 170, "HR": 45, "R": 120, "RBI": 105, "SB": 30, "2B": 28},
		Metrics:   map[string]float64{"barrel_pct": 19.5},
	}
	p := r.Player()
	if p.Hitting == nil || p.Pitching != nil {
		t.Fatalf("expected a hitting line only, got %+v", p)
	}
	if p.Hitting.HR != 45 || p.Hitting.Doubles != 28 || p.Hitting.AB != 600 {
		t.Errorf("unexpected hitting line %+v", *p.Hitting)
	}
	if p.Metrics["barrel_pct"] != 19.5 {
		t.Errorf("metrics not carried: %v", p.Metrics)
	}
}

func TestRowToPitcher(t *testing.T) {
	r := Row{
		PlayerID:  "669373",
		Name:      "Tarik Skubal",
		Positions: []string{"SP"},
		Stats:     map[string]float64{"IP": 195, "W": 15, "K": 235, "ERA": 2.85, "WHIP": 0.98},
	}
	p := r.Player()
	if p.Pitching == nil || p.Hitting != nil {
		t.Fatalf("expected a pitching line only, got %+v", p)
	}
	if p.Pitching.K != 235 || p.Pitching.WHIP != 0.98 {
		t.Errorf("unexpected pitching line %+v", *p.Pitching)
	}
	if p.Metrics != nil {
		t.Errorf("empty metrics should stay nil, got %v", p.Metrics)
	}
}
