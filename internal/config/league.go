package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Roster slot names, in the order slots are enumerated and filled.
const (
	SlotC  = "C"
	Slot1B = "1B"
	Slot2B = "2B"
	Slot3B = "3B"
	SlotSS = "SS"
	SlotMI = "MI"
	SlotCI = "CI"
	SlotOF = "OF"
	SlotU  = "U"
	SlotP  = "P"
)

// SlotOrder is the fixed enumeration order of roster slots.
var SlotOrder = []string{SlotC, Slot1B, Slot2B, Slot3B, SlotSS, SlotMI, SlotCI, SlotOF, SlotU, SlotP}

// RosterSlots holds the per-team capacity of each roster slot.
type RosterSlots struct {
	C          int `yaml:"C" json:"C" validate:"gte=0"`
	FirstBase  int `yaml:"1B" json:"1B" validate:"gte=0"`
	SecondBase int `yaml:"2B" json:"2B" validate:"gte=0"`
	ThirdBase  int `yaml:"3B" json:"3B" validate:"gte=0"`
	SS         int `yaml:"SS" json:"SS" validate:"gte=0"`
	MI         int `yaml:"MI" json:"MI" validate:"gte=0"`
	CI         int `yaml:"CI" json:"CI" validate:"gte=0"`
	OF         int `yaml:"OF" json:"OF" validate:"gte=0"`
	U          int `yaml:"U" json:"U" validate:"gte=0"`
	P          int `yaml:"P" json:"P" validate:"gte=0"`
}

// Count returns the capacity of the named slot, 0 for unknown slots.
func (r RosterSlots) Count(slot string) int {
	switch slot {
	case SlotC:
		return r.C
	case Slot1B:
		return r.FirstBase
	case Slot2B:
		return r.SecondBase
	case Slot3B:
		return r.ThirdBase
	case SlotSS:
		return r.SS
	case SlotMI:
		return r.MI
	case SlotCI:
		return r.CI
	case SlotOF:
		return r.OF
	case SlotU:
		return r.U
	case SlotP:
		return r.P
	}
	return 0
}

// TotalHitters is the number of hitter slots per team.
func (r RosterSlots) TotalHitters() int {
	return r.C + r.FirstBase + r.SecondBase + r.ThirdBase + r.SS + r.MI + r.CI + r.OF + r.U
}

// TotalPitchers is the number of pitcher slots per team.
func (r RosterSlots) TotalPitchers() int {
	return r.P
}

// Total is the full roster size per team.
func (r RosterSlots) Total() int {
	return r.TotalHitters() + r.TotalPitchers()
}

// Denominators are the SGP denominators per category: how much of a stat
// moves a team one place in the standings.
type Denominators struct {
	R    float64 `yaml:"R" json:"R" validate:"gte=0"`
	HR   float64 `yaml:"HR" json:"HR" validate:"gte=0"`
	RBI  float64 `yaml:"RBI" json:"RBI" validate:"gte=0"`
	SB   float64 `yaml:"SB" json:"SB" validate:"gte=0"`
	BA   float64 `yaml:"BA" json:"BA" validate:"gte=0"`
	W    float64 `yaml:"W" json:"W" validate:"gte=0"`
	SV   float64 `yaml:"SV" json:"SV" validate:"gte=0"`
	K    float64 `yaml:"K" json:"K" validate:"gte=0"`
	ERA  float64 `yaml:"ERA" json:"ERA" validate:"gte=0"`
	WHIP float64 `yaml:"WHIP" json:"WHIP" validate:"gte=0"`
}

// Baselines are the league-average rates and volumes used by the ratio categories.
type Baselines struct {
	BA              float64 `yaml:"ba" json:"ba" validate:"gte=0"`
	ERA             float64 `yaml:"era" json:"era" validate:"gte=0"`
	WHIP            float64 `yaml:"whip" json:"whip" validate:"gte=0"`
	ABPerHitterSlot float64 `yaml:"ab_per_hitter_slot" json:"ab_per_hitter_slot" validate:"gt=0"`
}

// PreBidMultipliers turn an inflated value into the six pre-bid thresholds.
// Each multiplier must be at least the previous one.
type PreBidMultipliers struct {
	Steal      float64 `yaml:"steal" json:"steal" validate:"gte=0"`
	Value      float64 `yaml:"value" json:"value" validate:"gtefield=Steal"`
	FairLow    float64 `yaml:"fair_low" json:"fair_low" validate:"gtefield=Value"`
	FairHigh   float64 `yaml:"fair_high" json:"fair_high" validate:"gtefield=FairLow"`
	Overpay    float64 `yaml:"overpay" json:"overpay" validate:"gtefield=FairHigh"`
	BigOverpay float64 `yaml:"big_overpay" json:"big_overpay" validate:"gtefield=Overpay"`
}

// League is the full league configuration consumed by valuation, the draft
// ledger and the recommendation engine.
type League struct {
	Name               string            `yaml:"name" json:"name"`
	Type               string            `yaml:"type" json:"type"`
	NumTeams           int               `yaml:"num_teams" json:"num_teams" validate:"gt=0"`
	BudgetPerTeam      int               `yaml:"budget_per_team" json:"budget_per_team" validate:"gt=0"`
	TeamNames          []string          `yaml:"team_names" json:"team_names,omitempty"`
	Roster             RosterSlots       `yaml:"roster" json:"roster"`
	Denominators       Denominators      `yaml:"sgp_denominators" json:"sgp_denominators"`
	Baselines          Baselines         `yaml:"baselines" json:"baselines"`
	HitterPitcherSplit float64           `yaml:"hitter_pitcher_split" json:"hitter_pitcher_split" validate:"gte=0,lte=1"`
	MinIP              float64           `yaml:"min_ip" json:"min_ip" validate:"gt=0"`
	MinKeeperCount     int               `yaml:"min_keeper_count" json:"min_keeper_count" validate:"gte=0"`
	MaxKeeperCount     int               `yaml:"max_keeper_count" json:"max_keeper_count" validate:"gtefield=MinKeeperCount"`
	PreBid             PreBidMultipliers `yaml:"pre_bid" json:"pre_bid"`
	MatchThreshold     int               `yaml:"match_threshold" json:"match_threshold" validate:"gte=0,lte=100"`
}

// DefaultLeague returns the 11-team AL-only league the tool was built for.
func DefaultLeague() League {
	return League{
		Name:          "Potomac Valley Rotisserie League",
		Type:          "AL-only",
		NumTeams:      11,
		BudgetPerTeam: 270,
		Roster: RosterSlots{
			C: 2, FirstBase: 1, SecondBase: 1, ThirdBase: 1, SS: 1,
			MI: 1, CI: 1, OF: 5, U: 1, P: 10,
		},
		Denominators: Denominators{
			R: 22, HR: 8, RBI: 22, SB: 8, BA: 0.0035,
			W: 3, SV: 7, K: 30, ERA: 0.18, WHIP: 0.017,
		},
		Baselines: Baselines{
			BA:              0.260,
			ERA:             4.00,
			WHIP:            1.30,
			ABPerHitterSlot: 550,
		},
		HitterPitcherSplit: 0.65,
		MinIP:              900,
		MinKeeperCount:     4,
		MaxKeeperCount:     10,
		PreBid: PreBidMultipliers{
			Steal: 0.70, Value: 0.90, FairLow: 0.90,
			FairHigh: 1.10, Overpay: 1.20, BigOverpay: 1.40,
		},
		MatchThreshold: 80,
	}
}

// TotalBudget is the money in the whole league.
func (l League) TotalBudget() int {
	return l.NumTeams * l.BudgetPerTeam
}

// HittersDrafted is the number of hitters the league rosters.
func (l League) HittersDrafted() int {
	return l.NumTeams * l.Roster.TotalHitters()
}

// PitchersDrafted is the number of pitchers the league rosters.
func (l League) PitchersDrafted() int {
	return l.NumTeams * l.Roster.TotalPitchers()
}

// TeamName returns the configured display name of the i-th team (0-based).
func (l League) TeamName(i int) string {
	if i < len(l.TeamNames) && l.TeamNames[i] != "" {
		return l.TeamNames[i]
	}
	return fmt.Sprintf("Team %d", i+1)
}

var validate = validator.New()

// Validate checks the league for values the valuation math cannot handle.
func (l League) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid league config: %w", err)
	}
	if len(l.TeamNames) > l.NumTeams {
		return fmt.Errorf("invalid league config: %d team names for %d teams", len(l.TeamNames), l.NumTeams)
	}
	// Every rostered player costs at least $1.
	if slots := l.HittersDrafted() + l.PitchersDrafted(); l.TotalBudget() < slots {
		return fmt.Errorf("invalid league config: budget $%d cannot cover %d roster slots at $1", l.TotalBudget(), slots)
	}
	return nil
}

// LoadLeague reads a YAML league file over the defaults. An empty path
// returns the defaults.
func LoadLeague(path string) (League, error) {
	cfg := DefaultLeague()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read league config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse league config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
