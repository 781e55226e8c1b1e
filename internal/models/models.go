package models

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for an unknown player, team or pick id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when drafting a drafted or keeper player.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrPersistenceMissing is returned by load when nothing was saved.
	ErrPersistenceMissing = errors.New("no saved draft state")
)

// Classification labels a paid price against a player's pre-bid range.
type Classification string

const (
	BigSteal   Classification = "Big Steal"
	Steal      Classification = "Steal"
	Fair       Classification = "Fair"
	Overpay    Classification = "Overpay"
	BigOverpay Classification = "Big Overpay"
)

// HittingProjection is a hitter's projected season line.
type HittingProjection struct {
	PA      float64 `json:"PA"`
	AB      float64 `json:"AB"`
	H       float64 `json:"H"`
	Doubles float64 `json:"2B"`
	Triples float64 `json:"3B"`
	HR      float64 `json:"HR"`
	R       float64 `json:"R"`
	RBI     float64 `json:"RBI"`
	SB      float64 `json:"SB"`
	CS      float64 `json:"CS"`
	BB      float64 `json:"BB"`
	SO      float64 `json:"SO"`
	BA      float64 `json:"BA"`
}

// PitchingProjection is a pitcher's projected season line.
type PitchingProjection struct {
	IP   float64 `json:"IP"`
	W    float64 `json:"W"`
	L    float64 `json:"L"`
	SV   float64 `json:"SV"`
	HLD  float64 `json:"HLD"`
	K    float64 `json:"K"`
	BB   float64 `json:"BB"`
	H    float64 `json:"H"`
	ER   float64 `json:"ER"`
	HR   float64 `json:"HR"`
	ERA  float64 `json:"ERA"`
	WHIP float64 `json:"WHIP"`
}

// PreBidRange holds the six price thresholds derived from an inflated value.
// Fields are non-decreasing in declaration order.
type PreBidRange struct {
	StealBelow      float64 `json:"steal_below"`
	ValueBelow      float64 `json:"value_below"`
	FairLow         float64 `json:"fair_low"`
	FairHigh        float64 `json:"fair_high"`
	OverpayAbove    float64 `json:"overpay_above"`
	BigOverpayAbove float64 `json:"big_overpay_above"`
}

// BreakoutProfile scores upside or decline risk from advanced metrics.
type BreakoutProfile struct {
	Score   float64  `json:"score"`
	Label   string   `json:"label"`
	Factors []string `json:"factors"`
}

// Player is one entry of the player pool.
type Player struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Team      string              `json:"team"`
	Positions []string            `json:"positions"`
	IsHitter  bool                `json:"is_hitter"`
	Hitting   *HittingProjection  `json:"hitting,omitempty"`
	Pitching  *PitchingProjection `json:"pitching,omitempty"`
	Metrics   map[string]float64  `json:"metrics,omitempty"`

	SGP            float64            `json:"sgp"`
	SGPPerCategory map[string]float64 `json:"sgp_per_category"`
	DollarValue    float64            `json:"dollar_value"`
	InflatedValue  float64            `json:"inflated_value"`
	PreBidRange    *PreBidRange       `json:"pre_bid_range,omitempty"`
	Breakout       *BreakoutProfile   `json:"breakout,omitempty"`

	IsKeeper     bool   `json:"is_keeper"`
	KeeperTeamID string `json:"keeper_team_id,omitempty"`
	KeeperSalary int    `json:"keeper_salary,omitempty"`
	IsDrafted    bool   `json:"is_drafted"`
	DraftTeamID  string `json:"draft_team_id,omitempty"`
	DraftPrice   int    `json:"draft_price,omitempty"`
}

// Available reports whether the player can still be bought at auction.
func (p *Player) Available() bool {
	return !p.IsDrafted && !p.IsKeeper
}

// Metric returns a named advanced metric and whether it was supplied.
func (p *Player) Metric(name string) (float64, bool) {
	v, ok := p.Metrics[name]
	return v, ok
}

// Clone returns a deep copy safe to hand out of a locked section.
func (p *Player) Clone() Player {
	c := *p
	c.Positions = append([]string(nil), p.Positions...)
	if p.Hitting != nil {
		h := *p.Hitting
		c.Hitting = &h
	}
	if p.Pitching != nil {
		pp := *p.Pitching
		c.Pitching = &pp
	}
	if p.Metrics != nil {
		c.Metrics = make(map[string]float64, len(p.Metrics))
		for k, v := range p.Metrics {
			c.Metrics[k] = v
		}
	}
	if p.SGPPerCategory != nil {
		c.SGPPerCategory = make(map[string]float64, len(p.SGPPerCategory))
		for k, v := range p.SGPPerCategory {
			c.SGPPerCategory[k] = v
		}
	}
	if p.PreBidRange != nil {
		r := *p.PreBidRange
		c.PreBidRange = &r
	}
	if p.Breakout != nil {
		b := *p.Breakout
		b.Factors = append([]string(nil), p.Breakout.Factors...)
		c.Breakout = &b
	}
	return c
}

// ClearDraft removes the drafted flags.
func (p *Player) ClearDraft() {
	p.IsDrafted = false
	p.DraftTeamID = ""
	p.DraftPrice = 0
}

// ClearKeeper removes the keeper flags.
func (p *Player) ClearKeeper() {
	p.IsKeeper = false
	p.KeeperTeamID = ""
	p.KeeperSalary = 0
}

// Keeper is a player a team retains at a fixed salary. PlayerID is empty
// until the keeper is linked to the pool.
type Keeper struct {
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name" validate:"required"`
	Salary     int      `json:"salary" validate:"gte=0"`
	Positions  []string `json:"positions"`
}

// Team is one franchise in the league.
type Team struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	IsUser      bool     `json:"is_user"`
	Keepers     []Keeper `json:"keepers"`
	DraftPicks  []string `json:"draft_picks"`
	BudgetSpent int      `json:"budget_spent"`
}

// KeeperSalary is the sum of the team's keeper salaries.
func (t *Team) KeeperSalary() int {
	total := 0
	for _, k := range t.Keepers {
		total += k.Salary
	}
	return total
}

// TotalSpent is keeper salary plus auction spend.
func (t *Team) TotalSpent() int {
	return t.KeeperSalary() + t.BudgetSpent
}

// RemainingBudget is what the team can still spend.
func (t *Team) RemainingBudget(budgetPerTeam int) int {
	return budgetPerTeam - t.TotalSpent()
}

// RemovePick drops one occurrence of playerID from the team's pick list.
func (t *Team) RemovePick(playerID string) {
	for i, id := range t.DraftPicks {
		if id == playerID {
			t.DraftPicks = append(t.DraftPicks[:i], t.DraftPicks[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy of the team.
func (t *Team) Clone() Team {
	c := *t
	c.Keepers = make([]Keeper, len(t.Keepers))
	for i, k := range t.Keepers {
		k.Positions = append([]string(nil), k.Positions...)
		c.Keepers[i] = k
	}
	c.DraftPicks = append([]string{}, t.DraftPicks...)
	return c
}

// DraftPick is an immutable record of one auction purchase.
type DraftPick struct {
	ID             string         `json:"id"`
	PlayerID       string         `json:"player_id"`
	PlayerName     string         `json:"player_name"`
	TeamID         string         `json:"team_id"`
	Price          int            `json:"price"`
	Positions      []string       `json:"positions"`
	DollarValue    float64        `json:"dollar_value"`
	InflatedValue  float64        `json:"inflated_value"`
	ValueDiff      float64        `json:"value_diff"`
	Classification Classification `json:"classification"`
	Timestamp      time.Time      `json:"timestamp"`
}

// DraftState is the ledger: picks in draft order plus the current inflation rate.
type DraftState struct {
	Picks                []DraftPick `json:"picks"`
	IsActive             bool        `json:"is_active"`
	CurrentInflationRate float64     `json:"current_inflation_rate"`
}

// NewDraftState returns an empty ledger at rate 1.0.
func NewDraftState(active bool) *DraftState {
	return &DraftState{
		Picks:                []DraftPick{},
		IsActive:             active,
		CurrentInflationRate: 1.0,
	}
}

// PickCount is the number of recorded picks.
func (s *DraftState) PickCount() int {
	return len(s.Picks)
}

// TeamPicks returns the picks made by one team, in draft order.
func (s *DraftState) TeamPicks(teamID string) []DraftPick {
	var out []DraftPick
	for _, p := range s.Picks {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of the ledger.
func (s *DraftState) Clone() DraftState {
	c := *s
	c.Picks = make([]DraftPick, len(s.Picks))
	for i, p := range s.Picks {
		p.Positions = append([]string(nil), p.Positions...)
		c.Picks[i] = p
	}
	return c
}

// Candidate is one available player offered for an open roster slot.
type Candidate struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Urgency  float64 `json:"urgency"`
}

// RosterNeed is the fill status of one roster slot instance.
type RosterNeed struct {
	Slot         string      `json:"slot"`
	Filled       bool        `json:"filled"`
	PlayerName   string      `json:"player_name,omitempty"`
	TopAvailable []Candidate `json:"top_available"`
}

// Recommendation is a ranked suggestion for the next purchase.
type Recommendation struct {
	PlayerID       string  `json:"player_id"`
	PlayerName     string  `json:"player_name"`
	Position       string  `json:"position"`
	Slot           string  `json:"slot"`
	InflatedValue  float64 `json:"inflated_value"`
	FairPrice      float64 `json:"fair_price"`
	StealUnder     float64 `json:"steal_under"`
	UrgencyScore   float64 `json:"urgency_score"`
	ValueOverNext  float64 `json:"value_over_next"`
	BudgetFeasible bool    `json:"budget_feasible"`
	Reason         string  `json:"reason"`
}

// Alert is a recent pick with its classification, newest first in listings.
type Alert struct {
	PickID         string         `json:"pick_id"`
	PlayerName     string         `json:"player_name"`
	TeamID         string         `json:"team_id"`
	Price          int            `json:"price"`
	InflatedValue  float64        `json:"inflated_value"`
	Classification Classification `json:"classification"`
	ValueDiff      float64        `json:"value_diff"`
}

// AlertFromPick builds the alert view of a pick.
func AlertFromPick(p DraftPick) Alert {
	return Alert{
		PickID:         p.ID,
		PlayerName:     p.PlayerName,
		TeamID:         p.TeamID,
		Price:          p.Price,
		InflatedValue:  p.InflatedValue,
		Classification: p.Classification,
		ValueDiff:      p.ValueDiff,
	}
}

// KeeperLink statuses.
const (
	LinkStatusLinked   = "linked"
	LinkStatusUnlinked = "unlinked"
	LinkStatusConflict = "conflict"
)

// KeeperLinkDetail reports how one keeper entry resolved.
type KeeperLinkDetail struct {
	TeamID        string `json:"team_id"`
	KeeperName    string `json:"keeper_name"`
	MatchedPlayer string `json:"matched_player,omitempty"`
	PlayerID      string `json:"player_id,omitempty"`
	Score         int    `json:"score"`
	Status        string `json:"status"`
}

// KeeperLinkResult summarizes a keeper linking pass.
type KeeperLinkResult struct {
	Linked   int                `json:"linked"`
	Unlinked int                `json:"unlinked"`
	Details  []KeeperLinkDetail `json:"details"`
}

// RosterSlot is one filled or empty slot in a team's roster view.
type RosterSlot struct {
	Slot       string `json:"slot"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Price      int    `json:"price,omitempty"`
	IsKeeper   bool   `json:"is_keeper,omitempty"`
}

// TeamRoster is the roster and budget summary of one team.
type TeamRoster struct {
	Team            Team         `json:"team"`
	Slots           []RosterSlot `json:"slots"`
	Unassigned      []string     `json:"unassigned,omitempty"`
	RemainingBudget int          `json:"remaining_budget"`
	EmptySlots      int          `json:"empty_slots"`
	MaxBid          int          `json:"max_bid"`
}
