package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/valuation"
)

const (
	candidatesPerSlot  = 3
	maxRecommendations = 10
	urgencyWeight      = 0.4
	valueWeight        = 0.6
)

// topAvailable returns the best available players for slot by inflated
// value. Ties keep pool order.
func topAvailable(src PlayerSource, slot string, n int) []*models.Player {
	var eligible []*models.Player
	for _, p := range src.All() {
		if p.Available() && EligibleFor(p, slot) {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].InflatedValue > eligible[j].InflatedValue
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible
}

// valueOverNext is the gap between the best and second best candidate, or
// the best candidate's value when it is alone.
func valueOverNext(top []*models.Player) float64 {
	switch len(top) {
	case 0:
		return 0
	case 1:
		return top[0].InflatedValue
	default:
		return top[0].InflatedValue - top[1].InflatedValue
	}
}

func slotLabel(slot string, count, i int) string {
	if count == 1 {
		return slot
	}
	return fmt.Sprintf("%s (%d)", slot, i+1)
}

// Needs reports every slot instance of the team's roster, with the top
// available candidates for the open ones.
func Needs(team *models.Team, src PlayerSource, cfg config.League) []models.RosterNeed {
	a := Assign(TeamPlayers(team, src), cfg.Roster)

	var needs []models.RosterNeed
	for _, slot := range config.SlotOrder {
		count := cfg.Roster.Count(slot)
		filled := a.Filled[slot]

		var open []models.Candidate
		if len(filled) < count {
			top := topAvailable(src, slot, candidatesPerSlot)
			urgency := valuation.Round1(valueOverNext(top))
			open = make([]models.Candidate, 0, len(top))
			for _, p := range top {
				open = append(open, models.Candidate{
					PlayerID: p.ID,
					Name:     p.Name,
					Value:    valuation.Round1(p.InflatedValue),
					Urgency:  urgency,
				})
			}
		}

		for i := 0; i < count; i++ {
			need := models.RosterNeed{Slot: slotLabel(slot, count, i), TopAvailable: []models.Candidate{}}
			if i < len(filled) {
				need.Filled = true
				need.PlayerName = filled[i].Name
			} else {
				need.TopAvailable = open
			}
			needs = append(needs, need)
		}
	}
	return needs
}

// Recommend ranks up to ten purchases across the team's open slots by
// urgency*0.4 + inflated_value*0.6. Each open slot contributes its top three
// candidates once, however many instances of it are open; only the first
// candidate of a slot carries urgency.
func Recommend(team *models.Team, src PlayerSource, cfg config.League) []models.Recommendation {
	a := Assign(TeamPlayers(team, src), cfg.Roster)
	remainingSlots := cfg.Roster.Total() - a.FilledCount()
	remainingBudget := float64(team.RemainingBudget(cfg.BudgetPerTeam))

	type scored struct {
		score float64
		rec   models.Recommendation
	}
	var all []scored

	for _, slot := range config.SlotOrder {
		if len(a.Filled[slot]) >= cfg.Roster.Count(slot) {
			continue
		}
		top := topAvailable(src, slot, candidatesPerSlot)
		if len(top) == 0 {
			continue
		}
		von := valueOverNext(top)

		for i, p := range top {
			urgency := 0.0
			kind := "alternative"
			if i == 0 {
				urgency = von
				kind = "pick"
			}
			stealUnder := p.InflatedValue * cfg.PreBid.Steal
			if p.PreBidRange != nil {
				stealUnder = p.PreBidRange.StealBelow
			}
			all = append(all, scored{
				score: urgency*urgencyWeight + p.InflatedValue*valueWeight,
				rec: models.Recommendation{
					PlayerID:       p.ID,
					PlayerName:     p.Name,
					Position:       strings.Join(p.Positions, "/"),
					Slot:           slot,
					InflatedValue:  valuation.Round1(p.InflatedValue),
					FairPrice:      valuation.Round1(p.InflatedValue),
					StealUnder:     valuation.Round1(stealUnder),
					UrgencyScore:   valuation.Round(urgency, 2),
					ValueOverNext:  valuation.Round(von, 2),
					BudgetFeasible: remainingBudget >= p.InflatedValue+float64(remainingSlots-1),
					Reason:         fmt.Sprintf("Top %s for %s slot", kind, slot),
				},
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	if len(all) > maxRecommendations {
		all = all[:maxRecommendations]
	}
	out := make([]models.Recommendation, len(all))
	for i, s := range all {
		out[i] = s.rec
	}
	return out
}

// Summary builds the roster and budget view of a team. The max bid keeps
// $1 back for every other empty slot.
func Summary(team *models.Team, src PlayerSource, cfg config.League) models.TeamRoster {
	a := Assign(TeamPlayers(team, src), cfg.Roster)

	tr := models.TeamRoster{
		Team:            team.Clone(),
		Slots:           []models.RosterSlot{},
		RemainingBudget: team.RemainingBudget(cfg.BudgetPerTeam),
	}
	for _, slot := range config.SlotOrder {
		filled := a.Filled[slot]
		for i := 0; i < cfg.Roster.Count(slot); i++ {
			rs := models.RosterSlot{Slot: slot}
			if i < len(filled) {
				p := filled[i]
				rs.PlayerID, rs.PlayerName = p.ID, p.Name
				if p.IsKeeper {
					rs.Price, rs.IsKeeper = p.KeeperSalary, true
				} else {
					rs.Price = p.DraftPrice
				}
			} else {
				tr.EmptySlots++
			}
			tr.Slots = append(tr.Slots, rs)
		}
	}
	for _, p := range a.Unassigned {
		tr.Unassigned = append(tr.Unassigned, p.Name)
	}
	tr.MaxBid = max(1, tr.RemainingBudget-tr.EmptySlots+1)
	return tr
}
