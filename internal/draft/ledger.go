package draft

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/metrics"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
	"github.com/Billy-Davies-2/auction-draft/internal/valuation"
)

// clearDraft un-drafts every player and empties every team's picks.
func (s *Service) clearDraft() {
	for _, p := range s.pool.All() {
		if p.IsDrafted {
			p.ClearDraft()
		}
	}
	s.league.ClearDraft()
}

// StartDraft opens a fresh ledger and reprices the pool.
func (s *Service) StartDraft() models.DraftState {
	s.mu.Lock()
	s.clearDraft()
	s.state = models.NewDraftState(true)
	s.recalculate(nil)
	st := s.state.Clone()
	s.mu.Unlock()

	metrics.Mutation("start", nil)
	logger.Info("Draft started", "inflation_rate", st.CurrentInflationRate)
	s.publish(pubsub.EventDraftStart, map[string]interface{}{"inflation_rate": st.CurrentInflationRate})
	return st
}

// ResetDraft discards every pick and leaves the ledger inactive.
func (s *Service) ResetDraft() models.DraftState {
	s.mu.Lock()
	s.clearDraft()
	s.state = models.NewDraftState(false)
	s.recalculate(nil)
	st := s.state.Clone()
	s.mu.Unlock()

	metrics.Mutation("reset", nil)
	logger.Info("Draft reset", "inflation_rate", st.CurrentInflationRate)
	s.publish(pubsub.EventDraftReset, map[string]interface{}{"inflation_rate": st.CurrentInflationRate})
	return st
}

// RecordPick sells a player to a team. The pick keeps the values seen at
// the moment of sale; its classification uses the ranges after the market
// has absorbed it. The returned rate is the inflation rate right after
// this pick.
func (s *Service) RecordPick(playerID, teamID string, price int) (models.DraftPick, float64, error) {
	s.mu.Lock()
	pick, err := s.recordPick(playerID, teamID, price)
	rate := s.state.CurrentInflationRate
	s.mu.Unlock()

	metrics.Mutation("pick", err)
	if err != nil {
		logger.Warn("Pick rejected", "player_id", playerID, "team_id", teamID, "price", price, "error", err)
		return models.DraftPick{}, 0, err
	}
	metrics.Pick(string(pick.Classification))
	logger.Info("Pick recorded",
		"pick_id", pick.ID,
		"player_id", pick.PlayerID,
		"team_id", pick.TeamID,
		"price", pick.Price,
		"classification", pick.Classification,
		"inflation_rate", rate)

	payload := pickPayload(pick)
	payload["inflation_rate"] = rate
	s.publish(pubsub.EventDraftPick, payload)
	return pick, rate, nil
}

func (s *Service) recordPick(playerID, teamID string, price int) (models.DraftPick, error) {
	if price < 0 {
		return models.DraftPick{}, fmt.Errorf("%w: price %d is negative", ErrInvalidInput, price)
	}
	p := s.pool.Get(playerID)
	if p == nil {
		return models.DraftPick{}, fmt.Errorf("%w: player %q", models.ErrNotFound, playerID)
	}
	if p.IsDrafted {
		return models.DraftPick{}, fmt.Errorf("%w: %s is already drafted", models.ErrInvalidTransition, p.Name)
	}
	if p.IsKeeper {
		return models.DraftPick{}, fmt.Errorf("%w: %s is a keeper", models.ErrInvalidTransition, p.Name)
	}
	team := s.league.Team(teamID)
	if team == nil {
		return models.DraftPick{}, fmt.Errorf("%w: team %q", models.ErrNotFound, teamID)
	}

	pick := models.DraftPick{
		ID:            uuid.NewString(),
		PlayerID:      p.ID,
		PlayerName:    p.Name,
		TeamID:        team.ID,
		Price:         price,
		Positions:     append([]string(nil), p.Positions...),
		DollarValue:   p.DollarValue,
		InflatedValue: p.InflatedValue,
		ValueDiff:     valuation.Round1(p.InflatedValue - float64(price)),
		Timestamp:     s.now().UTC(),
	}

	s.applyPick(p, team, price)
	s.state.Picks = append(s.state.Picks, pick)
	s.recalculate(nil)

	pick.Classification = valuation.Classify(p.PreBidRange, price)
	s.state.Picks[len(s.state.Picks)-1].Classification = pick.Classification
	return pick, nil
}

func (s *Service) applyPick(p *models.Player, team *models.Team, price int) {
	p.IsDrafted = true
	p.DraftTeamID = team.ID
	p.DraftPrice = price
	team.BudgetSpent += price
	team.DraftPicks = append(team.DraftPicks, p.ID)
}

// UndoPick removes any pick from the ledger, not only the latest, and
// reprices from the picks that remain. The returned rate is the inflation
// rate right after the undo.
func (s *Service) UndoPick(pickID string) (models.DraftPick, float64, error) {
	s.mu.Lock()
	pick, err := s.undoPick(pickID)
	rate := s.state.CurrentInflationRate
	s.mu.Unlock()

	metrics.Mutation("undo", err)
	if err != nil {
		logger.Warn("Undo rejected", "pick_id", pickID, "error", err)
		return models.DraftPick{}, 0, err
	}
	logger.Info("Pick undone",
		"pick_id", pick.ID,
		"player_id", pick.PlayerID,
		"team_id", pick.TeamID,
		"price", pick.Price,
		"inflation_rate", rate)

	payload := pickPayload(pick)
	payload["inflation_rate"] = rate
	s.publish(pubsub.EventDraftUndo, payload)
	return pick, rate, nil
}

func (s *Service) undoPick(pickID string) (models.DraftPick, error) {
	idx := -1
	for i, p := range s.state.Picks {
		if p.ID == pickID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.DraftPick{}, fmt.Errorf("%w: pick %q", models.ErrNotFound, pickID)
	}

	pick := s.state.Picks[idx]
	s.state.Picks = append(s.state.Picks[:idx], s.state.Picks[idx+1:]...)

	if p := s.pool.Get(pick.PlayerID); p != nil {
		p.ClearDraft()
	}
	if team := s.league.Team(pick.TeamID); team != nil {
		team.BudgetSpent -= pick.Price
		team.RemovePick(pick.PlayerID)
	}
	s.recalculate(nil)
	return pick, nil
}

// replay re-applies the ledger to a pool and league whose draft flags were
// cleared. Picks whose player or team no longer exists, or whose player is
// now a keeper, are dropped from the ledger.
func (s *Service) replay() int {
	kept := make([]models.DraftPick, 0, len(s.state.Picks))
	for _, pick := range s.state.Picks {
		p := s.pool.Get(pick.PlayerID)
		team := s.league.Team(pick.TeamID)
		switch {
		case p == nil:
			logger.Warn("Dropping pick for unknown player", "pick_id", pick.ID, "player_id", pick.PlayerID)
			continue
		case team == nil:
			logger.Warn("Dropping pick for unknown team", "pick_id", pick.ID, "team_id", pick.TeamID)
			continue
		case !p.Available():
			logger.Warn("Dropping pick for unavailable player", "pick_id", pick.ID, "player_id", pick.PlayerID)
			continue
		}
		s.applyPick(p, team, pick.Price)
		kept = append(kept, pick)
	}
	dropped := len(s.state.Picks) - len(kept)
	s.state.Picks = kept
	return dropped
}
