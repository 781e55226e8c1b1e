package draft

import (
	"fmt"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/metrics"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
	"github.com/Billy-Davies-2/auction-draft/internal/roster"
	"github.com/Billy-Davies-2/auction-draft/internal/valuation"
)

// CalculateValuations relinks keepers and reprices the pool. A nil rate
// derives inflation from keepers and picks; a given rate is applied as is
// and becomes the ledger's current rate until the next mutation.
func (s *Service) CalculateValuations(rate *float64) (valuation.Result, error) {
	if rate != nil && *rate <= 0 {
		return valuation.Result{}, fmt.Errorf("%w: inflation rate %v must be positive", ErrInvalidInput, *rate)
	}

	s.mu.Lock()
	s.league.LinkKeepers(s.pool, s.matcher)
	s.recalculate(rate)
	res := s.last
	players := s.pool.Len()
	s.mu.Unlock()

	metrics.Mutation("calculate", nil)
	logger.Info("Valuations calculated", "players", players, "inflation_rate", res.Inflation.Rate, "explicit_rate", rate != nil)
	s.publish(pubsub.EventValuations, map[string]interface{}{
		"players":        players,
		"inflation_rate": res.Inflation.Rate,
	})
	return res, nil
}

// Valuation is the result of the last recalculation.
func (s *Service) Valuation() valuation.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Inflation is the breakdown behind the current rate.
func (s *Service) Inflation() valuation.InflationReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last.Inflation
}

// State returns a copy of the ledger.
func (s *Service) State() models.DraftState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Service) Player(id string) (models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.pool.Get(id)
	if p == nil {
		return models.Player{}, fmt.Errorf("%w: player %q", models.ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (s *Service) Players(q pool.Query) []models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool.Filter(q)
}

func (s *Service) Teams() []models.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := s.league.Teams()
	out := make([]models.Team, len(teams))
	for i, t := range teams {
		out[i] = t.Clone()
	}
	return out
}

// team resolves teamID, or the user's team when teamID is empty.
func (s *Service) team(teamID string) (*models.Team, error) {
	var t *models.Team
	if teamID == "" {
		t = s.league.UserTeam()
	} else {
		t = s.league.Team(teamID)
	}
	if t == nil {
		if teamID == "" {
			return nil, fmt.Errorf("%w: no team is flagged as the user's", models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: team %q", models.ErrNotFound, teamID)
	}
	return t, nil
}

func (s *Service) Team(teamID string) (models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.team(teamID)
	if err != nil {
		return models.Team{}, err
	}
	return t.Clone(), nil
}

// RosterNeeds lists every slot instance of a team with its fill status.
// An empty teamID means the user's team.
func (s *Service) RosterNeeds(teamID string) ([]models.RosterNeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.team(teamID)
	if err != nil {
		return nil, err
	}
	return roster.Needs(t, s.pool, s.cfg), nil
}

func (s *Service) Recommendations(teamID string) ([]models.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.team(teamID)
	if err != nil {
		return nil, err
	}
	return roster.Recommend(t, s.pool, s.cfg), nil
}

// Roster is the slot and budget view of a team.
func (s *Service) Roster(teamID string) (models.TeamRoster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.team(teamID)
	if err != nil {
		return models.TeamRoster{}, err
	}
	return roster.Summary(t, s.pool, s.cfg), nil
}

// MyRoster is Roster for the user's team.
func (s *Service) MyRoster() (models.TeamRoster, error) {
	return s.Roster("")
}

// ClassifyPreview labels a hypothetical price against a player's current
// range without touching the ledger.
func (s *Service) ClassifyPreview(playerID string, price int) (models.Classification, models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.pool.Get(playerID)
	if p == nil {
		return "", models.Player{}, fmt.Errorf("%w: player %q", models.ErrNotFound, playerID)
	}
	return valuation.Classify(p.PreBidRange, price), p.Clone(), nil
}

// RecentAlerts returns the last n picks, newest first. n <= 0 means all.
func (s *Service) RecentAlerts(n int) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	picks := s.state.Picks
	if n <= 0 || n > len(picks) {
		n = len(picks)
	}
	out := make([]models.Alert, 0, n)
	for i := len(picks) - 1; i >= len(picks)-n; i-- {
		out = append(out, models.AlertFromPick(picks[i]))
	}
	return out
}
