package draft

import (
	"fmt"
	"io"

	"github.com/Billy-Davies-2/auction-draft/internal/league"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/metrics"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

// Ingest loads players into the pool and rebuilds everything derived from
// it: keeper links, the ledger's draft flags and the valuations.
func (s *Service) Ingest(players []models.Player, replace bool) (int, error) {
	s.mu.Lock()
	n, err := s.pool.Ingest(players, replace)
	var link models.KeeperLinkResult
	if err == nil {
		s.clearDraft()
		link = s.league.LinkKeepers(s.pool, s.matcher)
		if dropped := s.replay(); dropped > 0 {
			logger.Warn("Picks dropped after ingest", "dropped", dropped)
		}
		s.recalculate(nil)
	}
	total := s.pool.Len()
	s.mu.Unlock()

	metrics.Mutation("ingest", err)
	if err != nil {
		logger.Warn("Ingest rejected", "error", err)
		return 0, err
	}
	logger.Info("Players ingested", "count", n, "pool", total, "replace", replace, "keepers_linked", link.Linked)
	s.publish(pubsub.EventPlayersIngested, map[string]interface{}{"count": n, "pool": total})
	return n, nil
}

// LinkKeepers resolves keeper names to players and reprices the pool.
func (s *Service) LinkKeepers() models.KeeperLinkResult {
	s.mu.Lock()
	res := s.linkLocked()
	s.mu.Unlock()

	metrics.Mutation("link", nil)
	s.publish(pubsub.EventKeepersLinked, map[string]interface{}{"linked": res.Linked, "unlinked": res.Unlinked})
	return res
}

func (s *Service) linkLocked() models.KeeperLinkResult {
	res := s.league.LinkKeepers(s.pool, s.matcher)
	s.recalculate(nil)
	logger.Info("Keepers linked", "linked", res.Linked, "unlinked", res.Unlinked, "inflation_rate", s.state.CurrentInflationRate)
	return res
}

// keeperEdit runs a league edit and, when it succeeds, relinks and
// reprices. A failed edit leaves everything untouched.
func (s *Service) keeperEdit(op string, edit func(*league.League) error) (models.KeeperLinkResult, error) {
	s.mu.Lock()
	err := edit(s.league)
	var res models.KeeperLinkResult
	if err == nil {
		res = s.linkLocked()
	}
	s.mu.Unlock()

	metrics.Mutation(op, err)
	if err != nil {
		logger.Warn("Keeper edit rejected", "op", op, "error", err)
		return res, err
	}
	s.publish(pubsub.EventKeepersLinked, map[string]interface{}{"linked": res.Linked, "unlinked": res.Unlinked})
	return res, nil
}

func (s *Service) AddKeeper(teamID string, k models.Keeper) (models.KeeperLinkResult, error) {
	return s.keeperEdit("keeper_add", func(l *league.League) error {
		return l.AddKeeper(teamID, k)
	})
}

func (s *Service) SetKeepers(teamID string, keepers []models.Keeper) (models.KeeperLinkResult, error) {
	return s.keeperEdit("keeper_set", func(l *league.League) error {
		return l.SetKeepers(teamID, keepers)
	})
}

func (s *Service) RemoveKeeper(teamID, playerName string) (models.KeeperLinkResult, error) {
	return s.keeperEdit("keeper_remove", func(l *league.League) error {
		removed, err := l.RemoveKeeper(teamID, playerName)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%w: keeper %q on %s", models.ErrNotFound, playerName, teamID)
		}
		return nil
	})
}

// ImportKeepersCSV adds keepers from CSV; bad rows are reported, not fatal.
func (s *Service) ImportKeepersCSV(r io.Reader) (league.ImportResult, models.KeeperLinkResult, error) {
	var imported league.ImportResult
	link, err := s.keeperEdit("keeper_import", func(l *league.League) error {
		var err error
		imported, err = l.ImportKeepersCSV(r)
		return err
	})
	return imported, link, err
}

// UpdateTeam renames a team or moves the user flag.
func (s *Service) UpdateTeam(teamID string, name *string, isUser *bool) (models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.league.UpdateTeam(teamID, name, isUser)
	if err != nil {
		return models.Team{}, err
	}
	return t.Clone(), nil
}
