package draft

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/metrics"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

// Save writes the ledger, and only the ledger, to the snapshot store.
// Player and team flags are rebuilt from it on Load.
func (s *Service) Save(ctx context.Context) (string, error) {
	s.mu.RLock()
	st := s.state.Clone()
	s.mu.RUnlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode draft state: %w", err)
	}
	loc, err := s.store.Save(ctx, data)
	metrics.Mutation("save", err)
	if err != nil {
		logger.Error("Failed to save draft state", "error", err)
		return "", err
	}
	logger.Info("Draft state saved", "location", loc, "picks", len(st.Picks))
	return loc, nil
}

// Load replaces the ledger with the saved snapshot and replays its picks
// in order onto freshly cleared players and teams.
func (s *Service) Load(ctx context.Context) (models.DraftState, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		metrics.Mutation("load", err)
		return models.DraftState{}, err
	}
	var loaded models.DraftState
	if err := json.Unmarshal(data, &loaded); err != nil {
		metrics.Mutation("load", err)
		return models.DraftState{}, fmt.Errorf("decode draft state: %w", err)
	}
	if loaded.Picks == nil {
		loaded.Picks = []models.DraftPick{}
	}

	s.mu.Lock()
	s.state = &loaded
	s.clearDraft()
	dropped := s.replay()
	s.recalculate(nil)
	st := s.state.Clone()
	s.mu.Unlock()

	metrics.Mutation("load", nil)
	logger.Info("Draft state loaded", "picks", len(st.Picks), "dropped", dropped, "inflation_rate", st.CurrentInflationRate)
	s.publish(pubsub.EventDraftLoad, map[string]interface{}{
		"picks":          len(st.Picks),
		"inflation_rate": st.CurrentInflationRate,
	})
	return st, nil
}
