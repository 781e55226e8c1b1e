// Package draft is the draft ledger service. It owns the player pool, the
// league and the pick ledger, and is the one place they change: every
// mutation runs under a single lock and ends with a full revaluation, so a
// reader never sees a pick without its effect on prices.
package draft

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/dal"
	"github.com/Billy-Davies-2/auction-draft/internal/league"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/metrics"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
	"github.com/Billy-Davies-2/auction-draft/internal/valuation"
)

// ErrInvalidInput is returned for a request the ledger refuses before
// touching any state, such as a negative price.
var ErrInvalidInput = errors.New("invalid input")

// Options carries the collaborators of a Service. Zero values are replaced
// with in-memory defaults.
type Options struct {
	Store     dal.SnapshotStore
	Publisher pubsub.Publisher
	Matcher   league.Matcher
	Clock     func() time.Time
}

type Service struct {
	mu     sync.RWMutex
	cfg    config.League
	pool   *pool.Pool
	league *league.League
	state  *models.DraftState
	last   valuation.Result

	store   dal.SnapshotStore
	pub     pubsub.Publisher
	matcher league.Matcher
	now     func() time.Time
}

func New(cfg config.League, opts Options) *Service {
	s := &Service{
		cfg:     cfg,
		pool:    pool.New(),
		league:  league.New(cfg),
		state:   models.NewDraftState(false),
		store:   opts.Store,
		pub:     opts.Publisher,
		matcher: opts.Matcher,
		now:     opts.Clock,
	}
	if s.store == nil {
		s.store = dal.NewMemoryStore()
	}
	if s.matcher == nil {
		s.matcher = league.NewTokenSortMatcher(cfg.MatchThreshold)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Config returns the league configuration the service values against.
func (s *Service) Config() config.League {
	return s.cfg
}

// recalculate reprices the whole pool. rate overrides the computed
// inflation rate. Callers hold the write lock.
func (s *Service) recalculate(rate *float64) {
	if s.pool.Len() == 0 {
		return
	}
	start := time.Now()
	in := valuation.InflationInput{
		TotalBudget:  s.cfg.TotalBudget(),
		KeeperSalary: s.league.TotalKeeperSalary(),
		KeeperCount:  s.league.TotalKeeperCount(),
		DraftedSpend: s.draftedSpend(),
	}
	s.last = valuation.Run(s.pool.All(), s.cfg, in, rate)
	s.state.CurrentInflationRate = s.last.Inflation.Rate
	metrics.Recalculated(time.Since(start), s.last.Inflation.Rate, s.pool.Len())
}

func (s *Service) draftedSpend() int {
	total := 0
	for _, p := range s.state.Picks {
		total += p.Price
	}
	return total
}

// publish notifies observers once the lock is released. Delivery is best
// effort and never fails the mutation.
func (s *Service) publish(typ string, payload map[string]interface{}) {
	if s.pub == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.EventDropped()
			logger.Error("Failed to publish draft event", "type", typ, "panic", r)
		}
	}()
	s.pub.Publish(pubsub.NewEvent(typ, payload))
}

func pickPayload(p models.DraftPick) map[string]interface{} {
	return map[string]interface{}{
		"pick_id":        p.ID,
		"player_id":      p.PlayerID,
		"player_name":    p.PlayerName,
		"team_id":        p.TeamID,
		"price":          p.Price,
		"dollar_value":   p.DollarValue,
		"inflated_value": p.InflatedValue,
		"value_diff":     p.ValueDiff,
		"classification": string(p.Classification),
	}
}

// Ping checks the snapshot store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// PlayerCount is the size of the pool.
func (s *Service) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool.Len()
}
