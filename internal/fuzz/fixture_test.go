package fuzz

import (
	"net/http"
	"testing"

	"github.com/Billy-Davies-2/auction-draft/internal/auth"
	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/draft"
	"github.com/Billy-Davies-2/auction-draft/internal/handlers"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

func init() {
	logger.Init("error", "text")
}

func newService(t *testing.T) (*draft.Service, *pubsub.PubSub) {
	t.Helper()
	cfg := config.DefaultLeague()
	cfg.NumTeams = 3
	cfg.BudgetPerTeam = 120
	cfg.Roster = config.RosterSlots{C: 1, OF: 1, U: 1, P: 2}
	cfg.MaxKeeperCount = 2

	ps := pubsub.New()
	svc := draft.New(cfg, draft.Options{Publisher: ps})
	_, err := svc.Ingest([]models.Player{
		{ID: "1", Name: "Aaron Judge", IsHitter: true, Positions: []string{"OF"},
			Hitting: &models.HittingProjection{AB: 550, H: 160, HR: 50, R: 110, RBI: 120, SB: 5}},
		{ID: "2", Name: "Will Smith", IsHitter: true, Positions: []string{"C"},
			Hitting: &models.HittingProjection{AB: 480, H: 125, HR: 20, R: 70, RBI: 75, SB: 2}},
		{ID: "3", Name: "Elly De La Cruz", IsHitter: true, Positions: []string{"SS"},
			Hitting: &models.HittingProjection{AB: 600, H: 150, HR: 25, R: 100, RBI: 80, SB: 60}},
		{ID: "4", Name: "Zack Wheeler", Positions: []string{"SP"},
			Pitching: &models.PitchingProjection{IP: 190, W: 14, K: 210, ER: 60, H: 150, BB: 45}},
		{ID: "5", Name: "Josh Hader", Positions: []string{"RP"},
			Pitching: &models.PitchingProjection{IP: 60, W: 3, SV: 35, K: 85, ER: 20, H: 40, BB: 20}},
	}, true)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	svc.StartDraft()
	return svc, ps
}

func newRouter(t *testing.T) (http.Handler, *http.Cookie, *draft.Service) {
	t.Helper()
	svc, ps := newService(t)
	mock := auth.NewMockAuth()
	router := handlers.NewRouter(handlers.NewAPIHandlers(svc, ps, nil), mock, nil)
	return router, auth.SessionCookie(mock.NewSession(auth.DevUser)), svc
}

// checkLedger asserts the ledger and the pool agree after any input.
func checkLedger(t *testing.T, svc *draft.Service) {
	t.Helper()
	st := svc.State()
	drafted := svc.Players(pool.Query{})
	n := 0
	for _, p := range drafted {
		if p.IsDrafted {
			n++
		}
	}
	if n != len(st.Picks) {
		t.Fatalf("ledger has %d picks but %d players are drafted", len(st.Picks), n)
	}
}
