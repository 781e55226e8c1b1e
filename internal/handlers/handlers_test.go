package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/auction-draft/internal/auth"
	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/draft"
	"github.com/Billy-Davies-2/auction-draft/internal/league"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

func init() {
	logger.Init("error", "text")
}

type fixture struct {
	svc     *draft.Service
	api     *APIHandlers
	ps      *pubsub.PubSub
	router  http.Handler
	session *http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultLeague()
	cfg.NumTeams = 2
	cfg.BudgetPerTeam = 100
	cfg.Roster = config.RosterSlots{U: 2, P: 1}
	cfg.MinKeeperCount = 0
	cfg.MaxKeeperCount = 3

	ps := pubsub.New()
	svc := draft.New(cfg, draft.Options{Publisher: ps})
	_, err := svc.Ingest([]models.Player{
		{ID: "h1", Name: "Aaron Judge", IsHitter: true, Positions: []string{"OF"},
			Hitting: &models.HittingProjection{HR: 50, R: 110, RBI: 120, SB: 5}},
		{ID: "h2", Name: "Juan Soto", IsHitter: true, Positions: []string{"OF"},
			Hitting: &models.HittingProjection{HR: 35, R: 100, RBI: 100, SB: 5}},
		{ID: "h3", Name: "Bobby Witt Jr.", IsHitter: true, Positions: []string{"SS"},
			Hitting: &models.HittingProjection{HR: 30, R: 100, RBI: 95, SB: 35}},
		{ID: "h4", Name: "Cal Raleigh", IsHitter: true, Positions: []string{"C"},
			Hitting: &models.HittingProjection{HR: 25, R: 70, RBI: 80, SB: 1}},
		{ID: "p1", Name: "Tarik Skubal", Positions: []string{"SP"},
			Pitching: &models.PitchingProjection{W: 16, K: 230}},
		{ID: "p2", Name: "Emmanuel Clase", Positions: []string{"RP"},
			Pitching: &models.PitchingProjection{W: 4, SV: 40, K: 70}},
	}, true)
	require.NoError(t, err)
	svc.StartDraft()

	mock := auth.NewMockAuth()
	api := NewAPIHandlers(svc, ps, nil)
	return &fixture{
		svc:     svc,
		api:     api,
		ps:      ps,
		router:  NewRouter(api, mock, nil),
		session: auth.SessionCookie(mock.NewSession(auth.DevUser)),
	}
}

func (f *fixture) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(f.session)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestMutatingRoutesRequireSession(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct{ method, path string }{
		{"POST", "/api/draft/pick"},
		{"DELETE", "/api/draft/pick/abc"},
		{"POST", "/api/draft/reset"},
		{"POST", "/api/keepers/teams/team_1"},
		{"POST", "/api/valuations/calculate"},
	} {
		rec := f.do(t, tc.method, tc.path, `{}`, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
	assert.Empty(t, f.svc.State().Picks)
}

func TestRecordPickThenUndo(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/api/draft/pick", `{"player_id":"h1","team_id":"team_2","price":1}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Pick          models.DraftPick `json:"pick"`
		InflationRate float64          `json:"inflation_rate"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "h1", resp.Pick.PlayerID)
	assert.Equal(t, models.BigSteal, resp.Pick.Classification)
	assert.Len(t, resp.Pick.ID, 36)

	rec = f.do(t, "GET", "/api/draft/state", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var st models.DraftState
	decodeBody(t, rec, &st)
	assert.Len(t, st.Picks, 1)
	assert.Equal(t, resp.InflationRate, st.CurrentInflationRate)

	rec = f.do(t, "DELETE", "/api/draft/pick/"+resp.Pick.ID, "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var undo struct {
		InflationRate float64 `json:"inflation_rate"`
	}
	decodeBody(t, rec, &undo)
	assert.Empty(t, f.svc.State().Picks)
	assert.Equal(t, f.svc.State().CurrentInflationRate, undo.InflationRate)

	rec = f.do(t, "DELETE", "/api/draft/pick/"+resp.Pick.ID, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordPickErrors(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing price", `{"player_id":"h1","team_id":"team_1"}`, http.StatusBadRequest},
		{"negative price", `{"player_id":"h1","team_id":"team_1","price":-3}`, http.StatusBadRequest},
		{"unknown field", `{"player_id":"h1","team_id":"team_1","price":3,"bogus":1}`, http.StatusBadRequest},
		{"malformed", `{"player_id":`, http.StatusBadRequest},
		{"unknown player", `{"player_id":"zz","team_id":"team_1","price":3}`, http.StatusNotFound},
		{"unknown team", `{"player_id":"h1","team_id":"team_9","price":3}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, "POST", "/api/draft/pick", tc.body, true)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	rec := f.do(t, "POST", "/api/draft/pick", `{"player_id":"h1","team_id":"team_1","price":3}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, "POST", "/api/draft/pick", `{"player_id":"h1","team_id":"team_2","price":3}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, f.svc.State().Picks, 1)
}

func TestLoadWithoutSaveIsNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/draft/load", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, "POST", "/api/draft/save", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, "POST", "/api/draft/load", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCalculateValidatesRate(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/valuations/calculate", `{"inflation_rate":0}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "POST", "/api/valuations/calculate", `{"inflation_rate":1.25}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.25, f.svc.State().CurrentInflationRate)

	rec = f.do(t, "POST", "/api/valuations/calculate", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, f.svc.State().CurrentInflationRate)
}

func TestResultsFilters(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/valuations/results?pitchers_only=true", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Players []models.Player `json:"players"`
		Count   int             `json:"count"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Count)
	for _, p := range resp.Players {
		assert.False(t, p.IsHitter)
	}

	rec = f.do(t, "GET", "/api/valuations/results?limit=x", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "GET", "/api/projections/players/h3", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, "GET", "/api/projections/players/nope", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassifyPreview(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/draft/classify?player_id=h1", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "GET", "/api/draft/classify?player_id=h1&price=1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, string(models.BigSteal), resp["classification"])
	assert.Empty(t, f.svc.State().Picks)
}

func TestKeeperRoutes(t *testing.T) {
	f := newFixture(t)
	team2 := f.svc.Teams()[1]

	csv := "team_name,player_name,salary\n" + team2.Name + ",Aaron Judge,40\n"
	req := httptest.NewRequest("POST", "/api/keepers/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	req.AddCookie(f.session)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, err := f.svc.Player("h1")
	require.NoError(t, err)
	assert.True(t, p.IsKeeper)
	assert.Equal(t, team2.ID, p.KeeperTeamID)

	rec = f.do(t, "GET", "/api/keepers/inflation", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var report map[string]interface{}
	decodeBody(t, rec, &report)
	assert.EqualValues(t, 40, report["total_keeper_salary"])

	rec = f.do(t, "DELETE", "/api/keepers/teams/"+team2.ID+"/keepers/Aaron%20Judge", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p, _ = f.svc.Player("h1")
	assert.False(t, p.IsKeeper)

	rec = f.do(t, "POST", "/api/keepers/teams/"+team2.ID, `{"keepers":[{"player_name":"","salary":5}]}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "PUT", "/api/keepers/teams/"+team2.ID, `{"name":"Bronx Bombers"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var team models.Team
	decodeBody(t, rec, &team)
	assert.Equal(t, "Bronx Bombers", team.Name)

	rec = f.do(t, "POST", "/api/keepers/import", "player_name,salary\n", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRosterViews(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/draft/my-roster", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "GET", "/api/draft/needs", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "GET", "/api/draft/recommendations?team_id=team_2", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	decodeBody(t, rec, &recs)
	assert.NotEmpty(t, recs.Recommendations)

	rec = f.do(t, "GET", "/api/draft/team/team_9/roster", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertsNewestFirst(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.RecordPick("h1", "team_1", 1)
	require.NoError(t, err)
	_, _, err = f.svc.RecordPick("p1", "team_2", 90)
	require.NoError(t, err)

	rec := f.do(t, "GET", "/api/draft/alerts?limit=1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Alerts []models.Alert `json:"alerts"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "Tarik Skubal", resp.Alerts[0].PlayerName)
}

func TestSyncWithoutSourceIsNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/projections/sync", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubSource struct{ players []models.Player }

func (s stubSource) LoadProjections(context.Context) ([]models.Player, error) {
	return s.players, nil
}

func TestSyncFromSource(t *testing.T) {
	f := newFixture(t)
	f.api.source = stubSource{players: []models.Player{{
		ID: "h9", Name: "Gunnar Henderson", IsHitter: true, Positions: []string{"SS"},
		Hitting: &models.HittingProjection{HR: 30, R: 100, RBI: 90, SB: 15},
	}}}
	rec := f.do(t, "POST", "/api/projections/sync", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 7, f.svc.PlayerCount())
}

type pingFunc func(context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

func TestHealthProbes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, "GET", "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.api.AddCheck("clickhouse", pingFunc(func(context.Context) error { return errors.New("down") }), false)
	rec = f.do(t, "GET", "/api/health", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = f.do(t, "GET", "/readyz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.api.AddCheck("nats", pingFunc(func(context.Context) error { return errors.New("down") }), true)
	rec = f.do(t, "GET", "/readyz", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, "GET", "/api/draft/state", "", false)
	rec := f.do(t, "GET", "/metrics", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/draft/state"`)
}

func TestStatusFor(t *testing.T) {
	verr := validator.New().Struct(struct {
		A string `validate:"required"`
	}{})
	require.Error(t, verr)

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", models.ErrPersistenceMissing), http.StatusNotFound},
		{fmt.Errorf("x: %w", models.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("x: %w", draft.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("x: %w", pool.ErrInvalidPlayer), http.StatusBadRequest},
		{fmt.Errorf("x: %w", league.ErrInvalidKeeper), http.StatusBadRequest},
		{verr, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestWebSocketFeed(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/draft"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev pubsub.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "snapshot", ev.Type)

	_, _, err = f.svc.RecordPick("h2", "team_1", 20)
	require.NoError(t, err)

	for {
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == pubsub.EventDraftPick {
			break
		}
	}
	assert.Equal(t, "h2", ev.Payload["player_id"])
}
