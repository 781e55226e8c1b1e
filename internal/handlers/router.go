package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Billy-Davies-2/auction-draft/internal/auth"
	"github.com/Billy-Davies-2/auction-draft/internal/metrics"
)

// NewRouter mounts the API. Reads are public; anything that changes the
// league or the ledger goes through the auth provider's middleware.
func NewRouter(h *APIHandlers, provider auth.Provider, corsOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	guard := func(fn http.HandlerFunc) http.HandlerFunc { return provider.Middleware(fn) }

	router.HandleFunc("/auth/login", provider.LoginHandler).Methods("GET")
	router.HandleFunc("/auth/callback", provider.CallbackHandler).Methods("GET")
	router.HandleFunc("/auth/logout", provider.LogoutHandler).Methods("GET", "POST")

	router.HandleFunc("/healthz", h.Liveness).Methods("GET")
	router.HandleFunc("/readyz", h.Readiness).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.HandleFunc("/ws/draft", h.EventsWS)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods("GET")
	api.HandleFunc("/events", h.EventsSSE).Methods("GET")

	api.HandleFunc("/projections/players", h.Results).Methods("GET")
	api.HandleFunc("/projections/players", guard(h.IngestPlayers)).Methods("POST")
	api.HandleFunc("/projections/players/{id}", h.GetPlayer).Methods("GET")
	api.HandleFunc("/projections/sync", guard(h.SyncProjections)).Methods("POST")

	api.HandleFunc("/valuations/calculate", guard(h.Calculate)).Methods("POST")
	api.HandleFunc("/valuations/results", h.Results).Methods("GET")

	api.HandleFunc("/keepers/teams", h.ListTeams).Methods("GET")
	api.HandleFunc("/keepers/teams/{id}", h.GetTeam).Methods("GET")
	api.HandleFunc("/keepers/teams/{id}", guard(h.SetKeepers)).Methods("POST")
	api.HandleFunc("/keepers/teams/{id}", guard(h.UpdateTeam)).Methods("PUT")
	api.HandleFunc("/keepers/teams/{id}/keepers", guard(h.AddKeeper)).Methods("POST")
	api.HandleFunc("/keepers/teams/{id}/keepers/{name}", guard(h.RemoveKeeper)).Methods("DELETE")
	api.HandleFunc("/keepers/import", guard(h.ImportKeepers)).Methods("POST")
	api.HandleFunc("/keepers/link", guard(h.LinkKeepers)).Methods("POST")
	api.HandleFunc("/keepers/inflation", h.Inflation).Methods("GET")

	api.HandleFunc("/draft/start", guard(h.StartDraft)).Methods("POST")
	api.HandleFunc("/draft/reset", guard(h.ResetDraft)).Methods("POST")
	api.HandleFunc("/draft/save", guard(h.Save)).Methods("POST")
	api.HandleFunc("/draft/load", guard(h.Load)).Methods("POST")
	api.HandleFunc("/draft/pick", guard(h.RecordPick)).Methods("POST")
	api.HandleFunc("/draft/pick/{id}", guard(h.UndoPick)).Methods("DELETE")
	api.HandleFunc("/draft/state", h.State).Methods("GET")
	api.HandleFunc("/draft/my-roster", h.MyRoster).Methods("GET")
	api.HandleFunc("/draft/needs", h.Needs).Methods("GET")
	api.HandleFunc("/draft/recommendations", h.Recommendations).Methods("GET")
	api.HandleFunc("/draft/alerts", h.Alerts).Methods("GET")
	api.HandleFunc("/draft/team/{id}/roster", h.TeamRoster).Methods("GET")
	api.HandleFunc("/draft/classify", h.ClassifyPreview).Methods("GET")

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}
