package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type pickRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	TeamID   string `json:"team_id" validate:"required"`
	Price    *int   `json:"price" validate:"required,gte=0"`
}

func (h *APIHandlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.StartDraft())
}

func (h *APIHandlers) ResetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ResetDraft())
}

// RecordPick handles POST /api/draft/pick.
func (h *APIHandlers) RecordPick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pick, rate, err := h.svc.RecordPick(req.PlayerID, req.TeamID, *req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"pick":           pick,
		"inflation_rate": rate,
	})
}

// UndoPick handles DELETE /api/draft/pick/{id}.
func (h *APIHandlers) UndoPick(w http.ResponseWriter, r *http.Request) {
	pick, rate, err := h.svc.UndoPick(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"undone":         pick,
		"inflation_rate": rate,
	})
}

func (h *APIHandlers) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

func (h *APIHandlers) Save(w http.ResponseWriter, r *http.Request) {
	loc, err := h.svc.Save(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"saved": loc})
}

func (h *APIHandlers) Load(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *APIHandlers) MyRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.MyRoster()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// TeamRoster handles GET /api/draft/team/{id}/roster.
func (h *APIHandlers) TeamRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.Roster(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// Needs handles GET /api/draft/needs?team_id=; no team means the user's.
func (h *APIHandlers) Needs(w http.ResponseWriter, r *http.Request) {
	needs, err := h.svc.RosterNeeds(r.URL.Query().Get("team_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"needs": needs})
}

func (h *APIHandlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Recommendations(r.URL.Query().Get("team_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

// Alerts handles GET /api/draft/alerts?limit=, newest first.
func (h *APIHandlers) Alerts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": h.svc.RecentAlerts(limit)})
}
