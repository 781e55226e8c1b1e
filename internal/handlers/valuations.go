package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

type ingestRequest struct {
	Players []models.Player `json:"players" validate:"required,dive"`
	Replace bool            `json:"replace"`
}

type calculateRequest struct {
	InflationRate *float64 `json:"inflation_rate" validate:"omitempty,gt=0"`
}

// IngestPlayers handles POST /api/players. Projections merge by player id
// unless replace is set.
func (h *APIHandlers) IngestPlayers(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	n, err := h.svc.Ingest(req.Players, req.Replace)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ingested": n, "total": h.svc.PlayerCount()})
}

// SyncProjections handles POST /api/projections/sync, pulling the pool from
// the projection database.
func (h *APIHandlers) SyncProjections(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeError(w, fmt.Errorf("%w: no projection source configured", models.ErrNotFound))
		return
	}
	players, err := h.source.LoadProjections(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := h.svc.Ingest(players, queryBool(r, "replace"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ingested": n, "total": h.svc.PlayerCount()})
}

// Calculate handles POST /api/valuations/calculate.
func (h *APIHandlers) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.CalculateValuations(req.InflationRate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Results handles GET /api/valuations/results with the pool query filters.
func (h *APIHandlers) Results(w http.ResponseWriter, r *http.Request) {
	q, err := playerQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	players := h.svc.Players(q)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"players":        players,
		"count":          len(players),
		"inflation_rate": h.svc.State().CurrentInflationRate,
	})
}

func (h *APIHandlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Player(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ClassifyPreview handles GET /api/valuations/classify?player_id=&price=.
func (h *APIHandlers) ClassifyPreview(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("player_id")
	if id == "" {
		writeError(w, fmt.Errorf("%w: player_id is required", errBadRequest))
		return
	}
	price, err := queryInt(r, "price", -1)
	if err != nil {
		writeError(w, err)
		return
	}
	if price < 0 {
		writeError(w, fmt.Errorf("%w: price must be a non-negative integer", errBadRequest))
		return
	}
	c, p, err := h.svc.ClassifyPreview(id, price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"player_id":      p.ID,
		"player_name":    p.Name,
		"price":          price,
		"inflated_value": p.InflatedValue,
		"classification": c,
	})
}
