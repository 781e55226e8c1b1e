package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

type setKeepersRequest struct {
	Keepers []models.Keeper `json:"keepers" validate:"dive"`
}

type updateTeamRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=64"`
	IsUser *bool   `json:"is_user"`
}

func (h *APIHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": h.svc.Teams()})
}

func (h *APIHandlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Team(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SetKeepers replaces a team's keeper list.
func (h *APIHandlers) SetKeepers(w http.ResponseWriter, r *http.Request) {
	var req setKeepersRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	link, err := h.svc.SetKeepers(mux.Vars(r)["id"], req.Keepers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *APIHandlers) AddKeeper(w http.ResponseWriter, r *http.Request) {
	var k models.Keeper
	if err := h.decode(r, &k); err != nil {
		writeError(w, err)
		return
	}
	link, err := h.svc.AddKeeper(mux.Vars(r)["id"], k)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *APIHandlers) RemoveKeeper(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	link, err := h.svc.RemoveKeeper(vars["id"], vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *APIHandlers) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req updateTeamRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := h.svc.UpdateTeam(mux.Vars(r)["id"], req.Name, req.IsUser)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ImportKeepers accepts either a raw text/csv body or a multipart upload in
// the "file" field.
func (h *APIHandlers) ImportKeepers(w http.ResponseWriter, r *http.Request) {
	var src io.Reader = io.LimitReader(r.Body, maxBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBody); err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		defer f.Close()
		src = f
	}
	imported, link, err := h.svc.ImportKeepersCSV(src)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported": imported.Imported,
		"errors":   imported.Errors,
		"link":     link,
	})
}

func (h *APIHandlers) LinkKeepers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.LinkKeepers())
}

// Inflation handles GET /api/keepers/inflation.
func (h *APIHandlers) Inflation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Inflation())
}
