// Package handlers is the HTTP surface of the draft service: a JSON API,
// a WebSocket and SSE event feed, and health probes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Billy-Davies-2/auction-draft/internal/draft"
	"github.com/Billy-Davies-2/auction-draft/internal/league"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

const maxBody = 8 << 20

// ProjectionSource supplies players for ingestion, e.g. ClickHouse.
type ProjectionSource interface {
	LoadProjections(ctx context.Context) ([]models.Player, error)
}

// Broker is the subscription side of the event hub.
type Broker interface {
	Subscribe() chan pubsub.Event
	Unsubscribe(chan pubsub.Event)
}

type APIHandlers struct {
	svc      *draft.Service
	broker   Broker
	source   ProjectionSource
	validate *validator.Validate
	checks   []check
}

// NewAPIHandlers wires the API to the service. source may be nil when no
// projection database is configured.
func NewAPIHandlers(svc *draft.Service, broker Broker, source ProjectionSource) *APIHandlers {
	return &APIHandlers{
		svc:      svc,
		broker:   broker,
		source:   source,
		validate: validator.New(),
	}
}

// errBadRequest marks request decoding and validation failures.
var errBadRequest = errors.New("bad request")

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrPersistenceMissing):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, draft.ErrInvalidInput),
		errors.Is(err, pool.ErrInvalidPlayer),
		errors.Is(err, league.ErrInvalidKeeper),
		errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decode reads a JSON body into v and validates it. An empty body leaves v
// at its zero value before validation.
func (h *APIHandlers) decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := h.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return n, nil
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func playerQuery(r *http.Request) (pool.Query, error) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return pool.Query{}, err
	}
	var minValue float64
	if raw := q.Get("min_value"); raw != "" {
		if minValue, err = strconv.ParseFloat(raw, 64); err != nil {
			return pool.Query{}, fmt.Errorf("%w: min_value must be a number", errBadRequest)
		}
	}
	return pool.Query{
		Position:      q.Get("position"),
		HittersOnly:   queryBool(r, "hitters_only"),
		PitchersOnly:  queryBool(r, "pitchers_only"),
		AvailableOnly: queryBool(r, "available_only"),
		MinValue:      minValue,
		Search:        q.Get("search"),
		SortBy:        q.Get("sort_by"),
		Ascending:     queryBool(r, "ascending"),
		Limit:         limit,
	}, nil
}
