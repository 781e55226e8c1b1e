// Package pool holds the player pool: every projected player keyed by id,
// iterated in ingestion order.
package pool

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// ErrInvalidPlayer is returned by Ingest for a player the pool cannot hold.
var ErrInvalidPlayer = errors.New("invalid player")

var hittingPositions = map[string]bool{"C": true, "1B": true, "2B": true, "3B": true, "SS": true, "OF": true, "DH": true}

// IsHitterPosition reports whether pos is a hitting position.
func IsHitterPosition(pos string) bool {
	return hittingPositions[pos]
}

// Pool is not safe for concurrent use; the draft service guards it.
type Pool struct {
	players map[string]*models.Player
	order   []string
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{players: make(map[string]*models.Player)}
}

func genID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// NormalizePositions upper-cases, trims and de-duplicates positions,
// splitting combined entries such as "1B/OF".
func NormalizePositions(in []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, raw := range in {
		for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == ',' || r == '|' }) {
			pos := strings.ToUpper(strings.TrimSpace(part))
			if pos == "" || seen[pos] {
				continue
			}
			seen[pos] = true
			out = append(out, pos)
		}
	}
	return out
}

func prepare(p *models.Player) error {
	if p.ID == "" {
		p.ID = genID("player")
	}
	p.Positions = NormalizePositions(p.Positions)
	if err := models.ValidateMetrics(p.Metrics); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPlayer, p.ID, err)
	}
	if p.IsHitter && p.Hitting == nil {
		p.Hitting = &models.HittingProjection{}
	}
	if !p.IsHitter && p.Pitching == nil {
		p.Pitching = &models.PitchingProjection{}
	}
	return nil
}

// Ingest adds players to the pool. With replace the pool is cleared first;
// otherwise players overwrite existing entries with the same id. The batch
// is validated before anything is stored.
func (p *Pool) Ingest(players []models.Player, replace bool) (int, error) {
	batch := make([]*models.Player, 0, len(players))
	for i := range players {
		pl := players[i].Clone()
		if err := prepare(&pl); err != nil {
			return 0, err
		}
		batch = append(batch, &pl)
	}

	if replace {
		p.Clear()
	}
	for _, pl := range batch {
		if _, exists := p.players[pl.ID]; !exists {
			p.order = append(p.order, pl.ID)
		}
		p.players[pl.ID] = pl
	}
	return len(batch), nil
}

// Get returns the player with id, or nil.
func (p *Pool) Get(id string) *models.Player {
	return p.players[id]
}

// All returns the players in ingestion order. The pointers are live.
func (p *Pool) All() []*models.Player {
	out := make([]*models.Player, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.players[id])
	}
	return out
}

// Len is the number of players.
func (p *Pool) Len() int {
	return len(p.order)
}

// Clear removes every player.
func (p *Pool) Clear() {
	p.players = make(map[string]*models.Player)
	p.order = nil
}

// Query filters and sorts a player listing.
type Query struct {
	Position      string  `json:"position"`
	HittersOnly   bool    `json:"hitters_only"`
	PitchersOnly  bool    `json:"pitchers_only"`
	AvailableOnly bool    `json:"available_only"`
	MinValue      float64 `json:"min_value"`
	Search        string  `json:"search"`
	SortBy        string  `json:"sort_by"`
	Ascending     bool    `json:"ascending"`
	Limit         int     `json:"limit"`
}

func hasPosition(pl *models.Player, pos string) bool {
	for _, p := range pl.Positions {
		if p == pos {
			return true
		}
	}
	return false
}

func sortKey(field string) func(*models.Player) float64 {
	switch field {
	case "sgp":
		return func(p *models.Player) float64 { return p.SGP }
	case "dollar_value":
		return func(p *models.Player) float64 { return p.DollarValue }
	case "breakout":
		return func(p *models.Player) float64 {
			if p.Breakout == nil {
				return 0
			}
			return p.Breakout.Score
		}
	default:
		return func(p *models.Player) float64 { return p.InflatedValue }
	}
}

// Filter returns copies of the players matching q, sorted by q.SortBy
// (inflated_value by default, descending unless q.Ascending).
func (p *Pool) Filter(q Query) []models.Player {
	pos := strings.ToUpper(q.Position)
	search := strings.ToLower(q.Search)

	var matched []*models.Player
	for _, pl := range p.All() {
		switch {
		case q.HittersOnly && !pl.IsHitter,
			q.PitchersOnly && pl.IsHitter,
			q.AvailableOnly && !pl.Available(),
			pos != "" && !hasPosition(pl, pos),
			pl.InflatedValue < q.MinValue,
			search != "" && !strings.Contains(strings.ToLower(pl.Name), search):
			continue
		}
		matched = append(matched, pl)
	}

	key := sortKey(q.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Ascending {
			return key(matched[i]) < key(matched[j])
		}
		return key(matched[i]) > key(matched[j])
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	out := make([]models.Player, len(matched))
	for i, pl := range matched {
		out[i] = pl.Clone()
	}
	return out
}
