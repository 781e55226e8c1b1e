package roster

import (
	"sort"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// PlayerSource resolves player ids. *pool.Pool satisfies it.
type PlayerSource interface {
	All() []*models.Player
	Get(id string) *models.Player
}

// Assignment is the result of slotting a team's roster.
type Assignment struct {
	Filled     map[string][]*models.Player
	Unassigned []*models.Player
}

// FilledCount is the number of players placed in a slot.
func (a Assignment) FilledCount() int {
	n := 0
	for _, ps := range a.Filled {
		n += len(ps)
	}
	return n
}

// TeamPlayers resolves a team's keepers and picks to players. Unlinked
// keepers and unknown ids are skipped.
func TeamPlayers(team *models.Team, src PlayerSource) []*models.Player {
	var out []*models.Player
	for _, k := range team.Keepers {
		if k.PlayerID == "" {
			continue
		}
		if p := src.Get(k.PlayerID); p != nil {
			out = append(out, p)
		}
	}
	for _, id := range team.DraftPicks {
		if p := src.Get(id); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Assign places players into slots. Players with fewer eligible slots go
// first; each takes the first eligible slot with room.
func Assign(players []*models.Player, slots config.RosterSlots) Assignment {
	type entry struct {
		player   *models.Player
		eligible []string
	}
	entries := make([]entry, 0, len(players))
	for _, p := range players {
		entries = append(entries, entry{p, EligibleSlots(p.Positions, slots)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].eligible) < len(entries[j].eligible)
	})

	a := Assignment{Filled: make(map[string][]*models.Player)}
	for _, s := range config.SlotOrder {
		a.Filled[s] = []*models.Player{}
	}
	for _, e := range entries {
		placed := false
		for _, s := range e.eligible {
			if len(a.Filled[s]) < slots.Count(s) {
				a.Filled[s] = append(a.Filled[s], e.player)
				placed = true
				break
			}
		}
		if !placed {
			a.Unassigned = append(a.Unassigned, e.player)
		}
	}
	return a
}
