// Package roster assigns rostered players to slots and ranks the best
// available players for the slots still open.
//
// Assignment is greedy, most-constrained player first, and is not
// guaranteed optimal: a flexible player can take a slot a later player
// needed. It is deterministic and cheap enough to run on every request.
package roster

import (
	"sort"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// PositionSlots maps a player position to the slots it can fill.
var PositionSlots = map[string][]string{
	"C":  {config.SlotC, config.SlotU},
	"1B": {config.Slot1B, config.SlotCI, config.SlotU},
	"2B": {config.Slot2B, config.SlotMI, config.SlotU},
	"3B": {config.Slot3B, config.SlotCI, config.SlotU},
	"SS": {config.SlotSS, config.SlotMI, config.SlotU},
	"OF": {config.SlotOF, config.SlotU},
	"DH": {config.SlotU},
	"SP": {config.SlotP},
	"RP": {config.SlotP},
	"P":  {config.SlotP},
}

// SlotPositions maps a slot to the positions eligible for it.
var SlotPositions = map[string][]string{
	config.SlotC:  {"C"},
	config.Slot1B: {"1B"},
	config.Slot2B: {"2B"},
	config.Slot3B: {"3B"},
	config.SlotSS: {"SS"},
	config.SlotMI: {"2B", "SS"},
	config.SlotCI: {"1B", "3B"},
	config.SlotOF: {"OF"},
	config.SlotU:  {"C", "1B", "2B", "3B", "SS", "OF", "DH"},
	config.SlotP:  {"SP", "RP", "P"},
}

// EligibleSlots returns the slots with capacity that positions can fill,
// sorted by slot name. Assign tries them in this order, so an SS-only
// player lands in MI before SS.
func EligibleSlots(positions []string, slots config.RosterSlots) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pos := range positions {
		for _, s := range PositionSlots[pos] {
			if !seen[s] && slots.Count(s) > 0 {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

// EligibleFor reports whether p may fill slot.
func EligibleFor(p *models.Player, slot string) bool {
	for _, want := range SlotPositions[slot] {
		for _, pos := range p.Positions {
			if pos == want {
				return true
			}
		}
	}
	return false
}
