// Package mocks provides the development stand-in for the ClickHouse
// projection source.
package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// ProjectionSource serves projections from a JSON file of players, or a
// small built-in pool when no file is configured.
type ProjectionSource struct {
	path string
}

func NewProjectionSource(path string) *ProjectionSource {
	if path == "" {
		logger.Info("Using MOCK projection source with the built-in sample pool")
	} else {
		logger.Info("Using MOCK projection source", "file", path)
	}
	return &ProjectionSource{path: path}
}

func (m *ProjectionSource) LoadProjections(ctx context.Context) ([]models.Player, error) {
	if m.path == "" {
		return SamplePlayers(), nil
	}
	b, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("read projections: %w", err)
	}
	var players []models.Player
	if err := json.Unmarshal(b, &players); err != nil {
		return nil, fmt.Errorf("decode projections %s: %w", m.path, err)
	}
	return players, nil
}

func (m *ProjectionSource) Ping(ctx context.Context) error {
	if m.path == "" {
		return nil
	}
	_, err := os.Stat(m.path)
	return err
}

func hitter(id, name, team string, pos []string, ab, h, hr, r, rbi, sb float64) models.Player {
	return models.Player{
		ID: id, Name: name, Team: team, Positions: pos, IsHitter: true,
		Hitting: &models.HittingProjection{PA: ab * 1.12, AB: ab, H: h, HR: hr, R: r, RBI: rbi, SB: sb, BA: h / ab},
	}
}

func pitcher(id, name, team string, pos []string, ip, w, sv, k, er, h, bb float64) models.Player {
	return models.Player{
		ID: id, Name: name, Team: team, Positions: pos,
		Pitching: &models.PitchingProjection{
			IP: ip, W: w, SV: sv, K: k, ER: er, H: h, BB: bb,
			ERA: er * 9 / ip, WHIP: (h + bb) / ip,
		},
	}
}

// SamplePlayers is a small pool covering every roster slot.
func SamplePlayers() []models.Player {
	return []models.Player{
		hitter("592450", "Aaron Judge", "NYY", []string{"OF"}, 540, 160, 48, 115, 118, 8),
		hitter("665742", "Juan Soto", "NYM", []string{"OF"}, 560, 160, 36, 112, 102, 9),
		hitter("677951", "Bobby Witt Jr.", "KC", []string{"SS"}, 620, 185, 29, 108, 98, 33),
		hitter("608070", "Jose Ramirez", "CLE", []string{"3B"}, 590, 165, 31, 100, 104, 28),
		hitter("683002", "Gunnar Henderson", "BAL", []string{"SS", "3B"}, 600, 165, 32, 105, 92, 18),
		hitter("668939", "Adley Rutschman", "BAL", []string{"C"}, 540, 145, 20, 80, 78, 2),
		hitter("663728", "Cal Raleigh", "SEA", []string{"C"}, 520, 120, 36, 82, 98, 4),
		hitter("624413", "Pete Alonso", "NYM", []string{"1B"}, 580, 145, 35, 88, 105, 2),
		hitter("621566", "Matt Olson", "ATL", []string{"1B"}, 590, 150, 33, 95, 100, 1),
		hitter("650333", "Luis Arraez", "SD", []string{"1B", "2B"}, 600, 195, 6, 78, 60, 4),
		hitter("682998", "Corbin Carroll", "ARI", []string{"OF"}, 590, 155, 22, 110, 75, 38),
		hitter("677594", "Julio Rodriguez", "SEA", []string{"OF"}, 610, 165, 28, 95, 90, 27),
		hitter("669016", "Brandon Nimmo", "NYM", []string{"OF"}, 560, 145, 21, 90, 75, 6),
		hitter("666176", "Jazz Chisholm Jr.", "NYY", []string{"2B", "3B"}, 540, 135, 27, 85, 80, 32),
		pitcher("669373", "Tarik Skubal", "DET", []string{"SP"}, 195, 15, 0, 230, 58, 160, 40),
		pitcher("554430", "Zack Wheeler", "PHI", []string{"SP"}, 190, 14, 0, 210, 62, 150, 45),
		pitcher("694973", "Paul Skenes", "PIT", []string{"SP"}, 185, 12, 0, 215, 50, 145, 45),
		pitcher("675911", "Spencer Strider", "ATL", []string{"SP"}, 150, 10, 0, 190, 55, 115, 48),
		pitcher("621242", "Edwin Diaz", "NYM", []string{"RP"}, 62, 4, 34, 88, 20, 44, 22),
		pitcher("661403", "Emmanuel Clase", "CLE", []string{"RP"}, 70, 4, 40, 68, 18, 55, 12),
		pitcher("623352", "Josh Hader", "HOU", []string{"RP"}, 62, 3, 33, 85, 22, 42, 24),
	}
}
