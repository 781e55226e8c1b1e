// Package clickhouse loads projection rows from the analytics warehouse
// into the player pool.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// Client reads the player_projections table.
type Client struct {
	conn   driver.Conn
	season int
}

// NewClient connects and pings. season selects the projection year; zero
// means the current calendar year.
func NewClient(addr, database, username, password string, season int) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if season == 0 {
		season = time.Now().Year()
	}
	return &Client{conn: conn, season: season}, nil
}

const projectionsQuery = `
	SELECT
		player_id,
		name,
		team,
		positions,
		is_hitter,
		stats,
		metrics
	FROM player_projections FINAL
	WHERE season = ?
	ORDER BY player_id
`

// Row is one player_projections record. Stats and metrics are
// Map(String, Float64) columns keyed by category name.
type Row struct {
	PlayerID  string
	Name      string
	Team      string
	Positions []string
	IsHitter  bool
	Stats     map[string]float64
	Metrics   map[string]float64
}

// LoadProjections reads every projection for the configured season.
func (c *Client) LoadProjections(ctx context.Context) ([]models.Player, error) {
	start := time.Now()
	rows, err := c.conn.Query(ctx, projectionsQuery, c.season)
	if err != nil {
		return nil, fmt.Errorf("query player_projections: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.Team, &r.Positions, &r.IsHitter, &r.Stats, &r.Metrics); err != nil {
			return nil, fmt.Errorf("scan player_projections: %w", err)
		}
		players = append(players, r.Player())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read player_projections: %w", err)
	}
	logger.Info("Loaded projections from ClickHouse",
		"season", c.season, "players", len(players), "duration", time.Since(start))
	return players, nil
}

// Player converts the row into a pool entry.
func (r Row) Player() models.Player {
	p := models.Player{
		ID:        r.PlayerID,
		Name:      r.Name,
		Team:      r.Team,
		Positions: r.Positions,
		IsHitter:  r.IsHitter,
	}
	if len(r.Metrics) > 0 {
		p.Metrics = r.Metrics
	}
	s := r.Stats
	if r.IsHitter {
		p.Hitting = &models.HittingProjection{
			PA: s["PA"], AB: s["AB"], H: s["H"], Doubles: s["2B"], Triples: s["3B"],
			HR: s["HR"], R: s["R"], RBI: s["RBI"], SB: s["SB"], CS: s["CS"],
			BB: s["BB"], SO: s["SO"], BA: s["BA"],
		}
		return p
	}
	p.Pitching = &models.PitchingProjection{
		IP: s["IP"], W: s["W"], L: s["L"], SV: s["SV"], HLD: s["HLD"], K: s["K"],
		BB: s["BB"], H: s["H"], ER: s["ER"], HR: s["HR"], ERA: s["ERA"], WHIP: s["WHIP"],
	}
	return p
}

func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
