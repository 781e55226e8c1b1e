// Package league owns the teams of the league and their keepers.
package league

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
)

// ErrInvalidKeeper is returned for a keeper entry that fails validation.
var ErrInvalidKeeper = errors.New("invalid keeper")

var validate = validator.New()

// League is not safe for concurrent use; the draft service guards it.
type League struct {
	teams      []*models.Team
	maxKeepers int
}

// New creates the configured number of teams with ids team_1..team_N. The
// first team is flagged as the user's.
func New(cfg config.League) *League {
	l := &League{maxKeepers: cfg.MaxKeeperCount}
	for i := 0; i < cfg.NumTeams; i++ {
		l.teams = append(l.teams, &models.Team{
			ID:         fmt.Sprintf("team_%d", i+1),
			Name:       cfg.TeamName(i),
			IsUser:     i == 0,
			Keepers:    []models.Keeper{},
			DraftPicks: []string{},
		})
	}
	return l
}

// Teams returns the live team records in league order.
func (l *League) Teams() []*models.Team {
	return l.teams
}

// Team returns the team with id, or nil.
func (l *League) Team(id string) *models.Team {
	for _, t := range l.teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// UserTeam returns the team flagged as the user's, or nil.
func (l *League) UserTeam() *models.Team {
	for _, t := range l.teams {
		if t.IsUser {
			return t
		}
	}
	return nil
}

func (l *League) mustTeam(id string) (*models.Team, error) {
	t := l.Team(id)
	if t == nil {
		return nil, fmt.Errorf("%w: team %q", models.ErrNotFound, id)
	}
	return t, nil
}

// UpdateTeam renames a team or changes its user flag. Setting the user flag
// clears it on every other team.
func (l *League) UpdateTeam(id string, name *string, isUser *bool) (*models.Team, error) {
	t, err := l.mustTeam(id)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		t.Name = strings.TrimSpace(*name)
	}
	if isUser != nil {
		if *isUser {
			for _, other := range l.teams {
				other.IsUser = false
			}
		}
		t.IsUser = *isUser
	}
	return t, nil
}

func (l *League) checkKeepers(keepers []models.Keeper) error {
	if l.maxKeepers > 0 && len(keepers) > l.maxKeepers {
		return fmt.Errorf("%w: %d keepers exceeds the limit of %d", ErrInvalidKeeper, len(keepers), l.maxKeepers)
	}
	for _, k := range keepers {
		if err := validate.Struct(k); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidKeeper, k.PlayerName, err)
		}
	}
	return nil
}

// AddKeeper appends a keeper to a team. The player id is resolved by LinkKeepers.
func (l *League) AddKeeper(teamID string, k models.Keeper) error {
	t, err := l.mustTeam(teamID)
	if err != nil {
		return err
	}
	k.PlayerName = strings.TrimSpace(k.PlayerName)
	if err := l.checkKeepers(append(append([]models.Keeper{}, t.Keepers...), k)); err != nil {
		return err
	}
	t.Keepers = append(t.Keepers, k)
	return nil
}

// SetKeepers replaces a team's keeper list.
func (l *League) SetKeepers(teamID string, keepers []models.Keeper) error {
	t, err := l.mustTeam(teamID)
	if err != nil {
		return err
	}
	next := make([]models.Keeper, 0, len(keepers))
	for _, k := range keepers {
		k.PlayerName = strings.TrimSpace(k.PlayerName)
		next = append(next, k)
	}
	if err := l.checkKeepers(next); err != nil {
		return err
	}
	t.Keepers = next
	return nil
}

// RemoveKeeper drops keepers whose name matches case-insensitively.
func (l *League) RemoveKeeper(teamID, playerName string) (bool, error) {
	t, err := l.mustTeam(teamID)
	if err != nil {
		return false, err
	}
	kept := t.Keepers[:0]
	removed := false
	for _, k := range t.Keepers {
		if strings.EqualFold(k.PlayerName, strings.TrimSpace(playerName)) {
			removed = true
			continue
		}
		kept = append(kept, k)
	}
	t.Keepers = kept
	return removed, nil
}

// TotalKeeperSalary is the salary of every keeper in the league, linked or not.
func (l *League) TotalKeeperSalary() int {
	total := 0
	for _, t := range l.teams {
		total += t.KeeperSalary()
	}
	return total
}

// TotalKeeperCount is the number of keepers in the league.
func (l *League) TotalKeeperCount() int {
	n := 0
	for _, t := range l.teams {
		n += len(t.Keepers)
	}
	return n
}

// ClearDraft resets every team's auction spend and pick list.
func (l *League) ClearDraft() {
	for _, t := range l.teams {
		t.BudgetSpent = 0
		t.DraftPicks = []string{}
	}
}

// ImportResult reports a CSV keeper import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// ImportKeepersCSV adds keepers from CSV with a header of team_name,
// player_name and salary. Teams are matched by name, case-insensitively.
// Bad rows are reported and skipped.
func (l *League) ImportKeepersCSV(r io.Reader) (ImportResult, error) {
	res := ImportResult{Errors: []string{}}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return res, fmt.Errorf("%w: failed to read csv header: %v", ErrInvalidKeeper, err)
	}
	col := make(map[string]int)
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"team_name", "player_name", "salary"} {
		if _, ok := col[required]; !ok {
			return res, fmt.Errorf("%w: csv is missing column %q", ErrInvalidKeeper, required)
		}
	}
	field := func(row []string, name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	byName := make(map[string]*models.Team)
	for _, t := range l.teams {
		byName[strings.ToLower(t.Name)] = t
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		teamName, playerName, salaryRaw := field(row, "team_name"), field(row, "player_name"), field(row, "salary")
		if teamName == "" || playerName == "" || salaryRaw == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: incomplete row", line))
			continue
		}
		salary, err := strconv.Atoi(salaryRaw)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: invalid salary %q for %s", line, salaryRaw, playerName))
			continue
		}
		team, ok := byName[strings.ToLower(teamName)]
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: team %q not found, skipping %s", line, teamName, playerName))
			continue
		}
		if err := l.AddKeeper(team.ID, models.Keeper{PlayerName: playerName, Salary: salary}); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

// LinkKeepers resolves every keeper name against the pool and flags the
// matched players. Flags from a previous pass are cleared first. A match that
// is already drafted, or already claimed by another keeper, is a conflict and
// stays unlinked.
func (l *League) LinkKeepers(p *pool.Pool, m Matcher) models.KeeperLinkResult {
	res := models.KeeperLinkResult{Details: []models.KeeperLinkDetail{}}

	players := p.All()
	candidates := make([]Entry, 0, len(players))
	for _, pl := range players {
		if pl.IsKeeper {
			pl.ClearKeeper()
		}
		candidates = append(candidates, Entry{ID: pl.ID, Name: pl.Name})
	}

	for _, t := range l.teams {
		for i := range t.Keepers {
			k := &t.Keepers[i]
			d := models.KeeperLinkDetail{TeamID: t.ID, KeeperName: k.PlayerName, Status: models.LinkStatusUnlinked}

			var (
				id    string
				score int
				ok    bool
			)
			if k.PlayerID != "" && p.Get(k.PlayerID) != nil {
				id, score, ok = k.PlayerID, 100, true
			} else {
				id, score, ok = m.Match(k.PlayerName, candidates)
			}
			d.Score = score

			if ok {
				pl := p.Get(id)
				d.MatchedPlayer, d.PlayerID = pl.Name, pl.ID
				switch {
				case pl.IsDrafted, pl.IsKeeper:
					d.Status = models.LinkStatusConflict
				default:
					pl.IsKeeper = true
					pl.KeeperTeamID = t.ID
					pl.KeeperSalary = k.Salary
					k.PlayerID = pl.ID
					if len(k.Positions) == 0 {
						k.Positions = append([]string(nil), pl.Positions...)
					}
					d.Status = models.LinkStatusLinked
				}
			}

			if d.Status == models.LinkStatusLinked {
				res.Linked++
			} else {
				k.PlayerID = ""
				res.Unlinked++
			}
			res.Details = append(res.Details, d)
		}
	}
	return res
}
