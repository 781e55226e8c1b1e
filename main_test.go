package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestValueCommandWithSampleKeepers(t *testing.T) {
	csv := filepath.Join(t.TempDir(), "keepers.csv")
	if err := os.WriteFile(csv, []byte("team_name,player_name,salary\nTeam 1,Aaron Judge,15\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := runCLI(t, "value", "--keepers", csv, "--top", "5", "--json")
	var board struct {
		Inflation struct {
			Rate float64 `json:"inflation_rate"`
		} `json:"inflation"`
		Players []struct {
			Name     string `json:"name"`
			IsKeeper bool   `json:"is_keeper"`
		} `json:"players"`
	}
	if err := json.Unmarshal([]byte(out), &board); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(board.Players) != 5 {
		t.Errorf("expected 5 rows, got %d", len(board.Players))
	}
	if board.Inflation.Rate <= 1.0 {
		t.Errorf("a cheap keeper should push inflation above 1, got %v", board.Inflation.Rate)
	}
}

func TestValueCommandTable(t *testing.T) {
	out := runCLI(t, "value", "--keepers", "", "--rate", "1.1", "--top", "3", "--json=false")
	if !strings.Contains(out, "inflation rate 1.1000") {
		t.Errorf("missing rate header:\n%s", out)
	}
	if !strings.Contains(out, "PLAYER") {
		t.Errorf("missing table header:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	if out := runCLI(t, "version"); strings.TrimSpace(out) != version {
		t.Errorf("version printed %q", out)
	}
}
