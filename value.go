package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/draft"
	"github.com/Billy-Davies-2/auction-draft/internal/mocks"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
)

var (
	valueProjections string
	valueKeepers     string
	valueRate        float64
	valuePosition    string
	valueTop         int
	valueJSON        bool

	valueCmd = &cobra.Command{
		Use:   "value",
		Short: "Price a projection file offline and print the board",
		Long: `value loads projections (a JSON array of players, or the built-in
sample pool), applies an optional keeper CSV and prints dollar values.
Without --rate the inflation rate comes from the keepers.`,
		RunE: runValue,
	}
)

func init() {
	valueCmd.Flags().StringVarP(&valueProjections, "projections", "p", "", "projections JSON file (built-in sample when empty)")
	valueCmd.Flags().StringVarP(&valueKeepers, "keepers", "k", "", "keeper CSV with team_name,player_name,salary")
	valueCmd.Flags().Float64Var(&valueRate, "rate", 0, "explicit inflation rate (derived from keepers when 0)")
	valueCmd.Flags().StringVar(&valuePosition, "position", "", "only players eligible at this position")
	valueCmd.Flags().IntVarP(&valueTop, "top", "n", 30, "rows to print, 0 for all")
	valueCmd.Flags().BoolVar(&valueJSON, "json", false, "print JSON instead of a table")
}

func runValue(cmd *cobra.Command, args []string) error {
	league, err := config.LoadLeague(leagueFile)
	if err != nil {
		return err
	}
	svc := draft.New(league, draft.Options{})

	players, err := mocks.NewProjectionSource(valueProjections).LoadProjections(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := svc.Ingest(players, true); err != nil {
		return err
	}

	if valueKeepers != "" {
		f, err := os.Open(valueKeepers)
		if err != nil {
			return err
		}
		imported, link, err := svc.ImportKeepersCSV(f)
		f.Close()
		if err != nil {
			return err
		}
		for _, e := range imported.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), "keeper import:", e)
		}
		for _, d := range link.Details {
			if d.Status != models.LinkStatusLinked {
				fmt.Fprintf(cmd.ErrOrStderr(), "keeper %s (%s): %s\n", d.KeeperName, d.TeamID, d.Status)
			}
		}
	}

	var rate *float64
	if valueRate != 0 {
		rate = &valueRate
	}
	res, err := svc.CalculateValuations(rate)
	if err != nil {
		return err
	}

	board := svc.Players(pool.Query{Position: valuePosition, SortBy: "inflated_value", Limit: valueTop})
	if valueJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"inflation": res.Inflation,
			"players":   board,
		})
	}
	return printBoard(cmd.OutOrStdout(), res.Inflation.Rate, board)
}

func printBoard(w io.Writer, rate float64, board []models.Player) error {
	fmt.Fprintf(w, "inflation rate %.4f\n\n", rate)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tPLAYER\tPOS\tSGP\t$\tINFL $\tKEEPER\t")
	for i, p := range board {
		keeper := ""
		if p.IsKeeper {
			keeper = fmt.Sprintf("%s $%d", p.KeeperTeamID, p.KeeperSalary)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.1f\t%.1f\t%s\t\n",
			i+1, p.Name, strings.Join(p.Positions, ","), p.SGP, p.DollarValue, p.InflatedValue, keeper)
	}
	return tw.Flush()
}
