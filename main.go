package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
)

var version = "dev"

var (
	leagueFile string
	logLevel   string
	logFormat  string

	rootCmd = &cobra.Command{
		Use:   "auction-draft",
		Short: "Auction draft valuation and live draft ledger",
		Long: `auction-draft prices a fantasy baseball player pool for an auction
draft, tracks keepers and picks, and keeps every valuation in step with
the money left in the room.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel, logFormat)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
)

func init() {
	svc := config.LoadService()
	rootCmd.PersistentFlags().StringVar(&leagueFile, "league", svc.LeagueFile, "league YAML file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", svc.LogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", svc.LogFormat, "json or text")

	rootCmd.AddCommand(serveCmd, valueCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
