package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/server/endpoints"
	"github.com/jackzampolin/easel/internal/store"
)

var (
	statsDays  int
	statsDaily bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics",
	Long: `Show token, cost, and generation statistics from the library.

The default is a rollup over the window plus total row counts; --daily
prints the per-date aggregates instead.

Examples:
  easel stats
  easel stats --days 7
  easel stats --daily --days 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if statsDaily {
			rows, err := env.store.UsageHistory(statsDays)
			if err != nil {
				return err
			}
			if rows == nil {
				rows = []store.DailyUsage{}
			}
			return api.Output(rows)
		}

		summary, err := env.store.Summarize(statsDays)
		if err != nil {
			return err
		}
		totals, err := env.store.Counts()
		if err != nil {
			return err
		}
		return api.Output(endpoints.StatsSummaryResponse{Summary: summary, Totals: totals})
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "Window in days, 0 for all time")
	statsCmd.Flags().BoolVar(&statsDaily, "daily", false, "Per-date aggregates instead of the rollup")

	rootCmd.AddCommand(statsCmd)
}
