package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/server/endpoints"
)

var (
	gensPromptID int64
	gensLimit    int
)

var generationsCmd = &cobra.Command{
	Use:   "generations",
	Short: "Browse and rate generated images",
}

var generationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := env.store.ListGenerations(gensPromptID, gensLimit)
		if err != nil {
			return err
		}
		views := make([]endpoints.GenerationView, len(rows))
		for i := range rows {
			views[i] = endpoints.NewGenerationView(&rows[i])
		}
		return api.Output(views)
	},
}

var generationsRateCmd = &cobra.Command{
	Use:   "rate <id> <rating>",
	Short: "Rate a generation from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid rating %q", args[1])
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.RateGeneration(id, rating); err != nil {
			return err
		}
		g, err := env.store.GetGeneration(id)
		if err != nil {
			return err
		}
		return api.Output(endpoints.NewGenerationView(g))
	},
}

func init() {
	generationsListCmd.Flags().Int64Var(&gensPromptID, "prompt", 0, "Only generations of this prompt id")
	generationsListCmd.Flags().IntVar(&gensLimit, "limit", 0, "Max rows to return")

	generationsCmd.AddCommand(generationsListCmd)
	generationsCmd.AddCommand(generationsRateCmd)
	rootCmd.AddCommand(generationsCmd)
}
