package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/server/endpoints"
	"github.com/jackzampolin/easel/internal/store"
)

var (
	promptsFavorites bool
	promptsSearch    string
	promptsLimit     int
	promptsUnfavor   bool
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Browse and curate prompt history",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt history",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := env.store.ListPrompts(store.PromptFilter{
			FavoritesOnly: promptsFavorites,
			Search:        promptsSearch,
			Limit:         promptsLimit,
		})
		if err != nil {
			return err
		}
		views := make([]endpoints.PromptView, len(rows))
		for i := range rows {
			views[i] = endpoints.NewPromptView(&rows[i])
		}
		return api.Output(views)
	},
}

var promptsFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Mark a prompt as favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.SetFavorite(id, !promptsUnfavor); err != nil {
			return err
		}
		p, err := env.store.GetPrompt(id)
		if err != nil {
			return err
		}
		return api.Output(endpoints.NewPromptView(p))
	},
}

var promptsTagCmd = &cobra.Command{
	Use:   "tag <id> [tag]...",
	Short: "Replace the tags on a prompt",
	Long: `Replace the tag list on a prompt. Giving no tags clears the list.

Examples:
  easel prompts tag 3 landscape night
  easel prompts tag 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.SetTags(id, args[1:]); err != nil {
			return err
		}
		p, err := env.store.GetPrompt(id)
		if err != nil {
			return err
		}
		return api.Output(endpoints.NewPromptView(p))
	},
}

var promptsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a prompt and its generation history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.DeletePrompt(id); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

func init() {
	promptsListCmd.Flags().BoolVar(&promptsFavorites, "favorites", false, "Only favorited prompts")
	promptsListCmd.Flags().StringVar(&promptsSearch, "search", "", "Substring to search prompt text for")
	promptsListCmd.Flags().IntVar(&promptsLimit, "limit", 0, "Max rows to return")
	promptsFavoriteCmd.Flags().BoolVar(&promptsUnfavor, "remove", false, "Clear the favorite flag instead")

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsFavoriteCmd)
	promptsCmd.AddCommand(promptsTagCmd)
	promptsCmd.AddCommand(promptsRmCmd)
	rootCmd.AddCommand(promptsCmd)
}
