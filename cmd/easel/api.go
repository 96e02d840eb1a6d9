package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Easel server via HTTP.

These commands require a running server (easel serve).
Use --server to specify a custom server URL.

Examples:
  easel api health              # Check server health
  easel api templates list      # List saved templates
  easel api generate --template 3 --dry-run`,
}

var apiTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Template commands",
}

var apiVariablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "Variable pool commands",
}

var apiPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt history commands",
}

var apiGenerationsCmd = &cobra.Command{
	Use:   "generations",
	Short: "Generation history commands",
}

var apiStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Usage statistics commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8750", "Server URL",
	)

	// Health and generate at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.GenerateEndpoint{}).Command(getServerURL))

	for _, ep := range endpoints.TemplateCommands() {
		apiTemplatesCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.VariableCommands() {
		apiVariablesCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.PromptCommands() {
		apiPromptsCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.GenerationCommands() {
		apiGenerationsCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.StatsCommands() {
		apiStatsCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(apiTemplatesCmd)
	apiCmd.AddCommand(apiVariablesCmd)
	apiCmd.AddCommand(apiPromptsCmd)
	apiCmd.AddCommand(apiGenerationsCmd)
	apiCmd.AddCommand(apiStatsCmd)
	rootCmd.AddCommand(apiCmd)
}
