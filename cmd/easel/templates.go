package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/server/endpoints"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage saved templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := env.store.ListPrompts(store.PromptFilter{TemplatesOnly: true})
		if err != nil {
			return err
		}
		views := make([]endpoints.TemplateView, len(rows))
		for i := range rows {
			views[i] = endpoints.NewTemplateView(&rows[i])
		}
		return api.Output(views)
	},
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Save a template",
	Long: `Save template text to the library. Saving the same text again bumps
its usage count instead of creating a duplicate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ok, reason := template.Validate(args[0]); !ok {
			return fmt.Errorf("invalid template: %s", reason)
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := env.store.SaveTemplate(args[0])
		if err != nil {
			return err
		}
		return api.Output(endpoints.NewTemplateView(p))
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a template",
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

		p, err := env.store.GetPrompt(id)
		if err != nil {
			return err
		}
		if !p.IsTemplate {
			return fmt.Errorf("prompt %d is not a template", id)
		}
		return api.Output(endpoints.NewTemplateView(p))
	},
}

var templatesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a template and its generation history",
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
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesRmCmd)
	rootCmd.AddCommand(templatesCmd)
}
