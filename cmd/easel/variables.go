package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/server/endpoints"
)

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "Manage variable value pools",
}

var variablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List variable pools",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := env.store.ListVariables()
		if err != nil {
			return err
		}
		views := make([]endpoints.VariableView, len(rows))
		for i := range rows {
			views[i] = endpoints.NewVariableView(&rows[i])
		}
		return api.Output(views)
	},
}

var variablesSetCmd = &cobra.Command{
	Use:   "set <name> <value>...",
	Short: "Create or replace a variable pool",
	Long: `Create or replace the value pool for a variable. Setting an existing
name replaces its whole value list.

Examples:
  easel variables set animal cat dog fox
  easel variables set "art style" "oil painting" "watercolor"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "" {
			return errors.New("name is required")
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		v, err := env.store.SaveVariable(name, args[1:])
		if err != nil {
			return err
		}
		return api.Output(endpoints.NewVariableView(v))
	},
}

var variablesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a variable pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		v, err := env.store.GetVariable(args[0])
		if err != nil {
			return err
		}
		return api.Output(endpoints.NewVariableView(v))
	},
}

var variablesRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a variable pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.DeleteVariable(args[0]); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

func init() {
	variablesCmd.AddCommand(variablesListCmd)
	variablesCmd.AddCommand(variablesSetCmd)
	variablesCmd.AddCommand(variablesShowCmd)
	variablesCmd.AddCommand(variablesRmCmd)
	rootCmd.AddCommand(variablesCmd)
}
