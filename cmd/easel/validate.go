package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/template"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate [text]",
	Short: "Check template syntax",
	Long: `Check template text for malformed {{variable}} placeholders.

Runs entirely offline; nothing is saved. Exits non-zero when the
template is invalid.

Examples:
  easel validate "a {{animal}} in the {{place}}"
  easel validate --file prompt.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		switch {
		case len(args) == 1:
			text = args[0]
		case validateFile != "":
			data, err := os.ReadFile(validateFile)
			if err != nil {
				return err
			}
			text = strings.TrimRight(string(data), "\n")
		default:
			return errors.New("give the template text or --file")
		}

		valid, reason := template.Validate(text)
		if !valid {
			return fmt.Errorf("invalid template: %s", reason)
		}

		vars := template.ExtractVariables(text)
		if len(vars) == 0 {
			fmt.Println("Valid (no variables)")
			return nil
		}
		fmt.Printf("Valid, variables: %s\n", strings.Join(vars, ", "))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "Read the template text from a file")

	rootCmd.AddCommand(validateCmd)
}
