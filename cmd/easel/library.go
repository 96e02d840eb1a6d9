package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Share templates and variable pools between installs",
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a library document",
	Long: `Import templates and variable pools from a library JSON document.

Entries merge with the existing library: templates by text, variables by
name. Importing the same document twice changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.store.ImportLibrary(data)
		if err != nil {
			return err
		}
		return api.Output(report)
	},
}

var libraryExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the library as a JSON document",
	Long: `Export every template and variable pool as a library JSON document.

Without a file argument the document goes to a timestamped file under
{home}/exports. Pass "-" to write to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		data, err := env.store.ExportLibrary()
		if err != nil {
			return err
		}

		if len(args) == 1 && args[0] == "-" {
			_, err := os.Stdout.Write(append(data, '\n'))
			return err
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			if err := env.home.EnsureExportsDir(); err != nil {
				return err
			}
			name := fmt.Sprintf("library-%s.json", time.Now().Format("20060102-150405"))
			path = filepath.Join(env.home.ExportsPath(), name)
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Exported library to %s\n", path)
		return nil
	},
}

func init() {
	libraryCmd.AddCommand(libraryImportCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	rootCmd.AddCommand(libraryCmd)
}
