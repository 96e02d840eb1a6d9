package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Println(version.GitRelease)
			return
		}
		fmt.Printf("easel %s (commit %s, %s)\n", version.GitRelease, version.GitCommit, version.GitCommitDate)
		fmt.Printf("built with %s\n", version.GoInfo)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the release tag")
}
