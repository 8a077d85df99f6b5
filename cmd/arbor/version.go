package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set by the build via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the arbor version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("arbor", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
