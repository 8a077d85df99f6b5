package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbor-flow/arbor/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph.yaml>",
	Short: "Check a graph definition for consistency",
	Long:  `Parses and compiles the definition, reporting every dangling edge and configuration problem at once.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := config.LoadFile(args[0])
		if err != nil {
			return err
		}
		if _, err := def.Build(builtinDependencies()); err != nil {
			return err
		}
		fmt.Println("Graph is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
