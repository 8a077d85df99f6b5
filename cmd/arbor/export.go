package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbor-flow/arbor/pkg/config"
)

var exportCmd = &cobra.Command{
	Use:   "export <graph.yaml>",
	Short: "Render a graph definition as a Mermaid flowchart",
	Long:  `Compiles the definition and prints Mermaid flowchart syntax, ready for docs or a live editor.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := config.LoadFile(args[0])
		if err != nil {
			return err
		}
		g, err := def.Build(builtinDependencies())
		if err != nil {
			return err
		}
		fmt.Println(g.Mermaid(nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
