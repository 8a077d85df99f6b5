package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbor-flow/arbor"
	"github.com/arbor-flow/arbor/pkg/config"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
)

var (
	flagEntry    string
	flagSession  string
	flagMaxSteps int
)

var runCmd = &cobra.Command{
	Use:   "run <graph.yaml>",
	Short: "Execute a graph from a YAML definition",
	Long: `Loads a YAML graph definition, runs it from the chosen entry
point, and prints the resulting execution context as JSON. With
--session, the context is loaded from and persisted to the configured
store so conversation state carries across invocations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().StringVar(&flagEntry, "entry", "main", "entry point name")
	runCmd.Flags().StringVar(&flagSession, "session", "", "session key for persistent context (empty = ephemeral)")
	runCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 1000, "safety cap on node visits per run (0 = uncapped)")
	rootCmd.AddCommand(runCmd)
}

func runGraph(cmd *cobra.Command, path string) error {
	logger := newLogger()

	def, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	g, err := def.Build(builtinDependencies(), graph.WithLogger(logger))
	if err != nil {
		return err
	}

	store, cleanup, err := newStore()
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				logger.Warn("store cleanup failed", "err", err)
			}
		}()
	}

	eng, err := arbor.New(g,
		arbor.WithStore(store),
		arbor.WithLogger(logger),
		arbor.WithMaxSteps(flagMaxSteps),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var ec *domain.ExecutionContext
	if flagSession != "" {
		ec, err = eng.RunSession(ctx, flagSession, flagEntry)
	} else {
		ec, err = eng.Run(ctx, flagEntry)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(ec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))

	if len(ec.Errors) > 0 {
		return fmt.Errorf("run finished with %d node error(s)", len(ec.Errors))
	}
	return nil
}
