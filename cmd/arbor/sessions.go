package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage persisted execution contexts",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted session keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := newStore()
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}

		keys, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a persisted execution context as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := newStore()
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}

		ec, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(ec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear <key>",
	Short: "Delete a persisted execution context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := newStore()
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}
		return store.Delete(cmd.Context(), args[0])
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}
