package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/adapters/badger"
	"github.com/arbor-flow/arbor/pkg/adapters/memory"
	"github.com/arbor-flow/arbor/pkg/adapters/redis"
	"github.com/arbor-flow/arbor/pkg/ports"
)

var (
	flagLogLevel   string
	flagStore      string
	flagRedisAddr  string
	flagBadgerPath string
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Run and inspect arbor workflow graphs",
	Long: `arbor executes directed-graph workflows defined in YAML,
threading a shared execution context between nodes and persisting
conversation state across runs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "memory", "context store backend (memory, redis, badger)")
	rootCmd.PersistentFlags().StringVar(&flagRedisAddr, "redis-addr", "localhost:6379", "redis address for --store=redis")
	rootCmd.PersistentFlags().StringVar(&flagBadgerPath, "badger-path", ".arbor-data", "data directory for --store=badger")
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level)
}

// newStore builds the context store selected by the --store flag.
// The returned cleanup releases backend resources and may be nil.
func newStore() (ports.ContextStore, func() error, error) {
	switch flagStore {
	case "memory":
		return memory.NewStore(), nil, nil
	case "redis":
		return redis.New(flagRedisAddr, os.Getenv("REDIS_PASSWORD"), 0), nil, nil
	case "badger":
		store, err := badger.Open(flagBadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", flagStore)
	}
}
