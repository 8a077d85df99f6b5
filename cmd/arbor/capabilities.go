package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openaiAdapter "github.com/arbor-flow/arbor/pkg/adapters/openai"
	"github.com/arbor-flow/arbor/pkg/config"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/nodes"
	"github.com/arbor-flow/arbor/pkg/ports"
	"github.com/arbor-flow/arbor/pkg/registry"
)

// builtinDependencies wires the demo capabilities available to YAML
// graphs run from the CLI. Real embeddings supply their own.
func builtinDependencies() config.Dependencies {
	tools := registry.New()
	tools.Register("echo", func(ctx context.Context, args map[string]any) (any, error) {
		return args["value"], nil
	})
	tools.Register("now", func(ctx context.Context, args map[string]any) (any, error) {
		return time.Now().UTC().Format(time.RFC3339), nil
	})
	tools.Register("concat", func(ctx context.Context, args map[string]any) (any, error) {
		parts := make([]string, 0, len(args))
		for _, v := range args {
			parts = append(parts, fmt.Sprintf("%v", v))
		}
		return strings.Join(parts, " "), nil
	})

	suppliers := map[string]nodes.SupplyFunc{
		"clock": func(ctx context.Context, _ *domain.ExecutionContext) (any, error) {
			return time.Now().UTC().Format(time.RFC3339), nil
		},
	}

	return config.Dependencies{
		Tools:     tools,
		Completer: newCompleter(),
		Extractor: ports.ExtractorFunc(func(ctx context.Context, text string) (map[string]any, error) {
			return map[string]any{
				"text":   text,
				"length": len(text),
			}, nil
		}),
		Suppliers: suppliers,
		Logger:    newLogger(),
	}
}

// newCompleter prefers a real OpenAI-compatible backend when an API
// key is configured; otherwise agent nodes fail with guidance instead
// of silently doing nothing.
func newCompleter() ports.Completer {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", fmt.Errorf("no completion backend configured: set OPENAI_API_KEY")
		})
	}

	var opts []openaiAdapter.Option
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		opts = append(opts, openaiAdapter.WithModel(model))
	}
	return openaiAdapter.New(apiKey, opts...)
}
