// Package config loads declarative graph definitions from YAML and
// compiles them into executable graphs. External capabilities (tools,
// completion, extraction, suppliers) are injected at build time; the
// definition only names them.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/nodes"
	"github.com/arbor-flow/arbor/pkg/ports"
	"github.com/arbor-flow/arbor/pkg/registry"
)

// Node kinds accepted in a definition.
const (
	KindTool           = "tool"
	KindAgent          = "agent"
	KindBinaryDecision = "decision.binary"
	KindMultiChoice    = "decision.choice"
	KindSupplier       = "supplier"
	KindEvaluator      = "evaluator"
)

// Definition is the YAML shape of a graph.
type Definition struct {
	EntryPoints map[string]string `yaml:"entry_points"`
	Nodes       []NodeDef         `yaml:"nodes"`
}

// NodeDef declares one node: its id, kind, kind-specific config and
// outgoing edges (outcome key -> target id, empty target = terminal).
type NodeDef struct {
	ID     string            `yaml:"id"`
	Kind   string            `yaml:"kind"`
	Config map[string]any    `yaml:"config"`
	Next   map[string]string `yaml:"next"`
}

// Dependencies carries the external capabilities a definition binds to.
type Dependencies struct {
	Tools     *registry.Registry
	Completer ports.Completer
	Extractor ports.Extractor
	Suppliers map[string]nodes.SupplyFunc
	Logger    *slog.Logger
}

// Parse decodes a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse graph definition: %w", err)
	}
	if len(def.Nodes) == 0 {
		return nil, fmt.Errorf("graph definition declares no nodes")
	}
	return &def, nil
}

// LoadFile reads and parses a YAML definition from disk.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph definition: %w", err)
	}
	return Parse(data)
}

type toolConfig struct {
	Tool      string            `mapstructure:"tool"`
	Inputs    map[string]string `mapstructure:"inputs"`
	OutputKey string            `mapstructure:"output_key"`
}

type agentConfig struct {
	Prompt string `mapstructure:"prompt"`
}

type binaryConfig struct {
	Prompt   string `mapstructure:"prompt"`
	Yes      string `mapstructure:"yes"`
	No       string `mapstructure:"no"`
	Fallback string `mapstructure:"fallback"`
}

type choiceConfig struct {
	Prompt   string   `mapstructure:"prompt"`
	Choices  []string `mapstructure:"choices"`
	Fallback string   `mapstructure:"fallback"`
}

type supplierConfig struct {
	Supplier  string   `mapstructure:"supplier"`
	TargetKey string   `mapstructure:"target_key"`
	Required  []string `mapstructure:"required"`
}

type evaluatorConfig struct {
	TargetKey string `mapstructure:"target_key"`
	MemoryKey string `mapstructure:"memory_key"`
}

func decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Build compiles the definition into a validated graph.
func (d *Definition) Build(deps Dependencies, opts ...graph.Option) (*graph.Graph, error) {
	g := graph.New(opts...)

	for _, def := range d.Nodes {
		node, err := buildNode(def, deps)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}

	// Edges after all nodes so forward references resolve.
	for _, def := range d.Nodes {
		for key, target := range def.Next {
			if err := g.AddEdge(def.ID, key, target); err != nil {
				return nil, err
			}
		}
	}

	for name, nodeID := range d.EntryPoints {
		if err := g.AddEntryPoint(name, nodeID); err != nil {
			return nil, err
		}
	}

	if violations := g.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("graph definition is invalid:\n  %s", strings.Join(violations, "\n  "))
	}
	return g, nil
}

func buildNode(def NodeDef, deps Dependencies) (graph.Node, error) {
	switch def.Kind {
	case KindTool:
		var cfg toolConfig
		if err := decode(def.Config, &cfg); err != nil {
			return nil, fmt.Errorf("node %q: bad tool config: %w", def.ID, err)
		}
		if deps.Tools == nil {
			return nil, fmt.Errorf("node %q: no tool registry provided", def.ID)
		}
		fn, ok := deps.Tools.Lookup(cfg.Tool)
		if !ok {
			return nil, fmt.Errorf("node %q: unknown tool %q", def.ID, cfg.Tool)
		}
		toolOpts := []nodes.ToolOption{nodes.WithInputMap(cfg.Inputs)}
		if cfg.OutputKey != "" {
			toolOpts = append(toolOpts, nodes.WithOutputKey(cfg.OutputKey))
		}
		if deps.Logger != nil {
			toolOpts = append(toolOpts, nodes.WithToolLogger(deps.Logger))
		}
		return nodes.NewTool(def.ID, fn, toolOpts...)

	case KindAgent:
		var cfg agentConfig
		if err := decode(def.Config, &cfg); err != nil {
			return nil, fmt.Errorf("node %q: bad agent config: %w", def.ID, err)
		}
		agentOpts := []nodes.AgentOption{nodes.WithPrompt(cfg.Prompt)}
		if deps.Logger != nil {
			agentOpts = append(agentOpts, nodes.WithAgentLogger(deps.Logger))
		}
		return nodes.NewAgent(def.ID, deps.Completer, agentOpts...)

	case KindBinaryDecision:
		var cfg binaryConfig
		if err := decode(def.Config, &cfg); err != nil {
			return nil, fmt.Errorf("node %q: bad decision config: %w", def.ID, err)
		}
		binOpts := []nodes.BinaryOption{nodes.WithBinaryPrompt(cfg.Prompt)}
		if cfg.Yes != "" || cfg.No != "" {
			binOpts = append(binOpts, nodes.WithAnswers(cfg.Yes, cfg.No))
		}
		if cfg.Fallback != "" {
			binOpts = append(binOpts, nodes.WithFallback(cfg.Fallback))
		}
		if deps.Logger != nil {
			binOpts = append(binOpts, nodes.WithBinaryLogger(deps.Logger))
		}
		return nodes.NewBinaryDecision(def.ID, deps.Completer, binOpts...)

	case KindMultiChoice:
		var cfg choiceConfig
		if err := decode(def.Config, &cfg); err != nil {
			return nil, fmt.Errorf("node %q: bad decision config: %w", def.ID, err)
		}
		mcOpts := []nodes.MultiChoiceOption{nodes.WithChoicePrompt(cfg.Prompt)}
		if cfg.Fallback != "" {
			mcOpts = append(mcOpts, nodes.WithChoiceFallback(cfg.Fallback))
		}
		if deps.Logger != nil {
			mcOpts = append(mcOpts, nodes.WithChoiceLogger(deps.Logger))
		}
		return nodes.NewMultiChoice(def.ID, deps.Completer, cfg.Choices, mcOpts...)

	case KindSupplier:
		var cfg supplierConfig
		if err := decode(def.Config, &cfg); err != nil {
			return nil, fmt.Errorf("node %q: bad supplier config: %w", def.ID, err)
		}
		supply, ok := deps.Suppliers[cfg.Supplier]
		if !ok {
			return nil, fmt.Errorf("node %q: unknown supplier %q", def.ID, cfg.Supplier)
		}
		supOpts := []nodes.SupplierOption{nodes.WithRequiredContext(cfg.Required...)}
		if deps.Logger != nil {
			supOpts = append(supOpts, nodes.WithSupplierLogger(deps.Logger))
		}
		return nodes.NewSupplier(def.ID, cfg.TargetKey, supply, supOpts...)

	case KindEvaluator:
		var cfg evaluatorConfig
		if err := decode(def.Config, &cfg); err != nil {
			return nil, fmt.Errorf("node %q: bad evaluator config: %w", def.ID, err)
		}
		evalOpts := []nodes.EvaluatorOption{}
		if cfg.MemoryKey != "" {
			evalOpts = append(evalOpts, nodes.WithMemoryKey(cfg.MemoryKey))
		}
		if deps.Logger != nil {
			evalOpts = append(evalOpts, nodes.WithEvaluatorLogger(deps.Logger))
		}
		return nodes.NewEvaluator(def.ID, cfg.TargetKey, deps.Extractor, evalOpts...)

	default:
		return nil, fmt.Errorf("node %q: unknown kind %q", def.ID, def.Kind)
	}
}
