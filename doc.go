/*
Package arbor is a directed-graph workflow executor for conversational
agents and automation pipelines.

It composes units of computation ("nodes") into graphs with branching,
looping and error recovery, while threading a shared, mutable execution
context between steps. The engine manages traversal, validation, error
routing and persistence; the embedding application ("Host") supplies
the external capabilities — completion services, tools, extraction —
through small injected interfaces.

# Concept

A graph is a registry of nodes plus named entry points. Each node
processes the shared execution context and returns an outcome key; the
graph resolves the key against the node's edges to find the next node,
until a terminal outcome ends the run. Node failures are recorded into
the context and routed through the node's "error" edge, never raised
past the executor for ordinary failures.

# Key Features

  - Composable node variants: tools, completion ("agent") calls, binary and multi-choice decisions, context suppliers, evaluators.
  - Build-time validation: dangling edges and missing configuration are reported before any run.
  - Inspectable outcomes: the caller always receives a context; errors and per-node statuses live inside it.
  - Durable conversations: execution contexts persist across runs through pluggable stores (memory, Redis, BadgerDB).

# Usage

	g := graph.New()
	_ = g.AddNode(greet)
	_ = g.AddNode(classify)
	_ = g.AddEdge("greet", graph.OutcomeDefault, "classify")
	_ = g.AddEntryPoint("main", "greet")

	eng, err := arbor.New(g, arbor.WithStore(memory.NewStore()))
	if err != nil {
		log.Fatal(err)
	}
	ec, err := eng.RunSession(context.Background(), "conversation-123", "main")

Inspect ec.Results, ec.Errors and ec.Status to determine success or
partial failure.
*/
package arbor
