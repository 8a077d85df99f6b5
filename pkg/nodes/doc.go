/*
Package nodes provides the concrete node behaviors that compose into
graphs: tool invocation, completion ("agent") calls, binary and
multi-choice decisions, context suppliers and evaluators.

Every node documents the exact context keys it reads and writes, and
validates required configuration at construction rather than mid-run.
External capabilities (completion, extraction, tools) are injected as
dependencies, never inherited.
*/
package nodes
