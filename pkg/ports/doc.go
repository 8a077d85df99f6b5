/*
Package ports defines the driven ports (interfaces) for the arbor engine.

These interfaces decouple the executor from external implementations,
allowing graphs to work with any completion backend, extraction
strategy, or context storage.

# Key Interfaces

  - Completer: the external text-generation capability agent and decision nodes delegate to.
  - Extractor: the structured-information extraction capability used by evaluator nodes.
  - ContextStore: persistence of execution contexts keyed by session/run.
  - DistributedLocker: distributed locking for concurrent session access across replicas.
*/
package ports
