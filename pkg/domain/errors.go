package domain

import "errors"

// ErrContextNotFound is returned when a context key cannot be found in a store.
var ErrContextNotFound = errors.New("execution context not found")

// ErrUnknownEntryPoint is returned when a run is requested for an
// entry point name that was never registered on the graph.
var ErrUnknownEntryPoint = errors.New("unknown entry point")
