// Package domain contains the core data model shared by every other
// package: the execution context threaded through a graph run, node
// lifecycle statuses, lifecycle events and the sentinel errors used
// across the engine boundary.
package domain
