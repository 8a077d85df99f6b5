// Package observability provides ready-made lifecycle hook
// implementations for monitoring graph runs.
package observability
