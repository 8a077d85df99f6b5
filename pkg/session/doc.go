/*
Package session implements keyed access orchestration for persisted
execution contexts.

The store itself performs no locking; this package guarantees the
single-writer-per-key rule with reference-counted local mutexes and,
optionally, a distributed locker so multiple replicas can share one
context store safely.
*/
package session
