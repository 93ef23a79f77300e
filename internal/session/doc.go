// Package session holds per-session project state: the clip list, the
// sequencing result, and related opaque payloads produced by external oracles.
//
// The in-memory index is authoritative and serves all reads. Every mutation
// re-persists the full document through an injected Persister so state
// survives restarts; persistence failures are logged, not surfaced, and the
// memory update stands. A background sweep retires sessions past the
// retention window from both memory and storage.
package session
