// Package store provides SQLite-backed generation history for cbind.
//
// Every successful generation run is recorded with:
//   - Generations: run id, library and config fingerprints, output hash
//   - Generated types: the dependency-sorted declaration order of the run
//
// Ordering uses the seq column (insertion order), never timestamps, so
// history listings are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Fingerprints are computed by internal/ir/hash.go using canonical JSON
// and SHA-256 with domain separation.
package store
