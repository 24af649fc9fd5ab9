// Package store provides the SQLite build cache used by `funcbind generate`.
//
// Each generated artifact (a function.json manifest or the Go registration
// table) is recorded under its output path together with the digest of the
// content it was generated from and the generator version. A later run
// regenerates an artifact only when its digest or the generator changed, or
// the file went missing.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Digests are computed by internal/ir using RFC 8785 canonical JSON and
// SHA-256 with domain separation.
package store
