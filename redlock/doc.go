// Package redlock implements the single-store atomic leasing primitives
// the lock coordinator builds on: create-if-absent with a TTL, delete-if-
// token-matches, and extend-TTL-if-token-matches. Every per-key operation
// is atomic at the store; acquisition across multiple keys is all-or-
// nothing via client-side rollback.
package redlock
