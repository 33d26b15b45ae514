// Package store persists committed control signals.
//
// Two backends share one contract:
//   - JSONStore keeps every record in a single JSON array document,
//     rewritten whole on each change.
//   - SQLiteStore keeps one row per record in a SQLite database.
//
// List returns records newest first by created_at. Records whose timestamp
// does not parse sort last, and equal timestamps fall back to signal_id,
// descending. The store does not enforce signal_id uniqueness; Delete
// removes every record with the given id.
//
// # Failure policy
//
// A missing store reads as empty. A store that cannot be decoded or read also
// reads as empty, but List reports ErrCorruptStore or ErrReadFailed alongside
// the empty result so callers can warn; Degraded matches both. Append and
// Delete refuse to rewrite a store they could not load.
// Writes the filesystem refuses are reported as ErrPermissionDenied.
package store
