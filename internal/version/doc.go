// Package version maintains an ordered, append-only chain of IR
// document snapshots with diffing, tagging, rollback, and changelog
// rendering.
//
// A History is never rewritten or truncated: rollback is forward
// progress (a new version whose content copies an earlier one), and
// tag edits touch only a version's metadata, never its document.
//
// A History is NOT safe for concurrent mutation. CreateVersion reads
// the current head and then appends, so concurrent writers must be
// serialized externally (one mutex or a single-writer goroutine per
// instance). Read queries are safe to run concurrently as long as no
// mutation is in flight.
package version
