// Package store persists version histories in SQLite.
//
// Layering: store depends on ir, diff, and version; nothing below it
// depends on store. Documents are written as canonical JSON with their
// content hash, and the hash is re-derived and checked on every load,
// so silent corruption surfaces as an error instead of bad data.
//
// SQLite runs in WAL mode with a single-connection pool; version rows
// are inserted with ON CONFLICT DO NOTHING, which makes re-saving a
// history idempotent and keeps existing rows immutable (tags excepted,
// which are the one mutable piece of version metadata).
package store
