// Package store provides the Record Store: attribute bags keyed by
// (entity logical name, id), held in an in-memory SQLite database.
//
// # Critical Patterns
//
// Deterministic enumeration
//   - Scan orders by seq (insertion order), then id COLLATE BINARY
//   - Put on an existing (entity, id) replaces attributes but keeps seq,
//     so an update never moves a record in query results
//
// Canonical storage
//   - Attributes are stored as RFC 8785 canonical tagged JSON produced by
//     ir.EncodeAttributes, so every ir.Value type round-trips exactly
//   - Strings are stored byte for byte: no Unicode normalization, and
//     invalid UTF-8 is kept in base64 form
//
// Atomic seeding
//   - PutAll writes a batch in one transaction; a rejected record stores
//     nothing
//
// Isolation
//   - Each Open(":memory:") is a private database; stores never share state
//   - The pool is pinned to one connection, which also keeps an in-memory
//     database alive for the life of the Store
//
// # Database Configuration
//
//   - WAL mode (file-backed stores only; in-memory databases ignore it)
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
