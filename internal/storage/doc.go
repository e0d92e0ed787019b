// Package storage defines the persistence interfaces for contract state.
//
// It provides a high-level abstraction for storing contract aggregates and
// their append-only event logs. Implementations (SQLite, bbolt) live in
// subpackages.
//
// # Error Types
//
//   - ErrNotFound: Indicates a requested record is missing.
package storage
