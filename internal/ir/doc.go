// Package ir provides the typed value model shared by every orgfake package.
//
// This package contains the attribute value types, the Record type and the
// serialization helpers used by the store and the query pipeline. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// value model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed interface; only types in this package implement it
//   - No float types - numbers are Int (int64) or Decimal (apd)
//   - A missing attribute and a Null attribute read the same through Record.Get
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for fingerprints, so equal attribute bags hash equally
package ir
