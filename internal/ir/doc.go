// Package ir provides the canonical IR document model for specfold.
//
// This package contains the document tree (intent, signature, effects,
// assertions, metadata), provenance metadata, and the (de)serialization
// contract. All other internal packages import ir; ir imports nothing
// internal. This ensures IR remains the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Enum tags (provenance sources, hole kinds) are closed sets; an
//     unrecognized tag fails at decode time, never silently passes through
//   - All JSON tags use snake_case
//   - Absent provenance serializes as an absent field, never as null
//   - Documents are treated as immutable by every consumer; use Clone
//     before mutating a document you did not construct yourself
package ir
