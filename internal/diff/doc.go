// Package diff implements structural comparison between two IR
// documents.
//
// The engine walks a fixed shape table covering three field kinds:
// scalars (compared by value), the positional parameter list (compared
// index by index), and set-by-identity lists (compared by symmetric
// difference on their identity key). The merge package walks the same
// table so diff and merge policies never drift apart.
//
// Compare is a pure function with no side effects; it is safe to call
// concurrently on immutable inputs.
package diff
