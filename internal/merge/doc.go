// Package merge implements the three-way, field-aware merge of IR
// documents.
//
// Merge combines base/ours/theirs into a merged document plus a
// conflict list. Conflicts are data, not errors: the function never
// fails for well-formed inputs, and callers inspect
// Result.UnresolvedConflicts to decide whether out-of-band resolution
// is needed.
//
// Field policies mirror the diff engine's shape table: scalars follow
// the classic three-way rule, the positional parameter list merges
// index by index, and set-by-identity lists union-merge without ever
// conflicting.
package merge
