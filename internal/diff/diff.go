package diff

import "github.com/specfold/specfold/internal/ir"

// Change records one field-level difference between two documents.
// An element added on the right side has a nil Old; one removed has a
// nil New.
type Change struct {
	Path string `json:"path"`
	Old  any    `json:"old_value,omitempty"`
	New  any    `json:"new_value,omitempty"`
}

// Diff is the set of field-level changes between two documents, plus
// the number of comparable units inspected (the similarity
// denominator).
type Diff struct {
	Changes    []Change `json:"changes,omitempty"`
	Comparable int      `json:"comparable_fields"`
}

// All flattens the diff to its change records.
func (d *Diff) All() []Change {
	return d.Changes
}

// Empty reports whether the two documents were structurally identical.
func (d *Diff) Empty() bool {
	return len(d.Changes) == 0
}

// Similarity returns 1 - |changes| / max(1, comparable), clamped to
// [0,1]. It is exactly 1.0 iff the diff is empty and strictly below 1.0
// whenever any change exists.
func (d *Diff) Similarity() float64 {
	if len(d.Changes) == 0 {
		return 1.0
	}
	denom := d.Comparable
	if denom < 1 {
		denom = 1
	}
	// Every comparer emits at most one change per comparable unit, so
	// the ratio stays within [0,1] and a non-empty diff is always < 1.
	s := 1.0 - float64(len(d.Changes))/float64(denom)
	if s < 0 {
		return 0
	}
	return s
}

// Compare computes the structural diff between two documents. Pure
// function of its inputs; does not mutate either document.
func Compare(a, b *ir.Document) *Diff {
	out := &Diff{}
	for _, c := range documentShape() {
		changes, comparable := c.compare(a, b)
		out.Changes = append(out.Changes, changes...)
		out.Comparable += comparable
	}
	return out
}
