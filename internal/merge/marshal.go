package merge

import (
	"encoding/json"
	"fmt"

	"github.com/specfold/specfold/internal/ir"
)

// resultWire is the serialized shape of a Result. has_conflicts is
// derived on encode so consumers can branch without re-deriving the
// resolution rules.
type resultWire struct {
	Merged          *ir.Document `json:"merged_ir"`
	Conflicts       []Conflict   `json:"conflicts,omitempty"`
	AutoMergedCount int          `json:"auto_merged_count"`
	HasConflicts    bool         `json:"has_conflicts"`
	Strategy        Strategy     `json:"strategy"`
}

// EncodeResult serializes a merge result to JSON, with strategy and
// resolution values as lowercase string tags.
func EncodeResult(r *Result) ([]byte, error) {
	return ir.EncodeJSON(resultWire{
		Merged:          r.Merged,
		Conflicts:       r.Conflicts,
		AutoMergedCount: r.AutoMergedCount,
		HasConflicts:    r.HasConflicts(),
		Strategy:        r.Strategy,
	})
}

// DecodeResult parses a merge result from JSON, rejecting unknown
// strategy or resolution tags and structurally invalid merged
// documents.
func DecodeResult(data []byte) (*Result, error) {
	var w resultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &ir.DecodeError{Message: fmt.Sprintf("parse merge result: %v", err)}
	}
	if !w.Strategy.Valid() {
		return nil, &ir.DecodeError{Field: "strategy", Message: fmt.Sprintf("unknown merge strategy %q", string(w.Strategy))}
	}
	for i, c := range w.Conflicts {
		if !c.Resolution.Valid() {
			return nil, &ir.DecodeError{
				Field:   fmt.Sprintf("conflicts[%d].resolution", i),
				Message: fmt.Sprintf("unknown conflict resolution %q", string(c.Resolution)),
			}
		}
	}
	if w.Merged == nil {
		return nil, &ir.DecodeError{Field: "merged_ir", Message: "merged document is required"}
	}
	if errs := w.Merged.Validate(); len(errs) > 0 {
		return nil, &ir.DecodeError{Field: "merged_ir." + errs[0].Field, Message: errs[0].Message}
	}
	return &Result{
		Merged:          w.Merged.Normalize(),
		Conflicts:       w.Conflicts,
		AutoMergedCount: w.AutoMergedCount,
		Strategy:        w.Strategy,
	}, nil
}
