package ir

import (
	"fmt"
	"sort"
)

// Source identifies the origin of a clause.
type Source string

const (
	// SourceHuman marks content authored directly by a person.
	SourceHuman Source = "human"

	// SourceAgent marks content produced by an automated generator.
	SourceAgent Source = "agent"

	// SourceReverse marks content recovered from existing code.
	SourceReverse Source = "reverse"

	// SourceMerge marks content synthesized by the three-way merger.
	SourceMerge Source = "merge"

	// SourceVerification marks content confirmed by a verification pass.
	SourceVerification Source = "verification"

	// SourceUnknown marks content with no recorded origin.
	SourceUnknown Source = "unknown"
)

// validSources is the closed set of source tags.
var validSources = map[Source]bool{
	SourceHuman:        true,
	SourceAgent:        true,
	SourceReverse:      true,
	SourceMerge:        true,
	SourceVerification: true,
	SourceUnknown:      true,
}

// Valid reports whether s is a recognized source tag.
func (s Source) Valid() bool {
	return validSources[s]
}

// ParseSource converts a string tag to a Source.
// Returns an error for unrecognized tags so decode failures surface
// at the boundary instead of propagating bad tags.
func ParseSource(tag string) (Source, error) {
	s := Source(tag)
	if !s.Valid() {
		return "", fmt.Errorf("unknown provenance source %q", tag)
	}
	return s, nil
}

// Provenance records who or what produced a clause and with what
// confidence. Immutable once constructed; every clause owns its own
// instance, never a shared one.
type Provenance struct {
	Source       Source            `json:"source"`
	Confidence   float64           `json:"confidence"`
	Timestamp    string            `json:"timestamp"` // ISO-8601
	Author       string            `json:"author,omitempty"`
	EvidenceRefs []string          `json:"evidence_refs,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy. Returns nil for a nil receiver so optional
// provenance can be cloned without nil checks at every call site.
func (p *Provenance) Clone() *Provenance {
	if p == nil {
		return nil
	}
	out := &Provenance{
		Source:     p.Source,
		Confidence: p.Confidence,
		Timestamp:  p.Timestamp,
		Author:     p.Author,
	}
	if len(p.EvidenceRefs) > 0 {
		out.EvidenceRefs = append([]string(nil), p.EvidenceRefs...)
	}
	if len(p.Metadata) > 0 {
		out.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Equal reports structural equality. Both nil compares true.
func (p *Provenance) Equal(o *Provenance) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Source != o.Source || p.Confidence != o.Confidence ||
		p.Timestamp != o.Timestamp || p.Author != o.Author {
		return false
	}
	if len(p.EvidenceRefs) != len(o.EvidenceRefs) {
		return false
	}
	for i := range p.EvidenceRefs {
		if p.EvidenceRefs[i] != o.EvidenceRefs[i] {
			return false
		}
	}
	return stringMapsEqual(p.Metadata, o.Metadata)
}

// MergeProvenance synthesizes provenance for a value produced by the
// auto-merge of two conflicting sides. The result takes the lower of the
// two confidences, the union of evidence refs (ours first, order
// preserved) and the union of metadata (theirs wins on key collision).
func MergeProvenance(ours, theirs *Provenance, timestamp string) *Provenance {
	merged := &Provenance{
		Source:     SourceMerge,
		Author:     "merge_system",
		Timestamp:  timestamp,
		Confidence: ours.Confidence,
	}
	if theirs.Confidence < merged.Confidence {
		merged.Confidence = theirs.Confidence
	}

	seen := make(map[string]bool)
	for _, ref := range ours.EvidenceRefs {
		if !seen[ref] {
			seen[ref] = true
			merged.EvidenceRefs = append(merged.EvidenceRefs, ref)
		}
	}
	for _, ref := range theirs.EvidenceRefs {
		if !seen[ref] {
			seen[ref] = true
			merged.EvidenceRefs = append(merged.EvidenceRefs, ref)
		}
	}

	if len(ours.Metadata) > 0 || len(theirs.Metadata) > 0 {
		merged.Metadata = make(map[string]string, len(ours.Metadata)+len(theirs.Metadata))
		for k, v := range ours.Metadata {
			merged.Metadata[k] = v
		}
		for k, v := range theirs.Metadata {
			merged.Metadata[k] = v
		}
	}
	return merged
}

// Validate checks structural constraints: a recognized source tag and a
// confidence inside [0,1]. The field parameter qualifies error paths,
// e.g. "intent.provenance".
func (p *Provenance) Validate(field string) []ValidationError {
	var errs []ValidationError
	if !p.Source.Valid() {
		errs = append(errs, ValidationError{
			Field:   field + ".source",
			Message: fmt.Sprintf("unknown provenance source %q", string(p.Source)),
		})
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		errs = append(errs, ValidationError{
			Field:   field + ".confidence",
			Message: fmt.Sprintf("confidence %v outside [0,1]", p.Confidence),
		})
	}
	return errs
}

func stringMapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// sortedKeys returns map keys in ascending order for deterministic output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
