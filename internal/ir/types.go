package ir

import "fmt"

// Document is the unit that gets diffed, merged, and versioned: a
// structured specification with intent, signature, effects, assertions,
// and metadata.
type Document struct {
	Intent     Intent         `json:"intent"`
	Signature  Signature      `json:"signature"`
	Effects    []EffectClause `json:"effects,omitempty"`
	Assertions []AssertClause `json:"assertions,omitempty"`
	Metadata   Metadata       `json:"metadata"`
}

// Intent captures what the specified unit is supposed to do.
type Intent struct {
	Summary    string      `json:"summary"`
	Rationale  string      `json:"rationale,omitempty"`
	Holes      []TypedHole `json:"holes,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
}

// Signature describes the callable surface: name, positional parameters,
// and return type. Parameter order is significant (positional binding).
type Signature struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Returns    string      `json:"returns,omitempty"`
	Holes      []TypedHole `json:"holes,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
}

// Parameter is one positional parameter of a signature.
type Parameter struct {
	Name        string      `json:"name"`
	TypeHint    string      `json:"type_hint"`
	Description string      `json:"description,omitempty"`
	Provenance  *Provenance `json:"provenance,omitempty"`
}

// EffectClause describes one observable side effect. Effects are
// semantically a set keyed by Description; order matters only for display.
type EffectClause struct {
	Description string      `json:"description"`
	Provenance  *Provenance `json:"provenance,omitempty"`
}

// AssertClause is one behavioral assertion. Assertions are semantically
// a set keyed by Predicate.
type AssertClause struct {
	Predicate  string      `json:"predicate"`
	Rationale  string      `json:"rationale,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
}

// Metadata carries document-level bookkeeping. Evidence records are a
// set keyed by their "id" entry.
type Metadata struct {
	SourcePath string           `json:"source_path,omitempty"`
	Language   string           `json:"language,omitempty"`
	Origin     string           `json:"origin,omitempty"`
	Evidence   []EvidenceRecord `json:"evidence,omitempty"`
}

// EvidenceRecord is an opaque key-value record with at least an "id" key.
type EvidenceRecord map[string]string

// ID returns the record's identity key, or "" if absent.
func (r EvidenceRecord) ID() string {
	return r["id"]
}

// HoleKind classifies where in the document a typed hole lives.
type HoleKind string

const (
	HoleIntent         HoleKind = "intent"
	HoleSignature      HoleKind = "signature"
	HoleEffect         HoleKind = "effect"
	HoleAssertion      HoleKind = "assertion"
	HoleImplementation HoleKind = "implementation"
)

// validHoleKinds is the closed set of hole kind tags.
var validHoleKinds = map[HoleKind]bool{
	HoleIntent:         true,
	HoleSignature:      true,
	HoleEffect:         true,
	HoleAssertion:      true,
	HoleImplementation: true,
}

// Valid reports whether k is a recognized hole kind tag.
func (k HoleKind) Valid() bool {
	return validHoleKinds[k]
}

// ParseHoleKind converts a string tag to a HoleKind, rejecting
// unrecognized tags.
func ParseHoleKind(tag string) (HoleKind, error) {
	k := HoleKind(tag)
	if !k.Valid() {
		return "", fmt.Errorf("unknown hole kind %q", tag)
	}
	return k, nil
}

// TypedHole marks an unresolved or ambiguous value within a clause.
// Holes are a set keyed by ID.
type TypedHole struct {
	ID          string            `json:"id"`
	TypeHint    string            `json:"type_hint,omitempty"`
	Description string            `json:"description,omitempty"`
	Kind        HoleKind          `json:"kind"`
	Constraints map[string]string `json:"constraints,omitempty"`
}

// ValidationError reports one structural problem with a field path.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the document for structurally impossible states:
// unrecognized enum tags, out-of-range confidences, and evidence records
// missing their "id" key. Business-level readiness (e.g. non-empty
// summary) is the caller's concern, not enforced here.
// Returns all errors, not fail-fast.
func (d *Document) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, validateProvenance(d.Intent.Provenance, "intent.provenance")...)
	errs = append(errs, validateHoles(d.Intent.Holes, "intent.holes")...)

	errs = append(errs, validateProvenance(d.Signature.Provenance, "signature.provenance")...)
	errs = append(errs, validateHoles(d.Signature.Holes, "signature.holes")...)
	for i, p := range d.Signature.Parameters {
		errs = append(errs, validateProvenance(p.Provenance, fmt.Sprintf("signature.parameters[%d].provenance", i))...)
	}

	for i, e := range d.Effects {
		errs = append(errs, validateProvenance(e.Provenance, fmt.Sprintf("effects[%d].provenance", i))...)
	}
	for i, a := range d.Assertions {
		errs = append(errs, validateProvenance(a.Provenance, fmt.Sprintf("assertions[%d].provenance", i))...)
	}

	for i, rec := range d.Metadata.Evidence {
		if rec.ID() == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("metadata.evidence[%d]", i),
				Message: `evidence record missing "id" key`,
			})
		}
	}

	return errs
}

func validateProvenance(p *Provenance, field string) []ValidationError {
	if p == nil {
		return nil
	}
	return p.Validate(field)
}

func validateHoles(holes []TypedHole, field string) []ValidationError {
	var errs []ValidationError
	for i, h := range holes {
		if h.ID == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d].id", field, i),
				Message: "hole identifier is required",
			})
		}
		if !h.Kind.Valid() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d].kind", field, i),
				Message: fmt.Sprintf("unknown hole kind %q", string(h.Kind)),
			})
		}
	}
	return errs
}

// Normalize collapses duplicate entries in the set-by-identity lists
// (effects by description, assertions by predicate, evidence by id,
// holes by identifier). First occurrence wins, so first-seen provenance
// is preserved. Returns the receiver for chaining.
func (d *Document) Normalize() *Document {
	d.Effects = dedupeByKey(d.Effects, func(e EffectClause) string { return e.Description })
	d.Assertions = dedupeByKey(d.Assertions, func(a AssertClause) string { return a.Predicate })
	d.Metadata.Evidence = dedupeByKey(d.Metadata.Evidence, EvidenceRecord.ID)
	d.Intent.Holes = dedupeByKey(d.Intent.Holes, func(h TypedHole) string { return h.ID })
	d.Signature.Holes = dedupeByKey(d.Signature.Holes, func(h TypedHole) string { return h.ID })
	return d
}

func dedupeByKey[T any](items []T, key func(T) string) []T {
	if len(items) < 2 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}
