package ir

// Equal reports deep structural equality between two documents.
// Positional lists compare element by element in order; nil and empty
// slices compare equal so a cloned document always equals its source.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Intent.Equal(o.Intent) &&
		d.Signature.Equal(o.Signature) &&
		effectsEqual(d.Effects, o.Effects) &&
		assertionsEqual(d.Assertions, o.Assertions) &&
		d.Metadata.Equal(o.Metadata)
}

// Equal reports structural equality of two intents.
func (in Intent) Equal(o Intent) bool {
	return in.Summary == o.Summary &&
		in.Rationale == o.Rationale &&
		holesEqual(in.Holes, o.Holes) &&
		in.Provenance.Equal(o.Provenance)
}

// Equal reports structural equality of two signatures.
func (s Signature) Equal(o Signature) bool {
	if s.Name != o.Name || s.Returns != o.Returns {
		return false
	}
	if len(s.Parameters) != len(o.Parameters) {
		return false
	}
	for i := range s.Parameters {
		if !s.Parameters[i].Equal(o.Parameters[i]) {
			return false
		}
	}
	return holesEqual(s.Holes, o.Holes) && s.Provenance.Equal(o.Provenance)
}

// Equal reports structural equality of two parameters.
func (p Parameter) Equal(o Parameter) bool {
	return p.Name == o.Name &&
		p.TypeHint == o.TypeHint &&
		p.Description == o.Description &&
		p.Provenance.Equal(o.Provenance)
}

// Equal reports structural equality of two effect clauses.
func (e EffectClause) Equal(o EffectClause) bool {
	return e.Description == o.Description && e.Provenance.Equal(o.Provenance)
}

// Equal reports structural equality of two assert clauses.
func (a AssertClause) Equal(o AssertClause) bool {
	return a.Predicate == o.Predicate &&
		a.Rationale == o.Rationale &&
		a.Provenance.Equal(o.Provenance)
}

// Equal reports structural equality of two metadata blocks.
func (m Metadata) Equal(o Metadata) bool {
	if m.SourcePath != o.SourcePath || m.Language != o.Language || m.Origin != o.Origin {
		return false
	}
	if len(m.Evidence) != len(o.Evidence) {
		return false
	}
	for i := range m.Evidence {
		if !stringMapsEqual(m.Evidence[i], o.Evidence[i]) {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two typed holes.
func (h TypedHole) Equal(o TypedHole) bool {
	return h.ID == o.ID &&
		h.TypeHint == o.TypeHint &&
		h.Description == o.Description &&
		h.Kind == o.Kind &&
		stringMapsEqual(h.Constraints, o.Constraints)
}

func effectsEqual(a, b []EffectClause) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func assertionsEqual(a, b []AssertClause) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func holesEqual(a, b []TypedHole) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
