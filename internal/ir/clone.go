package ir

// Clone returns a deep structural copy. The copy shares no mutable state
// with the original: every slice, map, and owned Provenance is duplicated.
// Version history and merge both rely on this to keep snapshots
// independent of later edits.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{
		Intent:     d.Intent.clone(),
		Signature:  d.Signature.clone(),
		Effects:    cloneEffects(d.Effects),
		Assertions: cloneAssertions(d.Assertions),
		Metadata:   d.Metadata.clone(),
	}
}

func (in Intent) clone() Intent {
	return Intent{
		Summary:    in.Summary,
		Rationale:  in.Rationale,
		Holes:      cloneHoles(in.Holes),
		Provenance: in.Provenance.Clone(),
	}
}

func (s Signature) clone() Signature {
	out := Signature{
		Name:       s.Name,
		Returns:    s.Returns,
		Holes:      cloneHoles(s.Holes),
		Provenance: s.Provenance.Clone(),
	}
	if len(s.Parameters) > 0 {
		out.Parameters = make([]Parameter, len(s.Parameters))
		for i, p := range s.Parameters {
			out.Parameters[i] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the parameter.
func (p Parameter) Clone() Parameter {
	return Parameter{
		Name:        p.Name,
		TypeHint:    p.TypeHint,
		Description: p.Description,
		Provenance:  p.Provenance.Clone(),
	}
}

// Clone returns a deep copy of the effect clause.
func (e EffectClause) Clone() EffectClause {
	return EffectClause{
		Description: e.Description,
		Provenance:  e.Provenance.Clone(),
	}
}

// Clone returns a deep copy of the assert clause.
func (a AssertClause) Clone() AssertClause {
	return AssertClause{
		Predicate:  a.Predicate,
		Rationale:  a.Rationale,
		Provenance: a.Provenance.Clone(),
	}
}

// Clone returns a deep copy of the evidence record.
func (r EvidenceRecord) Clone() EvidenceRecord {
	if r == nil {
		return nil
	}
	out := make(EvidenceRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the typed hole.
func (h TypedHole) Clone() TypedHole {
	out := TypedHole{
		ID:          h.ID,
		TypeHint:    h.TypeHint,
		Description: h.Description,
		Kind:        h.Kind,
	}
	if len(h.Constraints) > 0 {
		out.Constraints = make(map[string]string, len(h.Constraints))
		for k, v := range h.Constraints {
			out.Constraints[k] = v
		}
	}
	return out
}

func (m Metadata) clone() Metadata {
	out := Metadata{
		SourcePath: m.SourcePath,
		Language:   m.Language,
		Origin:     m.Origin,
	}
	if len(m.Evidence) > 0 {
		out.Evidence = make([]EvidenceRecord, len(m.Evidence))
		for i, rec := range m.Evidence {
			out.Evidence[i] = rec.Clone()
		}
	}
	return out
}

func cloneEffects(effects []EffectClause) []EffectClause {
	if len(effects) == 0 {
		return nil
	}
	out := make([]EffectClause, len(effects))
	for i, e := range effects {
		out[i] = e.Clone()
	}
	return out
}

func cloneAssertions(assertions []AssertClause) []AssertClause {
	if len(assertions) == 0 {
		return nil
	}
	out := make([]AssertClause, len(assertions))
	for i, a := range assertions {
		out[i] = a.Clone()
	}
	return out
}

func cloneHoles(holes []TypedHole) []TypedHole {
	if len(holes) == 0 {
		return nil
	}
	out := make([]TypedHole, len(holes))
	for i, h := range holes {
		out[i] = h.Clone()
	}
	return out
}
