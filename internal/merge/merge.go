package merge

import (
	"fmt"
	"time"

	"github.com/specfold/specfold/internal/diff"
	"github.com/specfold/specfold/internal/ir"
)

// timeNow is stubbed in tests for deterministic merge provenance.
var timeNow = time.Now

// Conflict records a field where the two sides disagree and neither is
// a strict superset of the other.
type Conflict struct {
	Path       string     `json:"path"`
	Base       any        `json:"base_value,omitempty"`
	Ours       any        `json:"ours_value,omitempty"`
	Theirs     any        `json:"theirs_value,omitempty"`
	Resolution Resolution `json:"resolution"`
}

// Result is the outcome of a three-way merge: a usable merged document
// plus everything the caller needs to audit how it was produced.
type Result struct {
	Merged          *ir.Document `json:"merged_ir"`
	Conflicts       []Conflict   `json:"conflicts,omitempty"`
	AutoMergedCount int          `json:"auto_merged_count"`
	Strategy        Strategy     `json:"strategy"`
}

// HasConflicts reports whether any conflict was settled by something
// other than the three side-picking resolutions.
func (r *Result) HasConflicts() bool {
	for _, c := range r.Conflicts {
		if !c.Resolution.autoResolved() {
			return true
		}
	}
	return false
}

// IsCleanMerge reports whether the merge produced no conflicts at all.
func (r *Result) IsCleanMerge() bool {
	return len(r.Conflicts) == 0
}

// UnresolvedConflicts returns the conflicts a caller must resolve
// out-of-band.
func (r *Result) UnresolvedConflicts() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Resolution == ResolutionManualRequired {
			out = append(out, c)
		}
	}
	return out
}

// Merge combines base/ours/theirs into a merged document. It never
// fails for well-formed inputs: disagreement surfaces as Conflict
// records, not as an error. Inputs are not mutated; the merged document
// shares no state with them.
func Merge(base, ours, theirs *ir.Document, strategy Strategy) *Result {
	m := &merger{
		base:     base,
		ours:     ours,
		theirs:   theirs,
		strategy: strategy,
		merged:   base.Clone(),
	}

	m.mergeScalars()
	m.mergeParameters()
	m.mergeSets()

	return &Result{
		Merged:          m.merged,
		Conflicts:       m.conflicts,
		AutoMergedCount: m.autoMerged,
		Strategy:        strategy,
	}
}

// merger holds the in-flight state of a single Merge call.
type merger struct {
	base, ours, theirs *ir.Document
	strategy           Strategy
	merged             *ir.Document
	conflicts          []Conflict
	autoMerged         int
}

// mergeScalars applies the three-way scalar rule to every scalar field
// in the shared shape table.
func (m *merger) mergeScalars() {
	for _, f := range diff.ScalarFields() {
		b, o, t := f.Get(m.base), f.Get(m.ours), f.Get(m.theirs)
		oChanged, tChanged := o != b, t != b

		switch {
		case !oChanged && !tChanged:
			// Base value already in place from the clone.
		case oChanged && !tChanged:
			m.takeScalar(f, o, m.ours)
			m.autoMerged++
		case tChanged && !oChanged:
			m.takeScalar(f, t, m.theirs)
			m.autoMerged++
		case o == t:
			// Both sides converged on the same value.
			m.takeScalar(f, o, m.ours)
			m.autoMerged++
		default:
			m.resolveScalarConflict(f, b, o, t)
		}
	}
}

// takeScalar installs a side's value and carries that side's clause
// provenance through verbatim.
func (m *merger) takeScalar(f diff.ScalarField, value string, from *ir.Document) {
	f.Set(m.merged, value)
	if f.SetProvenance != nil {
		f.SetProvenance(m.merged, f.Provenance(from).Clone())
	}
}

// resolveScalarConflict records a conflict at the field's path and
// installs the value the strategy dictates.
func (m *merger) resolveScalarConflict(f diff.ScalarField, b, o, t string) {
	conflict := Conflict{Path: f.Path, Base: b, Ours: o, Theirs: t}

	switch m.strategy {
	case StrategyOurs:
		m.takeScalar(f, o, m.ours)
		conflict.Resolution = ResolutionTookOurs
	case StrategyTheirs:
		m.takeScalar(f, t, m.theirs)
		conflict.Resolution = ResolutionTookTheirs
	case StrategyBase:
		conflict.Resolution = ResolutionKeptBase
	case StrategyAuto:
		m.autoResolveScalar(f, t)
		conflict.Resolution = ResolutionMerged
	default:
		// Manual: conservative default keeps base; caller resolves
		// out-of-band.
		conflict.Resolution = ResolutionManualRequired
	}

	m.conflicts = append(m.conflicts, conflict)
}

// autoResolveScalar applies the deterministic auto tie-break: prefer
// theirs. When both sides carry clause provenance, a merge provenance
// is synthesized (source=merge, min confidence, unioned evidence and
// metadata); otherwise theirs' provenance is carried as-is.
func (m *merger) autoResolveScalar(f diff.ScalarField, theirsValue string) {
	f.Set(m.merged, theirsValue)
	if f.SetProvenance == nil {
		return
	}
	op, tp := f.Provenance(m.ours), f.Provenance(m.theirs)
	if op != nil && tp != nil {
		f.SetProvenance(m.merged, ir.MergeProvenance(op, tp, timeNow().UTC().Format(time.RFC3339)))
		return
	}
	f.SetProvenance(m.merged, tp.Clone())
}

// mergeParameters merges the positional parameter list. Indices are
// merged sub-field by sub-field with the scalar rule; a three-way
// disagreement about the parameter count is always a conflict carrying
// the three full lists.
func (m *merger) mergeParameters() {
	bp := m.base.Signature.Parameters
	op := m.ours.Signature.Parameters
	tp := m.theirs.Signature.Parameters

	var targetLen int
	switch {
	case len(op) == len(tp):
		targetLen = len(op)
	case len(op) == len(bp):
		// Only theirs changed the count.
		targetLen = len(tp)
	case len(tp) == len(bp):
		// Only ours changed the count.
		targetLen = len(op)
	default:
		m.resolveParameterCountConflict(bp, op, tp)
		return
	}

	merged := make([]ir.Parameter, targetLen)
	for i := 0; i < targetLen; i++ {
		merged[i] = m.mergeParameterIndex(i, paramAt(bp, i), paramAt(op, i), paramAt(tp, i))
	}
	if targetLen == 0 {
		merged = nil
	}
	m.merged.Signature.Parameters = merged
}

// paramAt returns the parameter at index i, or a zero parameter when
// the index is out of range. An absent index behaves like a parameter
// whose sub-fields are all empty, so the scalar rule applies uniformly.
func paramAt(params []ir.Parameter, i int) ir.Parameter {
	if i < len(params) {
		return params[i]
	}
	return ir.Parameter{}
}

// resolveParameterCountConflict handles three different parameter
// counts: the conflict is recorded regardless of strategy, with the
// three full lists as values.
func (m *merger) resolveParameterCountConflict(bp, op, tp []ir.Parameter) {
	conflict := Conflict{
		Path:   "signature.parameters",
		Base:   bp,
		Ours:   op,
		Theirs: tp,
	}

	switch m.strategy {
	case StrategyOurs:
		m.merged.Signature.Parameters = cloneParams(op)
		conflict.Resolution = ResolutionTookOurs
	case StrategyTheirs:
		m.merged.Signature.Parameters = cloneParams(tp)
		conflict.Resolution = ResolutionTookTheirs
	case StrategyBase:
		conflict.Resolution = ResolutionKeptBase
	case StrategyAuto:
		// Same tie-break as scalars: prefer theirs.
		m.merged.Signature.Parameters = cloneParams(tp)
		conflict.Resolution = ResolutionMerged
	default:
		conflict.Resolution = ResolutionManualRequired
	}

	m.conflicts = append(m.conflicts, conflict)
}

// mergeParameterIndex applies the scalar rule to each sub-field of one
// parameter index. Whichever side supplies a sub-field also supplies
// the parameter's provenance.
func (m *merger) mergeParameterIndex(i int, b, o, t ir.Parameter) ir.Parameter {
	merged := b.Clone()

	type subField struct {
		name    string
		b, o, t string
		set     func(*ir.Parameter, string)
	}
	subs := []subField{
		{"name", b.Name, o.Name, t.Name, func(p *ir.Parameter, v string) { p.Name = v }},
		{"type_hint", b.TypeHint, o.TypeHint, t.TypeHint, func(p *ir.Parameter, v string) { p.TypeHint = v }},
		{"description", b.Description, o.Description, t.Description, func(p *ir.Parameter, v string) { p.Description = v }},
	}

	for _, s := range subs {
		oChanged, tChanged := s.o != s.b, s.t != s.b
		switch {
		case !oChanged && !tChanged:
			// Base sub-field stands.
		case oChanged && !tChanged:
			s.set(&merged, s.o)
			merged.Provenance = o.Provenance.Clone()
			m.autoMerged++
		case tChanged && !oChanged:
			s.set(&merged, s.t)
			merged.Provenance = t.Provenance.Clone()
			m.autoMerged++
		case s.o == s.t:
			s.set(&merged, s.o)
			merged.Provenance = o.Provenance.Clone()
			m.autoMerged++
		default:
			m.resolveParameterSubConflict(i, s.name, s.b, s.o, s.t, &merged, o, t, s.set)
		}
	}
	return merged
}

// resolveParameterSubConflict settles a per-index sub-field conflict
// with the same strategy mapping as document scalars.
func (m *merger) resolveParameterSubConflict(i int, sub, b, o, t string, merged *ir.Parameter, oursParam, theirsParam ir.Parameter, set func(*ir.Parameter, string)) {
	conflict := Conflict{
		Path:   fmt.Sprintf("signature.parameters[%d].%s", i, sub),
		Base:   b,
		Ours:   o,
		Theirs: t,
	}

	switch m.strategy {
	case StrategyOurs:
		set(merged, o)
		merged.Provenance = oursParam.Provenance.Clone()
		conflict.Resolution = ResolutionTookOurs
	case StrategyTheirs:
		set(merged, t)
		merged.Provenance = theirsParam.Provenance.Clone()
		conflict.Resolution = ResolutionTookTheirs
	case StrategyBase:
		conflict.Resolution = ResolutionKeptBase
	case StrategyAuto:
		set(merged, t)
		if oursParam.Provenance != nil && theirsParam.Provenance != nil {
			merged.Provenance = ir.MergeProvenance(oursParam.Provenance, theirsParam.Provenance, timeNow().UTC().Format(time.RFC3339))
		} else {
			merged.Provenance = theirsParam.Provenance.Clone()
		}
		conflict.Resolution = ResolutionMerged
	default:
		conflict.Resolution = ResolutionManualRequired
	}

	m.conflicts = append(m.conflicts, conflict)
}

func cloneParams(params []ir.Parameter) []ir.Parameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]ir.Parameter, len(params))
	for i, p := range params {
		out[i] = p.Clone()
	}
	return out
}

// mergeSets union-merges every set-by-identity list. Asymmetric adds
// and removes never conflict: an item added on either side is kept, an
// item dropped from both sides stays dropped, and an item dropped from
// only one side survives.
func (m *merger) mergeSets() {
	m.merged.Effects = unionMerge(m.base.Effects, m.ours.Effects, m.theirs.Effects,
		func(e ir.EffectClause) string { return e.Description },
		ir.EffectClause.Clone)
	m.merged.Assertions = unionMerge(m.base.Assertions, m.ours.Assertions, m.theirs.Assertions,
		func(a ir.AssertClause) string { return a.Predicate },
		ir.AssertClause.Clone)
	m.merged.Metadata.Evidence = unionMerge(m.base.Metadata.Evidence, m.ours.Metadata.Evidence, m.theirs.Metadata.Evidence,
		ir.EvidenceRecord.ID,
		ir.EvidenceRecord.Clone)
	m.merged.Intent.Holes = unionMerge(m.base.Intent.Holes, m.ours.Intent.Holes, m.theirs.Intent.Holes,
		func(h ir.TypedHole) string { return h.ID },
		ir.TypedHole.Clone)
	m.merged.Signature.Holes = unionMerge(m.base.Signature.Holes, m.ours.Signature.Holes, m.theirs.Signature.Holes,
		func(h ir.TypedHole) string { return h.ID },
		ir.TypedHole.Clone)
}

// unionMerge implements the inclusion-favoring set policy. Ordering is
// deterministic: surviving base items in base order, then ours-added
// items in ours order, then theirs-added items in theirs order. For an
// item present on multiple sides the base instance wins, so first-seen
// provenance is preserved.
func unionMerge[T any](base, ours, theirs []T, key func(T) string, clone func(T) T) []T {
	inBase := keySet(base, key)
	inOurs := keySet(ours, key)
	inTheirs := keySet(theirs, key)

	var out []T
	taken := make(map[string]bool)

	for _, item := range base {
		k := key(item)
		if (inOurs[k] || inTheirs[k]) && !taken[k] {
			taken[k] = true
			out = append(out, clone(item))
		}
	}
	for _, item := range ours {
		k := key(item)
		if !inBase[k] && !taken[k] {
			taken[k] = true
			out = append(out, clone(item))
		}
	}
	for _, item := range theirs {
		k := key(item)
		if !inBase[k] && !taken[k] {
			taken[k] = true
			out = append(out, clone(item))
		}
	}
	return out
}

func keySet[T any](items []T, key func(T) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[key(item)] = true
	}
	return set
}
