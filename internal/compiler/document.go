package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/specfold/specfold/internal/ir"
)

// CompileDocument parses a CUE value into an IR document. The value
// should already be evaluated; unification errors surface here with
// their positions.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`intent: summary: "adds two integers" ...`)
//	doc, err := compiler.CompileDocument(v)
//
// The returned document is validated and normalized.
func CompileDocument(v cue.Value) (*ir.Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("document", err)
	}

	doc := &ir.Document{}

	intentVal := v.LookupPath(cue.ParsePath("intent"))
	if !intentVal.Exists() {
		return nil, &CompileError{
			Field:   "intent",
			Message: "intent is required",
			Pos:     v.Pos(),
		}
	}
	intent, err := parseIntent(intentVal)
	if err != nil {
		return nil, err
	}
	doc.Intent = intent

	sigVal := v.LookupPath(cue.ParsePath("signature"))
	if !sigVal.Exists() {
		return nil, &CompileError{
			Field:   "signature",
			Message: "signature is required",
			Pos:     v.Pos(),
		}
	}
	sig, err := parseSignature(sigVal)
	if err != nil {
		return nil, err
	}
	doc.Signature = sig

	doc.Effects, err = parseEffects(v.LookupPath(cue.ParsePath("effects")))
	if err != nil {
		return nil, err
	}
	doc.Assertions, err = parseAssertions(v.LookupPath(cue.ParsePath("assertions")))
	if err != nil {
		return nil, err
	}
	doc.Metadata, err = parseMetadata(v.LookupPath(cue.ParsePath("metadata")))
	if err != nil {
		return nil, err
	}

	if verrs := doc.Validate(); len(verrs) > 0 {
		joined := make([]error, 0, len(verrs))
		for _, ve := range verrs {
			joined = append(joined, &CompileError{
				Field:   ve.Field,
				Message: ve.Message,
				Pos:     v.Pos(),
			})
		}
		return nil, errors.Join(joined...)
	}
	doc.Normalize()
	return doc, nil
}

func parseIntent(v cue.Value) (ir.Intent, error) {
	var intent ir.Intent

	summary, err := stringField(v, "summary", true)
	if err != nil {
		return intent, err
	}
	intent.Summary = summary

	intent.Rationale, err = stringField(v, "rationale", false)
	if err != nil {
		return intent, err
	}
	intent.Holes, err = parseHoles(v.LookupPath(cue.ParsePath("holes")), "intent.holes")
	if err != nil {
		return intent, err
	}
	intent.Provenance, err = parseProvenance(v.LookupPath(cue.ParsePath("provenance")), "intent.provenance")
	return intent, err
}

func parseSignature(v cue.Value) (ir.Signature, error) {
	var sig ir.Signature

	name, err := stringField(v, "name", true)
	if err != nil {
		return sig, err
	}
	sig.Name = name

	sig.Returns, err = stringField(v, "returns", false)
	if err != nil {
		return sig, err
	}

	paramsVal := v.LookupPath(cue.ParsePath("parameters"))
	if paramsVal.Exists() {
		iter, err := paramsVal.List()
		if err != nil {
			return sig, formatCUEError("signature.parameters", err)
		}
		for i := 0; iter.Next(); i++ {
			p, err := parseParameter(iter.Value(), i)
			if err != nil {
				return sig, err
			}
			sig.Parameters = append(sig.Parameters, p)
		}
	}

	sig.Holes, err = parseHoles(v.LookupPath(cue.ParsePath("holes")), "signature.holes")
	if err != nil {
		return sig, err
	}
	sig.Provenance, err = parseProvenance(v.LookupPath(cue.ParsePath("provenance")), "signature.provenance")
	return sig, err
}

func parseParameter(v cue.Value, index int) (ir.Parameter, error) {
	var p ir.Parameter
	field := fmt.Sprintf("signature.parameters[%d]", index)

	name, err := stringField(v, "name", true)
	if err != nil {
		return p, err
	}
	p.Name = name
	p.TypeHint, err = stringField(v, "type_hint", false)
	if err != nil {
		return p, err
	}
	p.Description, err = stringField(v, "description", false)
	if err != nil {
		return p, err
	}
	p.Provenance, err = parseProvenance(v.LookupPath(cue.ParsePath("provenance")), field+".provenance")
	return p, err
}

func parseEffects(v cue.Value) ([]ir.EffectClause, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError("effects", err)
	}
	var effects []ir.EffectClause
	for i := 0; iter.Next(); i++ {
		ev := iter.Value()
		var e ir.EffectClause

		// Bare strings are shorthand for description-only clauses.
		if desc, err := ev.String(); err == nil {
			effects = append(effects, ir.EffectClause{Description: desc})
			continue
		}
		e.Description, err = stringField(ev, "description", true)
		if err != nil {
			return nil, err
		}
		e.Provenance, err = parseProvenance(ev.LookupPath(cue.ParsePath("provenance")), fmt.Sprintf("effects[%d].provenance", i))
		if err != nil {
			return nil, err
		}
		effects = append(effects, e)
	}
	return effects, nil
}

func parseAssertions(v cue.Value) ([]ir.AssertClause, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError("assertions", err)
	}
	var assertions []ir.AssertClause
	for i := 0; iter.Next(); i++ {
		av := iter.Value()
		var a ir.AssertClause

		if pred, err := av.String(); err == nil {
			assertions = append(assertions, ir.AssertClause{Predicate: pred})
			continue
		}
		a.Predicate, err = stringField(av, "predicate", true)
		if err != nil {
			return nil, err
		}
		a.Rationale, err = stringField(av, "rationale", false)
		if err != nil {
			return nil, err
		}
		a.Provenance, err = parseProvenance(av.LookupPath(cue.ParsePath("provenance")), fmt.Sprintf("assertions[%d].provenance", i))
		if err != nil {
			return nil, err
		}
		assertions = append(assertions, a)
	}
	return assertions, nil
}

func parseMetadata(v cue.Value) (ir.Metadata, error) {
	var m ir.Metadata
	if !v.Exists() {
		return m, nil
	}
	var err error
	m.SourcePath, err = stringField(v, "source_path", false)
	if err != nil {
		return m, err
	}
	m.Language, err = stringField(v, "language", false)
	if err != nil {
		return m, err
	}
	m.Origin, err = stringField(v, "origin", false)
	if err != nil {
		return m, err
	}

	evVal := v.LookupPath(cue.ParsePath("evidence"))
	if evVal.Exists() {
		iter, err := evVal.List()
		if err != nil {
			return m, formatCUEError("metadata.evidence", err)
		}
		for i := 0; iter.Next(); i++ {
			rec, err := parseStringMap(iter.Value(), fmt.Sprintf("metadata.evidence[%d]", i))
			if err != nil {
				return m, err
			}
			m.Evidence = append(m.Evidence, ir.EvidenceRecord(rec))
		}
	}
	return m, nil
}

func parseHoles(v cue.Value, field string) ([]ir.TypedHole, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var holes []ir.TypedHole
	for i := 0; iter.Next(); i++ {
		hv := iter.Value()
		hfield := fmt.Sprintf("%s[%d]", field, i)
		var h ir.TypedHole

		h.ID, err = stringField(hv, "id", true)
		if err != nil {
			return nil, err
		}
		h.TypeHint, err = stringField(hv, "type_hint", false)
		if err != nil {
			return nil, err
		}
		h.Description, err = stringField(hv, "description", false)
		if err != nil {
			return nil, err
		}
		kind, err := stringField(hv, "kind", true)
		if err != nil {
			return nil, err
		}
		h.Kind, err = ir.ParseHoleKind(kind)
		if err != nil {
			return nil, &CompileError{
				Field:   hfield + ".kind",
				Message: err.Error(),
				Pos:     hv.Pos(),
			}
		}
		constraintsVal := hv.LookupPath(cue.ParsePath("constraints"))
		if constraintsVal.Exists() {
			h.Constraints, err = parseStringMap(constraintsVal, hfield+".constraints")
			if err != nil {
				return nil, err
			}
		}
		holes = append(holes, h)
	}
	return holes, nil
}

func parseProvenance(v cue.Value, field string) (*ir.Provenance, error) {
	if !v.Exists() {
		return nil, nil
	}
	p := &ir.Provenance{}

	source, err := stringField(v, "source", true)
	if err != nil {
		return nil, err
	}
	p.Source, err = ir.ParseSource(source)
	if err != nil {
		return nil, &CompileError{
			Field:   field + ".source",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}

	confVal := v.LookupPath(cue.ParsePath("confidence"))
	if confVal.Exists() {
		conf, err := confVal.Float64()
		if err != nil {
			return nil, formatCUEError(field+".confidence", err)
		}
		p.Confidence = conf
	}

	p.Timestamp, err = stringField(v, "timestamp", false)
	if err != nil {
		return nil, err
	}
	p.Author, err = stringField(v, "author", false)
	if err != nil {
		return nil, err
	}
	p.EvidenceRefs, err = parseStringList(v.LookupPath(cue.ParsePath("evidence_refs")), field+".evidence_refs")
	if err != nil {
		return nil, err
	}

	metaVal := v.LookupPath(cue.ParsePath("metadata"))
	if metaVal.Exists() {
		p.Metadata, err = parseStringMap(metaVal, field+".metadata")
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// stringField reads a string member of a struct value. A missing
// optional field yields the empty string.
func stringField(v cue.Value, name string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		if required {
			return "", &CompileError{
				Field:   name,
				Message: name + " is required",
				Pos:     v.Pos(),
			}
		}
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(name, err)
	}
	return s, nil
}

func parseStringList(v cue.Value, field string) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseStringMap(v cue.Value, field string) (map[string]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	out := make(map[string]string)
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(field+"."+iter.Label(), err)
		}
		out[iter.Label()] = s
	}
	return out, nil
}
