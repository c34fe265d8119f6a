package diff

import (
	"fmt"

	"github.com/specfold/specfold/internal/ir"
)

// ScalarField gives uniform access to one scalar document field: its
// path, value accessors, and the provenance of the clause that owns it.
// Optional scalars are represented as "" when absent. The merge package
// drives its scalar rules through this table, so adding a scalar here
// makes it both diffable and mergeable.
type ScalarField struct {
	Path string
	Get  func(*ir.Document) string
	Set  func(*ir.Document, string)

	// Provenance accessors for the owning clause; nil for fields whose
	// clause carries no provenance (metadata scalars).
	Provenance    func(*ir.Document) *ir.Provenance
	SetProvenance func(*ir.Document, *ir.Provenance)
}

// ScalarFields returns the scalar portion of the document shape, in
// path order.
func ScalarFields() []ScalarField {
	intentProv := func(d *ir.Document) *ir.Provenance { return d.Intent.Provenance }
	setIntentProv := func(d *ir.Document, p *ir.Provenance) { d.Intent.Provenance = p }
	sigProv := func(d *ir.Document) *ir.Provenance { return d.Signature.Provenance }
	setSigProv := func(d *ir.Document, p *ir.Provenance) { d.Signature.Provenance = p }

	return []ScalarField{
		{
			Path:          "intent.summary",
			Get:           func(d *ir.Document) string { return d.Intent.Summary },
			Set:           func(d *ir.Document, v string) { d.Intent.Summary = v },
			Provenance:    intentProv,
			SetProvenance: setIntentProv,
		},
		{
			Path:          "intent.rationale",
			Get:           func(d *ir.Document) string { return d.Intent.Rationale },
			Set:           func(d *ir.Document, v string) { d.Intent.Rationale = v },
			Provenance:    intentProv,
			SetProvenance: setIntentProv,
		},
		{
			Path:          "signature.name",
			Get:           func(d *ir.Document) string { return d.Signature.Name },
			Set:           func(d *ir.Document, v string) { d.Signature.Name = v },
			Provenance:    sigProv,
			SetProvenance: setSigProv,
		},
		{
			Path:          "signature.returns",
			Get:           func(d *ir.Document) string { return d.Signature.Returns },
			Set:           func(d *ir.Document, v string) { d.Signature.Returns = v },
			Provenance:    sigProv,
			SetProvenance: setSigProv,
		},
		{
			Path: "metadata.source_path",
			Get:  func(d *ir.Document) string { return d.Metadata.SourcePath },
			Set:  func(d *ir.Document, v string) { d.Metadata.SourcePath = v },
		},
		{
			Path: "metadata.language",
			Get:  func(d *ir.Document) string { return d.Metadata.Language },
			Set:  func(d *ir.Document, v string) { d.Metadata.Language = v },
		},
		{
			Path: "metadata.origin",
			Get:  func(d *ir.Document) string { return d.Metadata.Origin },
			Set:  func(d *ir.Document, v string) { d.Metadata.Origin = v },
		},
	}
}

// setItem is one element of a set-by-identity list: its identity key
// and the full element value for change records.
type setItem struct {
	key   string
	value any
}

// setField describes one set-by-identity list: its path and an accessor
// returning elements in display order. Elements are assumed already
// deduplicated (ir.Document.Normalize).
type setField struct {
	path  string
	items func(*ir.Document) []setItem
}

// setFields returns the set-by-identity portion of the document shape.
func setFields() []setField {
	return []setField{
		{
			path: "effects",
			items: func(d *ir.Document) []setItem {
				out := make([]setItem, len(d.Effects))
				for i, e := range d.Effects {
					out[i] = setItem{key: e.Description, value: e}
				}
				return out
			},
		},
		{
			path: "assertions",
			items: func(d *ir.Document) []setItem {
				out := make([]setItem, len(d.Assertions))
				for i, a := range d.Assertions {
					out[i] = setItem{key: a.Predicate, value: a}
				}
				return out
			},
		},
		{
			path: "metadata.evidence",
			items: func(d *ir.Document) []setItem {
				out := make([]setItem, len(d.Metadata.Evidence))
				for i, rec := range d.Metadata.Evidence {
					out[i] = setItem{key: rec.ID(), value: rec}
				}
				return out
			},
		},
		{
			path: "intent.holes",
			items: func(d *ir.Document) []setItem {
				return holeItems(d.Intent.Holes)
			},
		},
		{
			path: "signature.holes",
			items: func(d *ir.Document) []setItem {
				return holeItems(d.Signature.Holes)
			},
		},
	}
}

func holeItems(holes []ir.TypedHole) []setItem {
	out := make([]setItem, len(holes))
	for i, h := range holes {
		out[i] = setItem{key: h.ID, value: h}
	}
	return out
}

// comparer is the per-field-kind diff policy: it yields change records
// and the number of comparable units it inspected.
type comparer interface {
	compare(a, b *ir.Document) ([]Change, int)
}

// scalarComparer diffs one scalar field.
type scalarComparer struct {
	field ScalarField
}

func (c scalarComparer) compare(a, b *ir.Document) ([]Change, int) {
	av, bv := c.field.Get(a), c.field.Get(b)
	if av == bv {
		return nil, 1
	}
	return []Change{{Path: c.field.Path, Old: av, New: bv}}, 1
}

// setComparer diffs one set-by-identity list via symmetric difference.
type setComparer struct {
	field setField
}

func (c setComparer) compare(a, b *ir.Document) ([]Change, int) {
	aItems, bItems := c.field.items(a), c.field.items(b)
	bByKey := make(map[string]setItem, len(bItems))
	for _, item := range bItems {
		bByKey[item.key] = item
	}
	aKeys := make(map[string]bool, len(aItems))

	var changes []Change
	for _, item := range aItems {
		aKeys[item.key] = true
		if _, ok := bByKey[item.key]; !ok {
			changes = append(changes, Change{
				Path: fmt.Sprintf("%s[%q]", c.field.path, item.key),
				Old:  item.value,
			})
		}
	}
	for _, item := range bItems {
		if !aKeys[item.key] {
			changes = append(changes, Change{
				Path: fmt.Sprintf("%s[%q]", c.field.path, item.key),
				New:  item.value,
			})
		}
	}

	// One comparable unit per element in the key union.
	union := len(aKeys)
	for k := range bByKey {
		if !aKeys[k] {
			union++
		}
	}
	return changes, union
}

// parameterComparer diffs the positional parameter list index by index.
type parameterComparer struct{}

func (parameterComparer) compare(a, b *ir.Document) ([]Change, int) {
	ap, bp := a.Signature.Parameters, b.Signature.Parameters
	common := min(len(ap), len(bp))

	var changes []Change
	for i := 0; i < common; i++ {
		changes = append(changes, compareParameterFields(i, ap[i], bp[i])...)
	}
	// An index present on only one side is a single change for that index.
	for i := common; i < len(ap); i++ {
		changes = append(changes, Change{
			Path: fmt.Sprintf("signature.parameters[%d]", i),
			Old:  ap[i],
		})
	}
	for i := common; i < len(bp); i++ {
		changes = append(changes, Change{
			Path: fmt.Sprintf("signature.parameters[%d]", i),
			New:  bp[i],
		})
	}

	comparable := 3*common + (max(len(ap), len(bp)) - common)
	return changes, comparable
}

// compareParameterFields emits one record per differing sub-field of a
// parameter index present on both sides.
func compareParameterFields(i int, a, b ir.Parameter) []Change {
	var changes []Change
	if a.Name != b.Name {
		changes = append(changes, Change{
			Path: fmt.Sprintf("signature.parameters[%d].name", i),
			Old:  a.Name,
			New:  b.Name,
		})
	}
	if a.TypeHint != b.TypeHint {
		changes = append(changes, Change{
			Path: fmt.Sprintf("signature.parameters[%d].type_hint", i),
			Old:  a.TypeHint,
			New:  b.TypeHint,
		})
	}
	if a.Description != b.Description {
		changes = append(changes, Change{
			Path: fmt.Sprintf("signature.parameters[%d].description", i),
			Old:  a.Description,
			New:  b.Description,
		})
	}
	return changes
}

// documentShape assembles the full comparer table in path order.
func documentShape() []comparer {
	var shape []comparer
	for _, f := range ScalarFields() {
		shape = append(shape, scalarComparer{field: f})
	}
	shape = append(shape, parameterComparer{})
	for _, f := range setFields() {
		shape = append(shape, setComparer{field: f})
	}
	return shape
}
