package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeepAndEqual(t *testing.T) {
	doc := sampleDocument()
	cp := doc.Clone()

	require.True(t, doc.Equal(cp))

	// Mutating the copy must not leak into the original.
	cp.Intent.Summary = "changed"
	cp.Intent.Provenance.Author = "mallory"
	cp.Signature.Parameters[0].Name = "x"
	cp.Signature.Holes[0].Constraints["min"] = "10"
	cp.Effects[0].Description = "changed"
	cp.Assertions = append(cp.Assertions, AssertClause{Predicate: "new"})
	cp.Metadata.Evidence[0]["id"] = "ev-999"

	assert.Equal(t, "add two integers", doc.Intent.Summary)
	assert.Equal(t, "alice", doc.Intent.Provenance.Author)
	assert.Equal(t, "a", doc.Signature.Parameters[0].Name)
	assert.Equal(t, "0", doc.Signature.Holes[0].Constraints["min"])
	assert.Equal(t, "writes audit log", doc.Effects[0].Description)
	assert.Len(t, doc.Assertions, 2)
	assert.Equal(t, "ev-1", doc.Metadata.Evidence[0].ID())
	assert.False(t, doc.Equal(cp))
}

func TestCloneNil(t *testing.T) {
	var doc *Document
	assert.Nil(t, doc.Clone())

	var prov *Provenance
	assert.Nil(t, prov.Clone())
}

func TestEqualTreatsNilAndEmptySlicesAlike(t *testing.T) {
	a := &Document{Intent: Intent{Summary: "s"}}
	b := &Document{Intent: Intent{Summary: "s"}, Effects: []EffectClause{}}
	assert.True(t, a.Equal(b))
}

func TestEqualDetectsProvenanceDifference(t *testing.T) {
	a := sampleDocument()
	b := sampleDocument()
	require.True(t, a.Equal(b))

	b.Intent.Provenance.Confidence = 0.5
	assert.False(t, a.Equal(b))

	b = sampleDocument()
	b.Intent.Provenance = nil
	assert.False(t, a.Equal(b))
}
