package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfold/specfold/internal/ir"
)

func TestCompileDocumentBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: {
			summary:   "adds two integers"
			rationale: "callers need checked addition"
			provenance: {
				source:     "human"
				confidence: 0.95
				author:     "alice"
			}
		}
		signature: {
			name:    "add"
			returns: "int"
			parameters: [
				{ name: "a", type_hint: "int" },
				{ name: "b", type_hint: "int", description: "second addend" },
			]
		}
		effects: ["writes audit log"]
		assertions: [
			{ predicate: "result == a + b", rationale: "definition of addition" },
			"a >= 0",
		]
		metadata: {
			source_path: "pkg/math/add.go"
			language:    "go"
			origin:      "human"
		}
	`)
	require.NoError(t, v.Err())

	doc, err := CompileDocument(v)
	require.NoError(t, err)

	assert.Equal(t, "adds two integers", doc.Intent.Summary)
	require.NotNil(t, doc.Intent.Provenance)
	assert.Equal(t, ir.SourceHuman, doc.Intent.Provenance.Source)
	assert.InDelta(t, 0.95, doc.Intent.Provenance.Confidence, 1e-9)

	assert.Equal(t, "add", doc.Signature.Name)
	require.Len(t, doc.Signature.Parameters, 2)
	assert.Equal(t, "b", doc.Signature.Parameters[1].Name)
	assert.Equal(t, "second addend", doc.Signature.Parameters[1].Description)

	require.Len(t, doc.Effects, 1)
	assert.Equal(t, "writes audit log", doc.Effects[0].Description)
	require.Len(t, doc.Assertions, 2)
	assert.Equal(t, "a >= 0", doc.Assertions[1].Predicate)
	assert.Equal(t, "pkg/math/add.go", doc.Metadata.SourcePath)
}

func TestCompileDocumentHoles(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: {
			summary: "parses a config file"
			holes: [{
				id:          "h-format"
				kind:        "intent"
				description: "which formats must be accepted?"
				constraints: { formats: "at least JSON" }
			}]
		}
		signature: {
			name: "parseConfig"
			holes: [{
				id:        "h-return"
				kind:      "signature"
				type_hint: "Config"
			}]
		}
	`)
	require.NoError(t, v.Err())

	doc, err := CompileDocument(v)
	require.NoError(t, err)

	require.Len(t, doc.Intent.Holes, 1)
	assert.Equal(t, ir.HoleIntent, doc.Intent.Holes[0].Kind)
	assert.Equal(t, map[string]string{"formats": "at least JSON"}, doc.Intent.Holes[0].Constraints)
	require.Len(t, doc.Signature.Holes, 1)
	assert.Equal(t, ir.HoleSignature, doc.Signature.Holes[0].Kind)
}

func TestCompileDocumentMissingIntent(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`signature: name: "f"`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intent")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileDocumentMissingSignatureName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: summary: "does something"
		signature: returns: "int"
	`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestCompileDocumentUnknownSource(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: {
			summary: "does something"
			provenance: { source: "oracle", confidence: 0.5 }
		}
		signature: name: "f"
	`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestCompileDocumentUnknownHoleKind(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: {
			summary: "does something"
			holes: [{ id: "h1", kind: "mystery" }]
		}
		signature: name: "f"
	`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
}

func TestCompileDocumentConfidenceOutOfRange(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: {
			summary: "does something"
			provenance: { source: "agent", confidence: 1.5 }
		}
		signature: name: "f"
	`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidence")
}

func TestCompileDocumentNormalizesDuplicates(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: summary: "does something"
		signature: name: "f"
		effects: ["writes audit log", "writes audit log"]
	`)
	require.NoError(t, v.Err())

	doc, err := CompileDocument(v)
	require.NoError(t, err)
	assert.Len(t, doc.Effects, 1)
}

func TestCompileDocumentEvidence(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		intent: summary: "does something"
		signature: name: "f"
		metadata: evidence: [{
			id:   "ev-1"
			kind: "trace"
			ref:  "traces/run-42.json"
		}]
	`)
	require.NoError(t, v.Err())

	doc, err := CompileDocument(v)
	require.NoError(t, err)
	require.Len(t, doc.Metadata.Evidence, 1)
	assert.Equal(t, "ev-1", doc.Metadata.Evidence[0].ID())
	assert.Equal(t, "traces/run-42.json", doc.Metadata.Evidence[0]["ref"])
}
