package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfold/specfold/internal/ir"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDocFile(t *testing.T, dir, name string, doc *ir.Document) string {
	t.Helper()
	data, err := ir.EncodeDocument(doc)
	require.NoError(t, err)
	return writeFile(t, dir, name, string(data))
}

func fixtureDoc(summary string) *ir.Document {
	return &ir.Document{
		Intent: ir.Intent{Summary: summary},
		Signature: ir.Signature{
			Name:    "add",
			Returns: "int",
			Parameters: []ir.Parameter{
				{Name: "a", TypeHint: "int"},
				{Name: "b", TypeHint: "int"},
			},
		},
		Assertions: []ir.AssertClause{{Predicate: "result == a + b"}},
	}
}

func TestLoadDocumentJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeDocFile(t, dir, "doc.json", fixtureDoc("adds two integers"))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "adds two integers", doc.Intent.Summary)
	assert.Equal(t, "add", doc.Signature.Name)
}

func TestLoadDocumentYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.yaml", `
intent:
  summary: parses a config file
signature:
  name: parseConfig
  returns: Config
`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "parses a config file", doc.Intent.Summary)
	assert.Equal(t, "parseConfig", doc.Signature.Name)
}

func TestLoadDocumentCUE(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.cue", `
intent: summary: "reverses a string"
signature: {
	name:    "reverse"
	returns: "string"
	parameters: [{ name: "s", type_hint: "string" }]
}
`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "reverse", doc.Signature.Name)
	require.Len(t, doc.Signature.Parameters, 1)
}

func TestLoadDocumentUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "not a document")

	_, err := LoadDocument(path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadDocumentInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json",
		`{"intent":{"summary":"s","provenance":{"source":"oracle"}},"signature":{"name":"f"},"metadata":{}}`)

	_, err := LoadDocument(path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "source")
}
