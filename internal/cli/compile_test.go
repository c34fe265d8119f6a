package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfold/specfold/internal/ir"
)

func TestCompileCommandText(t *testing.T) {
	dir := t.TempDir()
	path := writeDocFile(t, dir, "doc.json", fixtureDoc("adds two integers"))

	stdout, _, err := runCommand("compile", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "signature: add")
	assert.Contains(t, stdout, "hash:")
}

func TestCompileCommandJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeDocFile(t, dir, "doc.json", fixtureDoc("adds two integers"))

	stdout, _, err := runCommand("--format", "json", "compile", path)
	require.NoError(t, err)

	var data struct {
		Document *ir.Document `json:"document"`
		Hash     string       `json:"hash"`
	}
	status := decodeResponse(t, stdout, &data)
	assert.Equal(t, "ok", status)
	require.NotNil(t, data.Document)
	assert.Equal(t, "add", data.Document.Signature.Name)
	assert.NotEmpty(t, data.Hash)
}

func TestCompileCommandWritesOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeDocFile(t, dir, "doc.json", fixtureDoc("adds two integers"))
	outPath := filepath.Join(dir, "out.json")

	_, _, err := runCommand("compile", path, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	doc, err := ir.DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, "adds two integers", doc.Intent.Summary)
}

func TestCompileCommandInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json",
		`{"intent":{"summary":"s","provenance":{"source":"oracle"}},"signature":{"name":"f"},"metadata":{}}`)

	stdout, _, err := runCommand("compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error")
}
