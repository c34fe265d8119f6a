package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfold/specfold/internal/diff"
)

func TestDiffCommandText(t *testing.T) {
	dir := t.TempDir()
	a := writeDocFile(t, dir, "a.json", fixtureDoc("adds two integers"))
	b := writeDocFile(t, dir, "b.json", fixtureDoc("adds two integers, checked"))

	stdout, _, err := runCommand("diff", a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, "intent.summary")
	assert.Contains(t, stdout, "- adds two integers")
	assert.Contains(t, stdout, "+ adds two integers, checked")
	assert.Contains(t, stdout, "similarity:")
}

func TestDiffCommandIdentical(t *testing.T) {
	dir := t.TempDir()
	a := writeDocFile(t, dir, "a.json", fixtureDoc("adds two integers"))
	b := writeDocFile(t, dir, "b.json", fixtureDoc("adds two integers"))

	stdout, _, err := runCommand("diff", a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, "documents are identical")
	assert.Contains(t, stdout, "similarity: 1.000")
}

func TestDiffCommandJSON(t *testing.T) {
	dir := t.TempDir()
	a := writeDocFile(t, dir, "a.json", fixtureDoc("adds two integers"))
	b := writeDocFile(t, dir, "b.json", fixtureDoc("adds two integers, checked"))

	stdout, _, err := runCommand("--format", "json", "diff", a, b)
	require.NoError(t, err)

	var d diff.Diff
	status := decodeResponse(t, stdout, &d)
	assert.Equal(t, "ok", status)
	require.Len(t, d.Changes, 1)
	assert.Equal(t, "intent.summary", d.Changes[0].Path)
}
