package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfold/specfold/internal/ir"
)

func mergeFixtures(t *testing.T) (base, ours, theirs string) {
	t.Helper()
	dir := t.TempDir()

	baseDoc := fixtureDoc("adds two integers")
	oursDoc := fixtureDoc("adds two integers with overflow checks")
	theirsDoc := fixtureDoc("adds a pair of integers")

	base = writeDocFile(t, dir, "base.json", baseDoc)
	ours = writeDocFile(t, dir, "ours.json", oursDoc)
	theirs = writeDocFile(t, dir, "theirs.json", theirsDoc)
	return base, ours, theirs
}

func TestMergeCommandCleanMerge(t *testing.T) {
	dir := t.TempDir()
	base := writeDocFile(t, dir, "base.json", fixtureDoc("adds two integers"))
	ours := writeDocFile(t, dir, "ours.json", fixtureDoc("adds two integers, checked"))
	theirs := writeDocFile(t, dir, "theirs.json", fixtureDoc("adds two integers"))

	stdout, _, err := runCommand("merge", base, ours, theirs)
	require.NoError(t, err)
	assert.Contains(t, stdout, "clean merge")
}

func TestMergeCommandManualConflict(t *testing.T) {
	base, ours, theirs := mergeFixtures(t)

	stdout, _, err := runCommand("merge", "-s", "manual", base, ours, theirs)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "intent.summary")
	assert.Contains(t, stdout, "manual_required")
}

func TestMergeCommandOursStrategy(t *testing.T) {
	base, ours, theirs := mergeFixtures(t)

	stdout, _, err := runCommand("--format", "json", "merge", "-s", "ours", base, ours, theirs)
	require.NoError(t, err)

	var data struct {
		Merged   *ir.Document `json:"merged_ir"`
		Strategy string       `json:"strategy"`
	}
	status := decodeResponse(t, stdout, &data)
	assert.Equal(t, "ok", status)
	assert.Equal(t, "ours", data.Strategy)
	require.NotNil(t, data.Merged)
	assert.Equal(t, "adds two integers with overflow checks", data.Merged.Intent.Summary)
}

func TestMergeCommandRejectsUnknownStrategy(t *testing.T) {
	base, ours, theirs := mergeFixtures(t)

	_, _, err := runCommand("merge", "-s", "psychic", base, ours, theirs)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
