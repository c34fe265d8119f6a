package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitJSON runs commit with --format json and returns the new
// history ID and version number.
func commitJSON(t *testing.T, db string, args ...string) (string, int) {
	t.Helper()
	full := append([]string{"--format", "json", "commit", "--db", db}, args...)
	stdout, _, err := runCommand(full...)
	require.NoError(t, err)

	var data struct {
		HistoryID string `json:"history_id"`
		Version   int    `json:"version"`
	}
	status := decodeResponse(t, stdout, &data)
	require.Equal(t, "ok", status)
	require.NotEmpty(t, data.HistoryID)
	return data.HistoryID, data.Version
}

func TestHistoryWorkflow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "specfold.db")
	doc1 := writeDocFile(t, dir, "v1.json", fixtureDoc("adds two integers"))
	doc2 := writeDocFile(t, dir, "v2.json", fixtureDoc("adds two integers, checked"))

	// First commit creates a history.
	id, n := commitJSON(t, db, doc1, "--author", "alice")
	assert.Equal(t, 1, n)

	// Second commit appends to it.
	id2, n := commitJSON(t, db, doc2, "--history", id, "--author", "bob", "--summary", "tighten summary")
	assert.Equal(t, id, id2)
	assert.Equal(t, 2, n)

	// The log shows both versions, newest first.
	stdout, _, err := runCommand("log", "--db", db, "--history", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "version 2")
	assert.Contains(t, stdout, "tighten summary")
	assert.Contains(t, stdout, "version 1 (root)")
	assert.Contains(t, stdout, "initial version")

	// Tagging persists across commands.
	stdout, _, err = runCommand("tag", "--db", db, "--history", id, "2", "reviewed")
	require.NoError(t, err)
	assert.Contains(t, stdout, `tagged version 2 with "reviewed"`)

	stdout, _, err = runCommand("log", "--db", db, "--history", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "tags=[reviewed]")

	// Comparing versions reports the changed field.
	stdout, _, err = runCommand("compare", "--db", db, "--history", id, "1", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "intent.summary")
	assert.Contains(t, stdout, "similarity:")

	// Rollback appends, never truncates.
	stdout, _, err = runCommand("rollback", "--db", db, "--history", id, "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rolled back to version 1 as version 3")

	stdout, _, err = runCommand("log", "--db", db, "--history", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "version 3")
	assert.Contains(t, stdout, "tags=[rollback]")

	// list shows the history with its version count.
	stdout, _, err = runCommand("list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, id)
	assert.Contains(t, stdout, "versions=3")
}

func TestHistoryCommandsRequireHistoryFlag(t *testing.T) {
	db := filepath.Join(t.TempDir(), "specfold.db")

	_, _, err := runCommand("log", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--history is required")
}

func TestHistoryNotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "specfold.db")

	_, _, err := runCommand("log", "--db", db, "--history", "no-such-id")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTagUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "specfold.db")
	doc1 := writeDocFile(t, dir, "v1.json", fixtureDoc("adds two integers"))
	id, _ := commitJSON(t, db, doc1)

	_, _, err := runCommand("tag", "--db", db, "--history", id, "9", "reviewed")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	// Removal from an unknown version is an error, not a no-op.
	_, _, err = runCommand("tag", "--db", db, "--history", id, "99", "reviewed", "--remove")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestTagRemoveAbsentTag(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "specfold.db")
	doc1 := writeDocFile(t, dir, "v1.json", fixtureDoc("adds two integers"))
	id, _ := commitJSON(t, db, doc1)

	stdout, _, err := runCommand("tag", "--db", db, "--history", id, "1", "reviewed", "--remove")
	require.NoError(t, err)
	assert.Contains(t, stdout, `does not carry tag "reviewed"`)
}

func TestRollbackUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "specfold.db")
	doc1 := writeDocFile(t, dir, "v1.json", fixtureDoc("adds two integers"))
	id, _ := commitJSON(t, db, doc1)

	_, _, err := runCommand("rollback", "--db", db, "--history", id, "7")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
