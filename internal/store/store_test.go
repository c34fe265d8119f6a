package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfold/specfold/internal/ir"
	"github.com/specfold/specfold/internal/testutil"
	"github.com/specfold/specfold/internal/version"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDoc(summary string) *ir.Document {
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

func testHistory(t *testing.T) *version.History {
	t.Helper()
	h := version.NewHistory()
	h.Now = testutil.NewDeterministicClock().Now

	h.CreateVersion(testDoc("adds two integers"), "initial version", "alice", nil, nil)
	h.CreateVersion(testDoc("adds two integers, checked"), "tighten summary", "bob",
		[]string{"reviewed"}, map[string]string{"ticket": "SF-12"})
	return h
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSaveAndLoadHistory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	h := testHistory(t)

	require.NoError(t, s.SaveHistory(ctx, h))

	got, err := s.LoadHistory(ctx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, h.ID(), got.ID())
	require.Equal(t, 2, got.CurrentVersion())
	assert.True(t, got.CurrentIR().Equal(h.CurrentIR()))

	v2, ok := got.GetVersion(2)
	require.True(t, ok)
	require.NotNil(t, v2.Meta.ParentVersion)
	assert.Equal(t, 1, *v2.Meta.ParentVersion)
	assert.Equal(t, "bob", v2.Meta.Author)
	assert.Equal(t, []string{"reviewed"}, v2.Meta.Tags)
	assert.Equal(t, "SF-12", v2.Meta.Metadata["ticket"])
	require.NotNil(t, v2.Meta.DiffFromParent)
	assert.Len(t, v2.Meta.DiffFromParent.All(), 1)

	orig, _ := h.GetVersion(2)
	assert.True(t, v2.Meta.CreatedAt.Equal(orig.Meta.CreatedAt))
}

func TestLoadHistoryNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadHistory(context.Background(), "no-such-history")
	require.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestSaveHistoryIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	h := testHistory(t)

	require.NoError(t, s.SaveHistory(ctx, h))
	require.NoError(t, s.SaveHistory(ctx, h))

	var count int
	require.NoError(t, s.DB().QueryRow(
		`SELECT COUNT(*) FROM versions WHERE history_id = ?`, h.ID()).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSaveHistoryAppendsOnly(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	h := testHistory(t)

	require.NoError(t, s.SaveHistory(ctx, h))

	h.CreateVersion(testDoc("third summary"), "third", "alice", nil, nil)
	require.NoError(t, s.SaveHistory(ctx, h))

	got, err := s.LoadHistory(ctx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentVersion())
}

func TestSaveHistoryUpdatesTags(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	h := testHistory(t)

	require.NoError(t, s.SaveHistory(ctx, h))
	require.NoError(t, h.AddTagToVersion(1, "release"))
	require.NoError(t, s.SaveHistory(ctx, h))

	got, err := s.LoadHistory(ctx, h.ID())
	require.NoError(t, err)
	v1, _ := got.GetVersion(1)
	assert.Equal(t, []string{"release"}, v1.Meta.Tags)
}

func TestSaveAndLoadDuplicateSetEntries(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	doc := testDoc("adds two integers")
	doc.Assertions = append(doc.Assertions, doc.Assertions[0])

	h := version.NewHistory()
	h.Now = testutil.NewDeterministicClock().Now
	h.CreateVersion(doc, "initial version", "alice", nil, nil)
	require.NoError(t, s.SaveHistory(ctx, h))

	got, err := s.LoadHistory(ctx, h.ID())
	require.NoError(t, err)
	assert.Len(t, got.CurrentIR().Assertions, 1)
	assert.True(t, got.CurrentIR().Equal(h.CurrentIR()))
}

func TestLoadHistoryDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	h := testHistory(t)
	require.NoError(t, s.SaveHistory(ctx, h))

	_, err := s.DB().Exec(
		`UPDATE versions SET document_hash = 'sha256:0000' WHERE history_id = ? AND version = 1`,
		h.ID())
	require.NoError(t, err)

	_, err = s.LoadHistory(ctx, h.ID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestListHistories(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	assert.Empty(t, mustList(t, s))

	h1 := testHistory(t)
	require.NoError(t, s.SaveHistory(ctx, h1))

	h2 := version.NewHistory()
	h2.Now = testutil.NewDeterministicClockAt(
		testutil.DefaultBase.Add(time.Hour), time.Minute).Now
	h2.CreateVersion(testDoc("other document"), "initial version", "carol", nil, nil)
	require.NoError(t, s.SaveHistory(ctx, h2))

	infos := mustList(t, s)
	require.Len(t, infos, 2)
	// Most recently updated first.
	assert.Equal(t, h2.ID(), infos[0].ID)
	assert.Equal(t, 1, infos[0].CurrentVersion)
	assert.Equal(t, h1.ID(), infos[1].ID)
	assert.Equal(t, 2, infos[1].CurrentVersion)
}

func mustList(t *testing.T, s *Store) []HistoryInfo {
	t.Helper()
	infos, err := s.ListHistories(context.Background())
	require.NoError(t, err)
	return infos
}
