package version

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/specfold/specfold/internal/diff"
	"github.com/specfold/specfold/internal/ir"
)

// ErrVersionNotFound signals a lookup for a version number that does
// not exist. This is an expected, recoverable outcome in normal use
// (e.g. a UI probing version numbers), never a panic.
var ErrVersionNotFound = errors.New("version not found")

// Metadata describes one version: its number, lineage, and bookkeeping.
type Metadata struct {
	Version        int               `json:"version"`
	ParentVersion  *int              `json:"parent_version,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	Author         string            `json:"author,omitempty"`
	ChangeSummary  string            `json:"change_summary,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	DiffFromParent *diff.Diff        `json:"diff_from_parent,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// HasTag reports whether the version carries the given tag.
func (m *Metadata) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// Version is one immutable snapshot: the document plus its metadata.
// Only the metadata's tag set may change after creation.
type Version struct {
	IR   *ir.Document `json:"ir"`
	Meta Metadata     `json:"version_metadata"`
}

// History is an append-only chain of versions. The zero History is not
// usable; construct with NewHistory or NewHistoryWithDocument.
type History struct {
	id       string
	versions []*Version

	// Now supplies version timestamps; overridable for deterministic
	// tests.
	Now func() time.Time
}

// NewHistory creates an empty history with a fresh UUIDv7 identity.
func NewHistory() *History {
	return &History{
		id:  uuid.Must(uuid.NewV7()).String(),
		Now: time.Now,
	}
}

// NewHistoryWithDocument creates a history whose first version holds
// the given document, with no parent and no diff.
func NewHistoryWithDocument(doc *ir.Document, author string) *History {
	h := NewHistory()
	h.CreateVersion(doc, "initial version", author, nil, nil)
	return h
}

// Rebuild reconstructs a history from stored versions, validating the
// numbering invariants: versions 1..N in order, each parent exactly one
// less (nil for version 1).
func Rebuild(id string, versions []*Version) (*History, error) {
	for i, v := range versions {
		want := i + 1
		if v.Meta.Version != want {
			return nil, fmt.Errorf("version sequence broken: index %d holds version %d, want %d", i, v.Meta.Version, want)
		}
		if want == 1 {
			if v.Meta.ParentVersion != nil {
				return nil, fmt.Errorf("version 1 must have no parent, has %d", *v.Meta.ParentVersion)
			}
		} else if v.Meta.ParentVersion == nil || *v.Meta.ParentVersion != want-1 {
			return nil, fmt.Errorf("version %d parent must be %d", want, want-1)
		}
	}
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}
	return &History{id: id, versions: versions, Now: time.Now}, nil
}

// ID returns the history's stable identity.
func (h *History) ID() string {
	return h.id
}

// CurrentVersion returns the highest version number, 0 when empty.
func (h *History) CurrentVersion() int {
	return len(h.versions)
}

// CurrentIR returns the current document, nil when empty. The returned
// document is the stored snapshot; callers must not mutate it.
func (h *History) CurrentIR() *ir.Document {
	if len(h.versions) == 0 {
		return nil
	}
	return h.versions[len(h.versions)-1].IR
}

// Versions returns the stored versions in order. The slice is a copy;
// the elements are the live snapshots.
func (h *History) Versions() []*Version {
	return slices.Clone(h.versions)
}

// CreateVersion appends a new version holding a normalized structural
// copy of doc and returns its number. Normalizing here keeps stored
// snapshots identical to what a decode of their serialized form would
// produce, so content hashes agree across save and load. The diff from the previous current document
// is computed and recorded; the first version has no parent and no
// diff. This is the only operation that grows the chain.
func (h *History) CreateVersion(doc *ir.Document, changeSummary, author string, tags []string, meta map[string]string) int {
	number := len(h.versions) + 1
	v := &Version{
		IR: doc.Clone().Normalize(),
		Meta: Metadata{
			Version:       number,
			CreatedAt:     h.Now().UTC(),
			Author:        author,
			ChangeSummary: changeSummary,
			Tags:          normalizeTags(tags),
			Metadata:      cloneStringMap(meta),
		},
	}
	if number > 1 {
		parent := number - 1
		v.Meta.ParentVersion = &parent
		v.Meta.DiffFromParent = diff.Compare(h.versions[parent-1].IR, v.IR)
	}
	h.versions = append(h.versions, v)
	return number
}

// GetVersion returns version n, with ok=false for an out-of-range n.
func (h *History) GetVersion(n int) (*Version, bool) {
	if n < 1 || n > len(h.versions) {
		return nil, false
	}
	return h.versions[n-1], true
}

// GetVersionRange returns versions lo..hi inclusive. Out-of-range ends
// are clamped; an empty intersection yields nil.
func (h *History) GetVersionRange(lo, hi int) []*Version {
	if lo < 1 {
		lo = 1
	}
	if hi > len(h.versions) {
		hi = len(h.versions)
	}
	if lo > hi {
		return nil
	}
	return slices.Clone(h.versions[lo-1 : hi])
}

// GetVersionsByAuthor returns every version created by the author, in
// version order.
func (h *History) GetVersionsByAuthor(author string) []*Version {
	var out []*Version
	for _, v := range h.versions {
		if v.Meta.Author == author {
			out = append(out, v)
		}
	}
	return out
}

// GetVersionsByTag returns every version carrying the tag, in version
// order.
func (h *History) GetVersionsByTag(tag string) []*Version {
	var out []*Version
	for _, v := range h.versions {
		if v.Meta.HasTag(tag) {
			out = append(out, v)
		}
	}
	return out
}

// CompareVersions returns the structural diff between versions i and j.
// Returns ErrVersionNotFound if either number is invalid.
func (h *History) CompareVersions(i, j int) (*diff.Diff, error) {
	a, ok := h.GetVersion(i)
	if !ok {
		return nil, fmt.Errorf("compare versions: version %d: %w", i, ErrVersionNotFound)
	}
	b, ok := h.GetVersion(j)
	if !ok {
		return nil, fmt.Errorf("compare versions: version %d: %w", j, ErrVersionNotFound)
	}
	return diff.Compare(a.IR, b.IR), nil
}

// RollbackToVersion appends a new version whose content is a structural
// copy of version n, tagged "rollback". History is never truncated:
// rollback is forward progress. Returns ErrVersionNotFound and mutates
// nothing if n is invalid.
func (h *History) RollbackToVersion(n int) (int, error) {
	target, ok := h.GetVersion(n)
	if !ok {
		return 0, fmt.Errorf("rollback: version %d: %w", n, ErrVersionNotFound)
	}
	number := h.CreateVersion(
		target.IR,
		fmt.Sprintf("rollback to version %d", n),
		"",
		[]string{"rollback"},
		map[string]string{"rollback_of": strconv.Itoa(n)},
	)
	return number, nil
}

// AddTagToVersion adds a tag to version n. Adding an existing tag is a
// no-op returning success. Returns ErrVersionNotFound for an invalid n.
func (h *History) AddTagToVersion(n int, tag string) error {
	v, ok := h.GetVersion(n)
	if !ok {
		return fmt.Errorf("add tag: version %d: %w", n, ErrVersionNotFound)
	}
	if v.Meta.HasTag(tag) {
		return nil
	}
	v.Meta.Tags = append(v.Meta.Tags, tag)
	slices.Sort(v.Meta.Tags)
	return nil
}

// RemoveTagFromVersion removes a tag from version n. Returns false
// without mutating anything when the version or the tag is absent.
func (h *History) RemoveTagFromVersion(n int, tag string) bool {
	v, ok := h.GetVersion(n)
	if !ok || !v.Meta.HasTag(tag) {
		return false
	}
	v.Meta.Tags = slices.DeleteFunc(v.Meta.Tags, func(t string) bool { return t == tag })
	if len(v.Meta.Tags) == 0 {
		v.Meta.Tags = nil
	}
	return true
}

// normalizeTags copies, dedupes, and sorts the tag set.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := slices.Clone(tags)
	slices.Sort(out)
	return slices.Compact(out)
}

func cloneStringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
