package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/specfold/specfold/internal/diff"
	"github.com/specfold/specfold/internal/ir"
	"github.com/specfold/specfold/internal/version"
)

// Timestamps are stored as RFC 3339 with nanoseconds so they sort
// lexicographically and round-trip exactly.
const timeLayout = time.RFC3339Nano

// versionRow is one row of the versions table in Go form.
type versionRow struct {
	historyID     string
	version       int
	parentVersion *int
	createdAt     string
	author        string
	changeSummary string
	tags          string
	metadata      string
	diff          *string
	document      string
	documentHash  string
}

// encodeVersionRow serializes a version for storage. The document is
// canonical JSON; its content hash is derived from the same bytes.
func encodeVersionRow(historyID string, v *version.Version) (*versionRow, error) {
	doc, err := ir.CanonicalDocument(v.IR)
	if err != nil {
		return nil, fmt.Errorf("canonicalize document: %w", err)
	}
	hash, err := ir.DocumentID(v.IR)
	if err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}

	tags, err := json.Marshal(tagsOrEmpty(v.Meta.Tags))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	meta, err := json.Marshal(metaOrEmpty(v.Meta.Metadata))
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	row := &versionRow{
		historyID:     historyID,
		version:       v.Meta.Version,
		parentVersion: v.Meta.ParentVersion,
		createdAt:     v.Meta.CreatedAt.UTC().Format(timeLayout),
		author:        v.Meta.Author,
		changeSummary: v.Meta.ChangeSummary,
		tags:          string(tags),
		metadata:      string(meta),
		document:      string(doc),
		documentHash:  hash,
	}
	if v.Meta.DiffFromParent != nil {
		d, err := json.Marshal(v.Meta.DiffFromParent)
		if err != nil {
			return nil, fmt.Errorf("marshal diff: %w", err)
		}
		s := string(d)
		row.diff = &s
	}
	return row, nil
}

// decodeVersionRow rebuilds a version from a stored row, re-deriving
// the document hash and rejecting the row on mismatch.
func (r *versionRow) decode() (*version.Version, error) {
	doc, err := ir.DecodeDocument([]byte(r.document))
	if err != nil {
		return nil, fmt.Errorf("version %d: decode document: %w", r.version, err)
	}
	hash, err := ir.DocumentID(doc)
	if err != nil {
		return nil, fmt.Errorf("version %d: hash document: %w", r.version, err)
	}
	if hash != r.documentHash {
		return nil, fmt.Errorf("version %d: document hash mismatch: stored %s, derived %s", r.version, r.documentHash, hash)
	}

	createdAt, err := time.Parse(timeLayout, r.createdAt)
	if err != nil {
		return nil, fmt.Errorf("version %d: parse created_at: %w", r.version, err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(r.tags), &tags); err != nil {
		return nil, fmt.Errorf("version %d: unmarshal tags: %w", r.version, err)
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(r.metadata), &meta); err != nil {
		return nil, fmt.Errorf("version %d: unmarshal metadata: %w", r.version, err)
	}

	v := &version.Version{
		IR: doc,
		Meta: version.Metadata{
			Version:       r.version,
			ParentVersion: r.parentVersion,
			CreatedAt:     createdAt,
			Author:        r.author,
			ChangeSummary: r.changeSummary,
		},
	}
	if len(tags) > 0 {
		v.Meta.Tags = tags
	}
	if len(meta) > 0 {
		v.Meta.Metadata = meta
	}
	if r.diff != nil {
		var d diff.Diff
		if err := json.Unmarshal([]byte(*r.diff), &d); err != nil {
			return nil, fmt.Errorf("version %d: unmarshal diff: %w", r.version, err)
		}
		v.Meta.DiffFromParent = &d
	}
	return v, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func metaOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
