package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/specfold/specfold/internal/version"
)

// VersionQuery is a typed filter over stored versions, compiled to
// parameterized SQL. All values are parameterized, never interpolated,
// and every compiled query carries a deterministic ORDER BY.
type VersionQuery struct {
	HistoryID     string // required
	Author        string // exact match when non-empty
	Tag           string // version must carry the tag
	MinVersion    int    // inclusive lower bound, 0 = unbounded
	MaxVersion    int    // inclusive upper bound, 0 = unbounded
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// compile renders the query to SQL plus its parameter list.
func (q *VersionQuery) compile() (string, []any, error) {
	if q.HistoryID == "" {
		return "", nil, fmt.Errorf("compile version query: history ID is required")
	}

	var b strings.Builder
	b.WriteString(`SELECT version, parent_version, created_at, author,
		change_summary, tags, metadata, diff, document, document_hash
		FROM versions WHERE history_id = ?`)
	params := []any{q.HistoryID}

	if q.Author != "" {
		b.WriteString(" AND author = ?")
		params = append(params, q.Author)
	}
	if q.Tag != "" {
		// Tags are stored as a JSON array of strings.
		b.WriteString(" AND EXISTS (SELECT 1 FROM json_each(versions.tags) WHERE json_each.value = ?)")
		params = append(params, q.Tag)
	}
	if q.MinVersion > 0 {
		b.WriteString(" AND version >= ?")
		params = append(params, q.MinVersion)
	}
	if q.MaxVersion > 0 {
		b.WriteString(" AND version <= ?")
		params = append(params, q.MaxVersion)
	}
	if !q.CreatedAfter.IsZero() {
		b.WriteString(" AND created_at >= ?")
		params = append(params, q.CreatedAfter.UTC().Format(timeLayout))
	}
	if !q.CreatedBefore.IsZero() {
		b.WriteString(" AND created_at <= ?")
		params = append(params, q.CreatedBefore.UTC().Format(timeLayout))
	}

	b.WriteString(" ORDER BY version ASC")
	return b.String(), params, nil
}

// QueryVersions runs a typed version query, verifying each matching
// document's content hash on the way out.
func (s *Store) QueryVersions(ctx context.Context, q VersionQuery) ([]*version.Version, error) {
	query, params, err := q.compile()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []*version.Version
	for rows.Next() {
		row := versionRow{historyID: q.HistoryID}
		var parent sql.NullInt64
		var diffJSON sql.NullString
		err := rows.Scan(
			&row.version,
			&parent,
			&row.createdAt,
			&row.author,
			&row.changeSummary,
			&row.tags,
			&row.metadata,
			&diffJSON,
			&row.document,
			&row.documentHash,
		)
		if err != nil {
			return nil, fmt.Errorf("query versions: %w", err)
		}
		if parent.Valid {
			p := int(parent.Int64)
			row.parentVersion = &p
		}
		if diffJSON.Valid {
			row.diff = &diffJSON.String
		}
		v, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("query versions: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	return out, nil
}
