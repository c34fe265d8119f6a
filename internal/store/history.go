package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/specfold/specfold/internal/version"
)

// ErrHistoryNotFound signals a lookup for a history ID with no stored
// rows. Expected in normal use, never a panic.
var ErrHistoryNotFound = errors.New("history not found")

// HistoryInfo summarizes one stored history.
type HistoryInfo struct {
	ID             string
	CurrentVersion int
	UpdatedAt      time.Time
}

// SaveHistory writes all of a history's versions in one transaction.
// Existing version rows stay untouched except for tags, which are the
// one mutable piece of version metadata. Re-saving an unchanged
// history is a no-op, which makes this safe to call after every
// append.
func (s *Store) SaveHistory(ctx context.Context, h *version.History) error {
	versions := h.Versions()
	updatedAt := time.Time{}
	if len(versions) > 0 {
		updatedAt = versions[len(versions)-1].Meta.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO histories (id, updated_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, h.ID(), updatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	for _, v := range versions {
		row, err := encodeVersionRow(h.ID(), v)
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO versions
			(history_id, version, parent_version, created_at, author,
			 change_summary, tags, metadata, diff, document, document_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(history_id, version) DO UPDATE SET tags = excluded.tags
		`,
			row.historyID,
			row.version,
			nullableInt(row.parentVersion),
			row.createdAt,
			row.author,
			row.changeSummary,
			row.tags,
			row.metadata,
			nullableString(row.diff),
			row.document,
			row.documentHash,
		)
		if err != nil {
			return fmt.Errorf("save history: version %d: %w", v.Meta.Version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	s.log.Debug("history saved",
		zap.String("history_id", h.ID()),
		zap.Int("current_version", len(versions)),
	)
	return nil
}

// LoadHistory reads a history by ID, verifying every document's
// content hash. Returns ErrHistoryNotFound for an unknown ID.
func (s *Store) LoadHistory(ctx context.Context, id string) (*version.History, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM histories WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load history %s: %w", id, ErrHistoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT version, parent_version, created_at, author,
		       change_summary, tags, metadata, diff, document, document_hash
		FROM versions
		WHERE history_id = ?
		ORDER BY version ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}
	defer rows.Close()

	var versions []*version.Version
	for rows.Next() {
		row := versionRow{historyID: id}
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
			return nil, fmt.Errorf("load history %s: %w", id, err)
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
			return nil, fmt.Errorf("load history %s: %w", id, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}

	h, err := version.Rebuild(id, versions)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}
	return h, nil
}

// ListHistories returns a summary of every stored history, most
// recently updated first.
func (s *Store) ListHistories(ctx context.Context) ([]HistoryInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.updated_at, COUNT(v.version)
		FROM histories h
		LEFT JOIN versions v ON v.history_id = h.id
		GROUP BY h.id
		ORDER BY h.updated_at DESC, h.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	defer rows.Close()

	var out []HistoryInfo
	for rows.Next() {
		var info HistoryInfo
		var updatedAt string
		if err := rows.Scan(&info.ID, &updatedAt, &info.CurrentVersion); err != nil {
			return nil, fmt.Errorf("list histories: %w", err)
		}
		info.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("list histories: parse updated_at: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	return out, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
