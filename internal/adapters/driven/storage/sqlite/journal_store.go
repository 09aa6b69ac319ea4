package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// journalStore implements driven.GenerationJournal.
type journalStore struct {
	store *Store
}

var _ driven.GenerationJournal = (*journalStore)(nil)

// Record appends a lifecycle entry.
func (s *journalStore) Record(ctx context.Context, entry domain.JournalEntry) error {
	if entry.ChunkID == "" {
		return domain.ErrInvalidInput
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO generation_journal (chunk_id, kind, query, state, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ChunkID, string(entry.Kind), entry.Query, string(entry.State),
		nullString(entry.Detail), entry.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording journal entry: %w", err)
	}
	return nil
}

// List returns entries for chunkID, or every entry when chunkID is empty.
func (s *journalStore) List(ctx context.Context, chunkID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT chunk_id, kind, query, state, detail, recorded_at
		FROM generation_journal`
	var args []any
	if chunkID != "" {
		query += ` WHERE chunk_id = ?`
		args = append(args, chunkID)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}

	return entries, nil
}

// Close is a no-op; the owning Store closes the database.
func (s *journalStore) Close() error {
	return nil
}

// ==================== Helper Functions ====================

func scanJournalEntry(rows *sql.Rows) (domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var kind, state, recordedAt string
	var detail sql.NullString

	if err := rows.Scan(&entry.ChunkID, &kind, &entry.Query, &state, &detail, &recordedAt); err != nil {
		return entry, fmt.Errorf("scanning journal entry: %w", err)
	}

	entry.Kind = domain.ContentKind(kind)
	entry.State = domain.GenerationState(state)
	if detail.Valid {
		entry.Detail = detail.String
	}
	ts, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return entry, fmt.Errorf("parsing recorded_at: %w", err)
	}
	entry.Timestamp = ts
	return entry, nil
}

// nullString converts an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
