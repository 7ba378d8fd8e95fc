package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/plume/internal/models"
	"github.com/google/uuid"
)

// HistoryRepository persists completed generations
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append stores record, assigning an ID and creation time when unset
func (r *HistoryRepository) Append(ctx context.Context, record *models.HistoryRecord) error {
	if !record.Kind.Valid() {
		return fmt.Errorf("append history: unknown kind %q", record.Kind)
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	details, err := record.MarshalDetails()
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO history_records (id, kind, original_text, generated_text, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, string(record.Kind), record.OriginalText, record.GeneratedText, string(details), record.CreatedAt.UTC())
	if err != nil {
		return storageError("append history", err)
	}
	return nil
}

// ListRecent returns records of kind, newest first. limit <= 0 returns all.
func (r *HistoryRepository) ListRecent(ctx context.Context, kind models.HistoryKind, limit int) ([]*models.HistoryRecord, error) {
	query := `
		SELECT id, kind, original_text, generated_text, details, created_at
		FROM history_records
		WHERE kind = ?
		ORDER BY created_at DESC, seq DESC`
	args := []any{string(kind)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list history", err)
	}
	defer func() { _ = rows.Close() }()

	records := []*models.HistoryRecord{}
	for rows.Next() {
		var (
			record  models.HistoryRecord
			k       string
			details []byte
		)
		if err := rows.Scan(&record.ID, &k, &record.OriginalText, &record.GeneratedText, &details, &record.CreatedAt); err != nil {
			return nil, storageError("scan history", err)
		}
		record.Kind = models.HistoryKind(k)
		record.CreatedAt = record.CreatedAt.UTC()
		if err := record.UnmarshalDetails(details); err != nil {
			return nil, storageError("decode history details", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate history", err)
	}
	return records, nil
}

// Count returns the number of stored records of kind
func (r *HistoryRepository) Count(ctx context.Context, kind models.HistoryKind) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history_records WHERE kind = ?`, string(kind)).Scan(&n)
	if err != nil {
		return 0, storageError("count history", err)
	}
	return n, nil
}

// ClearAll removes every record of every kind in one transaction
func (r *HistoryRepository) ClearAll(ctx context.Context) error {
	return r.db.withTx(ctx, func(tx *Tx) error {
		for _, kind := range models.AllHistoryKinds() {
			if _, err := tx.ExecContext(ctx, `DELETE FROM history_records WHERE kind = ?`, string(kind)); err != nil {
				return storageError("clear history", err)
			}
		}
		return nil
	})
}
