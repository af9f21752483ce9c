package recent

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Touch(ctx context.Context, id models.FileID, name string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recent_documents (file_id, name, opened_at) VALUES (?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET name = excluded.name, opened_at = excluded.opened_at
	`, string(id), name, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("touch recent[%s]: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSaved(ctx context.Context, id models.FileID, name string, at time.Time) error {
	ms := at.UnixMilli()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recent_documents (file_id, name, opened_at, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET name = excluded.name, saved_at = excluded.saved_at
	`, string(id), name, ms, ms)
	if err != nil {
		return fmt.Errorf("mark saved recent[%s]: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.RecentDocument, error) {
	if limit <= 0 {
		return []models.RecentDocument{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT file_id, name, opened_at, saved_at
		FROM recent_documents
		ORDER BY opened_at DESC, file_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	defer rows.Close()

	out := make([]models.RecentDocument, 0, limit)
	for rows.Next() {
		var (
			id              string
			name            string
			opened, savedMs int64
		)
		if err := rows.Scan(&id, &name, &opened, &savedMs); err != nil {
			return nil, fmt.Errorf("scan recent row: %w", err)
		}
		doc := models.RecentDocument{
			FileID:   models.FileID(id),
			Name:     name,
			OpenedAt: time.UnixMilli(opened),
		}
		if savedMs > 0 {
			doc.SavedAt = time.UnixMilli(savedMs)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id models.FileID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recent_documents WHERE file_id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete recent[%s]: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM recent_documents WHERE file_id NOT IN (
			SELECT file_id FROM recent_documents ORDER BY opened_at DESC, file_id LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("prune recent: %w", err)
	}
	return nil
}
