package repository

import (
	"context"
	"database/sql"
	"fmt"

	"app/internal/model"
)

// ContentRepository is the append-only ledger of generated artifacts.
type ContentRepository interface {
	// Append writes one record. Validation happens upstream; the only failure
	// mode here is a storage error.
	Append(ctx context.Context, rec *model.ContentRecord) error
	// ListByUser returns a user's records in insertion order.
	ListByUser(ctx context.Context, userID string) ([]model.ContentRecord, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type contentRepo struct {
	db *sql.DB
}

func NewContentRepo(db *sql.DB) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) Append(ctx context.Context, rec *model.ContentRecord) error {
	query := `INSERT INTO content_records (user_id, kind, topic, content, image_data, linkedin_post_id)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, rec.UserID, rec.Kind, rec.Topic, rec.Content,
		nullIfEmpty(rec.ImageData), nullIfEmpty(rec.LinkedInPostID)).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending %s record for user %s: %w", rec.Kind, rec.UserID, err)
	}
	return nil
}

func (r *contentRepo) ListByUser(ctx context.Context, userID string) ([]model.ContentRecord, error) {
	query := `SELECT id, user_id, kind, topic, content, COALESCE(image_data, ''),
	          COALESCE(linkedin_post_id, ''), created_at
	          FROM content_records WHERE user_id=$1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing content for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []model.ContentRecord
	for rows.Next() {
		var rec model.ContentRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Topic, &rec.Content,
			&rec.ImageData, &rec.LinkedInPostID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *contentRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM content_records WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("deleting content for user %s: %w", userID, err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
