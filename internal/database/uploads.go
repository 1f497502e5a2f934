// uploads.go stores the per-user history of simplified documents.
// History is append-only: there is no update or delete.
package database

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/legallite-api/internal/models"
)

// AppendHistory records a simplified upload for a user.
func (db *DB) AppendHistory(ctx context.Context, up *models.Upload) error {
	query := `
		INSERT INTO uploads (user_id, filename, summary)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := db.QueryRowContext(ctx, query, up.UserID, up.Filename, up.Summary).
		Scan(&up.ID, &up.CreatedAt); err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// ListHistory returns a user's uploads, newest first.
func (db *DB) ListHistory(ctx context.Context, userID string, limit int) ([]models.Upload, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var uploads []models.Upload
	err := db.SelectContext(ctx, &uploads,
		`SELECT * FROM uploads WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return uploads, nil
}

// GetHistoryItem returns one upload, scoped to its owner so users can never
// read each other's summaries.
func (db *DB) GetHistoryItem(ctx context.Context, userID, id string) (*models.Upload, error) {
	var up models.Upload
	err := db.GetContext(ctx, &up,
		`SELECT * FROM uploads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, notFound("upload", err)
	}
	return &up, nil
}
