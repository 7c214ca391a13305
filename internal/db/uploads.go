package db

import (
	"context"

	"github.com/google/uuid"

	"adreport/internal/models"
)

// RecordUpload stores an upload audit entry. ID and CreatedAt are set on u.
func (d *DB) RecordUpload(ctx context.Context, u *models.UploadLog) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return d.Pool.QueryRow(ctx, `
		INSERT INTO uploads (id, file_name, account, format, rows, outcome, user_sub)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, u.ID, u.FileName, u.Account, u.Format, u.Rows, u.Outcome, u.UserSub).Scan(&u.CreatedAt)
}

// ListRecentUploads returns the newest uploads first.
func (d *DB) ListRecentUploads(ctx context.Context, limit int) ([]models.UploadLog, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, file_name, account, format, rows, outcome, user_sub, created_at
		FROM uploads
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []models.UploadLog
	for rows.Next() {
		var u models.UploadLog
		if err := rows.Scan(&u.ID, &u.FileName, &u.Account, &u.Format, &u.Rows, &u.Outcome, &u.UserSub, &u.CreatedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// GetUploadCounts returns upload totals grouped by account and outcome for metrics export.
func (d *DB) GetUploadCounts(ctx context.Context) ([]models.UploadCount, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT account, outcome, COUNT(*), COALESCE(SUM(rows), 0)
		FROM uploads
		GROUP BY account, outcome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.UploadCount
	for rows.Next() {
		var c models.UploadCount
		if err := rows.Scan(&c.Account, &c.Outcome, &c.Count, &c.Rows); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
