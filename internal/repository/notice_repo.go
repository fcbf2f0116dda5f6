package repository

import (
	"context"
	"database/sql"
	"time"

	"smartgarden/internal/models"

	"github.com/google/uuid"
)

type NoticeSQLite struct {
	db *sql.DB
}

func NewNoticeSQLite(db *sql.DB) *NoticeSQLite { return &NoticeSQLite{db: db} }

const (
	insertNoticeSQL = `INSERT INTO notices (id, raised_at, kind, message, dismissed) VALUES (?, ?, ?, ?, ?)`

	selectActiveNoticesSQL = `
		SELECT id, raised_at, kind, message, dismissed
		FROM notices WHERE dismissed = FALSE
		ORDER BY raised_at DESC
	`

	dismissNoticeSQL       = `UPDATE notices SET dismissed = TRUE WHERE id = ?`
	deleteNoticesBeforeSQL = `DELETE FROM notices WHERE raised_at < ?`
)

// Insert stores n, filling in ID and RaisedAt when empty.
func (r *NoticeSQLite) Insert(ctx context.Context, n models.Notice) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.RaisedAt.IsZero() {
		n.RaisedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertNoticeSQL,
		n.ID,
		n.RaisedAt.UTC().Format(sqliteTimestampLayout),
		n.Kind,
		n.Message,
		n.Dismissed,
	)
	return err
}

// ListActive returns undismissed notices, newest first.
func (r *NoticeSQLite) ListActive(ctx context.Context) ([]models.Notice, error) {
	rows, err := r.db.QueryContext(ctx, selectActiveNoticesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Notice, 0, 8)
	for rows.Next() {
		var n models.Notice
		if err := rows.Scan(&n.ID, &n.RaisedAt, &n.Kind, &n.Message, &n.Dismissed); err != nil {
			return nil, err
		}
		n.RaisedAt = n.RaisedAt.UTC()
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dismiss marks a notice dismissed. found is false for an unknown id.
func (r *NoticeSQLite) Dismiss(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, dismissNoticeSQL, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteRaisedBefore removes notices raised before t and reports how many went.
func (r *NoticeSQLite) DeleteRaisedBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteNoticesBeforeSQL, t.UTC().Format(sqliteTimestampLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
