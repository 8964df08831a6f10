package sqlite

import (
	"context"
	"database/sql"
	"time"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/repository"
)

const notificationColumns = `id, kind, entry_id, recipient, subject, html_body, status, attempts, last_error, created_at, updated_at`

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (kind, entry_id, recipient, subject, html_body, status, attempts, last_error, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		n.Kind, n.EntryID, n.Recipient, n.Subject, n.HTMLBody,
		n.Status, n.Attempts, n.LastError, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *notificationRepository) List(ctx context.Context, status domain.NotificationStatus) ([]domain.Notification, error) {
	if status == "" {
		return r.query(ctx, `SELECT `+notificationColumns+` FROM notifications ORDER BY id DESC`)
	}
	return r.query(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE status = ? ORDER BY id DESC`, status)
}

// ListRetryable returns pending notifications that still have attempts left,
// oldest first. Rows whose waitlist entry was removed are never retried.
func (r *notificationRepository) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
	          WHERE status = 'pending' AND attempts < ? AND entry_id IS NOT NULL
	          ORDER BY id ASC LIMIT ?`
	return r.query(ctx, query, maxAttempts, limit)
}

func (r *notificationRepository) ClaimAttempt(ctx context.Context, id int64, attempts int, at time.Time) (bool, error) {
	query := `UPDATE notifications SET attempts = attempts + 1, updated_at = ?
	          WHERE id = ? AND status = 'pending' AND attempts = ?`
	res, err := r.db.ExecContext(ctx, query, at, id, attempts)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *notificationRepository) CancelForEntry(ctx context.Context, entryID int64, reason string, at time.Time) (int64, error) {
	query := `UPDATE notifications SET status = 'failed', last_error = ?, updated_at = ?
	          WHERE entry_id = ? AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, reason, at, entryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) RecordAttempt(ctx context.Context, n *domain.Notification) error {
	query := `UPDATE notifications SET status = ?, attempts = ?, last_error = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, n.Status, n.Attempts, n.LastError, n.UpdatedAt, n.ID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		var entryID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Kind, &entryID, &n.Recipient, &n.Subject, &n.HTMLBody,
			&n.Status, &n.Attempts, &n.LastError, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		if entryID.Valid {
			id := entryID.Int64
			n.EntryID = &id
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
