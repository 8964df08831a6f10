package sqlite

import (
	"context"
	"database/sql"
	"time"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/repository"
)

const waitlistColumns = `id, email, status, created_at, invited_at, joined_at`

type waitlistRepository struct {
	db *sql.DB
}

func NewWaitlistRepository(db *sql.DB) repository.WaitlistRepository {
	return &waitlistRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWaitlistEntry(row rowScanner) (*domain.WaitlistEntry, error) {
	var e domain.WaitlistEntry
	var invitedAt, joinedAt sql.NullTime
	if err := row.Scan(&e.ID, &e.Email, &e.Status, &e.CreatedAt, &invitedAt, &joinedAt); err != nil {
		return nil, err
	}
	if invitedAt.Valid {
		t := invitedAt.Time
		e.InvitedAt = &t
	}
	if joinedAt.Valid {
		t := joinedAt.Time
		e.JoinedAt = &t
	}
	return &e, nil
}

func (r *waitlistRepository) Create(ctx context.Context, e *domain.WaitlistEntry) error {
	logger.DatabaseCall("INSERT", "waitlist", "email", e.Email)

	query := `INSERT INTO waitlist (email, status, created_at) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, e.Email, e.Status, e.CreatedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "email", e.Email)
		return classify("waitlist", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id

	logger.DatabaseResult("INSERT", 1, nil, "id", id)
	return nil
}

func (r *waitlistRepository) GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist WHERE id = ?`
	e, err := scanWaitlistEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *waitlistRepository) GetByEmail(ctx context.Context, email string) (*domain.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist WHERE email = ?`
	e, err := scanWaitlistEntry(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// List returns entries newest first. An empty status returns every entry.
func (r *waitlistRepository) List(ctx context.Context, status domain.WaitlistStatus) ([]domain.WaitlistEntry, error) {
	logger.EnterMethod("waitlistRepository.List", "status", status)

	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+waitlistColumns+` FROM waitlist ORDER BY created_at DESC, id DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+waitlistColumns+` FROM waitlist WHERE status = ? ORDER BY created_at DESC, id DESC`, status)
	}
	if err != nil {
		logger.ExitMethodWithError("waitlistRepository.List", err)
		return nil, err
	}
	defer rows.Close()

	entries := []domain.WaitlistEntry{}
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			logger.ExitMethodWithError("waitlistRepository.List", err)
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("waitlistRepository.List", "count", len(entries))
	return entries, nil
}

func (r *waitlistRepository) MarkInvited(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE waitlist SET status = ?, invited_at = ? WHERE id = ?`
	return r.execOne(ctx, query, domain.WaitlistStatusInvited, at, id)
}

func (r *waitlistRepository) MarkJoined(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE waitlist SET status = ?, joined_at = ? WHERE id = ?`
	return r.execOne(ctx, query, domain.WaitlistStatusJoined, at, id)
}

func (r *waitlistRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM waitlist WHERE id = ?`, id)
}

// execOne runs a statement that must touch exactly one row
func (r *waitlistRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Stats counts entries in a single statement so the totals are taken from
// one snapshot.
func (r *waitlistRepository) Stats(ctx context.Context) (*domain.WaitlistStats, error) {
	query := `SELECT COUNT(*),
	                 COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
	                 COALESCE(SUM(CASE WHEN status = 'invited' THEN 1 ELSE 0 END), 0),
	                 COALESCE(SUM(CASE WHEN status = 'joined' THEN 1 ELSE 0 END), 0)
	          FROM waitlist`
	var s domain.WaitlistStats
	if err := r.db.QueryRowContext(ctx, query).Scan(&s.Total, &s.Pending, &s.Invited, &s.Joined); err != nil {
		return nil, err
	}
	return &s, nil
}
