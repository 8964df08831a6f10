package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/repository"

	"github.com/mattn/go-sqlite3"
)

// Opener opens the database of the named application. It is the handle
// factory passed to application assembly.
type Opener func(app string) (*sql.DB, error)

// schemas maps an application name to its idempotent schema.
var schemas = map[string]string{
	"safoai":   safoaiSchema,
	"pomegrid": pomegridSchema,
}

// Open opens (creating if needed) the SQLite file at path and applies the
// schema registered for app.
func Open(ctx context.Context, app, path string, busyTimeoutMS int) (*sql.DB, error) {
	if _, ok := schemas[app]; !ok {
		return nil, fmt.Errorf("no schema registered for application %q", app)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", path, busyTimeoutMS)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", app, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", app, err)
	}

	if err := Migrate(ctx, db, app); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database ready", "app", app, "path", path)
	return db, nil
}

// DirOpener opens each application's database as <dir>/<app>.db
func DirOpener(ctx context.Context, dir string, busyTimeoutMS int) Opener {
	return func(app string) (*sql.DB, error) {
		return Open(ctx, app, filepath.Join(dir, app+".db"), busyTimeoutMS)
	}
}

// Migrate applies the schema registered for app. Every statement is
// idempotent so it runs on each start.
func Migrate(ctx context.Context, db *sql.DB, app string) error {
	schema, ok := schemas[app]
	if !ok {
		return fmt.Errorf("no schema registered for application %q", app)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply %s schema: %w", app, err)
	}
	return nil
}

// SafoaiStore groups the repositories backed by the safoai database
type SafoaiStore struct {
	db *sql.DB
	repository.WaitlistRepository
	repository.NotificationRepository
}

func NewSafoaiStore(db *sql.DB) *SafoaiStore {
	return &SafoaiStore{
		db:                     db,
		WaitlistRepository:     NewWaitlistRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

func (s *SafoaiStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// PomegridStore groups the repositories backed by the procurement database
type PomegridStore struct {
	db *sql.DB
	repository.UserRepository
}

func NewPomegridStore(db *sql.DB) *PomegridStore {
	return &PomegridStore{
		db:             db,
		UserRepository: NewUserRepository(db),
	}
}

func (s *PomegridStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// classify turns driver unique-constraint failures into *repository.ConflictError.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &repository.ConflictError{Table: table, Err: err}
	}
	return err
}

// notFound maps sql.ErrNoRows to repository.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
