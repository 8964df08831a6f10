package sqlite

import (
	"context"
	"database/sql"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/repository"
)

const userColumns = `id, name, role, department, email, phone, password, created_by, created_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	logger.DatabaseCall("INSERT", "users", "email", u.Email)

	query := `INSERT INTO users (name, role, department, email, phone, password, created_by, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Role, u.Department, u.Email, u.Phone, u.PasswordHash, u.CreatedBy, u.CreatedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "email", u.Email)
		return classify("users", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id

	logger.DatabaseResult("INSERT", 1, nil, "id", id)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER(?)`, email)
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	var createdBy sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Role, &u.Department, &u.Email, &u.Phone, &u.PasswordHash, &createdBy, &u.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if createdBy.Valid {
		id := createdBy.Int64
		u.CreatedBy = &id
	}
	return &u, nil
}
