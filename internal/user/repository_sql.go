package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/anuvataru/jewelry-catalog/internal/auth"
	"github.com/anuvataru/jewelry-catalog/internal/database"
)

type SQLRepository struct {
	db  *database.DB
	now func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT id, email, password, role, created_at
		FROM users
		WHERE id = ?
	`
	getUserByEmailQuery = `
		SELECT id, email, password, role, created_at
		FROM users
		WHERE email = ?
	`
	insertUserQuery = `
		INSERT INTO users (email, password, role, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`
	countUsersQuery = `SELECT COUNT(*) FROM users`
)

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (AdminUser, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(getUserByIDQuery), id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, ErrNotFound
	}
	return user, err
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (AdminUser, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(getUserByEmailQuery), email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, ErrNotFound
	}
	return user, err
}

func (r *SQLRepository) Create(ctx context.Context, user AdminUser) (AdminUser, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now().UTC()
	}
	err := r.db.QueryRowContext(ctx, r.db.Rebind(insertUserQuery),
		user.Email,
		user.Password,
		string(user.Role),
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return AdminUser{}, ErrEmailExists
		}
		return AdminUser{}, err
	}
	return user, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUsersQuery).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanUser(scanner rowScanner) (AdminUser, error) {
	user := AdminUser{}
	var role sql.NullString

	if err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&role,
		&user.CreatedAt,
	); err != nil {
		return AdminUser{}, err
	}

	user.Role = auth.RoleAdmin
	if role.Valid && role.String != "" {
		user.Role = auth.Role(role.String)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
