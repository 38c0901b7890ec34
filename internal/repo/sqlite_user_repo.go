package repo

import (
	"context"
	"database/sql"
	"errors"

	dom "github.com/sanioooook/TodoApp/internal/domain"

	"github.com/google/uuid"
)

// SQLiteUserRepo implements UserRepo with SQLite.
type SQLiteUserRepo struct {
	db *sql.DB
}

func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id uuid.UUID) (dom.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return dom.User{}, ErrNotFound
	}
	return u, err
}

func (r *SQLiteUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return dom.User{}, ErrNotFound
	}
	return u, err
}

func (r *SQLiteUserRepo) List(ctx context.Context, skip, take int) ([]dom.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		take, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []dom.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u dom.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.FullName, u.CreatedAt.UTC(),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return affected(res)
}

func (r *SQLiteUserRepo) Update(ctx context.Context, u dom.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, full_name = ? WHERE id = ?`,
		u.Email, u.FullName, u.ID,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return affected(res)
}

func (r *SQLiteUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}
