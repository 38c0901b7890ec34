package repo

import (
	"context"
	"errors"

	dom "github.com/sanioooook/TodoApp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence. The list core only needs GetByID and
// GetByEmail; the rest backs user management.
type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (dom.User, error)
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	List(ctx context.Context, skip, take int) ([]dom.User, error)
	Create(ctx context.Context, u dom.User) error
	Update(ctx context.Context, u dom.User) error
	// Delete removes the user together with the lists they own and their shares.
	Delete(ctx context.Context, id uuid.UUID) error
}

const userColumns = `id, email, full_name, created_at`

func scanUser(row rowScanner) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	return u, err
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id uuid.UUID) (dom.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, ErrNotFound
	}
	return u, err
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, ErrNotFound
	}
	return u, err
}

// List returns a page of users, newest first.
func (r *PGUserRepo) List(ctx context.Context, skip, take int) ([]dom.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id OFFSET $1 LIMIT $2`,
		skip, take,
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

// Create inserts a new user.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) error {
	query := `
		INSERT INTO users (id, email, full_name, created_at)
		VALUES ($1, $2, $3, $4)`
	tag, err := r.db.Exec(ctx, query, u.ID, u.Email, u.FullName, u.CreatedAt)
	if err != nil {
		if isPGUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// Update overwrites email and full name.
func (r *PGUserRepo) Update(ctx context.Context, u dom.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET email = $2, full_name = $3 WHERE id = $1`,
		u.ID, u.Email, u.FullName,
	)
	if err != nil {
		if isPGUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// Delete removes the user. Owned lists and shares go with it via ON DELETE CASCADE.
func (r *PGUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
