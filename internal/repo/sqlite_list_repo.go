package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	dom "github.com/sanioooook/TodoApp/internal/domain"

	"github.com/google/uuid"
)

// SQLiteListRepo implements ListRepo with SQLite.
type SQLiteListRepo struct {
	db *sql.DB
}

func NewSQLiteListRepo(db *sql.DB) *SQLiteListRepo {
	return &SQLiteListRepo{db: db}
}

func (r *SQLiteListRepo) Create(ctx context.Context, l dom.TodoList) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO todo_lists (id, title, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Title, l.OwnerID, l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SQLiteListRepo) GetByID(ctx context.Context, id uuid.UUID) (dom.TodoList, error) {
	return r.getOne(ctx, `SELECT `+listColumns+` FROM todo_lists l WHERE l.id = ?`, id)
}

func (r *SQLiteListRepo) GetByIDVisibleTo(ctx context.Context, id, userID uuid.UUID) (dom.TodoList, error) {
	query := `
		SELECT ` + listColumns + ` FROM todo_lists l
		WHERE l.id = ? AND (
			l.owner_id = ? OR EXISTS (
				SELECT 1 FROM todo_list_shares s
				WHERE s.todo_list_id = l.id AND s.user_id = ?
			)
		)`
	return r.getOne(ctx, query, id, userID, userID)
}

func (r *SQLiteListRepo) getOne(ctx context.Context, query string, args ...any) (dom.TodoList, error) {
	l, err := scanList(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dom.TodoList{}, ErrNotFound
		}
		return dom.TodoList{}, err
	}
	shares, err := r.sharesFor(ctx, []uuid.UUID{l.ID})
	if err != nil {
		return dom.TodoList{}, err
	}
	l.Shares = append(l.Shares, shares...)
	return l, nil
}

func (r *SQLiteListRepo) GetForUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]dom.TodoList, error) {
	query := `
		SELECT ` + listColumns + ` FROM todo_lists l
		WHERE l.owner_id = ? OR EXISTS (
			SELECT 1 FROM todo_list_shares s
			WHERE s.todo_list_id = l.id AND s.user_id = ?
		)
		ORDER BY l.created_at DESC, l.id
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, userID, userID, take, skip)
	if err != nil {
		return nil, err
	}
	list := []dom.TodoList{}
	ids := []uuid.UUID{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, l)
		ids = append(ids, l.ID)
	}
	// The single connection must be released before the shares query.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	shares, err := r.sharesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	attachShares(list, shares)
	return list, nil
}

func (r *SQLiteListRepo) sharesFor(ctx context.Context, listIDs []uuid.UUID) ([]dom.Share, error) {
	args := make([]any, len(listIDs))
	for i, id := range listIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(listIDs)), ",")
	query := `
		SELECT ` + shareColumns + `
		FROM todo_list_shares s JOIN users u ON u.id = s.user_id
		WHERE s.todo_list_id IN (` + placeholders + `)
		ORDER BY s.created_at, s.user_id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var shares []dom.Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func (r *SQLiteListRepo) Update(ctx context.Context, l dom.TodoList) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE todo_lists SET title = ?, updated_at = ? WHERE id = ?`,
		l.Title, l.UpdatedAt.UTC(), l.ID,
	)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SQLiteListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM todo_list_shares WHERE todo_list_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM todo_lists WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return affected(res)
	})
}

func (r *SQLiteListRepo) AddShare(ctx context.Context, s dom.Share, limit int) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM todo_lists WHERE id = ?`, s.ListID).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		query := `
			INSERT INTO todo_list_shares (todo_list_id, user_id, created_at)
			SELECT ?, ?, ?
			WHERE (SELECT COUNT(*) FROM todo_list_shares WHERE todo_list_id = ?) < ?`
		res, err := tx.ExecContext(ctx, query, s.ListID, s.UserID, s.CreatedAt.UTC(), s.ListID, limit)
		if err != nil {
			if isSQLiteUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		if err := affected(res); err != nil {
			return ErrShareLimit
		}
		return nil
	})
}

func (r *SQLiteListRepo) RemoveShare(ctx context.Context, listID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM todo_list_shares WHERE todo_list_id = ? AND user_id = ?`,
		listID, userID,
	)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SQLiteListRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
