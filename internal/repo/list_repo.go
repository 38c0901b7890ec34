package repo

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/sanioooook/TodoApp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListRepo stores todo lists and their share relations. Reads return
// ErrNotFound for missing rows, writes return ErrNoRowsAffected when nothing
// was changed.
type ListRepo interface {
	Create(ctx context.Context, l dom.TodoList) error
	GetByID(ctx context.Context, id uuid.UUID) (dom.TodoList, error)
	// GetByIDVisibleTo only returns the list if userID owns it or is a member.
	GetByIDVisibleTo(ctx context.Context, id, userID uuid.UUID) (dom.TodoList, error)
	// GetForUser pages through lists owned by or shared with userID, newest first.
	GetForUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]dom.TodoList, error)
	Update(ctx context.Context, l dom.TodoList) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AddShare inserts the share unless the list already has limit shares
	// (ErrShareLimit) or the pair exists (ErrDuplicate). The count check and
	// the insert are atomic.
	AddShare(ctx context.Context, s dom.Share, limit int) error
	RemoveShare(ctx context.Context, listID, userID uuid.UUID) error
}

const (
	listColumns = `l.id, l.title, l.owner_id, l.created_at, l.updated_at`

	shareColumns = `s.todo_list_id, s.user_id, u.full_name, s.created_at`
)

func scanList(row rowScanner) (dom.TodoList, error) {
	var l dom.TodoList
	err := row.Scan(&l.ID, &l.Title, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	l.Shares = []dom.Share{}
	return l, err
}

func scanShare(row rowScanner) (dom.Share, error) {
	var s dom.Share
	err := row.Scan(&s.ListID, &s.UserID, &s.UserFullName, &s.CreatedAt)
	return s, err
}

// attachShares distributes shares onto the lists they belong to.
func attachShares(lists []dom.TodoList, shares []dom.Share) {
	idx := make(map[uuid.UUID]int, len(lists))
	for i := range lists {
		idx[lists[i].ID] = i
	}
	for _, s := range shares {
		if i, ok := idx[s.ListID]; ok {
			lists[i].Shares = append(lists[i].Shares, s)
		}
	}
}

// PGListRepo implements ListRepo with Postgres.
type PGListRepo struct {
	db *pgxpool.Pool
}

func NewPGListRepo(db *pgxpool.Pool) *PGListRepo {
	return &PGListRepo{db: db}
}

func (r *PGListRepo) Create(ctx context.Context, l dom.TodoList) error {
	query := `
		INSERT INTO todo_lists (id, title, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	tag, err := r.db.Exec(ctx, query, l.ID, l.Title, l.OwnerID, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *PGListRepo) GetByID(ctx context.Context, id uuid.UUID) (dom.TodoList, error) {
	query := `SELECT ` + listColumns + ` FROM todo_lists l WHERE l.id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PGListRepo) GetByIDVisibleTo(ctx context.Context, id, userID uuid.UUID) (dom.TodoList, error) {
	query := `
		SELECT ` + listColumns + ` FROM todo_lists l
		WHERE l.id = $1 AND (
			l.owner_id = $2 OR EXISTS (
				SELECT 1 FROM todo_list_shares s
				WHERE s.todo_list_id = l.id AND s.user_id = $2
			)
		)`
	return r.getOne(ctx, query, id, userID)
}

func (r *PGListRepo) getOne(ctx context.Context, query string, args ...any) (dom.TodoList, error) {
	l, err := scanList(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func (r *PGListRepo) GetForUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]dom.TodoList, error) {
	query := `
		SELECT ` + listColumns + ` FROM todo_lists l
		WHERE l.owner_id = $1 OR EXISTS (
			SELECT 1 FROM todo_list_shares s
			WHERE s.todo_list_id = l.id AND s.user_id = $1
		)
		ORDER BY l.created_at DESC, l.id
		OFFSET $2 LIMIT $3`
	rows, err := r.db.Query(ctx, query, userID, skip, take)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.TodoList{}
	ids := []uuid.UUID{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
		ids = append(ids, l.ID)
	}
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

func (r *PGListRepo) sharesFor(ctx context.Context, listIDs []uuid.UUID) ([]dom.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM todo_list_shares s JOIN users u ON u.id = s.user_id
		WHERE s.todo_list_id = ANY($1)
		ORDER BY s.created_at, s.user_id`
	rows, err := r.db.Query(ctx, query, listIDs)
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

func (r *PGListRepo) Update(ctx context.Context, l dom.TodoList) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE todo_lists SET title = $2, updated_at = $3 WHERE id = $1`,
		l.ID, l.Title, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *PGListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM todo_list_shares WHERE todo_list_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM todo_lists WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNoRowsAffected
		}
		return nil
	})
}

func (r *PGListRepo) AddShare(ctx context.Context, s dom.Share, limit int) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// Concurrent AddShare calls on the same list queue up behind this lock,
		// so the count below cannot go stale before the insert.
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM todo_lists WHERE id = $1 FOR UPDATE`, s.ListID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock list: %w", err)
		}
		query := `
			INSERT INTO todo_list_shares (todo_list_id, user_id, created_at)
			SELECT $1::uuid, $2::uuid, $3::timestamptz
			WHERE (SELECT COUNT(*) FROM todo_list_shares WHERE todo_list_id = $1::uuid) < $4::int`
		tag, err := tx.Exec(ctx, query, s.ListID, s.UserID, s.CreatedAt, limit)
		if err != nil {
			if isPGUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrShareLimit
		}
		return nil
	})
}

func (r *PGListRepo) RemoveShare(ctx context.Context, listID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM todo_list_shares WHERE todo_list_id = $1 AND user_id = $2`,
		listID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
