package repo

import (
	"context"
	"testing"
	"time"

	dom "github.com/sanioooook/TodoApp/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type sqliteFixture struct {
	lists *SQLiteListRepo
	users *SQLiteUserRepo
}

func newSQLiteFixture(t *testing.T) *sqliteFixture {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	n, err := Migrate(ctx, db, DialectSQLite)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	return &sqliteFixture{lists: NewSQLiteListRepo(db), users: NewSQLiteUserRepo(db)}
}

func (f *sqliteFixture) user(t *testing.T, name string) dom.User {
	t.Helper()
	u := dom.NewUser(name+"@example.com", name, baseTime)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *sqliteFixture) list(t *testing.T, owner uuid.UUID, title string, at time.Time) dom.TodoList {
	t.Helper()
	l := dom.NewTodoList(owner, title, at)
	require.NoError(t, f.lists.Create(context.Background(), l))
	return l
}

func (f *sqliteFixture) share(t *testing.T, listID, userID uuid.UUID) {
	t.Helper()
	s := dom.Share{ListID: listID, UserID: userID, CreatedAt: baseTime}
	require.NoError(t, f.lists.AddShare(context.Background(), s, dom.MaxShares))
}

func TestSQLiteUserRepo_CRUD(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")

	got, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)
	assert.Equal(t, "alice", got.FullName)
	assert.True(t, got.CreatedAt.Equal(baseTime))

	got, err = f.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	alice.FullName = "Alice Cooper"
	require.NoError(t, f.users.Update(ctx, alice))
	got, err = f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", got.FullName)

	require.NoError(t, f.users.Delete(ctx, alice.ID))
	_, err = f.users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.users.Delete(ctx, alice.ID), ErrNoRowsAffected)
}

func TestSQLiteUserRepo_DuplicateEmail(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	f.user(t, "alice")
	dup := dom.NewUser("alice@example.com", "Other Alice", baseTime)
	assert.ErrorIs(t, f.users.Create(ctx, dup), ErrDuplicate)

	bob := f.user(t, "bob")
	bob.Email = "alice@example.com"
	assert.ErrorIs(t, f.users.Update(ctx, bob), ErrDuplicate)
}

func TestSQLiteUserRepo_List(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c"} {
		u := dom.NewUser(name+"@example.com", name, baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, f.users.Create(ctx, u))
	}

	page, err := f.users.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].FullName)
	assert.Equal(t, "b", page[1].FullName)

	page, err = f.users.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].FullName)
}

func TestSQLiteListRepo_GetByID(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	owner, member := f.user(t, "owner"), f.user(t, "member")
	l := f.list(t, owner.ID, "Groceries", baseTime)
	f.share(t, l.ID, member.ID)

	got, err := f.lists.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.True(t, got.CreatedAt.Equal(baseTime))
	require.Len(t, got.Shares, 1)
	assert.Equal(t, member.ID, got.Shares[0].UserID)
	assert.Equal(t, "member", got.Shares[0].UserFullName)

	_, err = f.lists.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListRepo_GetByIDVisibleTo(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	owner, member, stranger := f.user(t, "owner"), f.user(t, "member"), f.user(t, "stranger")
	l := f.list(t, owner.ID, "Shared", baseTime)
	f.share(t, l.ID, member.ID)

	for _, id := range []uuid.UUID{owner.ID, member.ID} {
		got, err := f.lists.GetByIDVisibleTo(ctx, l.ID, id)
		require.NoError(t, err)
		assert.Equal(t, l.ID, got.ID)
	}

	_, err := f.lists.GetByIDVisibleTo(ctx, l.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListRepo_GetForUser(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	older := f.list(t, alice.ID, "older", baseTime)
	sharedWithAlice := f.list(t, bob.ID, "from bob", baseTime.Add(time.Minute))
	newest := f.list(t, alice.ID, "newest", baseTime.Add(2*time.Minute))
	f.list(t, bob.ID, "bob only", baseTime.Add(3*time.Minute))
	f.share(t, sharedWithAlice.ID, alice.ID)

	got, err := f.lists.GetForUser(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, newest.ID, got[0].ID)
	assert.Equal(t, sharedWithAlice.ID, got[1].ID)
	assert.Equal(t, older.ID, got[2].ID)
	require.Len(t, got[1].Shares, 1)
	assert.Equal(t, "alice", got[1].Shares[0].UserFullName)
	assert.Empty(t, got[0].Shares)

	page, err := f.lists.GetForUser(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, sharedWithAlice.ID, page[0].ID)

	none, err := f.lists.GetForUser(ctx, uuid.New(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteListRepo_Update(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	owner := f.user(t, "owner")
	l := f.list(t, owner.ID, "Old", baseTime)

	l.Rename("New", baseTime.Add(time.Hour))
	require.NoError(t, f.lists.Update(ctx, l))

	got, err := f.lists.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.True(t, got.UpdatedAt.Equal(baseTime.Add(time.Hour)))

	missing := dom.NewTodoList(owner.ID, "ghost", baseTime)
	assert.ErrorIs(t, f.lists.Update(ctx, missing), ErrNoRowsAffected)
}

func TestSQLiteListRepo_DeleteCascadesShares(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	owner, member := f.user(t, "owner"), f.user(t, "member")
	l := f.list(t, owner.ID, "Doomed", baseTime)
	f.share(t, l.ID, member.ID)

	require.NoError(t, f.lists.Delete(ctx, l.ID))

	_, err := f.lists.GetByID(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	visible, err := f.lists.GetForUser(ctx, member.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, visible)

	assert.ErrorIs(t, f.lists.Delete(ctx, l.ID), ErrNoRowsAffected)
}

func TestSQLiteListRepo_AddShare(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	owner := f.user(t, "owner")
	l := f.list(t, owner.ID, "Popular", baseTime)

	var members []dom.User
	for _, name := range []string{"m1", "m2", "m3", "m4"} {
		members = append(members, f.user(t, name))
	}
	for _, m := range members[:dom.MaxShares] {
		f.share(t, l.ID, m.ID)
	}

	t.Run("limit", func(t *testing.T) {
		err := f.lists.AddShare(ctx, dom.Share{ListID: l.ID, UserID: members[3].ID, CreatedAt: baseTime}, dom.MaxShares)
		assert.ErrorIs(t, err, ErrShareLimit)
	})

	t.Run("duplicate", func(t *testing.T) {
		require.NoError(t, f.lists.RemoveShare(ctx, l.ID, members[2].ID))
		err := f.lists.AddShare(ctx, dom.Share{ListID: l.ID, UserID: members[0].ID, CreatedAt: baseTime}, dom.MaxShares)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("missing_list", func(t *testing.T) {
		err := f.lists.AddShare(ctx, dom.Share{ListID: uuid.New(), UserID: members[0].ID, CreatedAt: baseTime}, dom.MaxShares)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	got, err := f.lists.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, got.Shares, 2)
}

func TestSQLiteListRepo_RemoveShare(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	owner, member := f.user(t, "owner"), f.user(t, "member")
	l := f.list(t, owner.ID, "List", baseTime)
	f.share(t, l.ID, member.ID)

	require.NoError(t, f.lists.RemoveShare(ctx, l.ID, member.ID))
	assert.ErrorIs(t, f.lists.RemoveShare(ctx, l.ID, member.ID), ErrNoRowsAffected)

	got, err := f.lists.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Shares)
}

func TestSQLiteUserRepo_DeleteCascadesLists(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	owner, member := f.user(t, "owner"), f.user(t, "member")
	owned := f.list(t, owner.ID, "owned", baseTime)
	other := f.list(t, member.ID, "other", baseTime)
	f.share(t, other.ID, owner.ID)

	require.NoError(t, f.users.Delete(ctx, owner.ID))

	_, err := f.lists.GetByID(ctx, owned.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.lists.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Shares)
}
