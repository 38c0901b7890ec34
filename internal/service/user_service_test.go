package service

import (
	"context"
	"errors"
	"testing"

	dom "github.com/sanioooook/TodoApp/internal/domain"
	"github.com/sanioooook/TodoApp/internal/repo"
	"github.com/sanioooook/TodoApp/internal/repo/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService() (*UserService, *mocks.UserRepo) {
	r := &mocks.UserRepo{}
	return NewUserService(r, nil, nil), r
}

func TestUserService_Create(t *testing.T) {
	t.Run("success_normalizes_input", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByEmail", mock.Anything, "jane@example.com").Return(dom.User{}, repo.ErrNotFound)
		r.On("Create", mock.Anything, mock.MatchedBy(func(u dom.User) bool {
			return u.Email == "jane@example.com" && u.FullName == "Jane Doe"
		})).Return(nil)

		u, err := svc.Create(context.Background(), "  Jane@Example.com ", " Jane Doe ")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, u.ID)
		assert.Equal(t, "jane@example.com", u.Email)
		r.AssertExpectations(t)
	})

	t.Run("email_taken", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByEmail", mock.Anything, "jane@example.com").Return(dom.User{ID: uuid.New()}, nil)

		_, err := svc.Create(context.Background(), "jane@example.com", "Jane")

		assertKind(t, err, KindConflict)
		r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email_taken_concurrently", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByEmail", mock.Anything, "jane@example.com").Return(dom.User{}, repo.ErrNotFound)
		r.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate)

		_, err := svc.Create(context.Background(), "jane@example.com", "Jane")
		assertKind(t, err, KindConflict)
	})

	tests := []struct {
		name     string
		email    string
		fullName string
	}{
		{name: "bad_email", email: "not-an-email", fullName: "Jane"},
		{name: "empty_email", email: "", fullName: "Jane"},
		{name: "empty_name", email: "jane@example.com", fullName: "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, r := newUserService()

			_, err := svc.Create(context.Background(), tt.email, tt.fullName)

			assertKind(t, err, KindValidation)
			r.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_GetAndList(t *testing.T) {
	svc, r := newUserService()
	known, missing := uuid.New(), uuid.New()
	r.On("GetByID", mock.Anything, known).Return(dom.User{ID: known, Email: "a@example.com"}, nil)
	r.On("GetByID", mock.Anything, missing).Return(dom.User{}, repo.ErrNotFound)
	r.On("List", mock.Anything, 0, 2).Return([]dom.User{{ID: known}}, nil)

	u, err := svc.GetByID(context.Background(), known)
	require.NoError(t, err)
	assert.Equal(t, known, u.ID)

	_, err = svc.GetByID(context.Background(), missing)
	assertKind(t, err, KindNotFound)

	users, err := svc.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = svc.List(context.Background(), 0, 0)
	assertKind(t, err, KindValidation)
}

func TestUserService_Update(t *testing.T) {
	id := uuid.New()
	current := dom.User{ID: id, Email: "old@example.com", FullName: "Old"}

	t.Run("same_email_skips_lookup", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByID", mock.Anything, id).Return(current, nil)
		r.On("Update", mock.Anything, mock.MatchedBy(func(u dom.User) bool {
			return u.FullName == "New Name" && u.Email == "old@example.com"
		})).Return(nil)

		u, err := svc.Update(context.Background(), id, "OLD@example.com", "New Name")

		require.NoError(t, err)
		assert.Equal(t, "New Name", u.FullName)
		r.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("email_in_use", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByID", mock.Anything, id).Return(current, nil)
		r.On("GetByEmail", mock.Anything, "taken@example.com").Return(dom.User{ID: uuid.New()}, nil)

		_, err := svc.Update(context.Background(), id, "taken@example.com", "Old")

		assertKind(t, err, KindConflict)
		r.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing_user", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByID", mock.Anything, id).Return(dom.User{}, repo.ErrNotFound)

		_, err := svc.Update(context.Background(), id, "new@example.com", "New")
		assertKind(t, err, KindNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByID", mock.Anything, id).Return(dom.User{ID: id}, nil)
		r.On("Delete", mock.Anything, id).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), id))
		r.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByID", mock.Anything, id).Return(dom.User{}, repo.ErrNotFound)

		assertKind(t, svc.Delete(context.Background(), id), KindNotFound)
		r.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("store_failure", func(t *testing.T) {
		svc, r := newUserService()
		r.On("GetByID", mock.Anything, id).Return(dom.User{ID: id}, nil)
		r.On("Delete", mock.Anything, id).Return(errors.New("io timeout"))

		err := svc.Delete(context.Background(), id)
		assertKind(t, err, KindServer)
		assert.ErrorIs(t, err, ErrServer)
	})
}

func TestError_KindsAndSentinels(t *testing.T) {
	err := error(notFound(entityList))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindServer, KindOf(errors.New("plain")))
	assert.Equal(t, "todo list not found", err.Error())
	assert.Equal(t, "not_found", KindNotFound.String())
}
