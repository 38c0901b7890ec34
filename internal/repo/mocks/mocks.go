// Package mocks holds testify mocks of the repo contracts.
package mocks

import (
	"context"

	dom "github.com/sanioooook/TodoApp/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ListRepo implements repo.ListRepo for testing
type ListRepo struct {
	mock.Mock
}

func (m *ListRepo) Create(ctx context.Context, l dom.TodoList) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *ListRepo) GetByID(ctx context.Context, id uuid.UUID) (dom.TodoList, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dom.TodoList), args.Error(1)
}

func (m *ListRepo) GetByIDVisibleTo(ctx context.Context, id, userID uuid.UUID) (dom.TodoList, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(dom.TodoList), args.Error(1)
}

func (m *ListRepo) GetForUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]dom.TodoList, error) {
	args := m.Called(ctx, userID, skip, take)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dom.TodoList), args.Error(1)
}

func (m *ListRepo) Update(ctx context.Context, l dom.TodoList) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *ListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ListRepo) AddShare(ctx context.Context, s dom.Share, limit int) error {
	args := m.Called(ctx, s, limit)
	return args.Error(0)
}

func (m *ListRepo) RemoveShare(ctx context.Context, listID, userID uuid.UUID) error {
	args := m.Called(ctx, listID, userID)
	return args.Error(0)
}

// UserRepo implements repo.UserRepo for testing
type UserRepo struct {
	mock.Mock
}

func (m *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (dom.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dom.User), args.Error(1)
}

func (m *UserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(dom.User), args.Error(1)
}

func (m *UserRepo) List(ctx context.Context, skip, take int) ([]dom.User, error) {
	args := m.Called(ctx, skip, take)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dom.User), args.Error(1)
}

func (m *UserRepo) Create(ctx context.Context, u dom.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepo) Update(ctx context.Context, u dom.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
