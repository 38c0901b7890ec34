package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sanioooook/TodoApp/internal/cache"
	dom "github.com/sanioooook/TodoApp/internal/domain"
	"github.com/sanioooook/TodoApp/internal/logging"
	"github.com/sanioooook/TodoApp/internal/repo"

	"github.com/google/uuid"
)

// UserService manages user accounts. Emails are unique.
type UserService struct {
	repo  repo.UserRepo
	cache *cache.ListCache
	log   *logging.Logger
	now   func() time.Time
}

// NewUserService returns a new UserService. c may be nil.
func NewUserService(r repo.UserRepo, c *cache.ListCache, log *logging.Logger) *UserService {
	if log == nil {
		log = logging.Nop()
	}
	return &UserService{repo: r, cache: c, log: log.WithComponent("users"), now: time.Now}
}

// Create registers a user.
func (s *UserService) Create(ctx context.Context, email, fullName string) (dom.User, error) {
	email, fullName, verr := normalizeUser(email, fullName)
	if verr != nil {
		return dom.User{}, verr
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return dom.User{}, conflict(entityUser, "user with email %s already exists", email)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return dom.User{}, s.storeFailure(ctx, "email lookup", err)
	}

	u := dom.NewUser(email, fullName, s.now())
	if err := ctx.Err(); err != nil {
		return dom.User{}, canceled(err)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return dom.User{}, conflict(entityUser, "user with email %s already exists", email)
		}
		return dom.User{}, s.storeFailure(ctx, "create", err)
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, notFound(entityUser)
		}
		return dom.User{}, s.storeFailure(ctx, "get", err)
	}
	return u, nil
}

// List returns a page of users, newest first.
func (s *UserService) List(ctx context.Context, skip, take int) ([]dom.User, error) {
	if err := checkPage(skip, take); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx, skip, take)
	if err != nil {
		return nil, s.storeFailure(ctx, "list", err)
	}
	return users, nil
}

// Update replaces email and full name. A changed email must not belong to
// another user.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, email, fullName string) (dom.User, error) {
	email, fullName, verr := normalizeUser(email, fullName)
	if verr != nil {
		return dom.User{}, verr
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return dom.User{}, err
	}
	if !strings.EqualFold(u.Email, email) {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return dom.User{}, conflict(entityUser, "email %s is already in use", email)
		} else if !errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, s.storeFailure(ctx, "email lookup", err)
		}
	}

	u.Email = email
	u.FullName = fullName
	if err := ctx.Err(); err != nil {
		return dom.User{}, canceled(err)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return dom.User{}, conflict(entityUser, "email %s is already in use", email)
		}
		return dom.User{}, s.storeFailure(ctx, "update", err)
	}
	// names are projected into cached share sets
	s.invalidateLists(ctx)
	return u, nil
}

// Delete removes the user, the lists they own and their memberships.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return canceled(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeFailure(ctx, "delete", err)
	}
	s.log.Info("user deleted", "user_id", id)
	s.invalidateLists(ctx)
	return nil
}

func normalizeUser(email, fullName string) (string, string, *Error) {
	email, err := dom.NormalizeEmail(email)
	if err != nil {
		return "", "", validation(entityUser, "%s", err.Error())
	}
	fullName, err = dom.NormalizeFullName(fullName)
	if err != nil {
		return "", "", validation(entityUser, "%s", err.Error())
	}
	return email, fullName, nil
}

func (s *UserService) storeFailure(ctx context.Context, op string, err error) *Error {
	e := storeFailure(ctx, entityUser, op, err)
	if e.Kind == KindServer {
		s.log.Error("store failure", "entity", entityUser, "op", op, "error", err)
	}
	return e
}

func (s *UserService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn("cache invalidation failed", "error", err)
	}
}
