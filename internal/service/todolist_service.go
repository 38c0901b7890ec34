package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanioooook/TodoApp/internal/cache"
	dom "github.com/sanioooook/TodoApp/internal/domain"
	"github.com/sanioooook/TodoApp/internal/logging"
	"github.com/sanioooook/TodoApp/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// TodoListService decides who may read, edit, share, unshare and delete a
// list. It keeps no state between calls; every caller id is passed in.
//
// The service does not serialise operations on the same list. The share cap
// holds under concurrent ShareList calls only because ListRepo.AddShare
// checks the count and inserts atomically.
type TodoListService struct {
	lists repo.ListRepo
	users repo.UserRepo
	cache *cache.ListCache
	sf    singleflight.Group
	log   *logging.Logger
	now   func() time.Time

	scopedReads bool
}

// Option configures a TodoListService.
type Option func(*TodoListService)

func WithLogger(l *logging.Logger) Option {
	return func(s *TodoListService) { s.log = l.WithComponent("todolists") }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TodoListService) { s.now = now }
}

// WithScopedReads makes Get fetch through ListRepo.GetByIDVisibleTo so the
// store filters invisible lists too. The service check still applies.
func WithScopedReads(on bool) Option {
	return func(s *TodoListService) { s.scopedReads = on }
}

// NewTodoListService creates a TodoListService. If c is nil, caching is disabled.
func NewTodoListService(lists repo.ListRepo, users repo.UserRepo, c *cache.ListCache, opts ...Option) *TodoListService {
	s := &TodoListService{
		lists: lists,
		users: users,
		cache: c,
		log:   logging.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create makes ownerID the owner of a new, unshared list.
func (s *TodoListService) Create(ctx context.Context, ownerID uuid.UUID, title string) (dom.TodoList, error) {
	title, err := dom.NormalizeTitle(title)
	if err != nil {
		return dom.TodoList{}, validation(entityList, "%s", err.Error())
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// caller-supplied reference, so a bad owner is bad input
			return dom.TodoList{}, validation(entityList, "owner %s does not exist", ownerID)
		}
		return dom.TodoList{}, s.storeFailure(ctx, entityUser, "owner lookup", err)
	}

	l := dom.NewTodoList(ownerID, title, s.now())
	if err := ctx.Err(); err != nil {
		return dom.TodoList{}, canceled(err)
	}
	if err := s.lists.Create(ctx, l); err != nil {
		return dom.TodoList{}, s.storeFailure(ctx, entityList, "create", err)
	}
	s.log.Info("list created", "list_id", l.ID, "owner_id", ownerID)
	s.invalidate(ctx, ownerID)
	return l, nil
}

// Get returns the list if callerID owns it or is a member. Lists the caller
// cannot see are reported exactly like lists that do not exist.
func (s *TodoListService) Get(ctx context.Context, listID, callerID uuid.UUID) (dom.TodoList, error) {
	var (
		l   dom.TodoList
		err error
	)
	if s.scopedReads {
		l, err = s.lists.GetByIDVisibleTo(ctx, listID, callerID)
	} else {
		l, err = s.lists.GetByID(ctx, listID)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.TodoList{}, notFound(entityList)
		}
		return dom.TodoList{}, s.storeFailure(ctx, entityList, "get", err)
	}
	if !l.CanEdit(callerID) {
		return dom.TodoList{}, notFound(entityList)
	}
	return l, nil
}

// ListForUser pages through the lists userID owns or is a member of, newest first.
func (s *TodoListService) ListForUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]dom.TodoList, error) {
	if err := checkPage(skip, take); err != nil {
		return nil, err
	}
	if s.cache == nil {
		list, err := s.lists.GetForUser(ctx, userID, skip, take)
		if err != nil {
			return nil, s.storeFailure(ctx, entityList, "list for user", err)
		}
		return list, nil
	}

	// The flight is shared, so it runs detached from any one caller and each
	// caller only waits on its own context.
	flightCtx := context.WithoutCancel(ctx)
	key := fmt.Sprintf("lists:%s:%d:%d", userID, skip, take)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		if list, err := s.cache.GetPage(flightCtx, userID, skip, take); err == nil && list != nil {
			return list, nil
		}
		list, err := s.lists.GetForUser(flightCtx, userID, skip, take)
		if err != nil {
			return nil, s.storeFailure(flightCtx, entityList, "list for user", err)
		}
		if err := s.cache.SetPage(flightCtx, userID, skip, take, list); err != nil {
			s.log.Warn("cache set failed", "user_id", userID, "error", err)
		}
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, canceled(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]dom.TodoList), nil
	}
}

// Update renames the list. Owner and members may do so.
func (s *TodoListService) Update(ctx context.Context, listID, callerID uuid.UUID, title string) (dom.TodoList, error) {
	l, err := s.fetch(ctx, listID)
	if err != nil {
		return dom.TodoList{}, err
	}
	if !l.CanEdit(callerID) {
		return dom.TodoList{}, unauthorized(entityList, "only the owner or a member can update the list")
	}
	title, err = dom.NormalizeTitle(title)
	if err != nil {
		return dom.TodoList{}, validation(entityList, "%s", err.Error())
	}

	l.Rename(title, s.now())
	if err := ctx.Err(); err != nil {
		return dom.TodoList{}, canceled(err)
	}
	if err := s.lists.Update(ctx, l); err != nil {
		return dom.TodoList{}, s.storeFailure(ctx, entityList, "update", err)
	}
	s.invalidate(ctx, l.MemberIDs()...)
	return l, nil
}

// Delete removes the list and its shares. Owner only.
func (s *TodoListService) Delete(ctx context.Context, listID, callerID uuid.UUID) error {
	l, err := s.fetch(ctx, listID)
	if err != nil {
		return err
	}
	if !l.CanDelete(callerID) {
		return unauthorized(entityList, "only the owner can delete the list")
	}

	if err := ctx.Err(); err != nil {
		return canceled(err)
	}
	if err := s.lists.Delete(ctx, listID); err != nil {
		return s.storeFailure(ctx, entityList, "delete", err)
	}
	s.log.Info("list deleted", "list_id", listID, "owner_id", callerID)
	s.invalidate(ctx, l.MemberIDs()...)
	return nil
}

// Share adds targetID to the list's share set. The checks run in a fixed
// order: the target is judged before the caller, so a caller without access
// who names the owner still gets a validation error.
func (s *TodoListService) Share(ctx context.Context, listID, callerID, targetID uuid.UUID) error {
	l, err := s.fetch(ctx, listID)
	if err != nil {
		return err
	}
	if l.IsOwner(targetID) {
		return validation(entityList, "list can't be shared with its owner")
	}
	if l.IsSharedWith(targetID) {
		return conflict(entityList, "list is already shared with user %s", targetID)
	}
	if !l.CanEdit(callerID) {
		return unauthorized(entityList, "only the owner or a member can share the list")
	}
	if l.ShareLimitReached() {
		return validation(entityList, "share limit reached: a list can be shared with at most %d users", dom.MaxShares)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(entityUser)
		}
		return s.storeFailure(ctx, entityUser, "target lookup", err)
	}

	share := dom.Share{ListID: listID, UserID: targetID, CreatedAt: s.now().UTC()}
	if err := ctx.Err(); err != nil {
		return canceled(err)
	}
	if err := s.lists.AddShare(ctx, share, dom.MaxShares); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return conflict(entityList, "list is already shared with user %s", targetID)
		case errors.Is(err, repo.ErrShareLimit):
			return validation(entityList, "share limit reached: a list can be shared with at most %d users", dom.MaxShares)
		case errors.Is(err, repo.ErrNotFound):
			return notFound(entityList)
		}
		return s.storeFailure(ctx, entityList, "share", err)
	}
	s.log.Info("list shared", "list_id", listID, "by", callerID, "with", targetID)
	s.invalidate(ctx, append(l.MemberIDs(), targetID)...)
	return nil
}

// Unshare removes targetID from the share set. Removing a user who is not a
// member succeeds without touching the store.
func (s *TodoListService) Unshare(ctx context.Context, listID, callerID, targetID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(entityUser)
		}
		return s.storeFailure(ctx, entityUser, "target lookup", err)
	}
	l, err := s.fetch(ctx, listID)
	if err != nil {
		return err
	}
	if l.IsOwner(targetID) {
		return validation(entityList, "owner can't be unshared from their own list")
	}
	if !l.CanEdit(callerID) {
		return unauthorized(entityList, "only the owner or a member can unshare the list")
	}
	if !l.IsSharedWith(targetID) {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return canceled(err)
	}
	if err := s.lists.RemoveShare(ctx, listID, targetID); err != nil && !errors.Is(err, repo.ErrNoRowsAffected) {
		return s.storeFailure(ctx, entityList, "unshare", err)
	}
	s.log.Info("list unshared", "list_id", listID, "by", callerID, "user_id", targetID)
	s.invalidate(ctx, l.MemberIDs()...)
	return nil
}

func (s *TodoListService) fetch(ctx context.Context, listID uuid.UUID) (dom.TodoList, error) {
	l, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.TodoList{}, notFound(entityList)
		}
		return dom.TodoList{}, s.storeFailure(ctx, entityList, "get", err)
	}
	return l, nil
}

func (s *TodoListService) storeFailure(ctx context.Context, entity, op string, err error) *Error {
	e := storeFailure(ctx, entity, op, err)
	if e.Kind == KindServer {
		s.log.Error("store failure", "entity", entity, "op", op, "error", err)
	}
	return e
}

func (s *TodoListService) invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUsers(ctx, userIDs...); err != nil {
		s.log.Warn("cache invalidation failed", "error", err)
	}
}
