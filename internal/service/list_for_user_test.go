package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sanioooook/TodoApp/internal/cache"
	dom "github.com/sanioooook/TodoApp/internal/domain"
	"github.com/sanioooook/TodoApp/internal/repo"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingLists holds GetForUser until release is closed or its context ends.
type blockingLists struct {
	repo.ListRepo
	page    []dom.TodoList
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (b *blockingLists) GetForUser(ctx context.Context, _ uuid.UUID, _, _ int) ([]dom.TodoList, error) {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return b.page, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newCachedService(t *testing.T, lists repo.ListRepo) *TodoListService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewTodoListService(lists, nil, cache.NewListCache(rdb, time.Minute))
}

type pageResult struct {
	list []dom.TodoList
	err  error
}

func TestTodoListService_ListForUser_CancelStaysWithCaller(t *testing.T) {
	// Arrange
	user := uuid.New()
	lists := &blockingLists{
		page:    []dom.TodoList{listWith(user)},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newCachedService(t, lists)

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := make(chan pageResult, 1)
	go func() {
		l, err := svc.ListForUser(ctxA, user, 0, 10)
		resA <- pageResult{l, err}
	}()
	<-lists.started

	resB := make(chan pageResult, 1)
	go func() {
		l, err := svc.ListForUser(context.Background(), user, 0, 10)
		resB <- pageResult{l, err}
	}()

	// Act
	cancelA()
	var a pageResult
	select {
	case a = <-resA:
	case <-time.After(2 * time.Second):
		t.Fatal("canceled caller did not return")
	}
	close(lists.release)
	var b pageResult
	select {
	case b = <-resB:
	case <-time.After(2 * time.Second):
		t.Fatal("live caller did not return")
	}

	// Assert
	assertKind(t, a.err, KindCanceled)
	require.NoError(t, b.err)
	require.Len(t, b.list, 1)
	assert.Equal(t, lists.page[0].ID, b.list[0].ID)
	assert.Equal(t, int32(1), lists.calls.Load())
}

func TestTodoListService_ListForUser_CancelDoesNotPoisonCache(t *testing.T) {
	user := uuid.New()
	lists := &blockingLists{
		page:    []dom.TodoList{listWith(user)},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newCachedService(t, lists)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.ListForUser(ctx, user, 0, 10)
		done <- err
	}()
	<-lists.started
	cancel()
	assertKind(t, <-done, KindCanceled)
	close(lists.release)

	// the detached flight still completes and fills the cache
	require.Eventually(t, func() bool {
		got, err := svc.cache.GetPage(context.Background(), user, 0, 10)
		return err == nil && len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	got, err := svc.ListForUser(context.Background(), user, 0, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(1), lists.calls.Load())
}
