package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dom "github.com/sanioooook/TodoApp/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyUserLists = "todolists:user:"

// ListCache caches pages of a user's visible lists in Redis.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListCache returns a new ListCache.
func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

func pageKey(userID uuid.UUID, skip, take int) string {
	return fmt.Sprintf("%s%s:%d:%d", keyUserLists, userID, skip, take)
}

// GetPage returns the cached page or nil if miss.
func (c *ListCache) GetPage(ctx context.Context, userID uuid.UUID, skip, take int) ([]dom.TodoList, error) {
	b, err := c.rdb.Get(ctx, pageKey(userID, skip, take)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.TodoList
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetPage stores the page in cache.
func (c *ListCache) SetPage(ctx context.Context, userID uuid.UUID, skip, take int, list []dom.TodoList) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, pageKey(userID, skip, take), b, c.ttl).Err()
}

// InvalidateUsers drops every cached page of the given users. A list write
// touches the owner and all members, so callers pass all of them.
func (c *ListCache) InvalidateUsers(ctx context.Context, userIDs ...uuid.UUID) error {
	for _, id := range userIDs {
		iter := c.rdb.Scan(ctx, 0, keyUserLists+id.String()+":*", 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateAll drops every cached page. Used when a write can affect users
// that are not known up front, such as deleting a user.
func (c *ListCache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyUserLists+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
