package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dom "example.com/user-admin/internal/domain/user"
)

// Cache holds at most one user list.
type Cache interface {
	Load(ctx context.Context) (users []dom.User, ok bool, err error)
	Store(ctx context.Context, users []dom.User) error
	Clear(ctx context.Context) error
}

// Loader fetches a fresh list; the action layer's ListUsers fits.
type Loader func(ctx context.Context) ([]dom.User, error)

// UserList is the cached "users" query. Reads hit the cache until a mutation
// invalidates it.
type UserList struct {
	cache  Cache
	load   Loader
	logger *slog.Logger
}

func NewUserList(cache Cache, load Loader, logger *slog.Logger) *UserList {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserList{cache: cache, load: load, logger: logger}
}

// Get returns the cached list, loading and caching it on a miss. A broken
// cache is logged and bypassed; a failed load is returned.
func (q *UserList) Get(ctx context.Context) ([]dom.User, error) {
	users, ok, err := q.cache.Load(ctx)
	if err != nil {
		q.logger.Warn("user list cache read failed", "error", err)
	}
	if ok && err == nil {
		return users, nil
	}

	users, err = q.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := q.cache.Store(ctx, users); err != nil {
		q.logger.Warn("user list cache write failed", "error", err)
	}
	return users, nil
}

func (q *UserList) Invalidate(ctx context.Context) error {
	return q.cache.Clear(ctx)
}

// Mutated invalidates the list when mutationErr is nil and passes mutationErr through.
func (q *UserList) Mutated(ctx context.Context, mutationErr error) error {
	if mutationErr != nil {
		return mutationErr
	}
	if err := q.Invalidate(ctx); err != nil {
		q.logger.Warn("user list invalidation failed", "error", err)
	}
	return nil
}

// MemoryCache keeps the list in process for ttl. A zero ttl never expires.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	users    []dom.User
	storedAt time.Time
	valid    bool
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Load(context.Context) ([]dom.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().Sub(c.storedAt) > c.ttl {
		c.valid = false
		c.users = nil
		return nil, false, nil
	}
	out := make([]dom.User, len(c.users))
	copy(out, c.users)
	return out, true, nil
}

func (c *MemoryCache) Store(_ context.Context, users []dom.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = make([]dom.User, len(users))
	copy(c.users, users)
	c.storedAt = c.now()
	c.valid = true
	return nil
}

func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = nil
	c.valid = false
	return nil
}
