package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	dom "example.com/user-admin/internal/domain/user"
)

const defaultKey = "useradmin:users"

// ListCache stores the fetched user list under one Redis key so separate
// console runs share it until a mutation clears it.
type ListCache struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// Dial connects to addr and pings it before returning.
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*ListCache, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client, ttl), nil
}

func New(client *goredis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, key: defaultKey, ttl: ttl}
}

func (c *ListCache) Load(ctx context.Context) ([]dom.User, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	users := []dom.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, false, fmt.Errorf("decode cached users: %w", err)
	}
	return users, true, nil
}

func (c *ListCache) Store(ctx context.Context, users []dom.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}

func (c *ListCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *ListCache) Close() error {
	return c.client.Close()
}
