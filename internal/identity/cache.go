package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/huangang/teamtask/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Cache stores user profiles by key. Get reports false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*User, bool)
	Set(ctx context.Context, key string, user *User)
}

// MemoryCache is a per-process LRU with expiry.
type MemoryCache struct {
	lru *expirable.LRU[string, User]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{lru: expirable.NewLRU[string, User](size, nil, ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*User, bool) {
	u, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	return &u, true
}

func (m *MemoryCache) Set(_ context.Context, key string, user *User) {
	m.lru.Add(key, *user)
}

// RedisCache shares lookups between server instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*User, bool) {
	data, err := r.client.Get(ctx, "identity:"+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Str("key", key).Msg("identity cache read failed")
		}
		return nil, false
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (r *RedisCache) Set(ctx context.Context, key string, user *User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, "identity:"+key, data, r.ttl).Err(); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("identity cache write failed")
	}
}

// CachedDirectory serves LookupUser and FindUserByEmail from a cache.
// Misses and errors are never cached, so a user created at the provider
// becomes visible on the next lookup.
type CachedDirectory struct {
	next  Directory
	cache Cache
}

func NewCachedDirectory(next Directory, cache Cache) *CachedDirectory {
	return &CachedDirectory{next: next, cache: cache}
}

func (d *CachedDirectory) LookupUser(ctx context.Context, userID string) (*User, error) {
	key := "id:" + userID
	if u, ok := d.cache.Get(ctx, key); ok {
		return u, nil
	}
	u, err := d.next.LookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.cache.Set(ctx, key, u)
	return u, nil
}

func (d *CachedDirectory) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	key := "email:" + email
	if u, ok := d.cache.Get(ctx, key); ok {
		return u, nil
	}
	u, err := d.next.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	d.cache.Set(ctx, key, u)
	return u, nil
}

func (d *CachedDirectory) ListUsers(ctx context.Context) ([]User, error) {
	return d.next.ListUsers(ctx)
}
