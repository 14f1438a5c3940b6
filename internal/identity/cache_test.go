package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDirectory struct {
	lookups int
	byEmail int
	users   map[string]User
	fail    error
}

func (d *countingDirectory) LookupUser(_ context.Context, id string) (*User, error) {
	d.lookups++
	if d.fail != nil {
		return nil, d.fail
	}
	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (d *countingDirectory) FindUserByEmail(_ context.Context, email string) (*User, error) {
	d.byEmail++
	for _, u := range d.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *countingDirectory) ListUsers(context.Context) ([]User, error) {
	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	return out, nil
}

func TestCachedDirectory_CachesHits(t *testing.T) {
	next := &countingDirectory{users: map[string]User{"u1": {ID: "u1", Email: "u1@example.com"}}}
	dir := NewCachedDirectory(next, NewMemoryCache(10, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u, err := dir.LookupUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1@example.com", u.Email)
	}
	assert.Equal(t, 1, next.lookups)

	for i := 0; i < 2; i++ {
		_, err := dir.FindUserByEmail(ctx, "u1@example.com")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, next.byEmail)
}

func TestCachedDirectory_DoesNotCacheMisses(t *testing.T) {
	next := &countingDirectory{users: map[string]User{}}
	dir := NewCachedDirectory(next, NewMemoryCache(10, time.Minute))
	ctx := context.Background()

	_, err := dir.LookupUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	next.users["ghost"] = User{ID: "ghost"}
	u, err := dir.LookupUser(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", u.ID)
	assert.Equal(t, 2, next.lookups)
}

func TestCachedDirectory_PropagatesFaults(t *testing.T) {
	fault := errors.New("connection refused")
	next := &countingDirectory{fail: fault}
	dir := NewCachedDirectory(next, NewMemoryCache(10, time.Minute))

	_, err := dir.LookupUser(context.Background(), "u1")
	assert.ErrorIs(t, err, fault)
}

func TestMemoryCache_Expires(t *testing.T) {
	c := NewMemoryCache(10, 20*time.Millisecond)
	ctx := context.Background()
	c.Set(ctx, "k", &User{ID: "u"})

	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}
