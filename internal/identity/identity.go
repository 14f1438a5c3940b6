// Package identity talks to the external identity provider: it verifies
// bearer tokens and looks up user profiles. Nothing here issues tokens.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/huangang/teamtask/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrUserNotFound = errors.New("identity: user not found")
	ErrInvalidToken = errors.New("identity: invalid token")
)

// User is the subset of a provider profile the API exposes.
type User struct {
	ID        string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

// Authenticator resolves a bearer credential to a stable user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Directory reads user profiles. Implementations return ErrUserNotFound
// for unknown users; any other error is a collaborator fault.
type Directory interface {
	LookupUser(ctx context.Context, userID string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// ListUsers pages through every user. The API resolves invitees with
	// FindUserByEmail; this stays for interface completeness.
	ListUsers(ctx context.Context) ([]User, error)
}

// Resolver is the full identity collaborator.
type Resolver interface {
	Authenticator
	Directory
}

type resolver struct {
	Authenticator
	Directory
}

// Combine joins an authenticator and a directory into a Resolver.
func Combine(auth Authenticator, dir Directory) Resolver {
	return resolver{Authenticator: auth, Directory: dir}
}

// New builds the resolver described by cfg. The returned cache mode is
// "memory", "redis" or "none".
func New(cfg *config.Config) (Resolver, string, error) {
	verifier, err := NewJWTVerifier(&cfg.Identity)
	if err != nil {
		return nil, "", err
	}

	timeout := time.Duration(cfg.Identity.TimeoutSeconds) * time.Second
	var dir Directory = NewClient(cfg.Identity.APIURL, cfg.Identity.SecretKey, timeout)

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	mode := cfg.Cache.Driver
	switch mode {
	case "memory":
		dir = NewCachedDirectory(dir, NewMemoryCache(cfg.Cache.Size, ttl))
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		dir = NewCachedDirectory(dir, NewRedisCache(client, ttl))
	default:
		mode = "none"
	}

	return Combine(verifier, dir), mode, nil
}
