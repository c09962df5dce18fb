// Package cache opens the Redis client that stores browser sessions.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options locates the session Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
	// PoolSize bounds connections; zero keeps the client default.
	PoolSize int
}

const (
	dialTimeout = 3 * time.Second
	pingTimeout = 5 * time.Second
)

// New connects to Redis and fails unless a PING succeeds within five
// seconds. Sessions cannot be served without it.
func New(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, errors.New("platform/cache: address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		PoolSize:    opts.PoolSize,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}
