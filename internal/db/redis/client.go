package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/MSM2025CL/stproject/internal/db"
)

var _ db.Store = (*Store)(nil)

// pingInterval spaces the readiness PINGs issued by Open.
const pingInterval = 100 * time.Millisecond

// Config holds connection parameters for the query embedding cache.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// ReadyTimeout bounds how long Open waits for the first PONG. Zero skips the wait.
	ReadyTimeout time.Duration
}

// Store is a db.Store over rueidis. Client-side caching is disabled; entries are
// written once per query and read back by key.
type Store struct {
	client rueidis.Client
}

// Open connects to the cache and waits until it answers PING.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("cache addrs are required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect cache %v: %w", cfg.Addrs, err)
	}

	s := &Store{client: client}
	if cfg.ReadyTimeout > 0 {
		if err := s.awaitPing(ctx, cfg.ReadyTimeout); err != nil {
			client.Close()
			return nil, err
		}
	}
	return s, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

func (s *Store) awaitPing(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("cache not ready after %s: %w", timeout, err)
		case <-time.After(pingInterval):
		}
	}
}
