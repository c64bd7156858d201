// Package redisstore implements remote.Store over a direct Redis connection
// for deployments that can speak RESP instead of the HTTP gateway. Key and
// value formats match resthttp, so mixed fleets interoperate.
package redisstore

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tiercache/remote"
)

var ErrNilClient = errors.New("redisstore: nil client")

type Store struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ remote.Store = (*Store)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Store{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil // miss
	}
	if err != nil {
		return "", false, err // transport/server error
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // non-positive TTLs mean "no expiry"
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, key).Result()
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
