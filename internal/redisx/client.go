package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// StatusStore fronts the order-status read model keys. Lookups are
// best-effort; a miss or a Redis error both read as "not cached".
type StatusStore struct{ Client *redis.Client }

func (s *StatusStore) GetStatus(ctx context.Context, code string) (string, bool) {
	v, err := s.Client.Get(ctx, fmt.Sprintf(KeyOrderStatus, code)).Result()
	return v, err == nil && v != ""
}

func (s *StatusStore) SetStatus(ctx context.Context, code string, doc []byte) {
	_ = s.Client.Set(ctx, fmt.Sprintf(KeyOrderStatus, code), doc, TTLStatusCache).Err()
}
