package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "session:revoked:"

// RedisRevocations keeps logged-out session ids in Redis until the cookie
// they belonged to would have expired anyway.
type RedisRevocations struct {
	rdb *redis.Client
}

func NewRedisRevocations(rdb *redis.Client) *RedisRevocations {
	return &RedisRevocations{rdb: rdb}
}

func (r *RedisRevocations) Revoke(ctx context.Context, sid string, ttl time.Duration) error {
	return r.rdb.Set(ctx, revokedPrefix+sid, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, sid string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedPrefix+sid).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
