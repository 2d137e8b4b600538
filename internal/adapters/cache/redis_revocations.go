package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/rentals/marketplace-service/internal/config"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const revokedKeyPrefix = "revoked:"

// RedisCommands is the subset of the redis client used here. *redis.Client
// satisfies it.
type RedisCommands interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRevocations keeps logged-out token ids until their natural expiry.
type RedisRevocations struct {
	client RedisCommands
	cb     *gobreaker.CircuitBreaker
	now    func() time.Time
}

var _ ports.TokenRevocations = (*RedisRevocations)(nil)

func NewRedisRevocations(client RedisCommands, now func() time.Time) *RedisRevocations {
	return &RedisRevocations{
		client: client,
		cb:     config.NewCircuitBreaker(config.BreakerRedis),
		now:    now,
	}
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	_, err := r.cb.Execute(func() (any, error) {
		return nil, r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
	})
	return err
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	res, err := r.cb.Execute(func() (any, error) {
		return r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	})
	if err != nil {
		return false, err
	}
	return res.(int64) > 0, nil
}
