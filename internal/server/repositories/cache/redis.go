package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authdir/internal/common"
	"github.com/dmitrijs2005/authdir/internal/server/models"
	"github.com/redis/go-redis/v9"
)

type RedisRepository struct {
	client  redis.Cmdable
	timeout time.Duration
}

// NewRedisRepository returns a cache repository over client. A positive
// timeout bounds every call on top of the caller's deadline.
func NewRedisRepository(client redis.Cmdable, timeout time.Duration) *RedisRepository {
	return &RedisRepository{client: client, timeout: timeout}
}

func key(userName string) string {
	return common.CacheKeyPrefix + userName
}

func (r *RedisRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *RedisRepository) Get(ctx context.Context, userName string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := r.client.Get(ctx, key(userName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorNotAvailable, err)
	}

	u, err := decodeRecord(userName, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorNotFound, err)
	}
	return u, nil
}

// Set stores the record without expiry. Records are never invalidated since
// credentials are never updated.
func (r *RedisRepository) Set(ctx context.Context, user *models.User) error {
	data, err := encodeRecord(user)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorEncoding, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Set(ctx, key(user.UserName), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorNotAvailable, err)
	}
	return nil
}

// Ping reports whether the cache answers.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
