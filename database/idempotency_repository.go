package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore records which order id was minted for a given submission
// key, so a retried submission returns the original order instead of a
// duplicate.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, orderID string, ttl time.Duration) error
}

type IdempotencyRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyRepository(client *redis.Client, ttl time.Duration) *IdempotencyRepository {
	return &IdempotencyRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *IdempotencyRepository) getKey(key string) string {
	return "idem:order:" + key
}

// Get returns the order id previously stored under key, or "" if none.
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.getKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores the order id under key. A zero ttl falls back to the
// repository default.
func (r *IdempotencyRepository) Set(ctx context.Context, key, orderID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.client.Set(ctx, r.getKey(key), orderID, ttl).Err()
}
