package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"posterminal/internal/domain"
	apperrors "posterminal/internal/errors"
)

const cartKeyPrefix = "cart:"

// RedisCartRepository keeps each session under cart:<id>. A zero ttl keeps
// sessions until they are deleted.
type RedisCartRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *goredis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func (r *RedisCartRepository) Load(ctx context.Context, id string) (*domain.CartSession, error) {
	payload, err := r.client.Get(ctx, cartKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperrors.NewNotFoundError("cart session not found")
		}
		return nil, fmt.Errorf("reading cart session: %w", err)
	}

	return domain.DecodeCartSession(payload)
}

func (r *RedisCartRepository) Save(ctx context.Context, session *domain.CartSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding cart session: %w", err)
	}

	if err := r.client.Set(ctx, cartKeyPrefix+session.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving cart session: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting cart session: %w", err)
	}
	return nil
}
