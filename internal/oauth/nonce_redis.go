package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/appcloud-project/decision-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisNonceStore implements NonceStore on Redis so replay protection
// holds across replicas of the service.
type RedisNonceStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisNonceStore(cfg *config.NonceStoreConfig) (*RedisNonceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "decision:nonce:"
	}

	return &RedisNonceStore{client: client, keyPrefix: keyPrefix}, nil
}

func (s *RedisNonceStore) Remember(ctx context.Context, nonce string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+nonce, "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("record nonce: %w", err)
	}
	if !ok {
		return ErrNonceReplayed
	}
	return nil
}

func (s *RedisNonceStore) Close() error {
	return s.client.Close()
}
