package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/appcloud-project/decision-service/internal/config"
)

// NonceStore records nonces so a signed request cannot be replayed
// within the verifier's timestamp window.
type NonceStore interface {
	// Remember stores the nonce for ttl. It returns ErrNonceReplayed
	// if the nonce was already recorded.
	Remember(ctx context.Context, nonce string, ttl time.Duration) error
	Close() error
}

// NewNonceStore creates a NonceStore based on configuration.
func NewNonceStore(cfg *config.NonceStoreConfig) (NonceStore, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryNonceStore(), nil
	case "redis":
		return NewRedisNonceStore(cfg)
	default:
		return nil, fmt.Errorf("unknown nonce store type: %s", cfg.Type)
	}
}
