package cache

import (
	"fmt"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewDocumentLocker builds the locker selected by cfg.Backend.
// client may be nil for the local backend.
func NewDocumentLocker(cfg config.LockConfig, client redis.UniversalClient, logger *zap.Logger) (billing.DocumentLocker, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalDocumentLocker(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("lock backend redis requires a Redis client")
		}
		return NewRedisDocumentLocker(client, RedisLockOptions{
			TTL:           cfg.TTL,
			WaitTimeout:   cfg.WaitTimeout,
			RetryInterval: cfg.RetryInterval,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Backend)
	}
}

// NewIdempotencyStore builds the store selected by cfg.Backend.
// client may be nil for the memory backend.
func NewIdempotencyStore(cfg config.IdempotencyConfig, client redis.UniversalClient) (shared.IdempotencyStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewInMemoryIdempotencyStore(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("idempotency backend redis requires a Redis client")
		}
		return NewRedisIdempotencyStore(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Backend)
	}
}
