package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultLockPrefix = "billing:lock:document:"

// releaseScript deletes the key only if it still carries our token, so an
// expired holder cannot release a lock someone else has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockOptions configures RedisDocumentLocker
type RedisLockOptions struct {
	KeyPrefix     string
	TTL           time.Duration // lock expiry if the holder dies
	WaitTimeout   time.Duration // applied when ctx has no deadline
	RetryInterval time.Duration // first backoff step, doubled up to 8x
}

// RedisDocumentLocker serializes work per document across replicas with
// SET NX PX and a per-acquisition token.
type RedisDocumentLocker struct {
	client redis.UniversalClient
	opts   RedisLockOptions
	logger *zap.Logger
}

// NewRedisDocumentLocker creates a RedisDocumentLocker
func NewRedisDocumentLocker(client redis.UniversalClient, opts RedisLockOptions, logger *zap.Logger) *RedisDocumentLocker {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultLockPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 5 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisDocumentLocker{client: client, opts: opts, logger: logger.Named("document_lock")}
}

// Lock retries SET NX with capped exponential backoff until the lock is
// taken or the deadline passes.
func (l *RedisDocumentLocker) Lock(ctx context.Context, documentID uuid.UUID) (func(), error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.WaitTimeout)
		defer cancel()
	}

	key := l.opts.KeyPrefix + documentID.String()
	token := uuid.NewString()
	backoff := l.opts.RetryInterval
	maxBackoff := 8 * l.opts.RetryInterval

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, shared.ErrLockTimeout
			}
			return nil, fmt.Errorf("acquire document lock: %w", err)
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, shared.ErrLockTimeout
		case <-timer.C:
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (l *RedisDocumentLocker) unlockFunc(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be cancelled; release on a fresh one.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("failed to release document lock, it will expire",
					zap.String("key", key), zap.Error(err))
			}
		})
	}
}

var _ billing.DocumentLocker = (*RedisDocumentLocker)(nil)
