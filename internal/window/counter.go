package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger is the minimal logging surface the counter needs for best-effort
// failures that must not surface to callers.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Counter maintains per-partition fixed-window counts in Redis. It holds no
// mutable state of its own; all coordination is delegated to the atomicity of
// a single MULTI/EXEC batch per increment.
type Counter struct {
	redis  redis.UniversalClient
	logger Logger
}

// NewCounter creates a Counter backed by the given Redis client. A nil logger
// disables best-effort failure logging.
func NewCounter(redisClient redis.UniversalClient, logger Logger) *Counter {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Counter{
		redis:  redisClient,
		logger: logger,
	}
}

// Increment records one event for the partition and returns the count for the
// current window, creating the window (with a TTL of one window length) if
// this is its first event.
//
// Redis offers no single command that increments a key and sets its expiry
// only on creation, so the protocol batches four commands into one MULTI/EXEC:
//
//	SET      temp 0 EX window
//	RENAMENX temp primary     -- only if primary does not exist
//	INCR     primary          -- always lands, whichever key won
//	TTL      primary
//
// Concurrent first increments may each attempt the rename; at most one
// succeeds, and the unconditional INCR in the same batch guarantees no
// caller's event is lost. No locks are involved.
func (c *Counter) Increment(ctx context.Context, partition string, windowLen time.Duration) (int64, error) {
	primary := PrimaryKey(partition)
	temp := TempKey(partition)

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, temp, 0, windowLen)
		pipe.RenameNX(ctx, temp, primary)
		incr = pipe.Incr(ctx, primary)
		ttl = pipe.TTL(ctx, primary)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	count := incr.Val()

	// The primary key can be created by the INCR fallback rather than the
	// renamed temp key when a concurrent batch consumed the rename first and
	// its window expired in between. TTL then reports the no-expiry sentinel;
	// restore the window out of band. Best effort: the increment above is
	// already correct, only the expiry timing is at stake.
	if ttl.Val() < 0 {
		if expireErr := c.redis.Expire(ctx, primary, windowLen).Err(); expireErr != nil {
			c.logger.Printf("rategate: expiry self-heal failed for partition %q: %v", partition, expireErr)
		}
	}

	return count, nil
}

// Count returns the partition's count for the current window. A missing key
// means the window has not been initialized and reads as 0.
func (c *Counter) Count(ctx context.Context, partition string) (int64, error) {
	count, err := c.redis.Get(ctx, PrimaryKey(partition)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}
