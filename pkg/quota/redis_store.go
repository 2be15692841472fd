package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyTTL keeps day keys around long enough to survive timezone
// skew and late retries, then lets Redis reclaim them.
const redisKeyTTL = 48 * time.Hour

// RedisStore implements Store on a day-keyed Redis counter. INCR is
// atomic server-side and returns the post-increment value in the same
// round trip, which is exactly the contract Store requires.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a Store backed by the given Redis client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, prefix: "quota:email"}
}

func (rs *RedisStore) Incr(ctx context.Context, identity string, day time.Time) (int64, error) {
	key := fmt.Sprintf("%s:%s:%s", rs.prefix, identity, dayKey(day))

	var incr *redis.IntCmd
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// NX: only the first increment of the day sets the expiry, so
		// later attempts cannot extend the window.
		pipe.ExpireNX(ctx, key, redisKeyTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("quota: redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}
