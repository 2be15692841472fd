// Package quota enforces the per-sender daily email quota.
//
// The limiter delegates counting to a Store whose single operation is an
// atomic increment-and-return keyed by (identity, UTC day). The count
// reflects every attempt, including ones that end up blocked: recording
// attempts rather than successes keeps retry storms from stretching the
// window. Day rollover is implicit - a new date produces a new key.
//
// Stores: RedisStore (day-keyed INCR with TTL), PostgresStore
// (single-statement upsert), MemoryStore (tests and local development).
//
// Typical use:
//
//	limiter, err := quota.New(quota.NewRedisStore(client), 200)
//	res, err := limiter.Allow(ctx, "tithe@ten10.app")
//	if res.Blocked() {
//		// do not send; the attempt is already counted
//	}
package quota
