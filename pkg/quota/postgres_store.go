package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the counter table PostgresStore relies on.
const Schema = `
CREATE TABLE IF NOT EXISTS email_send_counts (
	identity TEXT NOT NULL,
	day DATE NOT NULL,
	count BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (identity, day)
);`

const incrQuery = `
INSERT INTO email_send_counts (identity, day, count)
VALUES ($1, $2, 1)
ON CONFLICT (identity, day)
DO UPDATE SET count = email_send_counts.count + 1
RETURNING count;`

// PostgresStore implements Store with a single-statement upsert. The
// INSERT ... ON CONFLICT ... RETURNING round trip is atomic at the
// database layer, so concurrent callers across process instances never
// under-count.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given connection pool.
// The email_send_counts table must exist; see Schema.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (ps *PostgresStore) Incr(ctx context.Context, identity string, day time.Time) (int64, error) {
	var count int64
	if err := ps.pool.QueryRow(ctx, incrQuery, identity, day.UTC().Truncate(24*time.Hour)).Scan(&count); err != nil {
		return 0, fmt.Errorf("quota: postgres incr for %s: %w", identity, err)
	}
	return count, nil
}
