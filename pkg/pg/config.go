package pg

import "time"

type Config struct {
	ConnectionString string        `env:"PG_CONN_URL"`                       // ConnectionString is the database connection URL.
	MaxOpenConns     int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"` // MaxOpenConns caps the pool size.
	MaxIdleConns     int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`  // MaxIdleConns keeps warm connections around.
	RetryAttempts    int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts before giving up on the connection.
	RetryInterval    time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval base; attempts back off linearly.
}
