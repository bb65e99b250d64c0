package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR"`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// BotConfig drives the chat-bot long-poll worker.
type BotConfig struct {
	APIBaseURL  string        `env:"BOT_API_URL" envDefault:"https://api.telegram.org"`
	Token       string        `env:"BOT_TOKEN"`
	PollTimeout time.Duration `env:"BOT_POLL_TIMEOUT" envDefault:"30s"`
}
