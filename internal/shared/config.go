package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	BackendMySQL = "mysql"
	BackendRedis = "redis"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	StoreBackend   string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	AMQPURL        string
	EventsExchange string
	AdvisorBase    string
	AdvisorKey     string
	AdvisorRPS     int
	RequestTimeout time.Duration
	SeedWorkers    int
}

// Load reads an optional .env file from the working directory, then the
// process environment. Real env vars win over .env entries.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		StoreBackend:   env("STORE_BACKEND", BackendMySQL),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stayfinder?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		AMQPURL:        env("AMQP_URL", ""),
		EventsExchange: env("EVENTS_EXCHANGE", "stayfinder.reservations"),
		AdvisorBase:    env("ADVISOR_BASE_URL", ""),
		AdvisorKey:     env("ADVISOR_API_KEY", ""),
		AdvisorRPS:     atoi("ADVISOR_RPS", 5),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		SeedWorkers:    atoi("SEED_WORKERS", 8),
	}
	switch c.StoreBackend {
	case BackendMySQL, BackendRedis:
	default:
		log.Warn().Str("backend", c.StoreBackend).Msg("unknown STORE_BACKEND, using mysql")
		c.StoreBackend = BackendMySQL
	}
	if c.AdvisorBase != "" && c.AdvisorKey == "" {
		log.Warn().Msg("ADVISOR_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}
