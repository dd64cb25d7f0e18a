// Package storage selects and opens the configured hotel/reservation backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisad "stayfinder/internal/adapters/redis"
	"stayfinder/internal/domain"
	"stayfinder/internal/shared"
	mysqlrepo "stayfinder/internal/storage/mysql"
)

// Backend bundles the stores plus the Redis client, which always backs the
// search cache even when MySQL holds the data.
type Backend struct {
	Hotels       domain.HotelStore
	Reservations domain.ReservationStore
	Redis        *redis.Client

	db *sql.DB
}

// Open connects to the backend named by cfg.StoreBackend. MySQL schemas are
// migrated on open.
func Open(ctx context.Context, cfg shared.Config) (*Backend, error) {
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	b := &Backend{Redis: rc}

	switch cfg.StoreBackend {
	case shared.BackendRedis:
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		st := redisad.NewStore(rc)
		b.Hotels, b.Reservations = st, st
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis store")

	default:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		db.SetMaxOpenConns(20)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			_ = rc.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := mysqlrepo.Migrate(db); err != nil {
			_ = db.Close()
			_ = rc.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo := mysqlrepo.New(db)
		b.Hotels, b.Reservations, b.db = repo, repo, db
		log.Info().Msg("using mysql store")
	}
	return b, nil
}

func (b *Backend) Close() {
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			log.Warn().Err(err).Msg("db close failed")
		}
	}
	if err := b.Redis.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close failed")
	}
}
