package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/semaphore"

	"stayfinder/internal/adapters/observability"
	redisad "stayfinder/internal/adapters/redis"
	"stayfinder/internal/app"
	"stayfinder/internal/catalog"
	"stayfinder/internal/domain"
	"stayfinder/internal/shared"
	"stayfinder/internal/storage"
)

func main() {
	cfg := shared.Load()

	file := flag.StringP("file", "f", "catalog.yaml", "YAML hotel catalog to load")
	workers := flag.IntP("workers", "w", cfg.SeedWorkers, "concurrent hotel writes")
	backend := flag.String("backend", cfg.StoreBackend, "store backend (mysql|redis)")
	flag.Parse()
	cfg.StoreBackend = *backend
	if *workers < 1 {
		*workers = 1
	}

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hotels, err := catalog.Load(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("read catalog failed")
	}
	log.Info().
		Str("file", *file).
		Str("backend", cfg.StoreBackend).
		Int("hotels", len(hotels)).
		Int("workers", *workers).
		Msg("seeder starting")

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	b, err := storage.Open(openCtx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer b.Close()

	svc := app.NewCatalogService(b.Hotels, redisad.NewCache(b.Redis))
	sem := semaphore.NewWeighted(int64(*workers))
	var (
		wg             sync.WaitGroup
		loaded, failed atomic.Int64
	)

	for _, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("seeding interrupted")
			break
		}

		wg.Add(1)
		go func(h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			if err := svc.LoadHotel(ctx, h); err != nil {
				failed.Add(1)
				log.Warn().Str("hotel_id", h.HotelID).Str("city", h.City).Err(err).Msg("load failed")
				return
			}
			loaded.Add(1)
			log.Debug().Str("hotel_id", h.HotelID).Str("city", h.City).Msg("load ok")
		}(h)
	}

	wg.Wait()
	log.Info().Int64("loaded", loaded.Load()).Int64("failed", failed.Load()).Msg("seeding completed")
	if failed.Load() > 0 || loaded.Load() < int64(len(hotels)) {
		b.Close()
		os.Exit(1)
	}
}
