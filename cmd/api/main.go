package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"stayfinder/internal/adapters/advisor"
	"stayfinder/internal/adapters/events"
	server "stayfinder/internal/adapters/http_server"
	"stayfinder/internal/adapters/observability"
	redisad "stayfinder/internal/adapters/redis"
	"stayfinder/internal/app"
	"stayfinder/internal/domain"
	"stayfinder/internal/shared"
	"stayfinder/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// stores
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	b, err := storage.Open(openCtx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer b.Close()

	// events
	var pub domain.EventPublisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			// events are best-effort; keep serving without them
			log.Error().Err(err).Msg("rabbitmq unavailable, reservation events disabled")
		} else {
			defer p.Close()
			pub = p
			log.Info().Str("exchange", cfg.EventsExchange).Msg("publishing reservation events")
		}
	}

	// services
	h := &server.Handlers{
		Search:       app.NewSearchService(b.Hotels, redisad.NewCache(b.Redis), cfg.CacheTTL),
		Reservations: app.NewReservationService(b.Reservations, pub),
	}
	if cfg.AdvisorBase != "" {
		cl, err := advisor.New(cfg.AdvisorBase, cfg.AdvisorKey, cfg.AdvisorRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize advisor client")
		}
		h.Advisory = app.NewAdvisoryService(cl)
	}

	// http
	srv := server.New(cfg.RequestTimeout, log.Logger)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
