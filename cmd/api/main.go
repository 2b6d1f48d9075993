package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/app"
	calendarcache "github.com/aronareadev/rentcar-admin-sub001/internal/cache/redis"
	"github.com/aronareadev/rentcar-admin-sub001/internal/clock"
	"github.com/aronareadev/rentcar-admin-sub001/internal/config"
	"github.com/aronareadev/rentcar-admin-sub001/internal/messaging/rabbitmq"
	"github.com/aronareadev/rentcar-admin-sub001/internal/storage/postgres"
	transporthttp "github.com/aronareadev/rentcar-admin-sub001/internal/transport/http"
	"github.com/aronareadev/rentcar-admin-sub001/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	startupTimeout = 5 * time.Second
	brokerTimeout  = 30 * time.Second
)

func main() {
	logger := log.Default()
	cfg := config.Load(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	applied, err := migrations.Apply(startupCtx, pool)
	if err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	for _, name := range applied {
		logger.Printf("applied migration %s", name)
	}

	health := []transporthttp.HealthCheck{{Name: "postgres", Ping: pool.Ping}}
	var publishers []app.EventPublisher

	var cache app.CalendarCache
	if cfg.RedisURL != "" {
		client, err := calendarcache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		c := calendarcache.NewCalendarCache(client, cfg.CalendarCacheTTL)
		if err := c.Ping(startupCtx); err != nil {
			logger.Printf("WARN: redis unreachable, calendar cache disabled: %v", err)
		} else {
			cache = c
			publishers = append(publishers, app.PublisherFunc(c.InvalidateOnEvent))
			health = append(health, transporthttp.HealthCheck{Name: "redis", Ping: c.Ping})
		}
	}

	if cfg.AMQPURL != "" {
		brokerCtx, brokerCancel := context.WithTimeout(context.Background(), brokerTimeout)
		pub, err := rabbitmq.Dial(brokerCtx, cfg.AMQPURL, cfg.AMQPExchange, logger)
		brokerCancel()
		if err != nil {
			logger.Printf("WARN: rabbitmq unavailable, reservation events will not be published: %v", err)
		} else {
			defer func() {
				if err := pub.Close(); err != nil {
					logger.Printf("WARN: close rabbitmq: %v", err)
				}
			}()
			publishers = append(publishers, pub)
		}
	}

	clk := clock.NewSystem()
	opts := []app.Option{
		app.WithLogger(logger),
		app.WithEventPublisher(app.FanOut(publishers...)),
	}

	reservationRepo := postgres.NewReservationRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	reservationSvc := app.NewReservationService(reservationRepo, adminRepo, clk, opts...)
	scheduleSvc := app.NewScheduleService(reservationRepo, clk, opts...)
	calendarSvc := app.NewCalendarService(postgres.NewCalendarReader(pool), cache, opts...)
	adminSvc := app.NewAdminService(adminRepo, clk)
	statsSvc := app.NewStatsService(postgres.NewStatsRepository(pool), clk, cfg.Location)

	mux := transporthttp.NewMux(transporthttp.Routes{
		Creator:      reservationSvc,
		Reservations: reservationSvc,
		Mover:        scheduleSvc,
		Calendar:     calendarSvc,
		Vehicles:     adminSvc,
		Locations:    adminSvc,
		Stats:        statsSvc,
		Health:       health,
		Location:     cfg.Location,
	})
	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
}
