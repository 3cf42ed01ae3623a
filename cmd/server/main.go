package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"reservation-service/internal/api"
	"reservation-service/internal/cache"
	"reservation-service/internal/config"
	"reservation-service/internal/events"
	"reservation-service/internal/metrics"
	"reservation-service/internal/repository"
	"reservation-service/internal/service"
	"reservation-service/migrations"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "reservation-service").Logger()

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer db.Close()

	if err := migrations.AutoMigrate(ctx, db.DB, 3); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate tables")
	}
	seedRestaurants(ctx, db, cfg.RestaurantsPath)

	var store service.Cache = cache.NopCache{}
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		} else {
			defer rdb.Close()
			store = cache.NewRedisCache(rdb)
		}
	}

	var publisher interface {
		service.EventPublisher
		Close() error
	} = events.LogPublisher{}
	if cfg.Kafka.KafkaEnabled() {
		publisher = events.NewKafkaPublisher(config.NewKafkaWriter(cfg.Kafka))
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Publishing reservation events to Kafka")
	}
	defer publisher.Close()

	userRepo := repository.NewUserRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	reservationService, err := service.NewReservationService(reservationRepo, store, publisher, cfg.Booking)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid booking rules")
	}

	e := api.NewRouter(cfg, api.Services{
		Auth:         service.NewAuthService(userRepo, cfg.Auth),
		Restaurants:  service.NewRestaurantService(restaurantRepo, store),
		Reservations: reservationService,
		DB:           db,
	})

	if cfg.MetricsPort > 0 {
		metrics.Register()
		go metrics.StartServer(ctx, cfg.MetricsPort)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}

func seedRestaurants(ctx context.Context, db *repository.DB, path string) {
	restaurants, err := config.LoadRestaurants(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("No restaurant seed file")
			return
		}
		logger.Fatal().Err(err).Msg("Failed to load restaurants")
	}
	n, err := migrations.SeedRestaurants(ctx, db.DB, restaurants)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed restaurants")
	}
	if n > 0 {
		logger.Info().Int("count", n).Msg("Seeded restaurants")
	}
}
