package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"water-quality-monitor/cache"
	"water-quality-monitor/config"
	"water-quality-monitor/forecast"
	"water-quality-monitor/handlers"
	"water-quality-monitor/logger"
	"water-quality-monitor/notify"
	"water-quality-monitor/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "water-quality-monitor")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Service failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := store.OpenPostgres(startCtx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	forecastCache := openCache(startCtx, cfg, log)
	if forecastCache != nil {
		defer forecastCache.Close()
	}

	alerts, err := notify.NewKafkaPublisher(notify.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.AlertsTopic,
	}, log)
	if err != nil {
		return err
	}
	defer alerts.Close()

	trainer := forecast.NewTrainer(forecast.ModelConfig{
		Seed:     cfg.Forecast.Seed,
		Trees:    cfg.Forecast.Trees,
		MaxDepth: cfg.Forecast.MaxDepth,
	})
	engine := forecast.NewEngine(trainer, cfg.Forecast.Workers, log)

	deps := handlers.Deps{
		Store:   store.NewReadingStore(store.NewPostgresSource(db, log), log),
		Trainer: trainer,
		Engine:  engine,
		Alerts:  alerts,
		Logger:  log,
	}
	if forecastCache != nil {
		deps.Cache = forecastCache
	}
	api := handlers.NewAPI(deps)

	srv := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        api.Handler(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   120 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			zap.String("addr", cfg.HTTPAddr),
			zap.Int("forecast_workers", engine.Workers()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}

// openCache connects to Redis. Forecasts still work without it, so a
// failure only disables caching.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) *cache.ForecastCache {
	c, err := cache.NewForecastCache(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Forecast.CacheTTL,
	})
	if err != nil {
		log.Warn("Redis unavailable, forecast caching disabled",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err),
		)
		return nil
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return c
}

var _ handlers.ReadingStore = (*store.ReadingStore)(nil)
