// Command server exposes one shared seat engine over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/akvarun/PassFlow/internal/command"
	"github.com/akvarun/PassFlow/internal/config"
	"github.com/akvarun/PassFlow/internal/database"
	"github.com/akvarun/PassFlow/internal/engine"
	"github.com/akvarun/PassFlow/internal/handler"
	"github.com/akvarun/PassFlow/internal/middleware"
	"github.com/akvarun/PassFlow/internal/queue"
	"github.com/akvarun/PassFlow/internal/repository"
	"github.com/akvarun/PassFlow/internal/router"
	"github.com/akvarun/PassFlow/internal/service"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger("passflow-server", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))

	eng := engine.NewGuarded(engine.New())

	var events handler.EventLister
	var sinks []queue.Sink
	if cfg.DB.Enabled {
		db, err := database.Open(cfg.DB)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo := repository.NewSeatEventRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("database: %v", err)
		}
		events = repo
		sinks = append(sinks, repo)
	}

	var observers []command.Observer
	var wg sync.WaitGroup
	if cfg.EventsEnabled {
		pub := service.NewPublisher(cfg.BrokerURL, cfg.EventQueue, "http", logger)
		defer pub.Close()
		observers = append(observers, pub)

		sinks = append(sinks, &queue.FileSink{Dir: cfg.AuditLogDir})
		consumer := queue.NewAuditConsumer(cfg.BrokerURL, cfg.EventQueue, logger, sinks...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("audit-consumer: %v", err)
			}
		}()
	}

	// nil client disables both layers
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	mw := router.Middlewares{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, eng.Revision),
	}

	router.RegisterRoutes(e)
	router.RegisterSeats(e, handler.NewSeatHandler(eng, events, observers...), mw)

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	wg.Wait()
	logger.Info("stopped")
}
