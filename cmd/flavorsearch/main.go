package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/bootstrap"
	"github.com/kailas-cloud/flavorsearch/internal/config"
	dbRedis "github.com/kailas-cloud/flavorsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/flavorsearch/internal/logger"
	"github.com/kailas-cloud/flavorsearch/internal/metrics"
	"github.com/kailas-cloud/flavorsearch/internal/repository/resultcache"
	chiTransport "github.com/kailas-cloud/flavorsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/flavorsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/flavorsearch/internal/usecase/search"
	"github.com/kailas-cloud/flavorsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting flavorsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("model", cfg.Model.Path),
		zap.String("dataset", cfg.Dataset.Path),
		zap.Bool("cache", cfg.Cache.Enabled()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSearchMetrics()

	// Model and corpus are loaded before the listener starts; a failure here is fatal.
	engine, err := bootstrap.Load(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load search engine", zap.Error(err))
	}
	defer engine.Close()

	var exec searchuc.Executor = engine.Engine

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(context.Background(), readiness); err != nil {
			// Search works without the cache; health reports degraded until Redis is back.
			logger.Warn("Cache not ready, continuing", zap.Error(err))
		} else {
			logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
		}

		exec = resultcache.New(exec, store, resultcache.Config{
			KeyPrefix:   cfg.Cache.KeyPrefix,
			TTL:         cfg.Cache.TTL(),
			Fingerprint: engine.Fingerprint(),
		}, metrics.ResultCacheTotal, logger)
		cachePinger = store
	}

	healthSvc := healthuc.New(engine, cachePinger)
	server := chiTransport.NewServer(engine.Service(exec), engine.Completer, healthSvc, chiTransport.Options{
		Limits:       engine.Limits,
		ImageBaseURL: cfg.Search.ImageBaseURL,
		SuggestLimit: cfg.Search.SuggestLimit,
	}, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.Int("documents", engine.Documents()),
			zap.Int("vocabulary", engine.Vocabulary()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
