package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pokeinfo/statehub/internal/config"
	"pokeinfo/statehub/internal/fetchstate"
	"pokeinfo/statehub/internal/handler"
	"pokeinfo/statehub/internal/model"
	"pokeinfo/statehub/internal/pokeapi"
	"pokeinfo/statehub/internal/repository"
	"pokeinfo/statehub/internal/service"
	jwtpkg "pokeinfo/statehub/pkg/jwt"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 3. Initialize state store (memory, Redis or PostgreSQL)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		stateStore = repository.NewPGStateStore(db)
		logger.Info("using PostgreSQL state store")
	default:
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	}

	// 4. Initialize data source
	var source fetchstate.Source[model.Pokemon] = pokeapi.NewClient(
		cfg.PokeAPI.BaseURL, cfg.PokeAPI.Timeout, cfg.PokeAPI.Delay, logger.Named("pokeapi"),
	)
	if cfg.PokeAPI.CacheTTL > 0 {
		source = pokeapi.NewCachedSource(source, stateStore, cfg.State.KeyPrefix, cfg.PokeAPI.CacheTTL, logger.Named("pokeapi"))
	}

	// 5. Initialize services
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	greetingService := service.NewGreetingService(stateStore, cfg.State.KeyPrefix, "", logger.Named("greeting"))
	pokemonService := service.NewPokemonService(appCtx, source, logger.Named("pokemon"))
	sessionService := service.NewSessionService(
		stateStore,
		jwtpkg.NewManager(cfg.Session.SigningKey, cfg.Session.Issuer, cfg.Session.TTL),
		cfg.State.KeyPrefix,
		cfg.Session.TTL,
		logger.Named("session"),
		greetingService.Unmount,
		pokemonService.Unmount,
	)

	// Unmount components of sessions that expired without an explicit end
	go service.RunSweeper(appCtx, cfg.Session.SweepInterval, cfg.Session.TTL, logger.Named("sweeper"),
		greetingService, pokemonService)

	// 6. Setup router
	router := handler.SetupRouter(cfg, logger, sessionService,
		handler.NewSessionHandler(sessionService),
		handler.NewGreetingHandler(greetingService),
		handler.NewPokemonHandler(pokemonService),
	)

	// 7. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 8. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancelApp()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
