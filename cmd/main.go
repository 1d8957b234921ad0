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
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"storyteller/internal/catalog"
	"storyteller/internal/config"
	"storyteller/internal/dispatch"
	"storyteller/internal/interfaces"
	"storyteller/internal/logging"
	"storyteller/internal/observe"
	"storyteller/internal/prompts"
	"storyteller/internal/session"
	"storyteller/internal/storage"
	"storyteller/internal/web"
)

var version = "dev"

func main() {
	defaultPath := os.Getenv("STORYTELLER_CONFIG")
	if defaultPath == "" {
		defaultPath = "configs/config.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	seed := flag.Bool("seed", false, "write the inline catalog to MySQL and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if *seed {
		if err := seedCatalog(cfg, logger); err != nil {
			logger.Fatal("seed failed", zap.Error(err))
		}
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mp metric.MeterProvider = noop.NewMeterProvider()
	if cfg.Metrics.Enabled {
		sdk, shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
		mp = sdk
	}
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		return fmt.Errorf("create instruments: %w", err)
	}

	cat, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.String("source", cfg.Catalog.Source), zap.Int("stories", cat.Len()))

	store, pinger, closeStore, err := openSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	speech, err := prompts.FromConfig(cfg.Messages)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	hub := web.NewPlaybackHub(logger, metrics)
	go hub.Run(ctx)

	d := dispatch.New(cat, store,
		dispatch.WithLogger(logger.Named("dispatch")),
		dispatch.WithMetrics(metrics),
		dispatch.WithObserver(hub),
		dispatch.WithPrompts(speech),
		dispatch.WithNarrationMode(cfg.Narration.Mode),
	)

	handlers := web.NewHandlers(cfg, d, cat, hub, pinger, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      web.NewRouter(handlers, metrics),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("narration", cfg.Narration.Mode),
			zap.String("sessions", cfg.Session.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped", zap.Int64("handled", d.Handled()))
	return nil
}

func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*catalog.Catalog, error) {
	if cfg.Catalog.Source != config.CatalogSourceMySQL {
		cat, err := catalog.FromConfig(cfg.Catalog)
		if err != nil {
			return nil, fmt.Errorf("build catalog: %w", err)
		}
		return cat, nil
	}

	mysqlStore, err := storage.NewMySQLStore(cfg.Database.MySQL)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	defer func() {
		if err := mysqlStore.Close(); err != nil {
			logger.Warn("failed to close mysql", zap.Error(err))
		}
	}()

	lctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return mysqlStore.LoadCatalog(lctx)
}

func openSessionStore(cfg *config.Config, logger *zap.Logger) (interfaces.SessionStore, web.Pinger, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisStore, err := storage.NewRedisStore(cfg.Database.Redis)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("redis connected", zap.String("prefix", cfg.Session.KeyPrefix), zap.Duration("ttl", cfg.Session.TTL))
		store := storage.NewRedisSessionStore(redisStore.GetClient(), cfg.Session.KeyPrefix, cfg.Session.TTL)
		return store, redisStore, func() { _ = redisStore.Close() }, nil

	case config.SessionBackendMemory:
		return session.NewMemoryStore(cfg.Session.TTL), nil, func() {}, nil

	default:
		// Each request carries its own attributes; this store only backs
		// requests that arrive without a session.
		return session.NewMemoryStore(cfg.Session.TTL), nil, func() {}, nil
	}
}

// seedCatalog copies the inline catalog into MySQL.
func seedCatalog(cfg *config.Config, logger *zap.Logger) error {
	cat, err := catalog.FromConfig(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	if cat.Len() == 0 {
		return errors.New("catalog.stories is empty")
	}

	mysqlStore, err := storage.NewMySQLStore(cfg.Database.MySQL)
	if err != nil {
		return fmt.Errorf("connect mysql: %w", err)
	}
	defer mysqlStore.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, story := range cat.Stories() {
		if err := mysqlStore.SaveStory(ctx, story); err != nil {
			return err
		}
		logger.Info("story saved", zap.String(logging.FieldStory, story.ID), zap.Int("segments", len(story.Segments)))
	}
	return nil
}
