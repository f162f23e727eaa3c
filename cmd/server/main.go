package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/consent"
	"github.com/novora/compliance-api/internal/dsr"
	"github.com/novora/compliance-api/internal/policy"
	"github.com/novora/compliance-api/internal/retention"
	"github.com/novora/compliance-api/internal/router"
	"github.com/novora/compliance-api/internal/system/config"
	"github.com/novora/compliance-api/internal/system/kv"
	"github.com/novora/compliance-api/internal/system/log"
	"github.com/novora/compliance-api/internal/system/middleware"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.GetLogger().Fatal("Failed to load configuration", log.Error(err))
	}

	log.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger := log.GetLogger()
	logger.Info("Starting Compliance API Server...",
		log.String("version", version),
		log.String("build_date", buildDate))

	// Initialize the record store
	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize record store", log.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(ctx); err != nil {
		cancel()
		logger.Fatal("Record store health check failed", log.Error(err))
	}
	cancel()
	logger.Info("Record store connection established", log.String("type", cfg.Store.Type))

	// Optional audit event stream
	var publisher audit.Publisher
	if cfg.Audit.Publisher.Enabled {
		kafkaPublisher, err := audit.NewKafkaPublisher(cfg.Audit.Publisher.Brokers, cfg.Audit.Publisher.Topic)
		if err != nil {
			logger.Fatal("Failed to initialize audit publisher", log.Error(err))
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Audit event publisher initialized", log.String("topic", cfg.Audit.Publisher.Topic))
	}

	// Initialize services; everything is constructed here once and passed by
	// reference, nothing hangs off package-level singletons.
	auditService := audit.NewService(store, publisher)
	policyService := policy.NewService(store, auditService)
	consentService := consent.NewService(store, auditService)

	registry := dsr.NewProcessorRegistry()
	registry.Register(dsr.NewAccessExporter(store))
	registry.Register(dsr.NewPortabilityExporter(store))
	registry.Register(dsr.NewEraser(store))
	registry.Register(dsr.NewRectifier())
	dsrService := dsr.NewService(store, registry, auditService)

	retentionService := retention.NewService(store, retention.NewStoreDeleter(store), auditService)

	logger.Info("Services initialized successfully")

	// Background retention enforcement
	enforcerCtx, stopEnforcer := context.WithCancel(context.Background())
	defer stopEnforcer()
	go retention.NewEnforcer(retentionService, cfg.Retention.EnforceInterval).Run(enforcerCtx)

	// Assemble the HTTP surface
	authenticator := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Enabled)
	engine := router.SetupRouter(cfg, router.Services{
		Policy:    policyService,
		Consent:   consentService,
		DSR:       dsrService,
		Retention: retentionService,
		Audit:     auditService,
	}, authenticator)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        engine,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting HTTP server...", log.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", log.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopEnforcer()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", log.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// newStore builds the configured record store backend.
func newStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Store.Type {
	case "redis":
		return kv.NewRedisStore(cfg.Store.Redis.Address, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
	case "mysql":
		return kv.NewMySQLStore(&cfg.Store.MySQL)
	case "memory":
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}
