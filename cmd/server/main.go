// Wiprox - micro-investment web client
// Entry point for the web server
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

	"github.com/findosh/wiprox/internal/api"
	"github.com/findosh/wiprox/internal/config"
	"github.com/findosh/wiprox/internal/handlers"
	"github.com/findosh/wiprox/internal/logging"
	"github.com/findosh/wiprox/internal/middleware"
	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/router"
	"github.com/findosh/wiprox/internal/services/auth"
	"github.com/findosh/wiprox/internal/services/cache"
	"github.com/findosh/wiprox/internal/services/wallet"
	"github.com/findosh/wiprox/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev || cfg.IsDevelopment()})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// Initialize client state database
	db, err := storage.New(cfg.StatePath)
	if err != nil {
		sugar.Fatalw("failed to open state database", "path", cfg.StatePath, "error", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		sugar.Fatalw("failed to run migrations", "error", err)
	}

	// Initialize repositories
	state := storage.NewStateRepository(db)
	checkins := storage.NewCheckInRepository(db)
	flags := storage.NewSessionFlags(db)
	if err := flags.PurgeOtherSessions(); err != nil {
		sugar.Warnw("failed to purge old session flags", "error", err)
	}

	catalog := models.DefaultCatalog()
	if cfg.CatalogFile != "" {
		catalog, err = models.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			sugar.Fatalw("failed to load plan catalog", "file", cfg.CatalogFile, "error", err)
		}
	}

	// Initialize services
	profiles := cache.NewProfileCache(state, cfg.ProfileCacheTTL)
	store := auth.NewStore(state)
	client := api.NewClient(cfg.APIURL, cfg.RequestTimeout, api.BearerToken(store.Token), api.RequestID())
	authService := auth.NewService(store, client, profiles, sugar.Named("auth"))
	walletService := wallet.NewService(wallet.Config{Catalog: catalog}, client, profiles, checkins, sugar.Named("wallet"))

	// Restore the persisted session; protected routes show a loading page until it finishes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go authService.Initialize(ctx)

	// Initialize handlers
	h, err := handlers.New(cfg, sugar.Named("http"), authService, client, profiles, walletService, flags)
	if err != nil {
		sugar.Fatalw("failed to initialize handlers", "error", err)
	}

	// Apply global middleware
	handler := middleware.Chain(
		router.New(h, middleware.NewGate(store, sugar.Named("session"))),
		middleware.Recover(sugar),
		middleware.SecurityHeaders,
		middleware.Logger(sugar),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("Wiprox server starting", "addr", "http://localhost"+srv.Addr, "environment", cfg.Environment, "api", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown error", "error", err)
	}
}
