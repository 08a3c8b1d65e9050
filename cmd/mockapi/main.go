// Development backend serving the platform's REST API from memory
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

	"github.com/findosh/wiprox/internal/config"
	"github.com/findosh/wiprox/internal/logging"
	"github.com/findosh/wiprox/internal/middleware"
	"github.com/findosh/wiprox/internal/mockapi"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev || cfg.IsDevelopment()})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar().Named("mockapi")

	mock := mockapi.New(mockapi.Config{
		JWTSecret: cfg.MockJWTSecret,
		TokenTTL:  cfg.MockTokenTTL,
	}, sugar)

	// Demo account for local runs
	if _, err := mock.Seed(mockapi.SeedUser{
		FullName:          "Demo User",
		Phone:             "9999999999",
		Password:          "secret",
		Balance:           decimal.NewFromInt(10000),
		WithdrawalBalance: decimal.NewFromInt(500),
	}); err != nil {
		sugar.Fatalw("failed to seed demo account", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.MockAPIPort,
		Handler:           middleware.Chain(mock.Handler(), middleware.Recover(sugar), middleware.Logger(sugar)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("mock backend listening", "addr", "http://localhost"+srv.Addr+"/api", "demo_phone", "9999999999")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Errorw("graceful shutdown error", "error", err)
	}
}
