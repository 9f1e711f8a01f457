package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bitwise74/user-api/app"
	"bitwise74/user-api/config"
	"bitwise74/user-api/db"
	"bitwise74/user-api/internal"
	"bitwise74/user-api/internal/service"
	"bitwise74/user-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	cfg, err := config.Current()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(cfg.App.LogLevel); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	conn, err := db.New(&db.Opts{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Debug:        cfg.App.LogLevel == "debug",
	})
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close(conn)

	argon, err := security.New()
	if err != nil {
		zap.L().Fatal("Failed to initialize password hasher", zap.Error(err))
	}

	d, err := internal.NewDeps(conn, cfg, argon)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ledger rows outlive their tokens, drop them once they can't validate anymore
	service.TokenCleanup(ctx, cfg.Cleanup.Interval, d.Tokens.TTL(), d.Ledger)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Host.Port),
		Handler:           app.NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr), zap.String("driver", cfg.Database.Driver))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down cleanly", zap.Error(err))
	}

	zap.L().Info("Server stopped")
}
