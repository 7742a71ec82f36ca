package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poofware/intake-service/internal/app"
	"github.com/poofware/intake-service/internal/config"
	"github.com/poofware/intake-service/internal/routes"
	"github.com/poofware/intake-service/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	utils.InitLogger(config.AppNameOrDefault())
	cfg := config.LoadConfig()

	application := app.NewApp(cfg)
	defer application.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           routes.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Error("Graceful shutdown failed")
	}
}
