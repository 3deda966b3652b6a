// backend/cmd/api/main.go
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

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/handlers"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/config"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

func main() {
	configDir := os.Getenv("HOUSINGBOT_CONFIG")
	if configDir == "" {
		configDir = "configs"
	}
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log := logger.NewProduction("api")
	if cfg.App.Debug {
		log = logger.New("api", true)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup dependencies
	store, err := repositories.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	scraper := services.NewScraperService(store, services.BrowserSessions(cfg, log), log)
	lotteries := services.NewLotteryService(store, store)
	router := handlers.NewRouter(
		handlers.NewAPIHandler(lotteries, log),
		handlers.NewScrapingHandler(scraper, log),
		log,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server running", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
