package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/config"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

var (
	configDir string
	headless  bool
	debug     bool

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "housingbot",
	Short:         "Collects NYC Housing Connect lotteries and applies to the ones you qualify for.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("headless") {
			loaded.Scraping.HousingConnect.Browser.Headless = headless
		}
		if debug {
			loaded.App.Debug = true
		}
		cfg = loaded
		log = logger.New("housingbot", cfg.App.Debug)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory holding app.yaml and scraping.yaml")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "run the browser without a window")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (repositories.Store, error) {
	store, err := repositories.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	return store, nil
}

func closeStore(store repositories.Store) {
	if err := store.Close(); err != nil {
		log.Warn("could not close storage", "error", err)
	}
}

// typesFlag parses an optional --type value; empty means every type.
func typesFlag(raw string) ([]domain.LotteryType, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := domain.ParseLotteryType(raw)
	if err != nil {
		return nil, err
	}
	return []domain.LotteryType{t}, nil
}
