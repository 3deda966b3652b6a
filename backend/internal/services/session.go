package services

import (
	"context"
	"fmt"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/config"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/scrapers/housingconnect"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

// Session is one browser session on the portal.
type Session interface {
	Login(ctx context.Context) error
	Lotteries(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error)
	ApplyAll(ctx context.Context, t domain.LotteryType) ([]domain.ApplicationResult, error)
	Close() error
}

type SessionFactory func(ctx context.Context) (Session, error)

// BrowserSessions launches a fresh Chromium for every session.
func BrowserSessions(cfg *config.Config, log *logger.Logger) SessionFactory {
	hc := cfg.Scraping.HousingConnect
	return func(ctx context.Context) (Session, error) {
		driver, err := housingconnect.LaunchRod(ctx, housingconnect.RodOptionsFromConfig(hc))
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		opts := housingconnect.OptionsFromConfig(hc, cfg.Credentials)
		return housingconnect.New(driver, opts, log.Named("housingconnect")), nil
	}
}
