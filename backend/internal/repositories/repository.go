package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/config"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

var ErrNotFound = errors.New("lottery not found")

// LotteryRepository stores scraped lotteries keyed by their portal ID.
type LotteryRepository interface {
	// Save inserts new lotteries and replaces the ones already stored.
	Save(ctx context.Context, lotteries []domain.Lottery) error
	FindAll(ctx context.Context) ([]domain.Lottery, error)
	FindByType(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error)
	FindByID(ctx context.Context, id string) (domain.Lottery, error)
}

type ApplicationRepository interface {
	SaveApplications(ctx context.Context, runID string, results []domain.ApplicationResult) error
	FindApplications(ctx context.Context) ([]domain.ApplicationResult, error)
}

type Store interface {
	LotteryRepository
	ApplicationRepository
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileRepository(cfg.Dir)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLite.Path)
	case "mongo":
		return NewMongoRepository(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func withRunID(runID string, results []domain.ApplicationResult) []domain.ApplicationResult {
	out := make([]domain.ApplicationResult, len(results))
	for i, r := range results {
		r.RunID = runID
		out[i] = r
	}
	return out
}

func filterByType(lotteries []domain.Lottery, t domain.LotteryType) []domain.Lottery {
	out := make([]domain.Lottery, 0)
	for _, l := range lotteries {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}
