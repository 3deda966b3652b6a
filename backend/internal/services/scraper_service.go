package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

// ErrBusy is returned when a browser session is already running.
var ErrBusy = errors.New("a portal session is already running")

type ScrapeResult struct {
	Type      domain.LotteryType `json:"lottery_type"`
	Count     int                `json:"count"`
	IDs       []string           `json:"ids"`
	Lotteries []domain.Lottery   `json:"-"`
}

type ScraperService struct {
	repo     repositories.LotteryRepository
	sessions SessionFactory
	log      *logger.Logger
	running  *sync.Mutex
}

func NewScraperService(repo repositories.LotteryRepository, sessions SessionFactory, log *logger.Logger) *ScraperService {
	return &ScraperService{repo: repo, sessions: sessions, log: log, running: &sync.Mutex{}}
}

// ScrapeAndStore collects the lotteries of the given types (all types when
// none are given) in a single session and saves them.
func (s *ScraperService) ScrapeAndStore(ctx context.Context, types ...domain.LotteryType) ([]ScrapeResult, error) {
	if !s.running.TryLock() {
		return nil, ErrBusy
	}
	defer s.running.Unlock()

	if len(types) == 0 {
		types = domain.LotteryTypes
	}

	session, err := s.sessions(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(session, s.log)

	var results []ScrapeResult
	for _, t := range types {
		lotteries, err := session.Lotteries(ctx, t)
		if err != nil {
			return results, fmt.Errorf("scrape %s lotteries: %w", t, err)
		}
		if err := s.repo.Save(ctx, lotteries); err != nil {
			return results, fmt.Errorf("store %s lotteries: %w", t, err)
		}

		res := ScrapeResult{Type: t, Count: len(lotteries), IDs: make([]string, 0, len(lotteries)), Lotteries: lotteries}
		for _, l := range lotteries {
			res.IDs = append(res.IDs, l.ID)
		}
		s.log.Info("stored lotteries", "type", t, "count", res.Count)
		results = append(results, res)
	}
	return results, nil
}

func closeSession(session Session, log *logger.Logger) {
	if err := session.Close(); err != nil {
		log.Warn("could not close browser session", "error", err)
	}
}
