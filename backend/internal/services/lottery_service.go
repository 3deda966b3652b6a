package services

import (
	"context"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
)

// LotteryService answers read-only queries over what has been stored.
// Income ranges only show up on detail pages, so lotteries are filled in
// from the ranges recorded by past application runs.
type LotteryService struct {
	lotteries    repositories.LotteryRepository
	applications repositories.ApplicationRepository
}

func NewLotteryService(lotteries repositories.LotteryRepository, applications repositories.ApplicationRepository) *LotteryService {
	return &LotteryService{lotteries: lotteries, applications: applications}
}

func (s *LotteryService) FindAll(ctx context.Context) ([]domain.Lottery, error) {
	all, err := s.lotteries.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.withIncomeRanges(ctx, all)
}

// FindByType lists lotteries of type t; an empty type lists all of them.
func (s *LotteryService) FindByType(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	if t == "" {
		return s.FindAll(ctx)
	}
	found, err := s.lotteries.FindByType(ctx, t)
	if err != nil {
		return nil, err
	}
	return s.withIncomeRanges(ctx, found)
}

func (s *LotteryService) FindByID(ctx context.Context, id string) (domain.Lottery, error) {
	l, err := s.lotteries.FindByID(ctx, id)
	if err != nil {
		return l, err
	}
	filled, err := s.withIncomeRanges(ctx, []domain.Lottery{l})
	if err != nil {
		return l, err
	}
	return filled[0], nil
}

func (s *LotteryService) Applications(ctx context.Context) ([]domain.ApplicationResult, error) {
	return s.applications.FindApplications(ctx)
}

// Eligible returns the stored lotteries of type t (all types when empty)
// whose income range admits income. Lotteries with no known range are kept.
func (s *LotteryService) Eligible(ctx context.Context, t domain.LotteryType, income int) ([]domain.Lottery, error) {
	all, err := s.FindByType(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Lottery, 0, len(all))
	for _, l := range all {
		if l.EligibleFor(income) {
			out = append(out, l)
		}
	}
	return out, nil
}

type incomeRange struct {
	min, max *int
}

// withIncomeRanges sets the income range of every lottery that has none,
// using the latest application result that recorded one.
func (s *LotteryService) withIncomeRanges(ctx context.Context, lotteries []domain.Lottery) ([]domain.Lottery, error) {
	results, err := s.applications.FindApplications(ctx)
	if err != nil {
		return nil, err
	}
	ranges := make(map[string]incomeRange)
	for _, r := range results {
		if r.LotteryID == "" || r.MinIncome == nil || r.MaxIncome == nil {
			continue
		}
		ranges[r.LotteryID] = incomeRange{min: r.MinIncome, max: r.MaxIncome}
	}
	for i := range lotteries {
		l := &lotteries[i]
		if l.MinIncome != nil && l.MaxIncome != nil {
			continue
		}
		if rng, ok := ranges[l.ID]; ok {
			l.MinIncome, l.MaxIncome = rng.min, rng.max
		}
	}
	return lotteries, nil
}
