package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

// Run is one pass of applying to every lottery of a type.
type Run struct {
	ID         string                     `json:"id"`
	Type       domain.LotteryType         `json:"lottery_type"`
	StartedAt  time.Time                  `json:"started_at"`
	FinishedAt time.Time                  `json:"finished_at"`
	Results    []domain.ApplicationResult `json:"results"`
	Summary    domain.Summary             `json:"summary"`
}

type ApplicationService struct {
	repo     repositories.ApplicationRepository
	sessions SessionFactory
	log      *logger.Logger
	running  *sync.Mutex
	now      func() time.Time
	newID    func() string
}

func NewApplicationService(repo repositories.ApplicationRepository, sessions SessionFactory, log *logger.Logger) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		sessions: sessions,
		log:      log,
		running:  &sync.Mutex{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ApplyAll logs in and applies to every lottery of type t. Whatever was
// processed is stored even when the run is cut short, and the partial run
// is returned alongside the error.
func (s *ApplicationService) ApplyAll(ctx context.Context, t domain.LotteryType) (*Run, error) {
	if !s.running.TryLock() {
		return nil, ErrBusy
	}
	defer s.running.Unlock()

	run := &Run{ID: s.newID(), Type: t, StartedAt: s.now()}
	log := s.log.With("run", run.ID, "type", t)

	session, err := s.sessions(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(session, log)

	if err := session.Login(ctx); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	results, applyErr := session.ApplyAll(ctx, t)
	for i := range results {
		results[i].RunID = run.ID
	}
	run.Results = results
	run.Summary = domain.Summarize(results)
	run.FinishedAt = s.now()

	if len(results) > 0 {
		// A cancelled run still keeps what it processed.
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.repo.SaveApplications(storeCtx, run.ID, results); err != nil {
			log.Error("could not store application results", "error", err)
			if applyErr == nil {
				return run, fmt.Errorf("store results: %w", err)
			}
		}
	}

	log.Info("application run finished",
		"applied", run.Summary.Applied,
		"already_applied", run.Summary.AlreadyApplied,
		"not_eligible", run.Summary.NotEligible,
		"failed", run.Summary.Failed)
	if applyErr != nil {
		return run, fmt.Errorf("apply to %s lotteries: %w", t, applyErr)
	}
	return run, nil
}
