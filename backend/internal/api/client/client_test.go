package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/handlers"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

type stubScraper struct{ err error }

func (s stubScraper) ScrapeAndStore(_ context.Context, types ...domain.LotteryType) ([]services.ScrapeResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []services.ScrapeResult
	for _, t := range types {
		out = append(out, services.ScrapeResult{Type: t, Count: 1, IDs: []string{"1001"}})
	}
	return out, nil
}

func newServer(t *testing.T, scraper handlers.Scraper) *Client {
	t.Helper()
	repo, err := repositories.NewFileRepository(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), []domain.Lottery{
		{ID: "1001", Title: "Alpha", Type: domain.Rental},
		{ID: "2001", Title: "Beta", Type: domain.Sale},
	}))

	log := logger.Nop()
	router := handlers.NewRouter(
		handlers.NewAPIHandler(services.NewLotteryService(repo, repo), log),
		handlers.NewScrapingHandler(scraper, log),
		log,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	c := newServer(t, stubScraper{})

	require.NoError(t, c.Health(ctx))

	all, err := c.Lotteries(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	sales, err := c.Lotteries(ctx, domain.Sale)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	require.Equal(t, "Beta", sales[0].Title)

	eligible, err := c.EligibleLotteries(ctx, domain.Rental, 50000)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, "1001", eligible[0].ID)

	l, err := c.Lottery(ctx, "1001")
	require.NoError(t, err)
	require.Equal(t, "Alpha", l.Title)

	apps, err := c.Applications(ctx)
	require.NoError(t, err)
	require.Zero(t, apps.Count)

	results, err := c.Scrape(ctx, domain.Rental)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, domain.Rental, results[0].Type)
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	c := newServer(t, stubScraper{err: services.ErrBusy})

	_, err := c.Lottery(ctx, "9999")
	require.ErrorIs(t, err, repositories.ErrNotFound)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "lottery 9999 not found", apiErr.Message)

	_, err = c.Scrape(ctx, "")
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.Status)

	_, err = c.Lotteries(ctx, domain.LotteryType("condo"))
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}
