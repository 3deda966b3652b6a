package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
)

func intp(n int) *int { return &n }

func TestTypesFlag(t *testing.T) {
	types, err := typesFlag("")
	require.NoError(t, err)
	require.Nil(t, types)

	types, err = typesFlag("Sales")
	require.NoError(t, err)
	require.Equal(t, []domain.LotteryType{domain.Sale}, types)

	_, err = typesFlag("condo")
	require.Error(t, err)
}

func TestJoinIDs(t *testing.T) {
	require.Equal(t, "1, 2", joinIDs([]string{"1", "2"}, 3))
	require.Equal(t, "1, 2 (+2 more)", joinIDs([]string{"1", "2", "3", "4"}, 2))
}

func TestRenderRun(t *testing.T) {
	results := []domain.ApplicationResult{
		{Title: "Alpha", Status: domain.StatusApplied, Eligible: true, Page: 1},
		{Title: "Beta", Status: domain.StatusAlreadyApplied, Eligible: true, Page: 1},
		{Title: "Gamma", Status: domain.StatusNotEligible, Message: "Not eligible: $200,000 outside $32,195 - $90,000", Page: 2},
		{Title: "Delta", Status: domain.StatusFailed, Eligible: true, Message: "Could not find Apply Now button", Page: 2},
	}
	run := &services.Run{ID: "run-1", Type: domain.Sale, Results: results, Summary: domain.Summarize(results)}

	var buf bytes.Buffer
	renderRun(&buf, run)
	out := buf.String()

	require.Contains(t, out, "Run run-1 (sale lotteries)")
	require.Contains(t, out, "Successfully applied")
	require.Contains(t, out, "Not eligible: $200,000 outside $32,195 - $90,000")
	require.Contains(t, out, "Could not find Apply Now button")
	// outcome groups are printed in a fixed order
	require.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Beta"))
	require.Less(t, strings.Index(out, "Gamma"), strings.Index(out, "Delta"))
}

func TestRenderLotteries(t *testing.T) {
	var buf bytes.Buffer
	renderLotteries(&buf, []domain.Lottery{{
		ID: "1001", Type: domain.Rental, Title: "Alpha", Location: "Bronx",
		UnitsAvailable: intp(12), MinIncome: intp(32195), MaxIncome: intp(90000),
	}})
	out := buf.String()
	require.Contains(t, out, "1001")
	require.Contains(t, out, "12 units")
	require.Contains(t, out, "$32,195 - $90,000")
	require.Contains(t, out, "1 lotteries")
	require.Contains(t, out, "INCOME")
}

func TestListCommandReadsLocalStore(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	t.Setenv("HOUSINGBOT_STORAGE", "file")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"),
		[]byte("storage:\n  driver: file\n  dir: "+dataDir+"\n"), 0o644))

	repo, err := repositories.NewFileRepository(dataDir)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), []domain.Lottery{
		{ID: "1001", Title: "Alpha", Type: domain.Rental, ScrapedAt: time.Now()},
		{ID: "2001", Title: "Beta", Type: domain.Sale, ScrapedAt: time.Now()},
	}))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"list", "--config", dir, "--type", "sale"})
	t.Cleanup(func() { listType = "" })
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	out := buf.String()
	require.Contains(t, out, "Beta")
	require.NotContains(t, out, "Alpha")
}

func TestListCommandEligibleUsesStoredIncomeRanges(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	t.Setenv("HOUSINGBOT_STORAGE", "file")
	t.Setenv("SALARY", "50000")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"),
		[]byte("storage:\n  driver: file\n  dir: "+dataDir+"\n"), 0o644))

	ctx := context.Background()
	repo, err := repositories.NewFileRepository(dataDir)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, []domain.Lottery{
		{ID: "1001", Title: "Alpha", Type: domain.Rental, ScrapedAt: time.Now()},
		{ID: "1002", Title: "Beta", Type: domain.Rental, ScrapedAt: time.Now()},
		{ID: "1003", Title: "Gamma", Type: domain.Rental, ScrapedAt: time.Now()},
	}))
	require.NoError(t, repo.SaveApplications(ctx, "run-1", []domain.ApplicationResult{
		{LotteryID: "1001", Title: "Alpha", Status: domain.StatusApplied, Eligible: true,
			MinIncome: intp(30000), MaxIncome: intp(60000)},
		{LotteryID: "1002", Title: "Beta", Status: domain.StatusNotEligible,
			MinIncome: intp(70000), MaxIncome: intp(90000)},
	}))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"list", "--config", dir, "--eligible"})
	t.Cleanup(func() { listEligible = false })
	require.NoError(t, rootCmd.ExecuteContext(ctx))

	out := buf.String()
	require.Contains(t, out, "Alpha")
	require.Contains(t, out, "$30,000 - $60,000")
	require.Contains(t, out, "Gamma")
	require.NotContains(t, out, "Beta")
	require.Contains(t, out, "2 lotteries")
}
