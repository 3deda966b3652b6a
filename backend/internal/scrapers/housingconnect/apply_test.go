package housingconnect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

const (
	portalIncomeMin = "$32,195"
	portalIncomeMax = "$90,000"
)

func TestApplyToCard(t *testing.T) {
	list := listHTML(1, 1,
		testCard{id: "1001", title: "Alpha"},
		testCard{id: "1002", title: "Beta", applied: true},
	)
	eligible := detailHTML(portalIncomeMin, portalIncomeMax)

	tests := []struct {
		name        string
		index       int
		income      int
		flow        func(f *fakeDriver, loc Locator)
		wantStatus  domain.ApplicationStatus
		wantMessage string
		wantSubmit  int
	}{
		{
			name:        "applied",
			income:      50000,
			flow:        applyFlow(eligible, testBase+"/dashboard", appliedHTML),
			wantStatus:  domain.StatusApplied,
			wantMessage: "Successfully applied!",
			wantSubmit:  1,
		},
		{
			name:        "income on the upper bound",
			income:      90000,
			flow:        applyFlow(eligible, testBase+"/dashboard", appliedHTML),
			wantStatus:  domain.StatusApplied,
			wantMessage: "Successfully applied!",
			wantSubmit:  1,
		},
		{
			name:        "not eligible",
			income:      200000,
			flow:        applyFlow(eligible, "", ""),
			wantStatus:  domain.StatusNotEligible,
			wantMessage: "Not eligible: $200,000 outside $32,195 - $90,000",
		},
		{
			name:        "already applied on card",
			index:       1,
			income:      50000,
			flow:        applyFlow(eligible, "", ""),
			wantStatus:  domain.StatusAlreadyApplied,
			wantMessage: "Already applied",
		},
		{
			name:        "index out of range",
			index:       5,
			income:      50000,
			flow:        applyFlow(eligible, "", ""),
			wantStatus:  domain.StatusFailed,
			wantMessage: "Card index 5 out of range",
		},
		{
			name:        "redirected to login",
			income:      50000,
			flow:        applyFlow(eligible, "https://auth.test/id4/account/login", "<html></html>"),
			wantStatus:  domain.StatusFailed,
			wantMessage: "Redirected to login - not logged in",
			wantSubmit:  1,
		},
		{
			name:        "unverified",
			income:      50000,
			flow:        applyFlow(eligible, testBase+"/applications", "<html><body>Thanks</body></html>"),
			wantStatus:  domain.StatusUnverified,
			wantMessage: "Application submitted (unverified)",
			wantSubmit:  1,
		},
		{
			name:   "no apply button",
			income: 50000,
			flow: applyFlow(`<html><body><div>Eligible Income: $10,000 - $60,000</div></body></html>`,
				"", ""),
			wantStatus:  domain.StatusFailed,
			wantMessage: "Could not find Apply Now button",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver(pagesFor(list))
			d.onClick = tt.flow

			res, err := testBot(d, tt.income).ApplyToCard(context.Background(), tt.index, domain.Rental)
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, res.Status)
			require.Equal(t, tt.wantMessage, res.Message)
			require.Equal(t, tt.wantSubmit, d.clicked("Submit"))
			require.Equal(t, tt.index, res.CardIndex)
			require.Equal(t, domain.Rental, res.Type)
			require.False(t, res.ProcessedAt.IsZero())
		})
	}
}

func TestApplyToCardRecordsIncomeRange(t *testing.T) {
	d := newFakeDriver(pagesFor(listHTML(1, 1, testCard{id: "1001", title: "Alpha"})))
	d.onClick = applyFlow(detailHTML(portalIncomeMin, portalIncomeMax), testBase+"/dashboard", appliedHTML)

	res, err := testBot(d, 50000).ApplyToCard(context.Background(), 0, domain.Sale)
	require.NoError(t, err)
	require.Equal(t, "1001", res.LotteryID)
	require.Equal(t, "Alpha", res.Title)
	require.True(t, res.Eligible)
	require.Equal(t, 32195, *res.MinIncome)
	require.Equal(t, 90000, *res.MaxIncome)

	// back on the list with the tab reselected
	require.Equal(t, testLotteries, d.url)
	require.Equal(t, 2, d.clicked("^Sales$"))
	require.Len(t, d.hovers, 1)
}

func TestApplyToCardAlreadyAppliedOnDetail(t *testing.T) {
	d := newFakeDriver(pagesFor(listHTML(1, 1, testCard{id: "1001", title: "Alpha"})))
	d.onClick = applyFlow(`<html><body><p>You have already applied to this lottery.</p></body></html>`, "", "")

	res, err := testBot(d, 50000).ApplyToCard(context.Background(), 0, domain.Rental)
	require.NoError(t, err)
	require.Equal(t, domain.StatusAlreadyApplied, res.Status)
	require.True(t, res.AlreadyApplied())
	// the detail page never showed an indicator, so it was reloaded once
	require.Equal(t, 1, d.reloads)
	require.Zero(t, d.clicked("Apply Now"))
}

func TestApplyToCardWithoutDialog(t *testing.T) {
	detail := detailHTML(portalIncomeMin, portalIncomeMax)
	d := newFakeDriver(pagesFor(listHTML(1, 1, testCard{id: "1001", title: "Alpha"})))
	d.onClick = func(f *fakeDriver, loc Locator) {
		if loc.Text == "View Details" {
			f.show(testDetail+"1001", detail)
		}
	}

	res, err := testBot(d, 50000).ApplyToCard(context.Background(), 0, domain.Rental)
	require.NoError(t, err)
	require.Equal(t, domain.StatusUnverified, res.Status)
	require.Zero(t, d.clicked("Submit"))
}

func TestApplyAll(t *testing.T) {
	page1 := listHTML(1, 2,
		testCard{id: "1001", title: "Alpha"},
		testCard{id: "1002", title: "Beta", applied: true},
	)
	page2 := listHTML(2, 2,
		testCard{id: "1003", title: "Gamma"},
		testCard{id: "1001", title: "Alpha"},
	)
	submitted := applyFlow(detailHTML(portalIncomeMin, portalIncomeMax), testBase+"/dashboard", appliedHTML)

	d := newFakeDriver(pagesFor(page1))
	d.onClick = func(f *fakeDriver, loc Locator) {
		if loc == pageLinkLocator(2) {
			f.html = page2
			return
		}
		submitted(f, loc)
	}

	results, err := testBot(d, 50000).ApplyAll(context.Background(), domain.Sale)
	require.NoError(t, err)

	type row struct {
		ID     string
		Title  string
		Status domain.ApplicationStatus
		Page   int
	}
	var got []row
	for _, r := range results {
		got = append(got, row{r.LotteryID, r.Title, r.Status, r.Page})
		require.Equal(t, domain.Sale, r.Type)
	}
	require.Equal(t, []row{
		{"1001", "Alpha", domain.StatusApplied, 1},
		{"1002", "Beta", domain.StatusAlreadyApplied, 1},
		{"1003", "Gamma", domain.StatusApplied, 2},
	}, got)
	require.Equal(t, 2, d.clicked("Submit"))

	s := domain.Summarize(results)
	require.Equal(t, domain.Summary{Applied: 2, AlreadyApplied: 1, Total: 3}, s)
}

func TestApplyAllStopsOnCancel(t *testing.T) {
	d := newFakeDriver(pagesFor(listHTML(1, 1, testCard{id: "1001", title: "Alpha"})))
	ctx, cancel := context.WithCancel(context.Background())
	d.onClick = func(f *fakeDriver, loc Locator) {
		if loc.Text == "View Details" {
			cancel()
		}
	}

	results, err := testBot(d, 50000).ApplyAll(ctx, domain.Rental)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
	require.Zero(t, domain.Summarize(results).Failed)
}

func TestApplyAllKeepsCardsFinishedBeforeCancel(t *testing.T) {
	list := listHTML(1, 1,
		testCard{id: "1001", title: "Alpha"},
		testCard{id: "1002", title: "Beta"},
	)
	ctx, cancel := context.WithCancel(context.Background())
	submitted := applyFlow(detailHTML(portalIncomeMin, portalIncomeMax), testBase+"/dashboard", appliedHTML)
	opened := 0
	d := newFakeDriver(pagesFor(list))
	d.onClick = func(f *fakeDriver, loc Locator) {
		if loc.Text == "View Details" {
			opened++
			if opened == 2 {
				cancel()
				return
			}
		}
		submitted(f, loc)
	}

	results, err := testBot(d, 50000).ApplyAll(ctx, domain.Rental)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	require.Equal(t, "1001", results[0].LotteryID)
	require.Equal(t, domain.StatusApplied, results[0].Status)
}

func TestApplyToCardContinuesWhenHoverFails(t *testing.T) {
	d := newFakeDriver(pagesFor(listHTML(1, 1, testCard{id: "1001", title: "Alpha"})))
	d.hoverErr = errors.New("element is not visible")
	d.onClick = applyFlow(detailHTML(portalIncomeMin, portalIncomeMax), testBase+"/dashboard", appliedHTML)
	require.NoError(t, d.Navigate(context.Background(), testLotteries))

	res, err := testBot(d, 50000).ApplyToCard(context.Background(), 0, domain.Rental)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApplied, res.Status)
	require.Empty(t, d.hovers)
}

func TestDollars(t *testing.T) {
	require.Equal(t, "$50,000", dollars(50000))
	require.Equal(t, "$0", dollars(0))
}
