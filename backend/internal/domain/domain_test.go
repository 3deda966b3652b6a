package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseLotteryType(t *testing.T) {
	for in, want := range map[string]LotteryType{
		"rental":  Rental,
		"Rentals": Rental,
		" sale ":  Sale,
		"SALES":   Sale,
	} {
		got, err := ParseLotteryType(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLotteryType("condo")
	require.Error(t, err)

	require.Equal(t, "Rentals", Rental.TabLabel())
	require.Equal(t, "Sales", Sale.TabLabel())
}

func TestEligibleFor(t *testing.T) {
	l := Lottery{MinIncome: intPtr(32195), MaxIncome: intPtr(226800)}

	require.True(t, l.EligibleFor(32195))
	require.True(t, l.EligibleFor(226800))
	require.True(t, l.EligibleFor(50000))
	require.False(t, l.EligibleFor(32194))
	require.False(t, l.EligibleFor(226801))

	require.True(t, Lottery{}.EligibleFor(0))
	require.True(t, Lottery{MinIncome: intPtr(10)}.EligibleFor(0))
}

func TestSummarize(t *testing.T) {
	results := []ApplicationResult{
		{Status: StatusApplied, Eligible: true},
		{Status: StatusUnverified, Eligible: true},
		{Status: StatusAlreadyApplied, Eligible: true},
		{Status: StatusNotEligible, Eligible: false},
		{Status: StatusFailed, Eligible: true},
		{Status: StatusFailed, Eligible: true},
	}

	require.Equal(t, Summary{
		Applied:        2,
		AlreadyApplied: 1,
		NotEligible:    1,
		Failed:         2,
		Total:          6,
	}, Summarize(results))

	require.Equal(t, Summary{}, Summarize(nil))
}
