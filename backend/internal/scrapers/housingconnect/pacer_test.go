package housingconnect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRangePick(t *testing.T) {
	r := Range{Min: 2 * time.Second, Max: 4 * time.Second}
	for i := 0; i < 100; i++ {
		d := r.pick()
		require.GreaterOrEqual(t, d, r.Min)
		require.LessOrEqual(t, d, r.Max)
	}
	require.Equal(t, 3*time.Second, Fixed(3*time.Second).pick())
	require.Equal(t, time.Second, Range{Min: time.Second, Max: 0}.pick())
}

func TestPauseHonorsContext(t *testing.T) {
	p := NewPacer(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := p.Pause(ctx, Fixed(time.Hour))
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)

	require.NoError(t, p.Pause(context.Background(), Range{}))
}

func TestPacerLimitsPageLoads(t *testing.T) {
	p := NewPacer(60, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Wait(ctx))
	// one load per second, so a second load cannot fit in the deadline
	require.Error(t, p.Wait(ctx))
}
