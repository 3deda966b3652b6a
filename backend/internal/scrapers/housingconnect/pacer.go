package housingconnect

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Range is a pause drawn uniformly from [Min, Max].
type Range struct {
	Min time.Duration
	Max time.Duration
}

func Fixed(d time.Duration) Range {
	return Range{Min: d, Max: d}
}

func (r Range) pick() time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int63n(int64(r.Max-r.Min)+1))
}

// Pacer spaces out page loads and adds human-looking pauses between
// interactions.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows perMinute page loads per minute with the given burst.
// A non-positive rate disables limiting.
func NewPacer(perMinute float64, burst int) *Pacer {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until another page load is allowed.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Pause sleeps for a random duration inside r.
func (p *Pacer) Pause(ctx context.Context, r Range) error {
	return sleep(ctx, r.pick())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
