package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out requests to one host. It is shared by every worker,
// so the spacing holds no matter how many fetches run at once.
type Throttle struct {
	lim *rate.Limiter
}

// NewThrottle allows one request per delay; delay <= 0 disables waiting.
func NewThrottle(delay time.Duration) *Throttle {
	if delay <= 0 {
		return &Throttle{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{lim: rate.NewLimiter(rate.Every(delay), 1)}
}

func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.lim.Wait(ctx)
}
