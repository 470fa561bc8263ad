package ai

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// backoff schedules the wait between attempts of one request.
type backoff struct {
	base time.Duration
	max  time.Duration
}

// delay returns the wait before attempt n+1 after attempt n failed with
// err. A rate-limit hint from the server replaces the exponential step.
// Either way the wait never exceeds max.
func (b backoff) delay(n int, err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.Wait > 0 {
		return b.clamp(rl.Wait)
	}
	d := b.base
	for i := 1; i < n && d < b.max; i++ {
		d *= 2
	}
	// +/- 20% jitter
	d = time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
	return b.clamp(d)
}

func (b backoff) clamp(d time.Duration) time.Duration {
	if b.max > 0 && d > b.max {
		return b.max
	}
	return d
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
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

// temporary reports whether another attempt may succeed.
func temporary(err error) bool {
	var t interface{ Temporary() bool }
	return errors.As(err, &t) && t.Temporary()
}

// rateLimitWait reads how long the server asks clients to hold off:
// Retry-After (seconds or HTTP date) first, then OpenAI's
// x-ratelimit-reset-* for whichever budget is exhausted.
func rateLimitWait(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
	}
	var wait time.Duration
	for _, budget := range []string{"requests", "tokens"} {
		if h.Get("X-Ratelimit-Remaining-"+budget) != "0" {
			continue
		}
		if d, err := time.ParseDuration(h.Get("X-Ratelimit-Reset-" + budget)); err == nil && d > wait {
			wait = d
		}
	}
	return wait
}
