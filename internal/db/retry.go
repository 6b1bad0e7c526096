package db

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Retry controls how Connect waits for a database that is still starting.
type Retry struct {
	// Attempts is the total number of pings, including the first. Default: 5.
	Attempts int
	// InitialBackoff is the delay before the first retry. Default: 500ms.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay. Default: 10s.
	MaxBackoff time.Duration
	// Jitter is a fraction of the delay added or removed at random. Default: 0.25.
	Jitter float64
}

// DefaultRetry returns the connection retry policy used by Connect.
func DefaultRetry() Retry {
	return Retry{Attempts: 5, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 10 * time.Second, Jitter: 0.25}
}

func (r Retry) withDefaults() Retry {
	d := DefaultRetry()
	if r.Attempts <= 0 {
		r.Attempts = d.Attempts
	}
	if r.InitialBackoff <= 0 {
		r.InitialBackoff = d.InitialBackoff
	}
	if r.MaxBackoff <= 0 {
		r.MaxBackoff = d.MaxBackoff
	}
	if r.Jitter < 0 {
		r.Jitter = 0
	}
	return r
}

// retry calls fn until it succeeds, fails with a non-transient error, the
// attempts run out or ctx is done. The last error is returned.
func retry(ctx context.Context, cfg Retry, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !isTransient(lastErr) || attempt == cfg.Attempts-1 {
			return lastErr
		}

		zap.L().Warn("db: retrying connection",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

func backoff(attempt int, cfg Retry) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	if cfg.Jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * cfg.Jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// isTransient reports network failures worth retrying: timeouts, refused or
// reset connections and DNS lookups that have not propagated yet.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{"connection refused", "connection reset", "no such host", "i/o timeout", "the database system is starting up"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
