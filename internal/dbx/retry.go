package dbx

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
)

// RetryPolicy controls how often a write is retried on transient SQLite
// errors (busy/locked database, WAL short reads).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy is used by the repositories for every write.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  50 * time.Millisecond,
	MaxDelay:   500 * time.Millisecond,
}

var transientMarkers = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"IOERR_SHORT_READ",
	"database is locked",
	"database table is locked",
	"(5)",
	"(6)",
	"(522)",
}

// IsTransient reports whether err looks like a SQLite error that goes away
// when the statement is retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Retry runs fn until it succeeds, fails with a non-transient error, the
// retries are exhausted or ctx is done.
func Retry(ctx context.Context, p RetryPolicy, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == p.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(p.backoff(attempt)):
		}
	}
	return lastErr
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	// up to 25% jitter
	return d - time.Duration(rand.Int64N(int64(d)/4+1))
}
