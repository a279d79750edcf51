// Package netutil decides which Telegram API failures are transient and
// drives the retry loop shared by the HTTP transport and the send dispatcher.
package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Policy bounds a retry loop. Delay grows linearly: Backoff * attempt.
type Policy struct {
	MaxRetries int
	Backoff    time.Duration
	// MaxDelay caps a single wait, including server-requested flood waits.
	MaxDelay time.Duration
}

// ShouldRetry reports whether err is worth another attempt: network timeouts,
// dial failures and Telegram flood control.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Timeout() || opErr.Op == "dial") {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}
	return false
}

// Delay returns the wait before attempt+1. A flood error's RetryAfter wins over
// the linear backoff.
func (p Policy) Delay(err error, attempt int) time.Duration {
	d := p.Backoff * time.Duration(attempt)
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		d = time.Duration(flood.RetryAfter) * time.Second
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy
// is exhausted. onRetry, if set, is called before each wait.
// It returns the number of attempts made and the last error.
func (p Policy) Do(ctx context.Context, fn func() error, onRetry func(attempt int, delay time.Duration, err error)) (int, error) {
	attempts := p.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}
		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == attempts || !ShouldRetry(lastErr) {
			return attempt, lastErr
		}

		delay := p.Delay(lastErr, attempt)
		if onRetry != nil {
			onRetry(attempt, delay, lastErr)
		}
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
	return attempts, lastErr
}
