package narrative

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

type failureClass string

const (
	failureTimeout   failureClass = "timeout"
	failureRateLimit failureClass = "rate_limit"
	failureServer    failureClass = "server"
	failureClient    failureClass = "client"
)

// RetryingGenerator retries transient provider failures with a short backoff.
// Empty answers count as transient once.
type RetryingGenerator struct {
	next     Generator
	attempts int
	sleep    func(context.Context, time.Duration) error
}

func WithRetry(g Generator, attempts int) *RetryingGenerator {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingGenerator{next: g, attempts: attempts, sleep: sleepCtx}
}

func (r *RetryingGenerator) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.next.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if attempt == r.attempts || !retryable(err) {
			break
		}
		if err := r.sleep(ctx, backoffDelay(attempt)); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("narrative %s: %w", req.Mode, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, ErrEmptyNarrative) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch classifyTransportError(err) {
	case failureTimeout, failureRateLimit, failureServer:
		return true
	}
	return false
}

func classifyTransportError(err error) failureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"):
		return failureRateLimit
	case strings.Contains(msg, " 5") || strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error"):
		return failureServer
	case strings.Contains(msg, " 4") || strings.Contains(msg, "status code: 4"):
		return failureClient
	default:
		return failureServer
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
