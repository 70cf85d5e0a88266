package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// retryBaseDelay is the wait before the first retry; it doubles on each attempt.
var retryBaseDelay = 200 * time.Millisecond

// IsRetryableStatus reports whether an upstream status is worth retrying.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithBackoff sends req and retries up to maxRetries times on network
// errors and retryable statuses, doubling the delay between attempts.
//
// When every attempt fails with a retryable status, the last response is
// returned so the caller can surface the upstream status and body. When the
// last attempt fails at the transport level, the error wraps "max retries
// exceeded". Cancelling ctx aborts the wait and returns ctx.Err().
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := retryBaseDelay

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptReq, err := cloneRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(attemptReq)
		switch {
		case err == nil && (!IsRetryableStatus(resp.StatusCode) || attempt == maxRetries):
			return resp, nil
		case err == nil:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("upstream returned status %d", resp.StatusCode)
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
		}

		if attempt == maxRetries {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}
