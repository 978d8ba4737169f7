package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v70/github"
	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
)

const maxRetries = 5

var (
	initialDelay = 1 * time.Second
	maxDelay     = 60 * time.Second
)

func newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialDelay
	bo.Multiplier = 2.0
	bo.RandomizationFactor = 0.2
	bo.MaxInterval = maxDelay
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, maxRetries-1)
}

// RetryableOperation retries a GitHub API operation with exponential backoff.
// Only transient failures are retried; rate limits and client errors are returned at once.
func RetryableOperation(ctx context.Context, operation func() error) error {
	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		err := operation()
		if err == nil {
			return nil
		}
		if isRateLimitError(err) {
			return backoff.Permanent(fmt.Errorf("rate limited: %w", err))
		}
		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(newBackOff(), ctx), func(err error, delay time.Duration) {
		logger.Info(fmt.Sprintf("Retryable error: %v. Retrying after %s (attempt %d/%d)", err, delay, attempts, maxRetries))
	})
	if err != nil && attempts >= maxRetries && isRetryableError(err) {
		return fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
	}
	return err
}

// isRateLimitError determines if an error is due to rate limiting
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return true
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		statusCode := errResp.Response.StatusCode
		return (statusCode == http.StatusForbidden && errResp.Message == "rate limit") || statusCode == http.StatusTooManyRequests
	}

	return false
}

// isRetryableError determines if an error should be retried
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.Response == nil {
			return false
		}
		code := errResp.Response.StatusCode
		return code == http.StatusTooManyRequests ||
			code == http.StatusInternalServerError ||
			code == http.StatusBadGateway ||
			code == http.StatusServiceUnavailable ||
			code == http.StatusGatewayTimeout
	}

	// network and transport errors
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// withAccessDenied tags errors caused by rejected credentials with model.ErrAccessDenied.
func withAccessDenied(err error) error {
	if err == nil || isRateLimitError(err) {
		return err
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.Response != nil && isAuthStatus(errResp.Response.StatusCode) {
			return fmt.Errorf("%w: %w", model.ErrAccessDenied, err)
		}
		return err
	}
	// the GraphQL client reports HTTP failures as plain text
	msg := err.Error()
	if strings.Contains(msg, "non-200 OK status code: 401") || strings.Contains(msg, "non-200 OK status code: 403") {
		return fmt.Errorf("%w: %w", model.ErrAccessDenied, err)
	}
	return err
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
