// Package skillsapi is the client for the hosted Skills API: skill and
// version CRUD plus the beta plumbing shared by runs and artifact downloads.
// Skill management endpoints are not yet part of the pinned SDK's typed
// surface, so they go through the SDK's raw request methods with the beta
// header set; everything else (auth, base URL, transport) stays SDK-managed.
package skillsapi

import (
	"context"
	"net"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/logger"
)

// Beta namespaces the documented skills flow requires.
const (
	BetaSkills        = "skills-2025-10-02"
	BetaCodeExecution = "code-execution-2025-08-25"
	BetaFilesAPI      = "files-api-2025-04-14"
)

// Client wraps the SDK client with retry policy and the skills beta header.
type Client struct {
	sdk   anthropic.Client
	retry config.RetryConfig
}

// ClientOption adjusts a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	requestOpts []option.RequestOption
	retry       config.RetryConfig
}

// WithRequestOptions appends SDK request options, which tests use to point
// the client at a local server.
func WithRequestOptions(opts ...option.RequestOption) ClientOption {
	return func(o *clientOptions) {
		o.requestOpts = append(o.requestOpts, opts...)
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc config.RetryConfig) ClientOption {
	return func(o *clientOptions) {
		o.retry = rc
	}
}

// New builds a Client. Credentials come from ANTHROPIC_API_KEY and the
// endpoint from ANTHROPIC_BASE_URL when set. The SDK's own retries are
// disabled; the retry policy here is the one configured for skillet.
func New(opts ...ClientOption) (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is not set")
	}

	options := &clientOptions{retry: config.DefaultRetry}
	for _, opt := range opts {
		opt(options)
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := os.Getenv("ANTHROPIC_BASE_URL"); baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(baseURL))
	}
	requestOpts = append(requestOpts, options.requestOpts...)

	return &Client{
		sdk:   anthropic.NewClient(requestOpts...),
		retry: options.retry,
	}, nil
}

// SDK exposes the underlying client for the beta namespaces (messages,
// files) that are already typed.
func (c *Client) SDK() anthropic.Client {
	return c.sdk
}

// RetryConfig returns the client's retry policy.
func (c *Client) RetryConfig() config.RetryConfig {
	return c.retry
}

// ExecuteWithRetry runs operation under the configured retry policy.
// Non-retryable errors (4xx other than 429, context cancellation) fail fast.
func (c *Client) ExecuteWithRetry(ctx context.Context, operation func() error) error {
	rc := c.retry
	if rc.Attempts <= 1 {
		return operation()
	}

	initialDelay := time.Duration(rc.InitialDelay) * time.Millisecond
	maxDelay := time.Duration(rc.MaxDelay) * time.Millisecond

	var delayType retry.DelayTypeFunc
	switch rc.BackoffType {
	case "fixed":
		delayType = retry.FixedDelay
	case "exponential":
		fallthrough
	default:
		delayType = retry.BackOffDelay
	}

	return retry.Do(
		operation,
		retry.RetryIf(IsRetryableError),
		retry.Attempts(uint(rc.Attempts)),
		retry.Delay(initialDelay),
		retry.DelayType(delayType),
		retry.MaxDelay(maxDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).
				WithField("attempt", n+1).
				WithField("max_attempts", rc.Attempts).
				Warn("retrying skills API call")
		}),
	)
}

// IsRetryableError reports whether an API call is worth repeating:
// rate limits, server errors, and network timeouts.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"overloaded", "rate limit", "too many requests", "service unavailable"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
