// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by every gatherer.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryBaseDelay is the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const (
	defaultMaxRetries = 4

	// maxBackoff caps a single wait. arXiv's maintenance window answers
	// 503 for minutes at a stretch; waiting longer than this just holds
	// the whole briefing hostage.
	maxBackoff = 60 * time.Second
)

// RetryClient executes HTTP requests, retrying when the remote side
// signals backpressure (HTTP 429) or temporary unavailability (HTTP 503).
// Other statuses, including other 5xx codes, are returned to the caller
// as-is: the gatherer boundary decides what a failed source means.
type RetryClient struct {
	// HTTP is the underlying client. Callers set the timeout there.
	HTTP *http.Client

	// UserAgent is applied to every request that has none.
	UserAgent string

	// MaxRetries bounds retry attempts; zero means the default (4).
	MaxRetries int

	// Log receives debug entries for each backoff wait. Optional.
	Log *logrus.Logger
}

// Do executes req with retries. The request is cloned with ctx per attempt
// so request bodies must be rewindable (the gatherers only send GET and
// small JSON POST bodies built per call). If ctx is cancelled during a
// backoff wait, ctx.Err() is returned. After exhausting retries the last
// retryable response is returned so the caller can inspect it.
func (c *RetryClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.HTTP.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close before retrying so the connection is reused.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := RetryBaseDelay << attempt
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		if c.Log != nil {
			c.Log.WithFields(logrus.Fields{
				"url":     req.URL.Redacted(),
				"status":  resp.StatusCode,
				"backoff": backoff,
				"attempt": attempt + 1,
			}).Debug("retrying request")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}
