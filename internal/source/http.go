//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package source

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// UserAgent identifies chessdash to the platform APIs, as both require.
const UserAgent = "chessdash/0.2.0 (+https://github.com/chessdash/chessdash)"

// DefaultTimeout is the per-request timeout shared by the adapters.
const DefaultTimeout = 60 * time.Second

// NewHTTPClient builds the HTTP client the adapters share.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// DoGet performs a GET with the chessdash User-Agent, retrying
// transient failures (network errors, 5xx, 429) with exponential
// backoff. Any other non-200 status fails immediately. The caller owns
// the response body on success.
func DoGet(client *http.Client, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)

	var resp *http.Response
	operation := func() error {
		r, err := client.Do(req)
		if err != nil {
			return err
		}
		switch {
		case r.StatusCode == http.StatusOK:
			resp = r
			return nil
		case r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests:
			r.Body.Close()
			return fmt.Errorf("%s: %s", req.URL.Host, r.Status)
		default:
			r.Body.Close()
			return backoff.Permanent(fmt.Errorf("%s: %s", req.URL.Host, r.Status))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3),
		req.Context())
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}
