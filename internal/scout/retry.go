package scout

import (
	"bytes"
	"context"
	"io"
	"time"

	"resalescout/helpers"
	"resalescout/internal/extract"
	"resalescout/internal/oracle"
	"resalescout/services/fetcher"
)

// fetchWithRetry wraps the fetch collaborator in the retry policy for
// search pages: retryable-once-then-skip.
func fetchWithRetry(ctx context.Context, f fetcher.Fetcher, term string) (io.Reader, error) {
	var markup bytes.Buffer
	err := helpers.WithRetry(ctx, func() error {
		body, err := f.Fetch(ctx, term)
		if err != nil {
			return err
		}
		markup.Reset()
		_, err = io.Copy(&markup, body)
		return err
	}, helpers.RetryOptions{MaxAttempts: 2, InitialDelay: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	return &markup, nil
}

// estimateWithRetry retries the batched oracle call with exponential
// backoff on transient failures; permanent failures surface immediately.
func (c *Cycle) estimateWithRetry(ctx context.Context, listings []extract.Listing) (map[int]oracle.Estimate, error) {
	var estimates map[int]oracle.Estimate
	err := helpers.WithRetry(ctx, func() error {
		var err error
		estimates, err = c.collab.Oracle.Estimate(ctx, listings)
		return err
	}, helpers.RetryOptions{MaxAttempts: 3, InitialDelay: 2 * time.Second})
	return estimates, err
}
