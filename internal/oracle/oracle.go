// Package oracle talks to the external resale-price estimation service
// (Hugging Face Inference API). The service is a black box: one batched
// prompt per cycle in, a JSON array of per-item estimates out.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"resalescout/internal/extract"
	"resalescout/logger"
	pkgerrors "resalescout/pkg/errors"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models/"

// Estimate is one item's resale estimate as returned by the oracle.
// IDs are 1-based positions in the submitted batch.
type Estimate struct {
	ID          int     `json:"id"`
	ResalePrice float64 `json:"resale_price"`
	Reasoning   string  `json:"reasoning"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// Estimator is the boundary the orchestrator depends on
type Estimator interface {
	Estimate(ctx context.Context, listings []extract.Listing) (map[int]Estimate, error)
}

// Client calls the inference API over HTTP
type Client struct {
	httpClient *http.Client
	token      string
	model      string
	baseURL    string
	log        *logger.Logger
}

// NewClient creates an oracle client. The token is the mandatory
// credential; without it the cycle no-ops before ever constructing one.
func NewClient(token, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
		model:      model,
		baseURL:    defaultBaseURL,
		log:        logger.ForOracle(),
	}
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

type generationResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Estimate submits one batch of listings and returns the estimates keyed
// by 1-based batch position. Items the oracle skipped or answered
// nonsensically are simply absent from the map.
func (c *Client) Estimate(ctx context.Context, listings []extract.Listing) (map[int]Estimate, error) {
	if len(listings) == 0 {
		return map[int]Estimate{}, nil
	}

	body, err := json.Marshal(generationRequest{
		Inputs: BuildBatchPrompt(listings),
		Parameters: generationParameters{
			MaxNewTokens: 600,
			Temperature:  0.3,
		},
	})
	if err != nil {
		return nil, pkgerrors.NewOracle("estimate", "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.model, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewOracle("estimate", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewNetwork("estimate", "oracle request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.NewNetwork("estimate", "failed to read oracle response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, pkgerrors.NewRateLimit("estimate", resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 500:
		// Model loading and upstream hiccups surface as 5xx; transient.
		return nil, pkgerrors.NewNetwork("estimate", fmt.Sprintf("oracle status %d", resp.StatusCode), nil)
	default:
		// Auth failures and bad requests are not worth retrying.
		return nil, pkgerrors.NewOracle("estimate", fmt.Sprintf("oracle status %d: %s", resp.StatusCode, truncate(string(respBody), 200)), nil)
	}

	var completions []generationResponse
	if err := json.Unmarshal(respBody, &completions); err != nil {
		return nil, pkgerrors.NewOracle("estimate", "malformed oracle envelope", err)
	}
	if len(completions) == 0 {
		return nil, pkgerrors.NewOracle("estimate", "empty oracle completion", nil)
	}

	estimates, err := ParseBatchResponse(completions[0].GeneratedText, len(listings))
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Int("batch", len(listings)).
		Int("estimates", len(estimates)).
		Msg("Oracle batch parsed")
	return estimates, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
