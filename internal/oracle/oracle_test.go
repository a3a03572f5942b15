package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resalescout/internal/extract"
	pkgerrors "resalescout/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testListings = []extract.Listing{
	{Identifier: "https://www.example.de/itm/1", Title: "Lego Star Wars Set", Price: 12.00},
	{Identifier: "https://www.example.de/itm/2", Title: "Gameboy Color", Price: 9.50},
}

func newTestClient(baseURL string) *Client {
	c := NewClient("hf_test", "test-model", 5*time.Second)
	c.baseURL = baseURL + "/"
	return c
}

func TestEstimateParsesBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.Equal(t, "/test-model", r.URL.Path)
		w.Write([]byte(`[{"generated_text": "Sure! Here you go: [{\"id\": 1, \"resale_price\": 35.0, \"reasoning\": \"sells well\", \"confidence\": 90}, {\"id\": 2, \"resale_price\": 22.5, \"reasoning\": \"retro demand\", \"confidence\": 70}]"}]`))
	}))
	defer server.Close()

	estimates, err := newTestClient(server.URL).Estimate(context.Background(), testListings)
	require.NoError(t, err)
	require.Len(t, estimates, 2)

	assert.InDelta(t, 35.0, estimates[1].ResalePrice, 0.0001)
	assert.Equal(t, "sells well", estimates[1].Reasoning)
	assert.InDelta(t, 90.0, estimates[1].Confidence, 0.0001)
	assert.InDelta(t, 22.5, estimates[2].ResalePrice, 0.0001)
}

func TestEstimateEmptyBatch(t *testing.T) {
	estimates, err := newTestClient("http://unused").Estimate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, estimates)
}

func TestEstimateMalformedResponseIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text": "I cannot answer that."}]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Estimate(context.Background(), testListings)
	require.Error(t, err)
	assert.False(t, pkgerrors.IsRetryable(err))
}

func TestEstimateRateLimitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Estimate(context.Background(), testListings)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestEstimateServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Estimate(context.Background(), testListings)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestEstimateAuthFailureIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Estimate(context.Background(), testListings)
	require.Error(t, err)
	assert.False(t, pkgerrors.IsRetryable(err))
}

func TestParseBatchResponseDropsBadEntries(t *testing.T) {
	raw := `[
		{"id": 1, "resale_price": 20.0, "reasoning": "ok", "confidence": 85},
		{"id": 0, "resale_price": 30.0, "reasoning": "bad id"},
		{"id": 5, "resale_price": 30.0, "reasoning": "out of range"},
		{"id": 2, "resale_price": -4.0, "reasoning": "nonsense price"}
	]`

	estimates, err := ParseBatchResponse(raw, 2)
	require.NoError(t, err)
	require.Len(t, estimates, 1)
	assert.InDelta(t, 20.0, estimates[1].ResalePrice, 0.0001)
}

func TestBuildBatchPrompt(t *testing.T) {
	prompt := BuildBatchPrompt(testListings)
	assert.Contains(t, prompt, `1. "Lego Star Wars Set"  —  12.00 €`)
	assert.Contains(t, prompt, `2. "Gameboy Color"  —  9.50 €`)
	assert.Contains(t, prompt, "JSON array")
}
