package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "resalescout/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCacheService is an in-memory stand-in for the memcache cooldown cache
type mockCacheService struct {
	data map[string][]byte
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{data: make(map[string][]byte)}
}

func (m *mockCacheService) Get(key string) ([]byte, error) {
	if data, ok := m.data[key]; ok {
		return data, nil
	}
	return nil, io.EOF
}

func (m *mockCacheService) Set(key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCacheService) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestBuildSearchURL(t *testing.T) {
	f := New(Options{
		SearchURL: "https://www.example.de/sch/i.html",
		MaxPrice:  15.0,
		PageSize:  60,
	})

	raw, err := f.BuildSearchURL("lego star wars")
	require.NoError(t, err)

	assert.Contains(t, raw, "_nkw=lego+star+wars")
	assert.Contains(t, raw, "_udhi=15")
	assert.Contains(t, raw, "_ipg=60")
	assert.Contains(t, raw, "LH_BIN=1")
	assert.Contains(t, raw, "_sop=10")
}

func TestFetchReturnsMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lego", r.URL.Query().Get("_nkw"))
		w.Write([]byte("<html><body>results</body></html>"))
	}))
	defer server.Close()

	f := New(Options{SearchURL: server.URL, MaxPrice: 15.0})
	body, err := f.Fetch(context.Background(), "lego")
	require.NoError(t, err)

	markup, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(markup), "results")
}

func TestFetchSetsCooldownOnRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mc := newMockCacheService()
	f := New(Options{SearchURL: server.URL, MaxPrice: 15.0, Cache: mc, BlockTime: 5 * time.Minute})

	_, err := f.Fetch(context.Background(), "lego")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")

	_, cached := mc.data["cooldown:lego"]
	assert.True(t, cached, "rate limit should start a cooldown")

	// The follow-up attempt is rejected locally without touching the site.
	_, err = f.Fetch(context.Background(), "lego")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cooldown")
	assert.False(t, pkgerrors.IsRetryable(err))
}

func TestFetchTransportErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := New(Options{SearchURL: server.URL, MaxPrice: 15.0})
	_, err := f.Fetch(context.Background(), "lego")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRetryable(err))
}
