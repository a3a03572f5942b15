package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, 15.0, config.MaxBuyPrice)
	assert.Equal(t, 10.0, config.MinNetProfit)
	assert.Equal(t, 0.15, config.FeeRate)
	assert.Equal(t, 10, config.MaxListings)
	assert.Equal(t, "scored", config.SelectorStrategy)
	assert.Equal(t, 20*time.Minute, config.ScanInterval)
	assert.Equal(t, "https://www.ebay.de/sch/i.html", config.SearchURL)
	assert.NotEmpty(t, config.SearchTerms)
	assert.False(t, config.RunOnce)

	// Test with environment variables
	os.Setenv("MAX_BUY_PRICE", "25.5")
	os.Setenv("FEE_RATE", "0.1")
	os.Setenv("MAX_LISTINGS", "20")
	os.Setenv("SEARCH_TERMS", "lego, gameboy ,")
	os.Setenv("SCAN_INTERVAL_SECONDS", "60")
	os.Setenv("SELECTOR_STRATEGY", "rotation")

	config = LoadConfig()
	assert.Equal(t, 25.5, config.MaxBuyPrice)
	assert.Equal(t, 0.1, config.FeeRate)
	assert.Equal(t, 20, config.MaxListings)
	assert.Equal(t, []string{"lego", "gameboy"}, config.SearchTerms)
	assert.Equal(t, 60*time.Second, config.ScanInterval)
	assert.Equal(t, "rotation", config.SelectorStrategy)

	// Clean up
	os.Unsetenv("MAX_BUY_PRICE")
	os.Unsetenv("FEE_RATE")
	os.Unsetenv("MAX_LISTINGS")
	os.Unsetenv("SEARCH_TERMS")
	os.Unsetenv("SCAN_INTERVAL_SECONDS")
	os.Unsetenv("SELECTOR_STRATEGY")
}

func TestValidate(t *testing.T) {
	valid := LoadConfig()
	assert.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max buy price", func(c *Config) { c.MaxBuyPrice = 0 }},
		{"fee rate of one", func(c *Config) { c.FeeRate = 1.0 }},
		{"negative fee rate", func(c *Config) { c.FeeRate = -0.1 }},
		{"confidence above 100", func(c *Config) { c.ConfidenceThreshold = 101 }},
		{"zero max listings", func(c *Config) { c.MaxListings = 0 }},
		{"no search terms", func(c *Config) { c.SearchTerms = nil }},
		{"unknown strategy", func(c *Config) { c.SelectorStrategy = "greedy" }},
		{"zero history cap", func(c *Config) { c.HistoryMaxCount = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := LoadConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestHasOracle(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.HasOracle())
	cfg.OracleToken = "hf_test"
	assert.True(t, cfg.HasOracle())
}
