package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Decision thresholds
	MaxBuyPrice         float64
	MinNetProfit        float64
	FeeRate             float64
	ConfidenceThreshold float64

	// Extraction
	MaxListings int
	SearchURL   string

	// Search-term selection
	SearchTerms      []string
	SelectorStrategy string
	KeywordDecay     float64
	KeywordPoolSize  int

	// Oracle (price estimation)
	OracleToken   string
	OracleModel   string
	OracleTimeout time.Duration

	// Notification
	WebhookURL string

	// Redis alert stream (optional second sink)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache fetch cooldown
	MemcacheAddr     string
	FetchBlockTime   time.Duration
	HistoryMaxCount  int
	DBPath           string

	// Process shape
	ScanInterval time.Duration
	RunOnce      bool
	HealthAddr   string
	Environment  string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	maxBuy, _ := strconv.ParseFloat(getEnv("MAX_BUY_PRICE", "15.0"), 64)
	minProfit, _ := strconv.ParseFloat(getEnv("MIN_NET_PROFIT", "10.0"), 64)
	feeRate, _ := strconv.ParseFloat(getEnv("FEE_RATE", "0.15"), 64)
	confidence, _ := strconv.ParseFloat(getEnv("CONFIDENCE_THRESHOLD", "0"), 64)
	maxListings, _ := strconv.Atoi(getEnv("MAX_LISTINGS", "10"))
	poolSize, _ := strconv.Atoi(getEnv("KEYWORD_POOL_SIZE", "5"))
	decay, _ := strconv.ParseFloat(getEnv("KEYWORD_DECAY", "0.1"), 64)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	blockSeconds, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "300"))
	historyMax, _ := strconv.Atoi(getEnv("HISTORY_MAX_ENTRIES", "5000"))
	scanSeconds, _ := strconv.Atoi(getEnv("SCAN_INTERVAL_SECONDS", "1200"))
	oracleTimeout, _ := strconv.Atoi(getEnv("ORACLE_TIMEOUT_SECONDS", "60"))
	runOnce, _ := strconv.ParseBool(getEnv("RUN_ONCE", "false"))

	return Config{
		MaxBuyPrice:         maxBuy,
		MinNetProfit:        minProfit,
		FeeRate:             feeRate,
		ConfidenceThreshold: confidence,
		MaxListings:         maxListings,
		SearchURL:           getEnv("SEARCH_URL", "https://www.ebay.de/sch/i.html"),
		SearchTerms:         splitTerms(getEnv("SEARCH_TERMS", "lego,nintendo ds,gameboy,playmobil,pokemon karten,carrera bahn")),
		SelectorStrategy:    getEnv("SELECTOR_STRATEGY", "scored"),
		KeywordDecay:        decay,
		KeywordPoolSize:     poolSize,
		OracleToken:         getEnv("HF_TOKEN", ""),
		OracleModel:         getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		OracleTimeout:       time.Duration(oracleTimeout) * time.Second,
		WebhookURL:          getEnv("DISCORD_WEBHOOK", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisDB:             redisDB,
		RedisStream:         getEnv("REDIS_STREAM", "alerts"),
		RedisStreamCount:    streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:        getEnv("MEMCACHE_ADDR", "localhost:11211"),
		FetchBlockTime:      time.Duration(blockSeconds) * time.Second,
		HistoryMaxCount:     historyMax,
		DBPath:              getEnv("SCOUT_DB_PATH", "scout.db"),
		ScanInterval:        time.Duration(scanSeconds) * time.Second,
		RunOnce:             runOnce,
		HealthAddr:          getEnv("HEALTH_ADDR", ":5000"),
		Environment:         getEnv("SCOUT_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	if c.MaxBuyPrice <= 0 {
		return fmt.Errorf("MAX_BUY_PRICE must be positive, got %v", c.MaxBuyPrice)
	}
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("FEE_RATE must be in [0, 1), got %v", c.FeeRate)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 100 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be in [0, 100], got %v", c.ConfidenceThreshold)
	}
	if c.MaxListings <= 0 {
		return fmt.Errorf("MAX_LISTINGS must be positive, got %d", c.MaxListings)
	}
	if len(c.SearchTerms) == 0 {
		return fmt.Errorf("SEARCH_TERMS must not be empty")
	}
	if c.SelectorStrategy != "scored" && c.SelectorStrategy != "rotation" {
		return fmt.Errorf("SELECTOR_STRATEGY must be 'scored' or 'rotation', got %q", c.SelectorStrategy)
	}
	if c.KeywordPoolSize <= 0 {
		return fmt.Errorf("KEYWORD_POOL_SIZE must be positive, got %d", c.KeywordPoolSize)
	}
	if c.HistoryMaxCount <= 0 {
		return fmt.Errorf("HISTORY_MAX_ENTRIES must be positive, got %d", c.HistoryMaxCount)
	}
	return nil
}

// HasOracle reports whether the mandatory oracle credential is configured.
// Without it a cycle no-ops cleanly instead of partially executing.
func (c *Config) HasOracle() bool {
	return c.OracleToken != ""
}

func splitTerms(raw string) []string {
	var terms []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
