package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"resalescout/config"
	"resalescout/internal/extract"
	"resalescout/internal/keywords"
	"resalescout/internal/oracle"
	"resalescout/internal/scout"
	"resalescout/logger"
	"resalescout/services/cache"
	"resalescout/services/fetcher"
	"resalescout/services/health"
	"resalescout/services/notify"
	"resalescout/services/publisher"
	"resalescout/services/store"
	"resalescout/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scan_interval", cfg.ScanInterval).
		Bool("oracle_configured", cfg.HasOracle()).
		Msg("Starting resale scout")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, &cfg)
	defer services.Cleanup()

	// Liveness endpoint for the hosting platform
	healthSrv := health.NewServer(cfg.HealthAddr)
	go healthSrv.Start()
	defer healthSrv.Close()

	cycle := scout.New(
		scout.Config{
			FeeRate:             cfg.FeeRate,
			MinProfit:           cfg.MinNetProfit,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			OracleConfigured:    cfg.HasOracle(),
		},
		scout.Collaborators{
			Selector: keywords.NewSelector(cfg.SelectorStrategy, cfg.SearchTerms,
				services.Stats, cfg.KeywordDecay, cfg.KeywordPoolSize),
			Fetcher: fetcher.New(fetcher.Options{
				SearchURL: cfg.SearchURL,
				MaxPrice:  cfg.MaxBuyPrice,
				Cache:     services.Cache,
				BlockTime: cfg.FetchBlockTime,
			}),
			Extractor: extract.New(extract.Options{
				BaseURL:  cfg.SearchURL,
				MaxPrice: cfg.MaxBuyPrice,
				MaxCount: cfg.MaxListings,
			}),
			Oracle:    oracle.NewClient(cfg.OracleToken, cfg.OracleModel, cfg.OracleTimeout),
			History:   services.History,
			Stats:     services.Stats,
			Notifiers: services.Notifiers,
		},
	)

	w := worker.New(cycle, services.Publisher, cfg.ScanInterval, cfg.RunOnce)

	// Start worker in a goroutine
	workerDone := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(workerDone)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case <-workerDone:
		log.Info().Msg("Worker exited")
	}

	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	History   store.History
	Stats     store.Stats
	Publisher publisher.Publisher
	Notifiers []notify.Notifier

	db *store.Store
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// initializeServices wires the storage, cache, publisher and alert sinks.
// Every collaborator except the webhook sink is optional or degradable:
// the process always comes up and logs what it is running without.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	log := logger.Default
	services := &Services{}

	// Durable history and keyword stats; fall back to memory when the
	// database cannot be opened so a broken disk degrades to duplicate
	// alerts instead of downtime.
	db, err := store.Open(cfg.DBPath, cfg.HistoryMaxCount)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).
			Msg("Failed to open database, falling back to in-memory store; duplicate alerts possible after restart")
		mem := store.NewMemoryStore(cfg.HistoryMaxCount)
		services.History = mem
		services.Stats = mem
	} else {
		log.Info().Str("path", cfg.DBPath).Msg("Opened scout database")
		services.db = db
		services.History = db
		services.Stats = db
	}

	// Fetch cooldown cache
	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using Memcache for fetch cooldowns")
	} else {
		log.Warn().Msg("MEMCACHE_ADDR not set, rate-limit cooldowns disabled")
	}

	// Alert sinks
	if cfg.WebhookURL != "" {
		services.Notifiers = append(services.Notifiers, notify.NewDiscordNotifier(cfg.WebhookURL))
	} else {
		log.Warn().Msg("DISCORD_WEBHOOK not set, webhook alerts disabled")
	}

	if cfg.RedisAddr != "" {
		pub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB,
			cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
		services.Publisher = pub
		services.Notifiers = append(services.Notifiers, publisher.NewAlertNotifier(pub))
		log.Info().
			Str("addr", cfg.RedisAddr).
			Str("stream", cfg.RedisStream).
			Msg("Publishing alerts to Redis streams")
	}

	if len(services.Notifiers) == 0 {
		log.Warn().Msg("No alert sinks configured, actionable finds will only be logged")
	}

	return services
}
