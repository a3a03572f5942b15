// Package scout sequences one scan cycle: pick a search term, fetch the
// search page, extract listings, ask the oracle for resale estimates,
// decide profitability, and alert on new actionable decisions.
package scout

import (
	"context"

	"resalescout/internal/extract"
	"resalescout/internal/keywords"
	"resalescout/internal/oracle"
	"resalescout/internal/profit"
	"resalescout/logger"
	"resalescout/services/fetcher"
	"resalescout/services/notify"
	"resalescout/services/store"
)

// Config holds the decision parameters of a cycle
type Config struct {
	FeeRate             float64
	MinProfit           float64
	ConfidenceThreshold float64
	// OracleConfigured gates the whole cycle: without the mandatory
	// credential a cycle no-ops cleanly instead of partially executing.
	OracleConfigured bool
}

// Collaborators are the external boundaries a cycle drives
type Collaborators struct {
	Selector  keywords.Selector
	Fetcher   fetcher.Fetcher
	Extractor *extract.Extractor
	Oracle    oracle.Estimator
	History   store.History
	Stats     store.Stats
	Notifiers []notify.Notifier
}

// Summary reports what one cycle did
type Summary struct {
	Term         string
	Found        int
	Estimated    int
	Actionable   int
	Alerted      int
	SkippedKnown int
}

// Cycle runs the scan pipeline once per invocation. Steps are strictly
// sequential; each step's output is the next step's input. Failures are
// isolated per unit of work: a failed term aborts only that term, a
// failed listing only that listing.
type Cycle struct {
	cfg    Config
	collab Collaborators
	log    *logger.Logger
}

// New creates a Cycle
func New(cfg Config, collab Collaborators) *Cycle {
	return &Cycle{
		cfg:    cfg,
		collab: collab,
		log:    logger.ForCycle(),
	}
}

// Run executes one full cycle for one search term. The returned error
// covers term-level aborts (fetch dead, extraction empty is not an
// error); the caller logs it and moves on, never crashes.
func (c *Cycle) Run(ctx context.Context) (Summary, error) {
	if !c.cfg.OracleConfigured {
		c.log.Warn().Msg("Oracle credential missing, skipping cycle")
		return Summary{}, nil
	}

	// SELECT_TERM
	term, err := c.collab.Selector.Next(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Term: term}
	c.log.Info().Str("term", term).Msg("Cycle started")

	// FETCH — one retry on transient transport failure, then the term is
	// abandoned for this cycle.
	markup, err := fetchWithRetry(ctx, c.collab.Fetcher, term)
	if err != nil {
		return summary, err
	}

	// EXTRACT
	listings, err := c.collab.Extractor.Extract(markup)
	if err != nil {
		return summary, err
	}
	summary.Found = len(listings)
	c.log.Info().Str("term", term).Int("listings", len(listings)).Msg("Listings extracted")
	if len(listings) == 0 {
		return summary, nil
	}

	// ESTIMATE — one batched oracle call, retried with backoff on
	// transient failure. A permanent failure abandons the term's
	// listings but still counts them as checked.
	estimates, err := c.estimateWithRetry(ctx, listings)
	if err != nil {
		c.bumpStats(ctx, term, len(listings), false)
		return summary, err
	}
	summary.Estimated = len(estimates)

	// DECIDE / NOTIFY / RECORD per listing
	for i, listing := range listings {
		est, ok := estimates[i+1]
		if !ok {
			c.log.Debug().Str("identifier", listing.Identifier).Msg("No oracle estimate, skipping listing")
			continue
		}

		decision := profit.Decide(listing, est.ResalePrice, est.Confidence, est.Reasoning,
			c.cfg.FeeRate, c.cfg.MinProfit, c.cfg.ConfidenceThreshold)

		c.log.Info().
			Str("identifier", listing.Identifier).
			Float64("buy", listing.Price).
			Float64("resale", decision.ResaleEstimate).
			Float64("net_profit", decision.NetProfit).
			Bool("actionable", decision.Actionable).
			Msg("Listing decided")

		if !decision.Actionable {
			continue
		}
		summary.Actionable++

		if c.dispatch(ctx, decision) {
			summary.Alerted++
		} else {
			summary.SkippedKnown++
		}
	}

	c.bumpStats(ctx, term, len(listings), summary.Actionable > 0)

	c.log.Info().
		Str("term", term).
		Int("found", summary.Found).
		Int("actionable", summary.Actionable).
		Int("alerted", summary.Alerted).
		Int("skipped_known", summary.SkippedKnown).
		Msg("Cycle finished")
	return summary, nil
}

// dispatch suppresses already-seen identifiers, otherwise notifies every
// sink and records the identifier. Returns true when an alert went out.
func (c *Cycle) dispatch(ctx context.Context, decision profit.Decision) bool {
	identifier := decision.Listing.Identifier

	known, err := c.collab.History.Contains(ctx, identifier)
	if err != nil {
		// Losing the dedup check silently would mean duplicate alerts
		// forever; log loudly and press on treating it as unseen.
		c.log.Error().Err(err).Str("identifier", identifier).Msg("History lookup failed")
	}
	if known {
		c.log.Debug().Str("identifier", identifier).Msg("Already alerted, skipping")
		return false
	}

	for _, n := range c.collab.Notifiers {
		if err := n.Notify(ctx, decision); err != nil {
			c.log.Error().Err(err).Str("sink", n.Name()).Str("identifier", identifier).Msg("Notification failed")
		} else {
			c.log.Info().Str("sink", n.Name()).Str("identifier", identifier).Msg("Alert sent")
		}
	}

	// RECORD immediately after the notification attempt so a crash
	// mid-batch does not resend the whole batch on the next run.
	if err := c.collab.History.Record(ctx, identifier); err != nil {
		c.log.Error().Err(err).Str("identifier", identifier).Msg("Failed to record history entry")
	}
	return true
}

func (c *Cycle) bumpStats(ctx context.Context, term string, checked int, hit bool) {
	if c.collab.Stats == nil {
		return
	}
	if err := c.collab.Stats.BumpChecked(ctx, []string{term}, checked); err != nil {
		c.log.Warn().Err(err).Str("term", term).Msg("Failed to update keyword stats")
	}
	if hit {
		if err := c.collab.Stats.BumpHits(ctx, []string{term}); err != nil {
			c.log.Warn().Err(err).Str("term", term).Msg("Failed to update keyword hits")
		}
	}
}
