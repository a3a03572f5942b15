// Package worker drives the scan loop: one cycle per tick, forever,
// until the context is cancelled.
package worker

import (
	"context"
	"time"

	"resalescout/internal/scout"
	"resalescout/logger"
	"resalescout/services/publisher"
)

// Runner is the unit of work executed on every tick
type Runner interface {
	Run(ctx context.Context) (scout.Summary, error)
}

// Worker runs cycles on a fixed interval. Cycles never overlap: the
// next tick waits for the previous cycle to finish.
type Worker struct {
	cycle    Runner
	pub      publisher.Publisher
	interval time.Duration
	runOnce  bool
	log      *logger.Logger
}

// New creates a worker. pub may be nil when no stream publisher is
// configured; runOnce executes a single cycle and returns, for cron-like
// deployments.
func New(cycle Runner, pub publisher.Publisher, interval time.Duration, runOnce bool) *Worker {
	return &Worker{
		cycle:    cycle,
		pub:      pub,
		interval: interval,
		runOnce:  runOnce,
		log:      logger.ForWorker(),
	}
}

// Start blocks until the context is cancelled (or, in run-once mode,
// until the single cycle finishes). Cycle errors are logged and the
// loop keeps going; a scan loop must outlive any individual failure.
func (w *Worker) Start(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping")
			return
		case <-timer.C:
		}

		w.runCycle(ctx)
		if w.runOnce {
			w.log.Info().Msg("Single cycle done, exiting")
			return
		}
		timer.Reset(w.interval)
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	start := time.Now()
	summary, err := w.cycle.Run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		w.log.Error().Err(err).Str("term", summary.Term).Dur("elapsed", elapsed).Msg("Cycle failed")
	} else {
		w.log.Info().
			Str("term", summary.Term).
			Int("found", summary.Found).
			Int("alerted", summary.Alerted).
			Dur("elapsed", elapsed).
			Msg("Heartbeat")
	}

	if w.pub != nil {
		if err := w.pub.TrimStreams(); err != nil {
			w.log.Error().Err(err).Msg("Stream trimming failed")
		}
	}
}
