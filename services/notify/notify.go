// Package notify dispatches actionable decisions to the configured alert
// sinks. Sink failures are logged and bounded; they never block the rest
// of the cycle.
package notify

import (
	"context"

	"resalescout/internal/profit"
)

// Notifier represents one alert sink
type Notifier interface {
	// Notify dispatches one actionable decision
	Notify(ctx context.Context, decision profit.Decision) error

	// Name returns the sink's name for logging
	Name() string
}
