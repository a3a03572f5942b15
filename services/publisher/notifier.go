package publisher

import (
	"context"
	"encoding/json"

	"resalescout/internal/profit"
	pkgerrors "resalescout/pkg/errors"
)

// AlertNotifier adapts a Publisher to the notify.Notifier boundary so the
// orchestrator can treat the redis stream like any other alert sink.
type AlertNotifier struct {
	pub Publisher
}

// NewAlertNotifier wraps pub as an alert sink
func NewAlertNotifier(pub Publisher) *AlertNotifier {
	return &AlertNotifier{pub: pub}
}

// Name implements notify.Notifier
func (a *AlertNotifier) Name() string { return "redis-stream" }

// Notify publishes the decision as JSON under the b64_alerts key
func (a *AlertNotifier) Notify(_ context.Context, decision profit.Decision) error {
	message, err := json.Marshal(decision)
	if err != nil {
		return pkgerrors.NewNotify("publish", "failed to marshal decision", err)
	}
	if err := a.pub.Publish("b64_alerts", message); err != nil {
		return pkgerrors.NewNotify("publish", "failed to publish alert", err)
	}
	return nil
}
