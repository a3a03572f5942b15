package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resalescout/helpers"
	"resalescout/internal/profit"
	"resalescout/logger"
	pkgerrors "resalescout/pkg/errors"
)

// DiscordNotifier posts one webhook embed per actionable decision
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
	attempts   int
	retryDelay time.Duration
	log        *logger.Logger
}

// NewDiscordNotifier creates a Discord webhook notifier
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		attempts:   3,
		retryDelay: time.Second,
		log:        logger.ForNotifier(),
	}
}

// Name implements Notifier
func (d *DiscordNotifier) Name() string { return "discord" }

type webhookPayload struct {
	Username string  `json:"username"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title     string       `json:"title"`
	URL       string       `json:"url,omitempty"`
	Color     int          `json:"color"`
	Thumbnail *embedMedia  `json:"thumbnail,omitempty"`
	Fields    []embedField `json:"fields"`
	Footer    embedFooter  `json:"footer"`
	Timestamp string       `json:"timestamp"`
}

type embedMedia struct {
	URL string `json:"url"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// Notify posts the decision as a webhook embed, retrying transient
// transport failures a bounded number of times.
func (d *DiscordNotifier) Notify(ctx context.Context, decision profit.Decision) error {
	payload, err := json.Marshal(buildPayload(decision))
	if err != nil {
		return pkgerrors.NewNotify("notify", "failed to marshal webhook payload", err)
	}

	return helpers.WithRetry(ctx, func() error {
		return d.post(ctx, payload)
	}, helpers.RetryOptions{MaxAttempts: d.attempts, InitialDelay: d.retryDelay})
}

func (d *DiscordNotifier) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.NewNotify("notify", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return pkgerrors.NewNetwork("notify", "webhook request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return pkgerrors.NewRateLimit("notify", resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 500:
		return pkgerrors.NewNetwork("notify", fmt.Sprintf("webhook status %d", resp.StatusCode), nil)
	default:
		return pkgerrors.NewNotify("notify", fmt.Sprintf("webhook status %d", resp.StatusCode), nil)
	}
}

func buildPayload(decision profit.Decision) webhookPayload {
	listing := decision.Listing

	fields := []embedField{
		{Name: "Buy Price", Value: fmt.Sprintf("%.2f €", listing.Price), Inline: true},
		{Name: "Resale Price", Value: fmt.Sprintf("%.2f €", decision.ResaleEstimate), Inline: true},
		{Name: "Fees", Value: fmt.Sprintf("%.2f €", decision.Fees), Inline: true},
		{Name: "Net Profit", Value: fmt.Sprintf("%.2f €", decision.NetProfit), Inline: true},
	}
	if decision.Confidence > 0 {
		fields = append(fields, embedField{Name: "Confidence", Value: fmt.Sprintf("%.0f", decision.Confidence), Inline: true})
	}
	rationale := decision.Rationale
	if rationale == "" {
		rationale = "N/A"
	}
	if len(rationale) > 1024 {
		rationale = rationale[:1024]
	}
	fields = append(fields, embedField{Name: "Rationale", Value: rationale, Inline: false})

	title := listing.Title
	if len(title) > 200 {
		title = title[:200]
	}

	var thumbnail *embedMedia
	if listing.ImageURL != "" {
		thumbnail = &embedMedia{URL: listing.ImageURL}
	}

	return webhookPayload{
		Username: "Resale Scout",
		Embeds: []embed{{
			Title:     title,
			URL:       listing.Identifier,
			Color:     0x03b2f8,
			Thumbnail: thumbnail,
			Fields:    fields,
			Footer:    embedFooter{Text: "Resale Scout"},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
}
