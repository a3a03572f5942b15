// Package profit holds the pure profit-decision arithmetic.
package profit

import (
	"math"

	"resalescout/internal/extract"
)

// Decision is the outcome of evaluating one listing against the oracle's
// resale estimate.
type Decision struct {
	Listing        extract.Listing `json:"listing"`
	ResaleEstimate float64         `json:"resale_estimate"`
	FeeRate        float64         `json:"fee_rate"`
	Fees           float64         `json:"fees"`
	NetProfit      float64         `json:"net_profit"`
	Rationale      string          `json:"rationale,omitempty"`
	Confidence     float64         `json:"confidence,omitempty"`
	Actionable     bool            `json:"actionable"`
}

// Evaluate computes the net profit for one purchase and whether it clears
// the minimum-profit bar. Deterministic and side-effect free.
func Evaluate(purchase, resale, feeRate, minProfit float64) (net float64, actionable bool) {
	net = round2(resale*(1-feeRate) - purchase)
	return net, net >= minProfit
}

// Decide builds a full Decision for a listing. A confidence threshold of
// zero disables the confidence gate; otherwise both the profit and the
// confidence condition must hold.
func Decide(listing extract.Listing, resale, confidence float64, rationale string, feeRate, minProfit, confidenceThreshold float64) Decision {
	net, actionable := Evaluate(listing.Price, resale, feeRate, minProfit)
	if confidenceThreshold > 0 && confidence < confidenceThreshold {
		actionable = false
	}
	return Decision{
		Listing:        listing,
		ResaleEstimate: resale,
		FeeRate:        feeRate,
		Fees:           round2(resale * feeRate),
		NetProfit:      net,
		Rationale:      rationale,
		Confidence:     confidence,
		Actionable:     actionable,
	}
}

// round2 rounds to currency precision
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
