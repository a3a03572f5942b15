package oracle

import (
	"fmt"
	"strings"

	"resalescout/internal/extract"
)

// BuildBatchPrompt renders one instruction prompt covering the whole
// batch. A single call per cycle keeps the scout inside the inference
// API's free-tier rate limits.
func BuildBatchPrompt(listings []extract.Listing) string {
	var items strings.Builder
	for i, l := range listings {
		fmt.Fprintf(&items, "  %d. %q  —  %.2f €\n", i+1, l.Title, l.Price)
	}

	return "<s>[INST]\n" +
		"You are a resale pricing expert for the European second-hand market (Vinted, Kleinanzeigen).\n\n" +
		"I found these items on eBay.de:\n" +
		items.String() + "\n" +
		"For EACH item, estimate the realistic HIGH resale price on Vinted, give a 1-sentence reasoning, " +
		"and a confidence score from 0 to 100.\n\n" +
		"Respond ONLY with a JSON array (no markdown fences, no extra text):\n" +
		`[{"id": 1, "resale_price": <number>, "reasoning": "<string>", "confidence": <number>}, ...]` + "\n" +
		"[/INST]"
}
