package oracle

import (
	"encoding/json"
	"regexp"

	pkgerrors "resalescout/pkg/errors"
)

// jsonArrayRe locates the JSON array inside a completion that may carry
// leading prose or trailing commentary despite the prompt's instructions.
var jsonArrayRe = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// ParseBatchResponse extracts and validates the per-item estimates from a
// raw completion. A response with no locatable or decodable JSON array is
// a permanent, non-retryable failure. Individual entries with an
// out-of-range id or a non-positive price are dropped, not fatal.
func ParseBatchResponse(raw string, batchSize int) (map[int]Estimate, error) {
	arr := jsonArrayRe.FindString(raw)
	if arr == "" {
		return nil, pkgerrors.NewOracle("estimate", "no JSON array in oracle response", nil)
	}

	var entries []Estimate
	if err := json.Unmarshal([]byte(arr), &entries); err != nil {
		return nil, pkgerrors.NewOracle("estimate", "malformed JSON in oracle response", err)
	}

	estimates := make(map[int]Estimate, len(entries))
	for _, entry := range entries {
		if entry.ID < 1 || entry.ID > batchSize {
			continue
		}
		if entry.ResalePrice <= 0 {
			continue
		}
		if entry.Confidence < 0 || entry.Confidence > 100 {
			entry.Confidence = 0
		}
		estimates[entry.ID] = entry
	}
	return estimates, nil
}
