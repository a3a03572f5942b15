// Package price normalizes raw marketplace price strings into decimal
// amounts. Source listings mix German and English conventions
// ("1.234,56 €", "EUR 1,234.56", "29,99"), so separator roles are decided
// per string rather than per locale.
package price

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoPrice signals that no digit sequence was found. It is a soft
// failure: the caller skips the listing.
var ErrNoPrice = errors.New("no price found")

// ErrNonPositive signals a parsed amount of zero or less.
var ErrNonPositive = errors.New("price is not positive")

// Parse extracts the first price-like number from raw and returns it as a
// normalized decimal amount.
//
// Separator policy:
//   - both "." and "," present: the rightmost separator is the decimal
//     point, every earlier occurrence of either is a thousands separator
//   - a single separator type with exactly two trailing digits is the
//     decimal point; otherwise it is a thousands separator
func Parse(raw string) (float64, error) {
	token := firstNumberRun(raw)
	if token == "" {
		return 0, ErrNoPrice
	}

	normalized := normalizeSeparators(token)
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, ErrNoPrice
	}
	if value <= 0 {
		return 0, ErrNonPositive
	}
	return value, nil
}

// firstNumberRun returns the first maximal run of digits and separators
// that contains at least one digit, trimmed of dangling separators.
func firstNumberRun(raw string) string {
	start := -1
	for i, r := range raw {
		if isNumberChar(r) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			if run := trimSeparators(raw[start:i]); run != "" {
				return run
			}
			start = -1
		}
	}
	if start == -1 {
		return ""
	}
	return trimSeparators(raw[start:])
}

func isNumberChar(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.' || r == ','
}

func trimSeparators(s string) string {
	s = strings.Trim(s, ".,")
	if !strings.ContainsAny(s, "0123456789") {
		return ""
	}
	return s
}

func normalizeSeparators(token string) string {
	hasDot := strings.Contains(token, ".")
	hasComma := strings.Contains(token, ",")

	stripAll := func(s string) string {
		s = strings.ReplaceAll(s, ".", "")
		return strings.ReplaceAll(s, ",", "")
	}

	last := strings.LastIndexAny(token, ".,")
	if last == -1 {
		return token
	}

	intPart := token[:last]
	fracPart := token[last+1:]

	if hasDot && hasComma {
		// Rightmost separator is the decimal point.
		return stripAll(intPart) + "." + fracPart
	}

	// Single separator type: two trailing digits mark a decimal point,
	// anything else is grouping ("1,234" -> 1234, "1.234.567" -> 1234567).
	if len(fracPart) == 2 {
		return stripAll(intPart) + "." + fracPart
	}
	return stripAll(token)
}
