// Package normalize converts heterogeneous money, date, and text
// representations from fund documents into canonical forms.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// magnitudeRe matches a magnitude word or abbreviation, attached or not
// ("2.5bn", "2 million"). Longer alternatives first so "million" wins over "m".
var magnitudeRe = regexp.MustCompile(`(?i)(million|billion|thousand|mio|mm|bn|m|b|k)\b`)

// magnitudeFactor maps a lowercased magnitude token to its multiplier.
var magnitudeFactor = map[string]decimal.Decimal{
	"million":  decimal.New(1, 6),
	"mio":      decimal.New(1, 6),
	"mm":       decimal.New(1, 6),
	"m":        decimal.New(1, 6),
	"billion":  decimal.New(1, 9),
	"bn":       decimal.New(1, 9),
	"b":        decimal.New(1, 9),
	"thousand": decimal.New(1, 3),
	"k":        decimal.New(1, 3),
}

var nonNumericRe = regexp.MustCompile(`[^\d.\-]`)

// Amount normalizes a human-readable amount ("1,234,567", "1.2 million",
// "2.5bn", "750k") into an integer-scaled decimal string. Magnitude words are
// pre-multiplied so "2.5bn" becomes "2500000000". Returns nil when no numeric
// literal is recoverable; malformed input is never a crash condition.
func Amount(raw string) *string {
	val := strings.ToLower(strings.TrimSpace(raw))
	val = strings.TrimRight(val, ".;,) ")
	val = strings.ReplaceAll(val, ",", "")
	if val == "" {
		return nil
	}

	mult := decimal.New(1, 0)
	if m := magnitudeRe.FindStringSubmatch(val); m != nil {
		mult = magnitudeFactor[strings.ToLower(m[1])]
		val = magnitudeRe.ReplaceAllString(val, "")
	}

	val = nonNumericRe.ReplaceAllString(val, "")
	num, err := decimal.NewFromString(val)
	if err != nil {
		return nil
	}

	var out string
	if mult.Equal(decimal.New(1, 0)) {
		out = num.String()
	} else {
		out = num.Mul(mult).Round(0).String()
	}
	return &out
}

const (
	currencySign = `[$€£¥₹]`
	currencyCode = `USD|EUR|GBP|INR|JPY|YEN|CAD|AUD|SGD|HKD|CHF|NZD|CNY|RMB|ZAR|SEK|NOK|DKK`
	magnitude    = `(?:\s*(?:million|billion|thousand|mio|mm|bn|m|b|k))?`
)

// Ordered money patterns: explicit currency markers are preferred over bare
// numbers, so pattern order is load-bearing.
var (
	signAmountRe   = regexp.MustCompile(`(` + currencySign + `)\s*([\d,]+(?:\.\d+)?` + magnitude + `)`)
	codeAmountRe   = regexp.MustCompile(`(?i)\b(` + currencyCode + `)\b\s*(` + currencySign + `?\s*[\d,]+(?:\.\d+)?` + magnitude + `)`)
	parenSuffixRe  = regexp.MustCompile(`(?i)([\d,]+(?:\.\d+)?` + magnitude + `)\s*\((?:in\s*)?(` + currencyCode + `)\)`)
	bareMagnitude  = regexp.MustCompile(`(?i)([\d,.]+\s*(?:million|billion|thousand|bn|mm|k))`)
	bareNumeric    = regexp.MustCompile(`([\d,]{3,}(?:\.\d+)?)`)
	currencyCodeRe = regexp.MustCompile(`(?i)^(?:` + currencyCode + `)$`)
)

// CurrencyAndAmount scans text for a money expression and returns the detected
// currency marker and normalized amount. Patterns are tried in order: symbol
// prefix, ISO code prefix, code-in-parentheses suffix, bare magnitude-worded
// number, then any bare number of three or more digits. First match wins.
func CurrencyAndAmount(text string) (*string, *string) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if m := signAmountRe.FindStringSubmatch(text); m != nil {
		cur := m[1]
		return &cur, Amount(m[2])
	}
	if m := codeAmountRe.FindStringSubmatch(text); m != nil {
		cur := strings.ToUpper(m[1])
		return &cur, Amount(m[2])
	}
	if m := parenSuffixRe.FindStringSubmatch(text); m != nil {
		cur := strings.ToUpper(m[2])
		return &cur, Amount(m[1])
	}
	if m := bareMagnitude.FindStringSubmatch(text); m != nil {
		return nil, Amount(m[1])
	}
	if m := bareNumeric.FindStringSubmatch(text); m != nil {
		return nil, Amount(m[1])
	}
	return nil, nil
}

// IsCurrencyCode reports whether s is a recognized ISO-style currency code.
func IsCurrencyCode(s string) bool {
	return currencyCodeRe.MatchString(strings.TrimSpace(s))
}
