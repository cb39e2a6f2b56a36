package normalize

import (
	"strings"

	"github.com/araddon/dateparse"
)

// Date parses a natural-language date ("March 3, 2020", "31-12-2024") and
// renders it as an ISO-8601 calendar date. Returns nil when the input is not
// parseable as a date; bad dates never raise.
func Date(raw string) *string {
	candidate := strings.TrimRight(strings.TrimSpace(raw), ".;,) ")
	if candidate == "" {
		return nil
	}
	t, err := dateparse.ParseAny(candidate)
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02")
	return &iso
}
