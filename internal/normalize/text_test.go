package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		maxChars int
		want     string
	}{
		{"empty", "", 100, ""},
		{"collapses whitespace", "a \t b\r\n  c", 100, "a b c"},
		{"strips non-ascii", "total — $750,000  due", 100, "total $750,000 due"},
		{"truncates", strings.Repeat("x", 50), 10, strings.Repeat("x", 10)},
		{"no limit", strings.Repeat("x", 50), 0, strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ForModel(tt.in, tt.maxChars))
		})
	}
}
