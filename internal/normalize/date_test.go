package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long form", "March 3, 2020", "2020-03-03"},
		{"long form trailing punctuation", "December 31, 2024.", "2024-12-31"},
		{"slash numeric", "03/03/2020", "2020-03-03"},
		{"iso passthrough", "2024-06-30", "2024-06-30"},
		{"day first long", "31 December 2024", "2024-12-31"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Date(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDateUnparseable(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Date("the second tuesday"))
	assert.Nil(t, Date(""))
	assert.Nil(t, Date("   "))
}

