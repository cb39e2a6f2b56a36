package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain with separators", "1,234,567", "1234567"},
		{"billion abbreviation", "2.5bn", "2500000000"},
		{"thousand abbreviation", "750k", "750000"},
		{"million word", "1.2 million", "1200000"},
		{"mm abbreviation", "3mm", "3000000"},
		{"thousand word", "12 thousand", "12000"},
		{"decimal preserved", "1234.50", "1234.5"},
		{"currency noise stripped", "$ 517,000", "517000"},
		{"trailing punctuation", "2.5 billion.", "2500000000"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Amount(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestAmountUnparseable(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Amount("not a number"))
	assert.Nil(t, Amount(""))
	assert.Nil(t, Amount("   "))
	assert.Nil(t, Amount("N/A"))
}

func TestCurrencyAndAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantCur  string
		wantAmt  string
		noCur    bool
	}{
		{"symbol prefix", "$1,234.50", "$", "1234.5", false},
		{"code prefix with magnitude", "USD 2 million", "USD", "2000000", false},
		{"code prefix plain", "EUR 750,000", "EUR", "750000", false},
		{"lowercase code", "usd 1,000", "USD", "1000", false},
		{"code in parentheses", "750,000 (USD)", "USD", "750000", false},
		{"bare magnitude", "approximately 1.2 million units", "", "1200000", true},
		{"bare numeric last resort", "a total of 517,000 was paid", "", "517000", true},
		{"pound symbol", "£2.5bn", "£", "2500000000", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cur, amt := CurrencyAndAmount(tt.in)
			require.NotNil(t, amt)
			assert.Equal(t, tt.wantAmt, *amt)
			if tt.noCur {
				assert.Nil(t, cur)
			} else {
				require.NotNil(t, cur)
				assert.Equal(t, tt.wantCur, *cur)
			}
		})
	}
}

func TestCurrencyAndAmountSymbolWinsOverBareNumber(t *testing.T) {
	t.Parallel()
	// Explicit currency markers outrank earlier bare numbers.
	cur, amt := CurrencyAndAmount("invoice 99812 totals $4,000")
	require.NotNil(t, cur)
	assert.Equal(t, "$", *cur)
	require.NotNil(t, amt)
	assert.Equal(t, "4000", *amt)
}

func TestCurrencyAndAmountNoMatch(t *testing.T) {
	t.Parallel()
	cur, amt := CurrencyAndAmount("no figures in this sentence")
	assert.Nil(t, cur)
	assert.Nil(t, amt)

	cur, amt = CurrencyAndAmount("")
	assert.Nil(t, cur)
	assert.Nil(t, amt)
}

func TestIsCurrencyCode(t *testing.T) {
	t.Parallel()
	assert.True(t, IsCurrencyCode("USD"))
	assert.True(t, IsCurrencyCode("eur"))
	assert.False(t, IsCurrencyCode("dollars"))
	assert.False(t, IsCurrencyCode(""))
}
