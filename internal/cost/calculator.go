// Package cost estimates and accumulates Anthropic API spend per run.
package cost

import "sync"

// ModelRate holds per-model token pricing in dollars per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates maps model names to their pricing.
type Rates map[string]ModelRate

// DefaultRates returns the default Anthropic pricing.
func DefaultRates() Rates {
	return Rates{
		"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
	}
}

// Usage is a snapshot of accumulated token counts and estimated spend.
type Usage struct {
	Calls        int64
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// Tracker accumulates token usage across model calls. Safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	rates Rates
	usage Usage
}

// NewTracker creates a Tracker with the given rates. Nil rates fall back to
// the defaults; unknown models accumulate tokens at zero cost.
func NewTracker(rates Rates) *Tracker {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Tracker{rates: rates}
}

// Record adds one model call's token counts to the running totals.
func (t *Tracker) Record(model string, inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.usage.Calls++
	t.usage.InputTokens += inputTokens
	t.usage.OutputTokens += outputTokens

	rate, ok := t.rates[model]
	if !ok {
		return
	}
	t.usage.CostUSD += (float64(inputTokens)/1e6)*rate.Input + (float64(outputTokens)/1e6)*rate.Output
}

// Usage returns a snapshot of the accumulated totals.
func (t *Tracker) Usage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}
