package cost

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAccumulates(t *testing.T) {
	t.Parallel()

	tr := NewTracker(Rates{"m": {Input: 1.00, Output: 4.00}})
	tr.Record("m", 1_000_000, 500_000)
	tr.Record("m", 1_000_000, 0)

	u := tr.Usage()
	assert.Equal(t, int64(2), u.Calls)
	assert.Equal(t, int64(2_000_000), u.InputTokens)
	assert.Equal(t, int64(500_000), u.OutputTokens)
	assert.InDelta(t, 4.00, u.CostUSD, 1e-9)
}

func TestTrackerUnknownModelCountsTokensOnly(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil)
	tr.Record("some-unknown-model", 100, 100)

	u := tr.Usage()
	assert.Equal(t, int64(1), u.Calls)
	assert.Zero(t, u.CostUSD)
}

func TestTrackerConcurrentRecord(t *testing.T) {
	t.Parallel()

	tr := NewTracker(Rates{"m": {Input: 1.00, Output: 1.00}})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Record("m", 10, 10)
		}()
	}
	wg.Wait()

	u := tr.Usage()
	assert.Equal(t, int64(50), u.Calls)
	assert.Equal(t, int64(500), u.InputTokens)
}
