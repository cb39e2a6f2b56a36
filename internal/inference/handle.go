package inference

import "sync"

// Handle is an acquire-or-build accessor for a lazily constructed Provider.
// Construction is expensive, so concurrent first-callers must not race to
// build duplicates; the mutex serializes construction and the built provider
// is reused for the life of the process. The handle is passed explicitly to
// the classifier and extractors rather than read from ambient global state,
// so tests can inject fakes.
type Handle struct {
	mu       sync.Mutex
	provider Provider
	build    func() (Provider, error)
}

// NewHandle creates a Handle that builds its Provider on first Acquire.
func NewHandle(build func() (Provider, error)) *Handle {
	return &Handle{build: build}
}

// NewStaticHandle wraps an already-constructed Provider. Used in tests.
func NewStaticHandle(p Provider) *Handle {
	return &Handle{provider: p}
}

// Acquire returns the provider, building it on first use. A failed build is
// not cached: the next Acquire retries, and callers degrade to regex-only
// extraction in the meantime.
func (h *Handle) Acquire() (Provider, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.provider != nil {
		return h.provider, nil
	}
	p, err := h.build()
	if err != nil {
		return nil, err
	}
	h.provider = p
	return p, nil
}
