package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fundsight/docintel/internal/classify"
	"github.com/fundsight/docintel/internal/extract"
	"github.com/fundsight/docintel/internal/inference"
	"github.com/fundsight/docintel/internal/ingest"
	"github.com/fundsight/docintel/internal/store"
	"github.com/fundsight/docintel/pkg/anthropic"
)

// pipelineEnv holds the initialized store and pipeline components needed by
// the serve/ingest/classify/export commands.
type pipelineEnv struct {
	Store      store.Store
	Classifier *classify.Classifier
	Extractor  *extract.Extractor
	Ingest     *ingest.Service
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initEnv opens the store, runs migrations, and builds the classification and
// extraction components. Callers should defer env.Close().
func initEnv(ctx context.Context) (*pipelineEnv, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	handle := newProviderHandle()

	classifier := classify.New(handle, cfg.AI)
	extractor, err := extract.New(handle, cfg.AI)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{
		Store:      st,
		Classifier: classifier,
		Extractor:  extractor,
		Ingest:     ingest.NewService(classifier, extractor, st),
	}, nil
}

// newProviderHandle builds the model provider lazily so commands that never
// call the model do not need an API key.
func newProviderHandle() *inference.Handle {
	return inference.NewHandle(func() (inference.Provider, error) {
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("DOCINTEL_ANTHROPIC_KEY not set")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		return inference.NewClaudeProvider(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Anthropic.RateLimitPerSec), nil
	})
}
