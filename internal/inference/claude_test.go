package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/docintel/pkg/anthropic"
)

// fakeClient returns canned responses for CreateMessage.
type fakeClient struct {
	text string
	err  error
	last anthropic.MessageRequest
}

func (f *fakeClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}, nil
}

func TestClassifyZeroShotNormalizes(t *testing.T) {
	t.Parallel()

	client := &fakeClient{text: `{"scores": {"a": 0.6, "b": 0.2, "c": 0.2}}`}
	p := NewClaudeProvider(client, "test-model", 0, 0)

	scores, err := p.ClassifyZeroShot(context.Background(), "doc", []string{"a", "b", "c"}, "This document is a {}.")
	require.NoError(t, err)

	var total float64
	for _, s := range scores {
		total += s
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 0.6, scores["a"], 1e-9)
}

func TestClassifyZeroShotClampsAndRenormalizes(t *testing.T) {
	t.Parallel()

	client := &fakeClient{text: `{"scores": {"a": 1.5, "b": -0.4}}`}
	p := NewClaudeProvider(client, "test-model", 0, 0)

	scores, err := p.ClassifyZeroShot(context.Background(), "doc", []string{"a", "b"}, "This document is a {}.")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores["a"], 1e-9)
	assert.InDelta(t, 0.0, scores["b"], 1e-9)
}

func TestClassifyZeroShotPropagatesError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: errors.New("api down")}
	p := NewClaudeProvider(client, "test-model", 0, 0)

	_, err := p.ClassifyZeroShot(context.Background(), "doc", []string{"a"}, "This document is a {}.")
	assert.Error(t, err)
}

func TestAnswerQuestion(t *testing.T) {
	t.Parallel()

	t.Run("parses answer and score", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{text: `The answer is: {"answer": " Acme Fund III ", "score": 0.83}`}
		p := NewClaudeProvider(client, "test-model", 0, 0)

		res, err := p.AnswerQuestion(context.Background(), "What is the fund?", "ctx")
		require.NoError(t, err)
		assert.Equal(t, "Acme Fund III", res.Answer)
		assert.InDelta(t, 0.83, res.Score, 1e-9)
	})

	t.Run("malformed response errors", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{text: `no json here`}
		p := NewClaudeProvider(client, "test-model", 0, 0)

		_, err := p.AnswerQuestion(context.Background(), "q", "ctx")
		assert.Error(t, err)
	})
}

func TestProviderTracksUsage(t *testing.T) {
	t.Parallel()

	client := &fakeClient{text: `{"answer": "x", "score": 0.9}`}
	p := NewClaudeProvider(client, "test-model", 0, 0)

	_, err := p.AnswerQuestion(context.Background(), "q", "ctx")
	require.NoError(t, err)
	_, err = p.AnswerQuestion(context.Background(), "q2", "ctx")
	require.NoError(t, err)

	u := p.Usage()
	assert.Equal(t, int64(2), u.Calls)
	assert.Equal(t, int64(200), u.InputTokens)
	assert.Equal(t, int64(40), u.OutputTokens)
}

func TestHandleBuildsOnce(t *testing.T) {
	t.Parallel()

	builds := 0
	h := NewHandle(func() (Provider, error) {
		builds++
		return NewClaudeProvider(&fakeClient{text: `{}`}, "m", 0, 0), nil
	})

	p1, err := h.Acquire()
	require.NoError(t, err)
	p2, err := h.Acquire()
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, builds)
}

func TestHandleRetriesFailedBuild(t *testing.T) {
	t.Parallel()

	builds := 0
	h := NewHandle(func() (Provider, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("boom")
		}
		return NewClaudeProvider(&fakeClient{text: `{}`}, "m", 0, 0), nil
	})

	_, err := h.Acquire()
	require.Error(t, err)
	p, err := h.Acquire()
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, 2, builds)
}

func TestUnmarshalLoose(t *testing.T) {
	t.Parallel()

	var out map[string]any
	require.NoError(t, unmarshalLoose("prefix {\"k\": 1} suffix", &out))
	assert.Equal(t, float64(1), out["k"])

	assert.Error(t, unmarshalLoose("nothing", &out))
}
