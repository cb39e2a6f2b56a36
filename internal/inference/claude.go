package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fundsight/docintel/internal/cost"
	"github.com/fundsight/docintel/internal/resilience"
	"github.com/fundsight/docintel/pkg/anthropic"
)

const zeroShotSystem = `You score how well candidate hypotheses describe a document. Respond with a valid JSON object mapping every candidate label to a score between 0.0 and 1.0: {"scores": {"<label>": <score>, ...}}. Higher means the hypothesis fits better.`

const zeroShotPrompt = `Candidate hypotheses, one per line (template: %q):
%s

Document text:
%s

Score every candidate. Return only the JSON object.`

const qaSystem = `You answer questions by quoting the shortest span of the provided context that answers them. Respond with a valid JSON object: {"answer": "<exact span, or empty string if not found>", "score": <0.0-1.0 confidence>}. Never invent text that is not in the context.`

const qaPrompt = `Question: %s

Context:
%s

Return only the JSON object.`

// ClaudeProvider implements Provider on top of the Anthropic message API.
// Safe for concurrent use after construction.
type ClaudeProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	costs     *cost.Tracker
}

// NewClaudeProvider creates a provider using the given client and model.
// ratePerSec caps outbound calls; zero or negative disables limiting.
func NewClaudeProvider(client anthropic.Client, model string, maxTokens int64, ratePerSec float64) *ClaudeProvider {
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &ClaudeProvider{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		limiter:   limiter,
		costs:     cost.NewTracker(nil),
	}
}

// Usage returns accumulated token usage and estimated spend for this provider.
func (p *ClaudeProvider) Usage() cost.Usage {
	return p.costs.Usage()
}

func (p *ClaudeProvider) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// createMessage sends one message request, retrying transient API failures.
func (p *ClaudeProvider) createMessage(ctx context.Context, operation string, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger(operation)
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	p.costs.Record(p.model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return resp, nil
}

// ClassifyZeroShot scores text against candidate labels. Raw model scores are
// clamped to [0,1] and normalized to sum to 1.
func (p *ClaudeProvider) ClassifyZeroShot(ctx context.Context, text string, labels []string, hypothesisTemplate string) (map[string]float64, error) {
	if err := p.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "inference: rate limit")
	}

	resp, err := p.createMessage(ctx, "zero_shot", anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    zeroShotSystem,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(zeroShotPrompt, hypothesisTemplate, strings.Join(labels, "\n"), text)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "inference: zero-shot call")
	}

	var parsed struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := unmarshalLoose(resp.Text(), &parsed); err != nil {
		return nil, eris.Wrap(err, "inference: zero-shot parse")
	}

	scores := make(map[string]float64, len(labels))
	var total float64
	for _, label := range labels {
		s := clamp01(parsed.Scores[label])
		scores[label] = s
		total += s
	}
	if total > 0 {
		for label := range scores {
			scores[label] /= total
		}
	}

	zap.L().Debug("inference: zero-shot scored",
		zap.Int("labels", len(labels)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
	)
	return scores, nil
}

// AnswerQuestion asks a single extractive question against the context.
func (p *ClaudeProvider) AnswerQuestion(ctx context.Context, question, contextText string) (QAResult, error) {
	if err := p.wait(ctx); err != nil {
		return QAResult{}, eris.Wrap(err, "inference: rate limit")
	}

	resp, err := p.createMessage(ctx, "qa", anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    qaSystem,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(qaPrompt, question, contextText)},
		},
	})
	if err != nil {
		return QAResult{}, eris.Wrap(err, "inference: qa call")
	}

	var parsed struct {
		Answer string  `json:"answer"`
		Score  float64 `json:"score"`
	}
	if err := unmarshalLoose(resp.Text(), &parsed); err != nil {
		return QAResult{}, eris.Wrap(err, "inference: qa parse")
	}

	return QAResult{
		Answer: strings.TrimSpace(parsed.Answer),
		Score:  clamp01(parsed.Score),
	}, nil
}

// unmarshalLoose extracts the outermost JSON object from a model reply that
// may carry prose around it.
func unmarshalLoose(raw string, v any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return eris.New("no JSON object in model response")
	}
	return json.Unmarshal([]byte(raw[start:end+1]), v)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
