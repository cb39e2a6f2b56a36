// Package classify assigns one DocumentType to raw document text, AI-first
// with a deterministic keyword-rule fallback.
package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fundsight/docintel/internal/config"
	"github.com/fundsight/docintel/internal/inference"
	"github.com/fundsight/docintel/internal/model"
)

// hypothesisTemplate frames each candidate label for zero-shot scoring.
const hypothesisTemplate = "This document is a {}."

// labelDescriptions phrases each type as the natural-language hypothesis the
// model scores. Kept close to the wording that appears in real documents.
var labelDescriptions = map[model.DocumentType]string{
	model.DocTypeCapitalCall:  "capital call notice",
	model.DocTypeDistribution: "distribution notice",
	model.DocTypeValuation:    "valuation report",
	model.DocTypeQuarterly:    "quarterly update",
}

// typeKeywords drives the rule fallback: one literal keyword set per type,
// scored by case-insensitive substring presence.
var typeKeywords = map[model.DocumentType][]string{
	model.DocTypeCapitalCall: {
		"capital call", "drawdown notice", "capital contribution", "drawdown",
		"funding notice", "call notice", "capital call request", "capital call notice",
	},
	model.DocTypeDistribution: {
		"distribution", "dividend", "distribution notice", "distribution payment",
		"fund distributions", "annual distributions",
	},
	model.DocTypeValuation: {
		"valuation", "valuation report", "valuation summary", "net asset value",
		"business valuation", "appraisal", "fair value",
	},
	model.DocTypeQuarterly: {
		"quarter", "quarterly update", "quarterly report", "quarterly highlights",
		"recent highlights", "quarterly letter", "quarterly performance",
		"shareholder letter", "investor letter", "quarterly results",
		"quarterly earnings", "quarterly financial",
		"fourth quarter results", "full year results", "earnings release", "fiscal quarter",
	},
}

// Classifier produces a document-type label for raw text.
type Classifier struct {
	handle *inference.Handle
	cfg    config.AIConfig
}

// New creates a Classifier. The inference handle is injected so tests can
// swap in a fake provider.
func New(handle *inference.Handle, cfg config.AIConfig) *Classifier {
	return &Classifier{handle: handle, cfg: cfg}
}

// Classify returns the document type for text. Never raises: empty text
// returns unknown immediately, and any inference failure falls back to the
// keyword rule.
func (c *Classifier) Classify(ctx context.Context, text string) model.DocumentType {
	if strings.TrimSpace(text) == "" {
		return model.DocTypeUnknown
	}

	if c.cfg.Enabled {
		if label, ok := c.classifyAI(ctx, text); ok {
			return label
		}
	}

	return c.classifyRule(text)
}

// classifyAI runs zero-shot classification. Returns false when the provider
// is unavailable, the call fails, or the best score sits below the threshold.
func (c *Classifier) classifyAI(ctx context.Context, text string) (model.DocumentType, bool) {
	provider, err := c.handle.Acquire()
	if err != nil {
		zap.L().Warn("classify: provider unavailable, falling back to rules", zap.Error(err))
		return model.DocTypeUnknown, false
	}

	cleaned := normalizeForClassification(text, c.cfg.ClassifyChars)

	labels := make([]string, 0, len(labelDescriptions))
	byLabel := make(map[string]model.DocumentType, len(labelDescriptions))
	for _, dt := range model.DocumentTypes() {
		desc := labelDescriptions[dt]
		labels = append(labels, desc)
		byLabel[desc] = dt
	}

	scores, err := provider.ClassifyZeroShot(ctx, cleaned, labels, hypothesisTemplate)
	if err != nil {
		zap.L().Warn("classify: zero-shot failed, falling back to rules", zap.Error(err))
		return model.DocTypeUnknown, false
	}

	var bestLabel string
	var bestScore float64
	for _, label := range labels {
		if scores[label] > bestScore {
			bestLabel = label
			bestScore = scores[label]
		}
	}

	if bestLabel == "" || bestScore < c.cfg.ClassifyThreshold {
		zap.L().Debug("classify: best score below threshold",
			zap.String("label", bestLabel),
			zap.Float64("score", bestScore),
			zap.Float64("threshold", c.cfg.ClassifyThreshold),
		)
		return model.DocTypeUnknown, false
	}

	return byLabel[bestLabel], true
}

// classifyRule scores each type by counting keyword hits in the lowercased
// text and returns the highest scorer, or unknown when nothing matches.
// Ties break by declaration order: the first-declared type wins.
func (c *Classifier) classifyRule(text string) model.DocumentType {
	lowered := strings.ToLower(text)

	best := model.DocTypeUnknown
	bestScore := 0
	for _, dt := range model.DocumentTypes() {
		score := 0
		for _, kw := range typeKeywords[dt] {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore {
			best = dt
			bestScore = score
		}
	}
	return best
}

// normalizeForClassification mirrors the QA text cleaner but keeps basic
// punctuation the hypothesis scorer benefits from.
func normalizeForClassification(text string, maxChars int) string {
	txt := strings.Join(strings.Fields(text), " ")
	if maxChars > 0 && len(txt) > maxChars {
		txt = txt[:maxChars]
	}
	return txt
}
