// Package inference exposes the two model capabilities the cascade relies on:
// zero-shot label scoring and extractive question answering.
package inference

import "context"

// QAResult is one extractive question-answering outcome. Score reflects the
// model's confidence in the span, not a probability of correctness.
type QAResult struct {
	Answer string
	Score  float64
}

// Provider is the capability interface around the underlying model. Callers
// must treat any returned error as non-fatal: inference failures surface as
// ai_error provenance, never as pipeline failures.
type Provider interface {
	// ClassifyZeroShot scores text against candidate labels using the given
	// hypothesis template ("This document is a {}."). Scores sum to 1 across
	// candidates (single-label mode).
	ClassifyZeroShot(ctx context.Context, text string, labels []string, hypothesisTemplate string) (map[string]float64, error)

	// AnswerQuestion locates an answer span for the question within context.
	AnswerQuestion(ctx context.Context, question, context string) (QAResult, error)
}
