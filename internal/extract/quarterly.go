package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fundsight/docintel/internal/inference"
	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/normalize"
)

var (
	bulletRe     = regexp.MustCompile(`[\x{2022}\x{2023}\x{25E6}\x{2043}\x{2219}*•]\s*`)
	oddSpaceRe   = regexp.MustCompile(`[\t\x{00A0}]+`)
	bulletLineRe = regexp.MustCompile(`^(?:-|\d+\.|\([A-Za-z0-9]\))\s+`)

	pctRe = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?\s*%`)
	bpsRe = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*bps`)

	sentenceEndRe      = regexp.MustCompile(`[.!?]\s+`)
	highlightKeywordRe = regexp.MustCompile(`(?i)\b(revenue|sales|income|margin|eps|earnings|cash|launched|grew|up|increased|decreased|declined|expanded|record)\b`)

	// Statement-style KPI sentences: "Revenue was $12.6 billion" and
	// delta-style ones: "Gross margin decreased 50 bps to 43.6%".
	kpiStatementRe = regexp.MustCompile(`(?i)\b(Revenue|Revenues|Sales|Net income|Operating income|Gross margin|Operating margin|EPS|Earnings per share|Diluted earnings per share|Cash|Inventories)\b[^\n\r]{0,40}?\b(was|were|totaled|stood at|came in at)\b[^\n\r]{0,40}?([$£€¥]?\s?[\d,.]+(?:\s*(?:billion|million|thousand|bn|mm|m|k|%|bps))?)`)
	kpiDeltaRe     = regexp.MustCompile(`(?i)\b(Gross margin|Operating margin|EBITDA margin|Churn|Retention|Expenses|Costs)\b[^\n\r]{0,40}?\b(up|down|increased|decreased|expanded|declined|reduced|improved)\b[^\n\r]{0,40}?\s+to\s+([\d.,]+%|[\d.,]+\s*bps)`)
)

// extractQuarterly builds the KPI and highlight lists. Unlike the scalar
// variants this falls back at the document level: when AI keeps zero KPIs the
// regex path replaces the list wholesale, because KPI extraction is a
// list-building task rather than independent scalar slots.
func (e *Extractor) extractQuarterly(ctx context.Context, ts TypeSchema, text string, res *model.ExtractionResult) {
	var aiKPIs []model.KPI
	var aiHighlights []string

	if e.cfg.Enabled {
		provider, err := e.handle.Acquire()
		if err != nil {
			zap.L().Warn("extract: provider unavailable, regex-only quarterly pass", zap.Error(err))
		} else if cleaned := normalize.ForModel(text, e.cfg.ContextChars); cleaned != "" {
			aiKPIs = e.aiKPIs(ctx, provider, ts.Metrics, cleaned, res)
			aiHighlights = e.aiHighlights(ctx, provider, cleaned, res)
		}
	}

	if len(aiKPIs) > 0 {
		res.KPIs = aiKPIs
		res.Fields["kpis"] = model.NullField(model.SourceAI)
	} else {
		res.KPIs = regexKPIs(text, e.cfg.MaxKPIs)
		if len(res.KPIs) > 0 {
			res.Fields["kpis"] = model.NullField(model.SourceRegex)
		}
	}

	if len(aiHighlights) > 0 {
		res.Highlights = aiHighlights
		res.Fields["highlights"] = model.NullField(model.SourceAI)
	} else {
		res.Highlights = regexHighlights(text, e.cfg.MaxHighlights)
		if len(res.Highlights) > 0 {
			res.Fields["highlights"] = model.NullField(model.SourceRegex)
		}
	}
}

// aiKPIs asks one question per metric, keeping only answers that survive the
// quarterly confidence gate and yield either an amount or a delta.
func (e *Extractor) aiKPIs(ctx context.Context, provider inference.Provider, metrics []string, cleaned string, res *model.ExtractionResult) []model.KPI {
	var kpis []model.KPI
	for _, metric := range metrics {
		if len(kpis) >= e.cfg.MaxKPIs {
			break
		}

		question := fmt.Sprintf("What was the company's %s this quarter?", metric)
		qa, err := provider.AnswerQuestion(ctx, question, cleaned)
		debugKey := "kpi:" + metric
		if err != nil {
			res.RawDebug[debugKey] = model.RawModelResponse{Error: err.Error()}
			continue
		}
		res.RawDebug[debugKey] = model.RawModelResponse{Answer: qa.Answer, Score: qa.Score}
		if qa.Answer == "" || qa.Score < e.cfg.QuarterlyMinScore {
			continue
		}

		cur, amt := normalize.CurrencyAndAmount(qa.Answer)
		pct := pctChange(qa.Answer)
		if amt == nil && pct == "" {
			continue
		}

		value := pct
		if amt != nil {
			value = *amt
		}
		currency := ""
		if cur != nil {
			currency = *cur
		}
		kpis = append(kpis, model.KPI{
			Metric:    canonicalMetric(metric),
			Value:     value,
			Currency:  currency,
			PctChange: pct,
			Raw:       qa.Answer,
		})
	}
	return kpis
}

// aiHighlights issues a single request for sentinel-delimited highlights,
// splitting on sentences when the model ignores the delimiter.
func (e *Extractor) aiHighlights(ctx context.Context, provider inference.Provider, cleaned string, res *model.ExtractionResult) []string {
	question := fmt.Sprintf("List up to %d key business highlights from this update, separated by \" | \".", e.cfg.MaxHighlights)
	qa, err := provider.AnswerQuestion(ctx, question, cleaned)
	if err != nil {
		res.RawDebug["highlights"] = model.RawModelResponse{Error: err.Error()}
		return nil
	}
	res.RawDebug["highlights"] = model.RawModelResponse{Answer: qa.Answer, Score: qa.Score}
	if qa.Answer == "" || qa.Score < e.cfg.QuarterlyMinScore {
		return nil
	}

	var parts []string
	if strings.Contains(qa.Answer, " | ") {
		parts = strings.Split(qa.Answer, " | ")
	} else {
		parts = splitSentences(qa.Answer)
	}
	return dedupeStrings(parts, e.cfg.MaxHighlights)
}

// regexKPIs is the document-level fallback: scan for statement and delta
// style KPI sentences.
func regexKPIs(text string, max int) []model.KPI {
	cleaned := cleanQuarterly(text)

	var kpis []model.KPI
	seen := make(map[string]bool)
	for _, re := range []*regexp.Regexp{kpiStatementRe, kpiDeltaRe} {
		for _, m := range re.FindAllStringSubmatch(cleaned, -1) {
			metric := strings.TrimSpace(m[1])
			raw := strings.TrimSpace(m[3])

			value := raw
			if !strings.Contains(raw, "%") && !bpsRe.MatchString(raw) {
				if amt := normalize.Amount(raw); amt != nil {
					value = *amt
				}
			}
			currency := ""
			if cur, _ := normalize.CurrencyAndAmount(raw); cur != nil {
				currency = *cur
			}

			key := strings.ToLower(metric) + "|" + strings.ToLower(value)
			if seen[key] {
				continue
			}
			seen[key] = true

			kpis = append(kpis, model.KPI{
				Metric:    canonicalMetric(metric),
				Value:     value,
				Currency:  currency,
				PctChange: pctChange(m[0]),
				Raw:       raw,
			})
			if max > 0 && len(kpis) >= max {
				return kpis
			}
		}
	}
	return kpis
}

// regexHighlights prefers bullet-style lines, falling back to performance
// sentences from the narrative.
func regexHighlights(text string, max int) []string {
	cleaned := cleanQuarterly(text)

	var highlights []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if bulletLineRe.MatchString(line) {
			highlights = append(highlights, bulletLineRe.ReplaceAllString(line, ""))
		}
	}

	if len(highlights) == 0 {
		for _, s := range splitSentences(cleaned) {
			if highlightKeywordRe.MatchString(s) {
				highlights = append(highlights, s)
			}
		}
	}

	return dedupeStrings(highlights, max)
}

// cleanQuarterly normalizes bullet glyphs and odd spaces so line-oriented
// patterns see a consistent shape.
func cleanQuarterly(text string) string {
	text = bulletRe.ReplaceAllString(text, "- ")
	text = oddSpaceRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\r", "")
	return strings.TrimSpace(text)
}

// pctChange pulls a percent or basis-point delta out of a KPI span. Basis
// points win when both appear, matching how margin moves are quoted.
func pctChange(s string) string {
	if m := bpsRe.FindString(s); m != "" {
		return m
	}
	if m := pctRe.FindString(s); m != "" {
		return m
	}
	return ""
}

// canonicalMetric title-cases all-lowercase metric names; mixed-case names
// like EPS pass through untouched.
func canonicalMetric(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == strings.ToLower(raw) {
		return cases.Title(language.English).String(raw)
	}
	return raw
}

// splitSentences is a naive sentence splitter keeping terminal punctuation.
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		out = append(out, strings.TrimSpace(text[last:loc[0]+1]))
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func dedupeStrings(items []string, max int) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[strings.ToLower(item)] {
			continue
		}
		seen[strings.ToLower(item)] = true
		out = append(out, item)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
