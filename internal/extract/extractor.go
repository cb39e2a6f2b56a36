package extract

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fundsight/docintel/internal/config"
	"github.com/fundsight/docintel/internal/inference"
	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/normalize"
)

// Extractor runs the field extraction cascade for every document type. It is
// the sole entry point the ingestion layer calls after classification.
type Extractor struct {
	handle  *inference.Handle
	cfg     config.AIConfig
	schema  *Schema
	ctxCurr map[model.DocumentType]*regexp.Regexp
}

// New builds an Extractor from the embedded field schema.
func New(handle *inference.Handle, cfg config.AIConfig) (*Extractor, error) {
	schema, err := LoadSchema()
	if err != nil {
		return nil, err
	}

	// Proximity patterns for the last-resort currency search, one per type,
	// anchored on the type's domain keyword.
	ctxCurr := make(map[model.DocumentType]*regexp.Regexp, len(schema.Types))
	for name, ts := range schema.Types {
		if ts.ContextKeyword == "" {
			continue
		}
		ctxCurr[model.DocumentType(name)] = regexp.MustCompile(
			`(?i)` + regexp.QuoteMeta(ts.ContextKeyword) + `[^.]{0,80}?([$€£]|USD|EUR|GBP)`)
	}

	return &Extractor{handle: handle, cfg: cfg, schema: schema, ctxCurr: ctxCurr}, nil
}

// Extract runs the cascade for docType over text and returns the merged
// result. Never returns an error: every failure mode is encoded in field
// provenance. Unknown or unschematized types yield an empty field map.
func (e *Extractor) Extract(ctx context.Context, docType model.DocumentType, text string) model.ExtractionResult {
	ts, ok := e.schema.ForType(docType)
	if !ok {
		return model.ExtractionResult{DocType: docType, Fields: map[string]model.FieldValue{}}
	}

	res := model.NewExtractionResult(docType, ts.FieldNames())

	if docType == model.DocTypeQuarterly {
		e.extractQuarterly(ctx, ts, text, &res)
	} else {
		e.extractScalar(ctx, docType, ts, text, &res)
	}

	res.EnsureFields(ts.FieldNames())
	return res
}

// extractScalar is the per-field merge used by the capital call, distribution
// and valuation variants: AI answer per questioned field, then a regex
// fallback for each field still empty, then a proximity currency search.
func (e *Extractor) extractScalar(ctx context.Context, docType model.DocumentType, ts TypeSchema, text string, res *model.ExtractionResult) {
	if e.cfg.Enabled {
		e.aiPass(ctx, ts, text, res)
	}

	switch docType {
	case model.DocTypeCapitalCall:
		e.fallbackCapitalCall(text, res)
	case model.DocTypeDistribution:
		e.fallbackDistribution(ts, text, res)
	case model.DocTypeValuation:
		e.fallbackValuation(text, res)
	}

	e.contextCurrency(docType, ts, text, res)
}

// aiPass issues one QA call per questioned field. A failure in one field
// never aborts the rest; the confidence gate marks low-score answers
// ai_unconfident so the regex stage picks those fields up.
func (e *Extractor) aiPass(ctx context.Context, ts TypeSchema, text string, res *model.ExtractionResult) {
	provider, err := e.handle.Acquire()
	if err != nil {
		zap.L().Warn("extract: provider unavailable, regex-only pass", zap.Error(err))
		return
	}

	cleaned := normalize.ForModel(text, e.cfg.ContextChars)
	if cleaned == "" {
		return
	}

	for _, f := range ts.Fields {
		if f.Question == "" || f.Kind == KindList {
			continue
		}

		qa, err := provider.AnswerQuestion(ctx, f.Question, cleaned)
		if err != nil {
			res.Fields[f.Name] = model.NullField(model.SourceAIError)
			res.RawDebug[f.Name] = model.RawModelResponse{Error: err.Error()}
			zap.L().Debug("extract: qa failed", zap.String("field", f.Name), zap.Error(err))
			continue
		}
		res.RawDebug[f.Name] = model.RawModelResponse{Answer: qa.Answer, Score: qa.Score}

		if strings.TrimSpace(qa.Answer) == "" || qa.Score < e.cfg.MinScore {
			res.Fields[f.Name] = model.NullField(model.SourceAIUnconfident)
			continue
		}

		e.applyAnswer(f, qa.Answer, res)
	}
}

// applyAnswer post-processes a confident answer per the field's kind. The
// source stays ai even when the answer turns out uninterpretable: the model
// answered, the value just did not survive normalization.
func (e *Extractor) applyAnswer(f FieldSpec, answer string, res *model.ExtractionResult) {
	answer = strings.TrimSpace(answer)

	switch f.Kind {
	case KindMoney:
		cur, amt := normalize.CurrencyAndAmount(answer)
		if amt != nil {
			res.Fields[f.Name] = model.NewFieldValue(*amt, model.SourceAI)
		} else {
			res.Fields[f.Name] = model.NewFieldValue(answer, model.SourceAI)
		}
		// Amount and currency often arrive in the same answer span.
		if cur != nil && f.CurrencyField != "" && !res.Fields[f.CurrencyField].IsSet() {
			res.Fields[f.CurrencyField] = model.NewFieldValue(*cur, model.SourceAI)
		}

	case KindCurrency:
		cur, _ := normalize.CurrencyAndAmount(answer)
		if cur != nil {
			res.Fields[f.Name] = model.NewFieldValue(*cur, model.SourceAI)
		} else if normalize.IsCurrencyCode(answer) {
			res.Fields[f.Name] = model.NewFieldValue(strings.ToUpper(answer), model.SourceAI)
		} else {
			res.Fields[f.Name] = model.NewFieldValue(answer, model.SourceAI)
		}

	case KindDate:
		if d := normalize.Date(answer); d != nil {
			res.Fields[f.Name] = model.NewFieldValue(*d, model.SourceAI)
		} else {
			res.Fields[f.Name] = model.NullField(model.SourceAI)
		}

	case KindCategorical:
		if label := matchCategory(f.Categories, answer); label != nil {
			res.Fields[f.Name] = model.NewFieldValue(*label, model.SourceAI)
		} else {
			res.Fields[f.Name] = model.NullField(model.SourceAI)
		}

	case KindNumber:
		if n := firstNumber(answer); n != nil {
			res.Fields[f.Name] = model.NewFieldValue(*n, model.SourceAI)
		} else {
			res.Fields[f.Name] = model.NullField(model.SourceAI)
		}

	case KindMethodology:
		if canon := canonicalMethods(answer); canon != nil {
			res.Fields[f.Name] = model.NewFieldValue(*canon, model.SourceAI)
		} else {
			res.Fields[f.Name] = model.NullField(model.SourceAI)
		}

	default:
		res.Fields[f.Name] = model.NewFieldValue(answer, model.SourceAI)
	}
}

// contextCurrency is the last currency stage: a proximity search for a
// currency marker near the type's domain keyword, used only when both the AI
// and regex stages left the currency field empty.
func (e *Extractor) contextCurrency(docType model.DocumentType, ts TypeSchema, text string, res *model.ExtractionResult) {
	var curField string
	for _, f := range ts.Fields {
		if f.Kind == KindCurrency {
			curField = f.Name
			break
		}
	}
	if curField == "" || res.Fields[curField].IsSet() {
		return
	}

	re, ok := e.ctxCurr[docType]
	if !ok {
		return
	}
	if m := re.FindStringSubmatch(text); m != nil {
		res.Fields[curField] = model.NewFieldValue(strings.ToUpper(m[1]), model.SourceAIContext)
	}
}

// setIfEmpty records a regex fallback hit for a field that has no value yet.
func setIfEmpty(res *model.ExtractionResult, name string, value *string) {
	if value == nil || res.Fields[name].IsSet() {
		return
	}
	res.Fields[name] = model.NewFieldValue(*value, model.SourceRegex)
}

func matchCategory(categories []Category, answer string) *string {
	lowered := strings.ToLower(answer)
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if containsKeyword(lowered, kw) {
				label := cat.Label
				return &label
			}
		}
	}
	return nil
}

// containsKeyword does a substring match for phrases and a word-boundary
// match for short codes, so "ci" does not fire inside "pricing".
func containsKeyword(lowered, kw string) bool {
	if len(kw) <= 3 {
		return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`).MatchString(lowered)
	}
	return strings.Contains(lowered, kw)
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

func firstNumber(s string) *string {
	if m := numberRe.FindString(s); m != "" {
		return &m
	}
	return nil
}
