package extract

import (
	"regexp"

	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/normalize"
)

var (
	distributionFundMatcher = NewMatcher([]string{
		`(?im)^\s*fund id\s*[:\-]\s*([^\n\r]{2,100})`,
		`(?im)^\s*fund\s*[:\-]\s*([^\n\r]{2,100})`,
		`(?i)board of directors of ([A-Za-z0-9\-& ]+)`,
		`\b([A-Z][A-Za-z0-9\-& ]*(?:\s+[A-Za-z0-9\-&]+)*\s+Fund(?:\s+[IVX]+)?)\b`,
	},
		"distribution notice", "distribution letter",
	)

	distributionDateMatcher = NewMatcher([]string{
		`(?i)(distribution date|payable date|payment date)[:\s]+` + genericDateRe,
		genericDateRe,
	})

	distributionTotalRe = regexp.MustCompile(`(?i)(total distribution|distribution amount|total amount|net distribution due)\s*[:\-]?\s*([$€£]?\s*[\d,]+(?:\.\d{1,2})?)`)
)

// fallbackDistribution fills any still-empty distribution field from the
// deterministic pattern lists, including the ROC/CI categorical scan over the
// full document text.
func (e *Extractor) fallbackDistribution(ts TypeSchema, text string, res *model.ExtractionResult) {
	setIfEmpty(res, "fund_id", distributionFundMatcher.Find(text))

	if !res.Fields["distribution_date"].IsSet() {
		if raw := distributionDateMatcher.Find(text); raw != nil {
			setIfEmpty(res, "distribution_date", normalize.Date(*raw))
		}
	}

	setIfEmpty(res, "lp_id", lpIDMatcher.Find(text))

	if !res.Fields["distribution_amount"].IsSet() || !res.Fields["currency"].IsSet() {
		cur, amt := fallbackMoney(text, distributionTotalRe, "distribution")
		if amt != nil {
			setIfEmpty(res, "distribution_amount", amt)
			setIfEmpty(res, "currency", cur)
		}
	}

	for _, f := range ts.Fields {
		if f.Kind != KindCategorical || res.Fields[f.Name].IsSet() {
			continue
		}
		if label := matchCategory(f.Categories, text); label != nil {
			res.Fields[f.Name] = model.NewFieldValue(*label, model.SourceRegex)
		}
	}
}
