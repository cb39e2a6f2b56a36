package extract

import (
	"regexp"

	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/normalize"
)

// Matchers shared across the capital call and distribution fallbacks.
var (
	lpIDMatcher = NewMatcher([]string{
		`(?i)(lp id|limited partner id)[:\s]+([A-Za-z0-9\-]+)`,
	})
	genericDateRe = `([A-Za-z]+\s+\d{1,2},\s*\d{4})`
)

var (
	capitalCallFundMatcher = NewMatcher([]string{
		`(?im)^\s*fund id\s*[:\-]\s*([^\n\r]{2,100})`,
		`(?im)^\s*fund\s*[:\-]\s*([^\n\r]{2,100})`,
		`\b([A-Z][A-Za-z0-9\-& ]*(?:\s+[A-Za-z0-9\-&]+)+\s+(?:Fund|Partnership)(?:\s+[IVX]+)?(?:,?\s*LP)?)\b`,
		`\b([A-Z][A-Za-z0-9\-& ]+\s+Fund(?:\s+[IVX]+)?(?:,?\s*LP)?)\b`,
	},
		"capital call notice", "capital call letter", "drawdown notice", "contribution notice",
	)

	capitalCallDateMatcher = NewMatcher([]string{
		`(?i)(call date|due date|payment date)[:\s]+` + genericDateRe,
		`(?i)date\s*[:\-]\s*` + genericDateRe,
		genericDateRe,
	})

	capitalCallTotalRe = regexp.MustCompile(`(?i)(total capital call|net capital call due)\s*[:\-]?\s*([$€£]?\s*[\d,]+(?:\.\d{1,2})?)`)

	callNumberMatcher = NewMatcher([]string{
		`(?i)call\s*(?:no\.|number|#)\s*(\d+)`,
	})
)

// fallbackCapitalCall fills any still-empty capital call field from the
// deterministic pattern lists.
func (e *Extractor) fallbackCapitalCall(text string, res *model.ExtractionResult) {
	setIfEmpty(res, "fund_id", capitalCallFundMatcher.Find(text))

	if !res.Fields["call_date"].IsSet() {
		if raw := capitalCallDateMatcher.Find(text); raw != nil {
			setIfEmpty(res, "call_date", normalize.Date(*raw))
		}
	}

	setIfEmpty(res, "lp_id", lpIDMatcher.Find(text))

	if !res.Fields["call_amount"].IsSet() || !res.Fields["currency"].IsSet() {
		cur, amt := fallbackMoney(text, capitalCallTotalRe, "call")
		if amt != nil {
			setIfEmpty(res, "call_amount", amt)
			setIfEmpty(res, "currency", cur)
		}
	}

	setIfEmpty(res, "call_number", callNumberMatcher.Find(text))
}
