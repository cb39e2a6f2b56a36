package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/normalize"
)

var valuationDateMatcher = NewMatcher([]string{
	`(?i)valuation\s*date[:\s\-]*([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4})`,
	`(?i)valuation\s*date[:\s\-]*(\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4})`,
	`(?i)valuation\s*date[:\s\-]*([^\n\r]+?\d{4})`,
	`(?i)as\s+(?:of|at)[:\s\-]*([^\n\r]+?\d{4})`,
	`(?i)effective\s+date[:\s\-]*([^\n\r]+?\d{4})`,
	`(?i)date\s+of\s+valuation[:\s\-]*([^\n\r]+?\d{4})`,
	`(?i)valuation\s+as\s+(?:of|at)[:\s\-]*([^\n\r]+?\d{4})`,
	`(?i)dated[:\s\-]*([^\n\r]+?\d{4})`,
	`\b(\d{1,2}[\-/]\d{1,2}[\-/]\d{2,4})\b`,
})

var discountRateMatcher = NewMatcher([]string{
	`(?i)(discount\s*rate|wacc|irr|required rate of return|capitalization rate|cap rate)[:\s\-]*(\d{1,2}(?:\.\d+)?)\s*%`,
	`(?i)(discount\s*rate|wacc|irr)\s*\([^)]*\)[:\s\-]*(\d{1,2}(?:\.\d+)?)\s*%`,
})

var multipleMatcher = NewMatcher([]string{
	`(?i)(ev/ebitda|ebitda multiple|revenue multiple|valuation multiple|multiple)[:\s\-]*(\d+(?:\.\d+)?)\s*x`,
	`(?i)multiple\s+of\s+(\d+(?:\.\d+)?)\b`,
})

// Canonical valuation approach detectors, one per recognized family.
var methodFamilies = []struct {
	re    *regexp.Regexp
	canon string
}{
	{regexp.MustCompile(`(?i)\b(discounted\s+cash\s+flow|dcf|income\s+approach)\b`), "Discounted Cash Flow"},
	{regexp.MustCompile(`(?i)\b(market\s+approach|comparable|guideline\s+public\s+company|precedent\s+transactions|multiples?)\b`), "Market Approach"},
	{regexp.MustCompile(`(?i)\b(cost\s+approach|asset[-\s]*based|net\s+asset\s+value|nav)\b`), "Cost Approach"},
}

var (
	methodologyHeaderRe = regexp.MustCompile(`(?im)^.*\b(methodology|valuation\s+approach|basis\s+of\s+valuation)\b.*$`)
	valuationWordRe     = regexp.MustCompile(`(?i)\bvaluation\b`)
)

// Labeled value clauses for the final valuation, most specific first.
var valuationClauseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)conclusion of value[:\s\-]*([^\n\r]+)`),
	regexp.MustCompile(`(?i)fair value[:\s\-]*([^\n\r]+)`),
	regexp.MustCompile(`(?i)final valuation[:\s\-]*([^\n\r]+)`),
	regexp.MustCompile(`(?i)(?:equity value|enterprise value|market value|valuation)[:\s\-]*([^\n\r]+)`),
}

var anyMoneyRe = regexp.MustCompile(
	`(?i)(?:\b(?:` + `USD|EUR|GBP|INR|JPY|YEN|CAD|AUD|SGD|HKD|CHF|NZD|CNY|RMB` + `)\s*|[$£€¥₹]\s*)[\d,.]+(?:\s*(?:million|billion|thousand|m|mm|bn|k))?`)

// canonicalMethods maps free-text methodology language onto the canonical
// approach names, ordered by first occurrence and joined with "; " when a
// report blends several.
func canonicalMethods(text string) *string {
	type hit struct {
		pos   int
		canon string
	}
	var hits []hit
	for _, fam := range methodFamilies {
		if loc := fam.re.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{pos: loc[0], canon: fam.canon})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.canon)
	}
	out := strings.Join(names, "; ")
	return &out
}

func (e *Extractor) fallbackValuation(text string, res *model.ExtractionResult) {
	if !res.Fields["valuation_date"].IsSet() {
		if raw := valuationDateMatcher.Find(text); raw != nil {
			setIfEmpty(res, "valuation_date", normalize.Date(*raw))
		}
	}

	if !res.Fields["methodology"].IsSet() {
		setIfEmpty(res, "methodology", fallbackMethodology(text))
	}

	setIfEmpty(res, "discount_rate", discountRateMatcher.Find(text))
	setIfEmpty(res, "multiple", multipleMatcher.Find(text))

	if !res.Fields["final_valuation"].IsSet() {
		cur, amt := fallbackFinalValuation(text)
		if amt != nil {
			setIfEmpty(res, "final_valuation", amt)
			setIfEmpty(res, "currency", cur)
		}
	}
}

// fallbackMethodology prefers the text near a methodology header over a
// whole-document scan, so boilerplate mentions elsewhere do not win.
func fallbackMethodology(text string) *string {
	if loc := methodologyHeaderRe.FindStringIndex(text); loc != nil {
		end := loc[0] + 800
		if end > len(text) {
			end = len(text)
		}
		if canon := canonicalMethods(text[loc[0]:end]); canon != nil {
			return canon
		}
	}
	return canonicalMethods(text)
}

// fallbackFinalValuation tries labeled value clauses, then the text following
// a bare "Valuation" header, then any money expression within 200 characters
// of the word valuation.
func fallbackFinalValuation(text string) (*string, *string) {
	for _, re := range valuationClauseRes {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		segment := text[m[2]:m[3]]
		cur, amt := normalize.CurrencyAndAmount(segment)
		if amt == nil {
			start := m[0] - 50
			if start < 0 {
				start = 0
			}
			end := m[1] + 50
			if end > len(text) {
				end = len(text)
			}
			cur, amt = normalize.CurrencyAndAmount(text[start:end])
		}
		if amt != nil {
			return cur, amt
		}
	}

	if loc := valuationWordRe.FindStringIndex(text); loc != nil {
		end := loc[1] + 400
		if end > len(text) {
			end = len(text)
		}
		if cur, amt := normalize.CurrencyAndAmount(text[loc[0]:end]); amt != nil {
			return cur, amt
		}
	}

	for _, loc := range anyMoneyRe.FindAllStringIndex(text, -1) {
		start := loc[0] - 200
		if start < 0 {
			start = 0
		}
		end := loc[1] + 200
		if end > len(text) {
			end = len(text)
		}
		if valuationWordRe.MatchString(text[start:end]) {
			if cur, amt := normalize.CurrencyAndAmount(text[loc[0]:loc[1]]); amt != nil {
				return cur, amt
			}
		}
	}

	return nil, nil
}
