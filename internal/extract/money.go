package extract

import (
	"regexp"
	"strings"

	"github.com/fundsight/docintel/internal/normalize"
)

var (
	signAmountRe = regexp.MustCompile(`([$€£])\s*([\d,]+(?:\.\d{1,2})?)`)
	codeAmountRe = regexp.MustCompile(`(?i)\b(USD|EUR|GBP)\s*([\d,]+(?:\.\d{1,2})?)`)
)

// fallbackMoney recovers a (currency, amount) pair deterministically: a
// labeled total line first, then the sign-prefixed amount closest to the
// domain keyword, then a bare currency-code amount.
func fallbackMoney(text string, labeled *regexp.Regexp, keyword string) (*string, *string) {
	if m := labeled.FindStringSubmatch(text); m != nil {
		cur, amt := normalize.CurrencyAndAmount(lastGroup(m))
		if amt != nil {
			return cur, amt
		}
	}
	return nearestSignAmount(text, keyword)
}

// nearestSignAmount picks the currency-sign amount whose position is closest
// to the first occurrence of keyword. Documents quote several amounts
// (commitment, prior calls, totals); proximity to the operative word is the
// tie-break the regex stage has.
func nearestSignAmount(text, keyword string) (*string, *string) {
	locs := signAmountRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		if m := codeAmountRe.FindStringSubmatch(text); m != nil {
			cur := strings.ToUpper(m[1])
			return &cur, normalize.Amount(m[2])
		}
		return nil, nil
	}

	kwIdx := strings.Index(strings.ToLower(text), strings.ToLower(keyword))
	bestIdx := -1
	bestDist := -1
	for i, loc := range locs {
		dist := loc[0]
		if kwIdx >= 0 {
			dist = loc[0] - kwIdx
			if dist < 0 {
				dist = -dist
			}
		}
		if bestIdx < 0 || dist < bestDist {
			bestIdx = i
			bestDist = dist
		}
	}

	loc := locs[bestIdx]
	cur := text[loc[2]:loc[3]]
	amt := normalize.Amount(text[loc[4]:loc[5]])
	if amt == nil {
		return nil, nil
	}
	return &cur, amt
}
