package normalize

import (
	"regexp"
	"strings"
)

var (
	oddSpaceRe   = regexp.MustCompile("[ \t\r]+")
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)
)

// ForModel cleans raw document text for inference: collapses whitespace and
// control characters, strips non-ASCII glyphs, and truncates to maxChars.
// maxChars <= 0 disables truncation.
func ForModel(text string, maxChars int) string {
	if text == "" {
		return ""
	}
	txt := oddSpaceRe.ReplaceAllString(text, " ")
	txt = nonASCIIRe.ReplaceAllString(txt, " ")
	txt = whitespaceRe.ReplaceAllString(txt, " ")
	txt = strings.TrimSpace(txt)
	if maxChars > 0 && len(txt) > maxChars {
		txt = txt[:maxChars]
	}
	return txt
}
