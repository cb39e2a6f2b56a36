package extract

import (
	"regexp"
	"strings"
)

// Matcher tries an ordered list of regex patterns against a text and returns
// the first accepted capture. List order is priority: labeled patterns come
// first, heuristic full-text patterns last. A capture equal to a document
// header phrase (from the exclusion list) is rejected and the next pattern is
// tried.
type Matcher struct {
	patterns []*regexp.Regexp
	exclude  []string
}

// NewMatcher compiles the patterns in declared order. The value is taken from
// the last non-empty capture group of each pattern.
func NewMatcher(patterns []string, exclude ...string) Matcher {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return Matcher{patterns: compiled, exclude: exclude}
}

// Find returns the first accepted capture, or nil when no pattern matches.
func (m Matcher) Find(text string) *string {
	for _, re := range m.patterns {
		groups := re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		val := strings.TrimSpace(lastGroup(groups))
		if val == "" || m.excluded(val) {
			continue
		}
		return &val
	}
	return nil
}

func (m Matcher) excluded(val string) bool {
	lowered := strings.ToLower(val)
	for _, word := range m.exclude {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

func lastGroup(groups []string) string {
	for i := len(groups) - 1; i >= 1; i-- {
		if groups[i] != "" {
			return groups[i]
		}
	}
	return ""
}
