package conn

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SummaryLimit is the number of characters of statement text kept in logs.
const SummaryLimit = 40

var spaceRe = regexp.MustCompile(`\s+`)

// Summarize collapses whitespace in a statement and truncates it to
// SummaryLimit characters for logging. The executed text is never altered.
func Summarize(text string) string {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(s) <= SummaryLimit {
		return s
	}
	r := []rune(s)
	return string(r[:SummaryLimit]) + "..."
}
