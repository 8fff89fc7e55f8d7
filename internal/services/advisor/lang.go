package advisor

import (
	"strings"
	"unicode"
)

// SplitLangTag strips a trailing [lang:ml] or [lang:en] marker from a
// model response and returns the cleaned text plus the language code.
// Without a tag the language is inferred from the text itself.
func SplitLangTag(s string) (string, string) {
	trimmed := strings.TrimSpace(s)
	lines := strings.Split(trimmed, "\n")
	last := lines[len(lines)-1]

	switch {
	case strings.Contains(last, "[lang:ml]"):
		return strings.TrimSpace(strings.ReplaceAll(trimmed, "[lang:ml]", "")), "ml"
	case strings.Contains(last, "[lang:en]"):
		return strings.TrimSpace(strings.ReplaceAll(trimmed, "[lang:en]", "")), "en"
	}
	return trimmed, DetectLang(trimmed)
}

// DetectLang reports "ml" when the text contains Malayalam script,
// "en" otherwise.
func DetectLang(s string) string {
	for _, r := range s {
		if unicode.Is(unicode.Malayalam, r) {
			return "ml"
		}
	}
	return "en"
}
