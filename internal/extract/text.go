package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	junkChars  = regexp.MustCompile("[^\\p{L}\\p{N}\\s\\-.,!?;:()\\[\\]{}@#$%&*+=<>/\\\\|`~\"'_£€¥]+")
)

// CleanText collapses whitespace and drops symbols that never carry content
// (emoji, decorative glyphs).
func CleanText(s string) string {
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	s = junkChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// runeLen counts characters rather than bytes.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// containsAny reports whether lower-cased s contains one of terms.
func containsAny(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		sb.WriteRune(r)
	}
	return sb.String()
}
