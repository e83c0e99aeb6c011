package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanText normalises parser text: compatibility characters such as
// ligatures are decomposed (NFKC), control characters are removed and runs
// of whitespace collapse to a single space.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)

	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = sb.Len() > 0
		case unicode.IsControl(r), r == unicode.ReplacementChar, r == '\u00ad':
			// dropped
		default:
			if space {
				sb.WriteByte(' ')
				space = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
