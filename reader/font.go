package reader

import "strings"

// weightWords mark a font name as bold
var weightWords = []string{"bold", "black", "heavy", "semibold", "demibold"}

// BaseFontName strips the six-letter subset prefix ("ABCDEF+") that PDF
// producers add to embedded font subsets
func BaseFontName(name string) string {
	if len(name) < 8 || name[6] != '+' {
		return name
	}
	for i := 0; i < 6; i++ {
		if name[i] < 'A' || name[i] > 'Z' {
			return name
		}
	}
	return name[7:]
}

// IsBoldFont reports whether the font name indicates a bold weight
func IsBoldFont(name string) bool {
	lower := strings.ToLower(BaseFontName(name))
	for _, w := range weightWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
