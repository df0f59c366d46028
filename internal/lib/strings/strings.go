package strings

import (
	"github.com/agext/levenshtein"
)

func AnyOf(testString string, variants ...string) bool {
	for _, s := range variants {
		if testString == s {
			return true
		}
	}
	return false
}

func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Suggest returns the variant closest to testString, or "" when nothing is close enough
// to be a likely typo.
func Suggest(testString string, variants ...string) string {
	best, bestDistance := "", 3
	for _, s := range variants {
		if d := levenshtein.Distance(testString, s, nil); d < bestDistance {
			best, bestDistance = s, d
		}
	}
	return best
}
