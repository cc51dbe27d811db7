package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var umlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// Fold normalizes a column label for comparison: trimmed, lowercased,
// umlauts transliterated ("Gräser" -> "graeser").
func Fold(s string) string {
	return umlauts.Replace(strings.ToLower(strings.TrimSpace(s)))
}
