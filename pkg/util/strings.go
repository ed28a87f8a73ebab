package util

import "strings"

// NormalizeSymbol trims whitespace and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SplitPair parses a "Y_X" identifier. The first underscore separates the legs.
func SplitPair(s string) (y, x string, ok bool) {
	y, x, ok = strings.Cut(strings.TrimSpace(s), "_")
	if !ok || y == "" || x == "" {
		return "", "", false
	}
	return NormalizeSymbol(y), NormalizeSymbol(x), true
}

// Combinations returns every unordered pair of items in list order: (0,1), (0,2), ..., (n-2,n-1).
// At most limit pairs are returned; limit <= 0 means no cap.
func Combinations(items []string, limit int) [][2]string {
	var out [][2]string
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if limit > 0 && len(out) >= limit {
				return out
			}
			out = append(out, [2]string{items[i], items[j]})
		}
	}
	return out
}
