package matching

import "strings"

// Ratio returns the normalized indel similarity of a and b in [0,1]:
// 2·LCS(a,b) / (len(a)+len(b)), measured in runes. Two empty strings are identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return float64(2*lcsLength(ra, rb)) / float64(total)
}

// lcsLength is the classic longest-common-subsequence length with a single rolling row.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	row := make([]int, len(b)+1)
	for _, x := range a {
		prev := 0
		for j, y := range b {
			cur := row[j+1]
			if x == y {
				row[j+1] = prev + 1
			} else if row[j] > row[j+1] {
				row[j+1] = row[j]
			}
			prev = cur
		}
	}
	return row[len(b)]
}

// normalize case-folds and trims a header or variant before comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
