package pal

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// MBTICodes is the canonical set of sixteen type codes, in selector order.
var MBTICodes = []string{
	"INTJ", "INTP", "ENTJ", "ENTP",
	"INFJ", "INFP", "ENFJ", "ENFP",
	"ISTJ", "ISFJ", "ESTJ", "ESFJ",
	"ISTP", "ISFP", "ESTP", "ESFP",
}

// IsCanonicalMBTI reports whether s is one of the sixteen codes.
func IsCanonicalMBTI(s string) bool {
	for _, c := range MBTICodes {
		if c == s {
			return true
		}
	}
	return false
}

// ClosestMBTI suggests the canonical code nearest to input, tolerating
// case, surrounding junk like "ENFP-T", and single-letter typos. Returns
// "" when nothing is close enough to be a plausible match.
func ClosestMBTI(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	if IsCanonicalMBTI(s) {
		return s
	}
	best, bestDist := "", len(s)+4
	for _, c := range MBTICodes {
		d := levenshtein.ComputeDistance(s, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist > 2 {
		return ""
	}
	return best
}
