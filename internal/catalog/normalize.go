package catalog

import "strings"

// NormalizeEncoding maps a bit-level encoding onto {0,1,?}: '0' and '1' pass
// through and every other character (space, '-', field letters) becomes '?'.
// The output has exactly one character per input character.
func NormalizeEncoding(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case '0', '1':
			b.WriteRune(r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// isCanonicalEncoding reports whether s is non-empty and uses only 0, 1 and ?.
func isCanonicalEncoding(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0', '1', '?':
		default:
			return false
		}
	}
	return true
}
