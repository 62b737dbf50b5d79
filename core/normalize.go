package core

import "strings"

// NormalizeKey canonicalizes a recognized string for matching and cache
// indexing: uppercase, alphanumeric characters only. Empty in, empty out.
func NormalizeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SpacedVariants returns the plate spellings obtained by inserting a
// single space at the first letter-to-digit or digit-to-letter boundary
// of a normalized key. Regional plate registries often store "PBL 666"
// where the recognizer reads "PBL666".
func SpacedVariants(key string) []string {
	if len(key) < MinKeyLength {
		return nil
	}
	for i := 1; i < len(key); i++ {
		prevDigit := isDigit(key[i-1])
		curDigit := isDigit(key[i])
		if prevDigit != curDigit {
			return []string{key[:i] + " " + key[i:]}
		}
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
