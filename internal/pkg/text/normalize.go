package text

import "strings"

// NormalizeKey lowercases s and strips every non-alphanumeric byte. Map
// aliases differ only in casing, spacing and punctuation, so this is the
// lookup key shared by all canonicalization tables.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
