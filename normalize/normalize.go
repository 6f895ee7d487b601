// Package normalize maps raw document text to a canonical form shared by
// anchor hashing and rule matching, so that formatting noise never changes
// an identifier or hides a pattern.
package normalize

import (
	"strings"
	"unicode"

	"github.com/minio/highwayhash"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// hashKey is fixed; anchor identifiers must be reproducible across runs
// and processes.
var hashKey = []byte("docanchor0123456789ABCDEF0123456")

// Text returns the canonical form of raw: NFKC normalization,
// language-aware lower-casing, soft hyphen and control character removal,
// whitespace collapsed to single spaces. It is total: unmappable runes
// pass through unchanged.
func Text(raw, lang string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFKC.String(raw)
	s = cases.Lower(language.Make(lang)).String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case isStripped(r):
			continue
		case unicode.IsSpace(r):
			space = true
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Stripped runes: soft hyphen, zero-width space/joiners, BOM, and control
// characters other than whitespace.
func isStripped(r rune) bool {
	switch r {
	case '\u00ad', '\u200b', '\u200c', '\u200d', '\ufeff':
		return true
	}
	return r < 0x20 && r != '\n' && r != '\r' && r != '\t'
}

// Hash returns the keyed 64-bit content hash of normalized text.
func Hash(normalized string) uint64 {
	return highwayhash.Sum64([]byte(normalized), hashKey)
}

// TextHash normalizes raw and returns both the canonical form and its hash.
func TextHash(raw, lang string) (string, uint64) {
	s := Text(raw, lang)
	return s, Hash(s)
}
