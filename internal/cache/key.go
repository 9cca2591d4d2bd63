package cache

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey lowercases s, folds accents and turns spaces into
// underscores, so "Amélie" and "amelie" share a cache key. Letters and
// digits of any script are kept. Other runes become underscores and the
// key gets a hash suffix of the folded title, so "a!b" and "a?b" differ.
func NormalizeKey(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(accentFolder, normalized); err == nil {
		normalized = folded
	}

	replaced := false
	key := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			return r
		case r == ' ':
			return '_'
		}
		replaced = true
		return '_'
	}, normalized)

	if !replaced {
		return key
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalized))
	return fmt.Sprintf("%s_%08x", key, h.Sum32())
}
