// Package textkey builds comparison keys for loosely typed user labels.
// Keys are diacritic-, case- and whitespace-insensitive so that "Узел 1",
// " узел  1" and "УЗЕЛ 1" collapse to the same map key.
package textkey

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripper decomposes to NFKD, drops combining marks and recomposes.
// transform.Chain is not safe for concurrent use, so a fresh chain is built per call.
func stripper() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Key returns the normalized form of s. The empty string maps to itself.
func Key(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripper(), s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Blank reports whether s carries no visible characters.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Equal compares two labels by key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Contains reports whether the key of s contains the key of sub.
func Contains(s, sub string) bool {
	k := Key(sub)
	if k == "" {
		return false
	}
	return strings.Contains(Key(s), k)
}

// Pair joins two keys into a composite map key.
func Pair(a, b string) string {
	return Key(a) + "\x1f" + Key(b)
}
