package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// FoldKey reduces s to a comparison key that ignores case, diacritics,
// punctuation and whitespace, so "Movies", "movies" and "M.O.V.I.E.S" share a key.
func FoldKey(s string) string {
	decomposed := norm.NFKD.String(folder.String(s))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EqualFold reports whether a and b are equal under FoldKey.
func EqualFold(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

// Token converts value to a lowercase filesystem-safe token. Letters and digits
// are kept, runs of anything else collapse to a single hyphen. Returns "" for
// input without letters or digits.
func Token(value string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range folder.String(strings.TrimSpace(value)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
