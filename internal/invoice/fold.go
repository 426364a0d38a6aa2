package invoice

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold returns the comparison key of s: diacritics removed, lower case and
// single spaces. OCR engines return both composed and decomposed accents, so
// every keyword lookup goes through fold on both sides.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

func foldAll(words []string) []string {
	folded := make([]string, 0, len(words))
	for _, w := range words {
		if f := fold(w); f != "" {
			folded = append(folded, f)
		}
	}
	return folded
}

// composeLines puts OCR text lines in canonical composed form, so patterns
// written with precomposed accents match decomposed input too.
func composeLines(lines []string) []string {
	composed := make([]string, len(lines))
	for i, l := range lines {
		composed[i] = norm.NFC.String(l)
	}
	return composed
}
