package members

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips diacritics after canonical decomposition, so
// "Renée" and "renee" share a search key.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SearchKey computes the canonical lookup form of a member name:
// diacritic-stripped, lowercased, with interior whitespace collapsed.
func SearchKey(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
