// Package words prepares raw word lists for the layout engines.
package words

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ListSeparator joins words in a single-string word list ("CAT-CAR-ART").
const ListSeparator = "-"

// Normalizer upper-cases words with the rules of a locale.
// The zero value uses language-neutral rules.
type Normalizer struct {
	tag language.Tag
}

// NewNormalizer returns a normalizer for tag.
func NewNormalizer(tag language.Tag) *Normalizer {
	return &Normalizer{tag: tag}
}

// ParseLocale returns a normalizer for a BCP 47 locale string. An empty
// string selects language-neutral rules.
func ParseLocale(locale string) (*Normalizer, error) {
	if locale == "" {
		return NewNormalizer(language.Und), nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(tag), nil
}

// Tag returns the locale the normalizer applies.
func (n *Normalizer) Tag() language.Tag {
	if n == nil {
		return language.Und
	}
	return n.tag
}

// Upper trims s and converts it to upper case.
func (n *Normalizer) Upper(s string) string {
	// Casers keep per-call state, so build one each time.
	return cases.Upper(n.Tag()).String(strings.TrimSpace(s))
}

// Equal reports whether a and b name the same word.
func (n *Normalizer) Equal(a, b string) bool {
	return n.Upper(a) == n.Upper(b)
}

// Normalize trims and upper-cases every entry, drops empty ones and
// removes duplicates, keeping the first occurrence order.
func (n *Normalizer) Normalize(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = n.Upper(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Split breaks a dash-separated word list into its entries, dropping
// empty segments.
func Split(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Len returns the number of letters in w.
func Len(w string) int {
	return utf8.RuneCountInString(w)
}

// ByLengthDesc returns a copy of list ordered longest first. Words of
// equal length keep their relative order.
func ByLengthDesc(list []string) []string {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b string) int {
		return Len(b) - Len(a)
	})
	return out
}

// Longest returns the letter count of the longest word in list.
func Longest(list []string) int {
	n := 0
	for _, w := range list {
		n = max(n, Len(w))
	}
	return n
}

// Reverse returns w with its letters in reverse order.
func Reverse(w string) string {
	r := []rune(w)
	slices.Reverse(r)
	return string(r)
}
