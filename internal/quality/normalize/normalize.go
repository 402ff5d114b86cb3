package normalize

import (
	"strings"
	"unicode"
)

// Tokens lowercases text and splits it into word tokens. Any rune that is
// not a Unicode letter or digit acts as a separator, so umlauts, ß and other
// non-Latin letters survive while punctuation and repeated whitespace do
// not. Pure and deterministic.
func Tokens(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// Canonical is the normalized form of a sentence: lowercased tokens joined
// by single spaces. Canonical(Canonical(x)) == Canonical(x).
func Canonical(text string) string {
	return strings.Join(Tokens(text), " ")
}

// Grams returns the set of 1..maxN token n-grams of tokens, joined by
// single spaces. Used for phrase matching against the scenario lexicons.
func Grams(tokens []string, maxN int) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out[strings.Join(tokens[i:i+n], " ")] = struct{}{}
		}
	}
	return out
}

// ContainsPhrase reports whether the normalized phrase occurs in the
// canonical text on word boundaries.
func ContainsPhrase(canonical, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+canonical+" ", " "+phrase+" ")
}

// CountPhrase counts word-boundary occurrences of the normalized phrase in
// the canonical text.
func CountPhrase(canonical, phrase string) int {
	if phrase == "" {
		return 0
	}
	return strings.Count(" "+canonical+" ", " "+phrase+" ")
}

// WordsCaseSensitive splits raw text on non letter/digit runes without
// lowercasing. Used for exact formal-address matching where "Sie" and "sie"
// must stay distinct.
func WordsCaseSensitive(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
