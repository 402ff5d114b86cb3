package metrics

import (
	"regexp"
	"strings"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/quality/lexicon"
)

var (
	digitRE = regexp.MustCompile(`[0-9]`)
	timeRE  = regexp.MustCompile(`\b([01]?[0-9]|2[0-3]):[0-5][0-9]\b`)
)

// concreteCount counts prompts carrying at least one concreteness marker: a
// digit, a currency symbol, an HH:MM time, or a weekday name.
func concreteCount(pack *domain.Pack, lex *lexicon.Store, tokenLists [][]string) int {
	count := 0
	for i, p := range pack.Prompts {
		if isConcrete(p.Text, tokenLists[i], lex) {
			count++
		}
	}
	return count
}

func isConcrete(raw string, tokens []string, lex *lexicon.Store) bool {
	if digitRE.MatchString(raw) || timeRE.MatchString(raw) {
		return true
	}
	for _, sym := range lex.CurrencySymbols {
		if sym != "" && strings.Contains(raw, sym) {
			return true
		}
	}
	for _, tok := range tokens {
		for _, day := range lex.Weekdays {
			if tok == day {
				return true
			}
		}
	}
	return false
}
