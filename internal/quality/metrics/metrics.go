package metrics

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/quality/lexicon"
	"github.com/yungbote/packgate/internal/quality/normalize"
)

// Compute derives the full metric bundle for one pack. Pure function of the
// pack text and the lexicon store: byte-for-byte reproducible across runs.
func Compute(pack *domain.Pack, lex *lexicon.Store) domain.MetricBundle {
	m := domain.MetricBundle{PromptCount: len(pack.Prompts)}
	if len(pack.Prompts) == 0 {
		return m
	}

	canonicals := make([]string, len(pack.Prompts))
	tokenLists := make([][]string, len(pack.Prompts))
	for i, p := range pack.Prompts {
		tokenLists[i] = normalize.Tokens(p.Text)
		canonicals[i] = strings.Join(tokenLists[i], " ")
	}

	computeScenarioDensity(pack, lex, canonicals, tokenLists, &m)
	computeSlotSignal(pack, tokenLists, &m)
	m.RegisterConsistent = registerConsistent(pack, lex)
	m.ConcretenessCount = concreteCount(pack, lex, tokenLists)
	m.BannedHits = bannedHits(pack, lex, canonicals)
	m.PragmaticsIssues = pragmaticsIssues(pack, lex, canonicals)
	m.UniqueTokenRatio = uniqueTokenRatio(tokenLists)
	m.CognitiveLoad = cognitiveLoad(pack)
	m.Focus = focusFor(pack, lex)
	m.FluencyOutcome = lex.OutcomeByScenario[pack.Scenario]
	m.SkeletonTopShare = skeletonTopShare(tokenLists)
	return m
}

func computeScenarioDensity(pack *domain.Pack, lex *lexicon.Store, canonicals []string, tokenLists [][]string, m *domain.MetricBundle) {
	terms, known := lex.ScenarioTerms(pack.Scenario)
	m.ScenarioKnown = known
	if !known {
		return
	}
	totalHits := 0
	qualifying := 0
	for i := range pack.Prompts {
		hits := scenarioHits(canonicals[i], tokenLists[i], terms)
		totalHits += hits
		if hits >= 2 {
			qualifying++
		}
	}
	n := float64(len(pack.Prompts))
	m.AvgScenarioHits = float64(totalHits) / n
	m.QualifyingRate = float64(qualifying) / n
}

// scenarioHits counts distinct dictionary entries present in one prompt.
// Short phrases go through the 1..3-gram set; longer phrases fall back to
// word-boundary containment.
func scenarioHits(canonical string, tokens []string, terms []string) int {
	grams := normalize.Grams(tokens, 3)
	hits := 0
	for _, term := range terms {
		if strings.Count(term, " ") < 3 {
			if _, ok := grams[term]; ok {
				hits++
			}
			continue
		}
		if normalize.ContainsPhrase(canonical, term) {
			hits++
		}
	}
	return hits
}

func registerConsistent(pack *domain.Pack, lex *lexicon.Store) bool {
	if pack.Register != "formal" {
		return true
	}
	for _, p := range pack.Prompts {
		for _, word := range normalize.WordsCaseSensitive(p.Text) {
			for _, marker := range lex.FormalAddress {
				if word == marker {
					return true
				}
			}
		}
	}
	return false
}

func bannedHits(pack *domain.Pack, lex *lexicon.Store, canonicals []string) []domain.BannedHit {
	var out []domain.BannedHit
	for i, p := range pack.Prompts {
		for _, phrase := range lex.Generic {
			if c := normalize.CountPhrase(canonicals[i], phrase); c > 0 {
				out = append(out, domain.BannedHit{Phrase: phrase, List: "generic", PromptID: p.ID, Count: c})
			}
		}
		for _, phrase := range lex.Calques {
			if c := normalize.CountPhrase(canonicals[i], phrase); c > 0 {
				out = append(out, domain.BannedHit{Phrase: phrase, List: "calque", PromptID: p.ID, Count: c})
			}
		}
	}
	return out
}

func pragmaticsIssues(pack *domain.Pack, lex *lexicon.Store, canonicals []string) []domain.PragmaticsIssue {
	var out []domain.PragmaticsIssue
	for i, p := range pack.Prompts {
		rules := lex.MatchPragmatics(pack.Scenario, p.Intent, pack.EffectiveRegister(p), pack.PrimaryStructure)
		for _, rule := range rules {
			if len(rule.RequireAny) > 0 && !anyPhrase(canonicals[i], rule.RequireAny) {
				out = append(out, domain.PragmaticsIssue{
					Rule:     rule.Name,
					PromptID: p.ID,
					Reason:   "none of the required phrases present: " + strings.Join(rule.RequireAny, ", "),
				})
			}
			for _, phrase := range rule.Forbidden {
				if normalize.ContainsPhrase(canonicals[i], phrase) {
					out = append(out, domain.PragmaticsIssue{
						Rule:     rule.Name,
						PromptID: p.ID,
						Reason:   "forbidden phrase present: " + phrase,
					})
				}
			}
		}
	}
	return out
}

func anyPhrase(canonical string, phrases []string) bool {
	for _, phrase := range phrases {
		if normalize.ContainsPhrase(canonical, phrase) {
			return true
		}
	}
	return false
}

func uniqueTokenRatio(tokenLists [][]string) float64 {
	total := 0
	seen := map[string]bool{}
	for _, tokens := range tokenLists {
		for _, tok := range tokens {
			total++
			seen[tok] = true
		}
	}
	if total == 0 {
		return 0
	}
	return float64(len(seen)) / float64(total)
}

// cognitiveLoad scores three tiers (slot count, slot-switch density, average
// prompt length) and maps the point total to low/medium/high.
func cognitiveLoad(pack *domain.Pack) string {
	points := 0

	switch slots := len(pack.VariationSlots); {
	case slots <= 2:
	case slots <= 4:
		points++
	default:
		points += 2
	}

	switch density := switchDensity(pack); {
	case density < 1:
	case density < 2:
		points++
	default:
		points += 2
	}

	switch avg := avgPromptLength(pack); {
	case avg < 40:
	case avg < 80:
		points++
	default:
		points += 2
	}

	switch {
	case points <= 2:
		return "low"
	case points <= 4:
		return "medium"
	default:
		return "high"
	}
}

func switchDensity(pack *domain.Pack) float64 {
	if len(pack.Prompts) == 0 {
		return 0
	}
	total := 0
	for _, p := range pack.Prompts {
		total += len(p.SlotsChanged)
	}
	return float64(total) / float64(len(pack.Prompts))
}

func avgPromptLength(pack *domain.Pack) float64 {
	if len(pack.Prompts) == 0 {
		return 0
	}
	total := 0
	for _, p := range pack.Prompts {
		total += utf8.RuneCountInString(p.Text)
	}
	return float64(total) / float64(len(pack.Prompts))
}

func focusFor(pack *domain.Pack, lex *lexicon.Store) string {
	if focus, ok := lex.FocusByStructure[pack.PrimaryStructure]; ok && focus != "" {
		return focus
	}
	return "general"
}

// skeletonTopShare measures sentence-pattern monotony: the share of prompts
// whose opener pair and token count coincide.
func skeletonTopShare(tokenLists [][]string) float64 {
	if len(tokenLists) == 0 {
		return 0
	}
	counts := map[string]int{}
	for _, tokens := range tokenLists {
		counts[skeletonOf(tokens)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	max := 0
	for _, k := range keys {
		if counts[k] > max {
			max = counts[k]
		}
	}
	return float64(max) / float64(len(tokenLists))
}

func skeletonOf(tokens []string) string {
	first, second := "", ""
	if len(tokens) > 0 {
		first = tokens[0]
	}
	if len(tokens) > 1 {
		second = tokens[1]
	}
	return first + "|" + second + "|" + strconv.Itoa(len(tokens))
}
