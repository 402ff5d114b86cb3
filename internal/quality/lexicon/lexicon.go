package lexicon

import (
	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/quality/normalize"
)

// Thresholds are the fixed gate/report cut-offs. The in-pack and catalog
// near-duplicate thresholds are deliberately separate constants: the former
// feeds warnings, the latter reporting only.
type Thresholds struct {
	MinMultiSlotRate   float64 `yaml:"min_multi_slot_rate"`
	MinQualifyingRate  float64 `yaml:"min_qualifying_rate"`
	MinAvgHits         float64 `yaml:"min_avg_hits"`
	MinConcretePrompts int     `yaml:"min_concrete_prompts"`
	NearDupPack        float64 `yaml:"near_dup_pack"`
	NearDupCatalog     float64 `yaml:"near_dup_catalog"`
	RiskSkeletonShare  float64 `yaml:"risk_skeleton_share"`
	RiskLowDensityAvg  float64 `yaml:"risk_low_density_avg"`
}

func defaultThresholds() Thresholds {
	return Thresholds{
		MinMultiSlotRate:   0.30,
		MinQualifyingRate:  0.60,
		MinAvgHits:         1.5,
		MinConcretePrompts: 2,
		NearDupPack:        0.85,
		NearDupCatalog:     0.92,
		RiskSkeletonShare:  0.70,
		RiskLowDensityAvg:  2.0,
	}
}

// PragmaticsRule requires (or forbids) phrases on prompts whose
// scenario/intent/register/structure tuple matches. Empty fields are
// wildcards. Phrases are stored pre-normalized.
type PragmaticsRule struct {
	Name       string   `yaml:"name"`
	Scenario   string   `yaml:"scenario"`
	Intent     string   `yaml:"intent"`
	Register   string   `yaml:"register"`
	Structure  string   `yaml:"structure"`
	RequireAny []string `yaml:"require_any"`
	Forbidden  []string `yaml:"forbidden"`
}

func (r PragmaticsRule) Matches(scenario, intent, register, structure string) bool {
	if r.Scenario != "" && r.Scenario != scenario {
		return false
	}
	if r.Intent != "" && r.Intent != intent {
		return false
	}
	if r.Register != "" && r.Register != register {
		return false
	}
	if r.Structure != "" && r.Structure != structure {
		return false
	}
	return true
}

// Store holds every human-curated dictionary the engine consumes. Loaded
// once per run and treated as immutable; safe for concurrent reads.
type Store struct {
	// Scenarios maps scenario id to pre-normalized on-topic tokens and
	// phrases. A missing scenario id is not an error: the density check is
	// skipped with a warning so dictionaries can grow incrementally.
	Scenarios map[string][]string

	Generic []string
	Calques []string

	Pragmatics []PragmaticsRule

	// FormalAddress tokens are matched exactly and case-sensitively
	// against raw prompt text ("Sie" must not match "sie").
	FormalAddress []string

	Weekdays        []string
	CurrencySymbols []string

	HighStakesScenarios    []string
	GlossRequiredFromLevel string

	FocusByStructure  map[string]string
	OutcomeByScenario map[string]string

	Thresholds Thresholds
}

// ScenarioTerms returns the dictionary for a scenario and whether one is
// configured.
func (s *Store) ScenarioTerms(scenario string) ([]string, bool) {
	terms, ok := s.Scenarios[scenario]
	return terms, ok && len(terms) > 0
}

// MatchPragmatics returns every rule matching the given tuple, in the order
// they were declared.
func (s *Store) MatchPragmatics(scenario, intent, register, structure string) []PragmaticsRule {
	var out []PragmaticsRule
	for _, r := range s.Pragmatics {
		if r.Matches(scenario, intent, register, structure) {
			out = append(out, r)
		}
	}
	return out
}

// HighStakes reports whether a pack needs meaning glosses on every prompt,
// either because the scenario is listed as high-stakes or because the CEFR
// level meets the configured minimum.
func (s *Store) HighStakes(scenario, level string) bool {
	for _, hs := range s.HighStakesScenarios {
		if hs == scenario {
			return true
		}
	}
	min := s.GlossRequiredFromLevel
	if min == "" {
		return false
	}
	return levelAtLeast(level, min)
}

func levelAtLeast(level, min string) bool {
	lr := domain.LevelRank(level)
	mr := domain.LevelRank(min)
	return lr > 0 && mr > 0 && lr >= mr
}

func normalizePhrases(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := map[string]bool{}
	for _, p := range raw {
		c := normalize.Canonical(p)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
