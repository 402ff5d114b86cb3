package gate

import (
	"fmt"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/quality/dedupe"
	"github.com/yungbote/packgate/internal/quality/lexicon"
)

// Rule identifiers, in evaluation order. The verdict is a complete audit:
// every rule runs and every violation is recorded, never fail-fast.
const (
	RuleBannedPhrase      = "banned_phrase"
	RuleScenarioDensity   = "scenario_density"
	RuleScenarioUnknown   = "scenario_dictionary_missing"
	RuleSlotVariation     = "slot_variation"
	RuleSlotHeuristic     = "slot_signal_heuristic"
	RuleRegister          = "register_consistency"
	RuleConcreteness      = "concreteness_markers"
	RuleMeaningGloss      = "meaning_gloss_required"
	RulePragmatics        = "pragmatics"
	RuleExactDuplicate    = "exact_duplicate_in_pack"
	RuleNearDuplicate     = "near_duplicate_in_pack"
	RuleAlternateEcho     = "alternate_similarity"
	RuleLoadSlotsMismatch = "cognitive_load_slots_mismatch"
	RuleMissingRegister   = "missing_register"
	RuleMissingGloss      = "missing_optional_gloss"
)

// Evaluate applies the fixed rule list to one pack and its computed metrics.
// dup must be the within-pack duplicate result for the same pack.
func Evaluate(pack *domain.Pack, m domain.MetricBundle, dup dedupe.Result, lex *lexicon.Store) domain.Verdict {
	v := domain.Verdict{PackID: pack.ID}
	add := func(ruleID string, sev domain.Severity, promptID, format string, args ...interface{}) {
		v.Violations = append(v.Violations, domain.Violation{
			RuleID:   ruleID,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
			PromptID: promptID,
		})
	}

	for _, hit := range m.BannedHits {
		add(RuleBannedPhrase, domain.SeverityHardFail, hit.PromptID,
			"banned %s phrase %q (%d occurrence(s))", hit.List, hit.Phrase, hit.Count)
	}

	if m.ScenarioKnown {
		th := lex.Thresholds
		if m.QualifyingRate < th.MinQualifyingRate || m.AvgScenarioHits < th.MinAvgHits {
			add(RuleScenarioDensity, domain.SeverityHardFail, "",
				"scenario token density too low: qualifying rate %.2f (min %.2f), avg hits %.2f (min %.2f)",
				m.QualifyingRate, th.MinQualifyingRate, m.AvgScenarioHits, th.MinAvgHits)
		}
	} else {
		add(RuleScenarioUnknown, domain.SeverityWarning, "",
			"no token dictionary configured for scenario %q; density check skipped", pack.Scenario)
	}

	switch m.SlotSignal {
	case domain.SignalExplicit:
		if m.MultiSlotRate < lex.Thresholds.MinMultiSlotRate {
			add(RuleSlotVariation, domain.SeverityHardFail, "",
				"multi-slot variation rate %.3f below minimum %.2f", m.MultiSlotRate, lex.Thresholds.MinMultiSlotRate)
		}
	case domain.SignalHeuristic:
		add(RuleSlotHeuristic, domain.SeverityWarning, "",
			"no slotsChanged annotations; using subject/verb position heuristic (%d subjects, %d verbs)",
			m.HeuristicSubjects, m.HeuristicVerbs)
		if !m.HeuristicPassed {
			add(RuleSlotVariation, domain.SeverityHardFail, "",
				"heuristic slot variation too low: %d distinct subjects, %d distinct verbs (need ≥2 each)",
				m.HeuristicSubjects, m.HeuristicVerbs)
		}
	}

	if !m.RegisterConsistent {
		add(RuleRegister, domain.SeverityHardFail, "",
			"formal register pack contains no exact formal-address token (%v)", lex.FormalAddress)
	}

	if m.ConcretenessCount < lex.Thresholds.MinConcretePrompts {
		add(RuleConcreteness, domain.SeverityHardFail, "",
			"only %d prompt(s) carry a concreteness marker (digit, currency, time, weekday); need %d",
			m.ConcretenessCount, lex.Thresholds.MinConcretePrompts)
	}

	if lex.HighStakes(pack.Scenario, pack.Level) {
		for _, p := range pack.Prompts {
			if p.Meaning == "" {
				add(RuleMeaningGloss, domain.SeverityHardFail, p.ID,
					"meaning gloss required for %s/%s packs", pack.Scenario, pack.Level)
			}
		}
	}

	for _, issue := range m.PragmaticsIssues {
		add(RulePragmatics, domain.SeverityHardFail, issue.PromptID,
			"pragmatics rule %q violated: %s", issue.Rule, issue.Reason)
	}

	for _, cluster := range dedupe.ExactWithinPack(dup, pack.ID) {
		first := cluster.Refs[0]
		for _, ref := range cluster.Refs[1:] {
			add(RuleExactDuplicate, domain.SeverityHardFail, ref.PromptID,
				"prompt text identical to %s after normalization", first.PromptID)
		}
	}

	for _, pair := range dup.Near {
		add(RuleNearDuplicate, domain.SeverityWarning, pair.B.PromptID,
			"prompt nearly duplicates %s (similarity %.2f); review required", pair.A.PromptID, pair.Score)
	}

	for _, p := range pack.Prompts {
		for _, alt := range p.Alternates {
			score := dedupe.Score(p.Text, alt)
			switch {
			case score == 1.0:
				add(RuleAlternateEcho, domain.SeverityWarning, p.ID,
					"alternate phrasing is identical to main text after normalization")
			case score > lex.Thresholds.NearDupPack:
				add(RuleAlternateEcho, domain.SeverityWarning, p.ID,
					"alternate phrasing nearly repeats main text (similarity %.2f)", score)
			}
		}
	}

	slots := len(pack.VariationSlots)
	if (m.CognitiveLoad == "high" && slots <= 2) || (m.CognitiveLoad == "low" && slots > 4) {
		add(RuleLoadSlotsMismatch, domain.SeverityWarning, "",
			"cognitiveLoad %q inconsistent with %d declared variation slots", m.CognitiveLoad, slots)
	}

	if pack.Register == "" {
		add(RuleMissingRegister, domain.SeverityWarning, "", "pack declares no register")
	}
	if !lex.HighStakes(pack.Scenario, pack.Level) {
		missing := 0
		for _, p := range pack.Prompts {
			if p.Meaning == "" {
				missing++
			}
		}
		if missing > 0 {
			add(RuleMissingGloss, domain.SeverityWarning, "",
				"%d prompt(s) lack an optional meaning gloss", missing)
		}
	}

	v.Passed = v.HardFailures() == 0
	return v
}
