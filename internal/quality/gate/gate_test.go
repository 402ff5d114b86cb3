package gate

import (
	"testing"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/quality/dedupe"
	"github.com/yungbote/packgate/internal/quality/lexicon"
	"github.com/yungbote/packgate/internal/quality/metrics"
)

func testStore() *lexicon.Store {
	return &lexicon.Store{
		Scenarios: map[string][]string{
			"work": {"büro", "termin", "kollege", "chefin", "bericht"},
		},
		Generic:                []string{"das ist gut"},
		Calques:                []string{"ich bin kalt"},
		FormalAddress:          []string{"Sie", "Ihnen"},
		Weekdays:               []string{"montag", "dienstag", "mittwoch", "donnerstag", "freitag", "samstag", "sonntag"},
		CurrencySymbols:        []string{"€", "$"},
		HighStakesScenarios:    []string{"government_office"},
		GlossRequiredFromLevel: "B1",
		FocusByStructure:       map[string]string{},
		OutcomeByScenario:      map[string]string{},
		Pragmatics: []lexicon.PragmaticsRule{
			{
				Name:       "formal_request_bitte",
				Scenario:   "work",
				Intent:     "request",
				Register:   "formal",
				RequireAny: []string{"bitte", "könnten sie"},
			},
		},
		Thresholds: lexicon.Thresholds{
			MinMultiSlotRate:   0.30,
			MinQualifyingRate:  0.60,
			MinAvgHits:         1.5,
			MinConcretePrompts: 2,
			NearDupPack:        0.85,
			NearDupCatalog:     0.92,
			RiskSkeletonShare:  0.70,
			RiskLowDensityAvg:  2.0,
		},
	}
}

func passingPack() *domain.Pack {
	return &domain.Pack{
		ID:               "work_requests_a2",
		Scenario:         "work",
		Register:         "formal",
		Level:            "A2",
		PrimaryStructure: "modal_verbs",
		VariationSlots:   []string{"subject", "verb", "object", "time"},
		Prompts: []domain.Prompt{
			{ID: "s1", Text: "Können Sie bitte den Termin im Büro bestätigen?", Intent: "request", Step: 1},
			{ID: "s2", Text: "Der Kollege kommt am Montag um 9:00 ins Büro.", Intent: "inform", Step: 1, SlotsChanged: []string{"subject", "verb", "time"}},
			{ID: "s3", Text: "Die Chefin verschiebt den Termin auf 14:30.", Intent: "inform", Step: 1, SlotsChanged: []string{"subject", "object"}},
			{ID: "s4", Text: "Wir planen den Termin im Büro für Dienstag.", Intent: "inform", Step: 1, SlotsChanged: []string{"subject"}},
		},
	}
}

func evaluatePack(t *testing.T, pack *domain.Pack, lex *lexicon.Store) domain.Verdict {
	t.Helper()
	m := metrics.Compute(pack, lex)
	sentences := make([]dedupe.Sentence, 0, len(pack.Prompts))
	for _, p := range pack.Prompts {
		sentences = append(sentences, dedupe.Sentence{PackID: pack.ID, PromptID: p.ID, Text: p.Text})
	}
	dup := dedupe.Find(sentences, lex.Thresholds.NearDupPack)
	return Evaluate(pack, m, dup, lex)
}

func hasRule(v domain.Verdict, ruleID string, sev domain.Severity) bool {
	for _, viol := range v.Violations {
		if viol.RuleID == ruleID && viol.Severity == sev {
			return true
		}
	}
	return false
}

func TestEvaluate_BaselinePasses(t *testing.T) {
	v := evaluatePack(t, passingPack(), testStore())
	if !v.Passed {
		t.Fatalf("expected baseline pack to pass, violations: %+v", v.Violations)
	}
	if v.HardFailures() != 0 {
		t.Fatalf("expected no hard failures, got %d", v.HardFailures())
	}
}

func TestEvaluate_BannedPhraseFlipsVerdict(t *testing.T) {
	pack := passingPack()
	pack.Prompts[3].Text = "Wir planen den Termin im Büro, das ist gut."
	v := evaluatePack(t, pack, testStore())
	if v.Passed {
		t.Fatalf("expected banned phrase to fail the pack")
	}
	if !hasRule(v, RuleBannedPhrase, domain.SeverityHardFail) {
		t.Fatalf("expected banned_phrase violation, got %+v", v.Violations)
	}
}

func TestEvaluate_MultiSlotBoundaryInclusive(t *testing.T) {
	lex := testStore()
	pack := passingPack()
	base := metrics.Compute(pack, lex)

	base.SlotSignal = domain.SignalExplicit
	base.MultiSlotRate = 0.30
	v := Evaluate(pack, base, dedupe.Result{}, lex)
	if hasRule(v, RuleSlotVariation, domain.SeverityHardFail) {
		t.Fatalf("rate of exactly 0.30 must pass")
	}

	base.MultiSlotRate = 0.299
	v = Evaluate(pack, base, dedupe.Result{}, lex)
	if !hasRule(v, RuleSlotVariation, domain.SeverityHardFail) {
		t.Fatalf("rate of 0.299 must hard-fail")
	}
}

func TestEvaluate_FormalRegisterNeedsAddressToken(t *testing.T) {
	pack := passingPack()
	pack.Prompts[0].Text = "Bitte den Termin im Büro bestätigen."
	v := evaluatePack(t, pack, testStore())
	if v.Passed || !hasRule(v, RuleRegister, domain.SeverityHardFail) {
		t.Fatalf("expected register-consistency hard fail, got %+v", v.Violations)
	}

	pack.Prompts[0].Text = "Können Sie bitte den Termin im Büro bestätigen?"
	v = evaluatePack(t, pack, testStore())
	if hasRule(v, RuleRegister, domain.SeverityHardFail) {
		t.Fatalf("adding Sie should restore register consistency")
	}
}

func TestEvaluate_ConcretenessThreshold(t *testing.T) {
	pack := passingPack()
	// Strip concreteness from all but two prompts.
	pack.Prompts[1].Text = "Der Kollege kommt am Montag ins Büro."
	pack.Prompts[3].Text = "Wir planen den Termin im Büro zusammen."
	v := evaluatePack(t, pack, testStore())
	if hasRule(v, RuleConcreteness, domain.SeverityHardFail) {
		t.Fatalf("two qualifying prompts must satisfy the concreteness check: %+v", v.Violations)
	}

	pack.Prompts[1].Text = "Der Kollege kommt bald ins Büro."
	v = evaluatePack(t, pack, testStore())
	if !hasRule(v, RuleConcreteness, domain.SeverityHardFail) {
		t.Fatalf("one qualifying prompt must hard-fail concreteness")
	}
}

func TestEvaluate_UnknownScenarioWarnsOnly(t *testing.T) {
	pack := passingPack()
	pack.Scenario = "astronomy"
	// Pragmatics rule is scenario-scoped to work, so it no longer applies.
	v := evaluatePack(t, pack, testStore())
	if !hasRule(v, RuleScenarioUnknown, domain.SeverityWarning) {
		t.Fatalf("expected dictionary-missing warning, got %+v", v.Violations)
	}
	if !v.Passed {
		t.Fatalf("unknown scenario must not block the pack: %+v", v.Violations)
	}
}

func TestEvaluate_HeuristicSignalWarns(t *testing.T) {
	pack := passingPack()
	for i := range pack.Prompts {
		pack.Prompts[i].SlotsChanged = nil
	}
	v := evaluatePack(t, pack, testStore())
	if !hasRule(v, RuleSlotHeuristic, domain.SeverityWarning) {
		t.Fatalf("expected heuristic warning, got %+v", v.Violations)
	}
	// Four distinct subjects and verbs: heuristic itself passes.
	if hasRule(v, RuleSlotVariation, domain.SeverityHardFail) {
		t.Fatalf("heuristic with enough variation must not hard-fail")
	}
}

func TestEvaluate_AlternateEchoWarns(t *testing.T) {
	pack := passingPack()
	// Identical alternates and near-identical ones both draw the warning.
	pack.Prompts[1].Alternates = []string{"Der Kollege kommt am Montag um 9:00 ins Büro!"}
	pack.Prompts[2].Alternates = []string{"Die Chefin verschiebt den Termin auf 15:30."}
	v := evaluatePack(t, pack, testStore())
	if !hasRule(v, RuleAlternateEcho, domain.SeverityWarning) {
		t.Fatalf("expected alternate-echo warnings, got %+v", v.Violations)
	}
	echoes := 0
	for _, viol := range v.Violations {
		if viol.RuleID == RuleAlternateEcho {
			echoes++
		}
	}
	if echoes != 2 {
		t.Fatalf("expected both alternates flagged, got %d: %+v", echoes, v.Violations)
	}
	if !v.Passed {
		t.Fatalf("alternate echoes are warnings and must not block: %+v", v.Violations)
	}
}

func TestEvaluate_ExactDuplicateHardFails(t *testing.T) {
	pack := passingPack()
	pack.Prompts[3].Text = pack.Prompts[2].Text
	v := evaluatePack(t, pack, testStore())
	if v.Passed || !hasRule(v, RuleExactDuplicate, domain.SeverityHardFail) {
		t.Fatalf("expected exact-duplicate hard fail, got %+v", v.Violations)
	}
}

func TestEvaluate_MeaningGlossRequiredForHighStakes(t *testing.T) {
	pack := passingPack()
	pack.Level = "B1"
	v := evaluatePack(t, pack, testStore())
	if v.Passed || !hasRule(v, RuleMeaningGloss, domain.SeverityHardFail) {
		t.Fatalf("expected gloss requirement at B1, got %+v", v.Violations)
	}

	for i := range pack.Prompts {
		pack.Prompts[i].Meaning = "gloss"
	}
	v = evaluatePack(t, pack, testStore())
	if hasRule(v, RuleMeaningGloss, domain.SeverityHardFail) {
		t.Fatalf("glosses present, rule must pass: %+v", v.Violations)
	}
}

func TestEvaluate_AccumulatesAllViolations(t *testing.T) {
	pack := passingPack()
	pack.Prompts[0].Text = "Bitte den Termin bestätigen, das ist gut." // register + banned
	pack.Prompts[1].Text = "Der Kollege kommt bald ins Büro."          // kills concreteness (with s3 edit)
	pack.Prompts[2].Text = "Ich bin kalt im Büro heute."               // calque
	v := evaluatePack(t, pack, testStore())
	if v.Passed {
		t.Fatalf("expected failure")
	}
	for _, rule := range []string{RuleBannedPhrase, RuleRegister} {
		if !hasRule(v, rule, domain.SeverityHardFail) {
			t.Fatalf("expected %s among violations: %+v", rule, v.Violations)
		}
	}
	if v.HardFailures() < 3 {
		t.Fatalf("expected the full audit, got %d hard failures: %+v", v.HardFailures(), v.Violations)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	pack := passingPack()
	lex := testStore()
	a := evaluatePack(t, pack, lex)
	b := evaluatePack(t, pack, lex)
	if len(a.Violations) != len(b.Violations) || a.Passed != b.Passed {
		t.Fatalf("verdict drifted between runs: %+v vs %+v", a, b)
	}
	for i := range a.Violations {
		if a.Violations[i] != b.Violations[i] {
			t.Fatalf("violation %d drifted: %+v vs %+v", i, a.Violations[i], b.Violations[i])
		}
	}
}
