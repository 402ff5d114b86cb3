package coherence

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/quality/dedupe"
	"github.com/yungbote/packgate/internal/quality/lexicon"
)

func testLex() *lexicon.Store {
	return &lexicon.Store{
		Thresholds: lexicon.Thresholds{
			RiskLowDensityAvg: 2.0,
			RiskSkeletonShare: 0.70,
			NearDupCatalog:    0.92,
		},
	}
}

func smallCatalog() Input {
	packs := []*domain.Pack{
		{ID: "pack_a", Scenario: "work", Level: "A2", Register: "formal", PrimaryStructure: "modal_verbs",
			Prompts: []domain.Prompt{{ID: "s1", Text: "x"}, {ID: "s2", Text: "y"}}},
		{ID: "pack_b", Scenario: "travel", Level: "A1", PrimaryStructure: "praesens",
			Prompts: []domain.Prompt{{ID: "s1", Text: "x"}}},
		{ID: "pack_c", Scenario: "work", Level: "B1", Register: "formal", PrimaryStructure: "modal_verbs",
			Prompts: []domain.Prompt{{ID: "s1", Text: "x"}}},
	}
	bundles := []domain.MetricBundle{
		{ScenarioKnown: true, AvgScenarioHits: 2.5, SkeletonTopShare: 0.5},
		{ScenarioKnown: true, AvgScenarioHits: 2.2, SkeletonTopShare: 0.5},
		{ScenarioKnown: true, AvgScenarioHits: 3.0, SkeletonTopShare: 0.5},
	}
	verdicts := []domain.Verdict{
		{PackID: "pack_a", Passed: true},
		{PackID: "pack_b", Passed: true},
		{PackID: "pack_c", Passed: true},
	}
	catalog := dedupe.Result{
		Exact: []dedupe.ExactCluster{{
			Canonical: "wo ist der bahnhof",
			Refs: []dedupe.Ref{
				{PackID: "pack_a", PromptID: "s1"},
				{PackID: "pack_b", PromptID: "s1"},
			},
		}},
	}
	return Input{Packs: packs, Bundles: bundles, Verdicts: verdicts, Catalog: catalog, Lex: testLex(), ReleaseID: "rel-1"}
}

func TestAggregate_CoverageAndCounts(t *testing.T) {
	rep := Aggregate(smallCatalog())
	if rep.PackCount != 3 || rep.PromptCount != 4 || rep.PassedCount != 3 {
		t.Fatalf("unexpected counts: %+v", rep)
	}
	if rep.Coverage.ByScenario["work"] != 2 || rep.Coverage.ByScenario["travel"] != 1 {
		t.Fatalf("unexpected scenario coverage: %v", rep.Coverage.ByScenario)
	}
	if rep.Coverage.ByRegister["unspecified"] != 1 {
		t.Fatalf("expected one unspecified-register pack: %v", rep.Coverage.ByRegister)
	}
}

func TestAggregate_CrossPackExactDuplicateRisk(t *testing.T) {
	rep := Aggregate(smallCatalog())
	if len(rep.Exact) != 1 {
		t.Fatalf("expected exactly one exact-duplicate cluster, got %v", rep.Exact)
	}
	refs := rep.Exact[0].Refs
	if refs[0].PackID != "pack_a" || refs[1].PackID != "pack_b" {
		t.Fatalf("cluster must reference both packs: %v", refs)
	}

	scores := map[string]int{}
	for _, r := range rep.Risks {
		scores[r.PackID] = r.Score
	}
	if scores["pack_a"] <= scores["pack_c"] || scores["pack_b"] <= scores["pack_c"] {
		t.Fatalf("duplicate-involved packs must outrank clean packs: %v", scores)
	}
	// Ascending sort: the clean pack comes first.
	if rep.Risks[0].PackID != "pack_c" {
		t.Fatalf("expected clean pack first in ascending risk order, got %v", rep.Risks)
	}
}

func TestAggregate_RiskReasons(t *testing.T) {
	in := smallCatalog()
	in.Bundles[2].AvgScenarioHits = 1.0  // low density: +3
	in.Bundles[2].SkeletonTopShare = 0.9 // monotony: +2
	rep := Aggregate(in)
	for _, r := range rep.Risks {
		if r.PackID != "pack_c" {
			continue
		}
		if r.Score != 5 {
			t.Fatalf("expected score 5, got %+v", r)
		}
		if len(r.Reasons) != 2 {
			t.Fatalf("expected two reasons, got %v", r.Reasons)
		}
		return
	}
	t.Fatalf("pack_c missing from risks")
}

func TestAggregate_DensitySummaries(t *testing.T) {
	rep := Aggregate(smallCatalog())
	if len(rep.Density) != 2 {
		t.Fatalf("expected 2 scenario summaries, got %v", rep.Density)
	}
	// Sorted by scenario name: travel before work.
	if rep.Density[0].Scenario != "travel" || rep.Density[1].Scenario != "work" {
		t.Fatalf("unexpected ordering: %v", rep.Density)
	}
	work := rep.Density[1]
	if work.MinAvg != 2.5 || work.MaxAvg != 3.0 {
		t.Fatalf("unexpected work stats: %+v", work)
	}
}

func TestRenderJSON_ByteIdenticalAcrossRuns(t *testing.T) {
	a, err := RenderJSON(Aggregate(smallCatalog()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := RenderJSON(Aggregate(smallCatalog()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("report not byte-identical across runs")
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	md := RenderMarkdown(Aggregate(smallCatalog()))
	for _, want := range []string{
		"# Catalog Coherence Report",
		"## Coverage",
		"## Duplicates",
		"- exact: pack_a/s1, pack_b/s1",
		"## Top risk packs",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
