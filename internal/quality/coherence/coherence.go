package coherence

import (
	"sort"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/quality/dedupe"
	"github.com/yungbote/packgate/internal/quality/lexicon"
)

// ScenarioDensity summarizes scenario-token density across every pack of one
// scenario.
type ScenarioDensity struct {
	Scenario string  `json:"scenario"`
	Packs    int     `json:"packs"`
	MinAvg   float64 `json:"minAvgHits"`
	MeanAvg  float64 `json:"meanAvgHits"`
	MaxAvg   float64 `json:"maxAvgHits"`
}

// PackRisk is the additive risk score for one pack plus the reasons that
// contributed. The risk list is sorted ascending by score.
type PackRisk struct {
	PackID   string   `json:"packId"`
	Scenario string   `json:"scenario"`
	Level    string   `json:"level"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons,omitempty"`
}

// Coverage counts packs along each metadata axis.
type Coverage struct {
	ByScenario  map[string]int `json:"byScenario"`
	ByLevel     map[string]int `json:"byLevel"`
	ByRegister  map[string]int `json:"byRegister"`
	ByStructure map[string]int `json:"byStructure"`
}

// Report is the catalog-wide coherence aggregate. Built fresh every run from
// the full pack set; byte-identical across runs over identical input.
type Report struct {
	ReleaseID    string                `json:"releaseId,omitempty"`
	PackCount    int                   `json:"packCount"`
	PromptCount  int                   `json:"promptCount"`
	PassedCount  int                   `json:"passedCount"`
	HardFailures int                   `json:"hardFailures"`
	Warnings     int                   `json:"warnings"`
	Coverage     Coverage              `json:"coverage"`
	Density      []ScenarioDensity     `json:"scenarioDensity,omitempty"`
	BannedHits   []CatalogBannedHit    `json:"bannedPhrases,omitempty"`
	Exact        []dedupe.ExactCluster `json:"exactDuplicates,omitempty"`
	Near         []dedupe.NearPair     `json:"nearDuplicates,omitempty"`
	Risks        []PackRisk            `json:"risks"`
}

// CatalogBannedHit is a banned-phrase occurrence with its pack attached.
type CatalogBannedHit struct {
	PackID string `json:"packId"`
	domain.BannedHit
}

// Input bundles everything the aggregation consumes. Packs, bundles and
// verdicts are index-aligned.
type Input struct {
	Packs     []*domain.Pack
	Bundles   []domain.MetricBundle
	Verdicts  []domain.Verdict
	Catalog   dedupe.Result
	Lex       *lexicon.Store
	ReleaseID string
}

// Aggregate is a pure reduction over per-pack results. Output ordering never
// depends on scheduling: every list is sorted on (scenario, level, packID)
// or a stricter key.
func Aggregate(in Input) Report {
	rep := Report{
		ReleaseID: in.ReleaseID,
		PackCount: len(in.Packs),
		Coverage: Coverage{
			ByScenario:  map[string]int{},
			ByLevel:     map[string]int{},
			ByRegister:  map[string]int{},
			ByStructure: map[string]int{},
		},
		Exact: in.Catalog.Exact,
		Near:  in.Catalog.Near,
	}

	exactPacks := packsInvolved(in.Catalog.Exact)
	nearPacks := map[string]bool{}
	for _, pair := range in.Catalog.Near {
		nearPacks[pair.A.PackID] = true
		nearPacks[pair.B.PackID] = true
	}

	densityByScenario := map[string][]float64{}

	for i, pack := range in.Packs {
		bundle := in.Bundles[i]
		verdict := in.Verdicts[i]

		rep.PromptCount += len(pack.Prompts)
		rep.Coverage.ByScenario[pack.Scenario]++
		rep.Coverage.ByLevel[pack.Level]++
		register := pack.Register
		if register == "" {
			register = "unspecified"
		}
		rep.Coverage.ByRegister[register]++
		rep.Coverage.ByStructure[pack.PrimaryStructure]++

		if verdict.Passed {
			rep.PassedCount++
		}
		rep.HardFailures += verdict.HardFailures()
		rep.Warnings += verdict.Warnings()

		if bundle.ScenarioKnown {
			densityByScenario[pack.Scenario] = append(densityByScenario[pack.Scenario], bundle.AvgScenarioHits)
		}
		for _, hit := range bundle.BannedHits {
			rep.BannedHits = append(rep.BannedHits, CatalogBannedHit{PackID: pack.ID, BannedHit: hit})
		}

		rep.Risks = append(rep.Risks, riskFor(pack, bundle, in.Lex, exactPacks[pack.ID], nearPacks[pack.ID]))
	}

	rep.Density = densitySummaries(densityByScenario)

	sort.Slice(rep.BannedHits, func(i, j int) bool {
		a, b := rep.BannedHits[i], rep.BannedHits[j]
		if a.PackID != b.PackID {
			return a.PackID < b.PackID
		}
		if a.PromptID != b.PromptID {
			return a.PromptID < b.PromptID
		}
		return a.Phrase < b.Phrase
	})

	sort.Slice(rep.Risks, func(i, j int) bool {
		a, b := rep.Risks[i], rep.Risks[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.PackID < b.PackID
	})

	return rep
}

func riskFor(pack *domain.Pack, bundle domain.MetricBundle, lex *lexicon.Store, inExact, inNear bool) PackRisk {
	risk := PackRisk{PackID: pack.ID, Scenario: pack.Scenario, Level: pack.Level}
	if bundle.ScenarioKnown && bundle.AvgScenarioHits < lex.Thresholds.RiskLowDensityAvg {
		risk.Score += 3
		risk.Reasons = append(risk.Reasons, "low_scenario_density")
	}
	if bundle.SkeletonTopShare > lex.Thresholds.RiskSkeletonShare {
		risk.Score += 2
		risk.Reasons = append(risk.Reasons, "skeleton_monotony")
	}
	if inExact {
		risk.Score += 4
		risk.Reasons = append(risk.Reasons, "exact_duplicate")
	}
	if inNear {
		risk.Score++
		risk.Reasons = append(risk.Reasons, "near_duplicate")
	}
	return risk
}

func packsInvolved(clusters []dedupe.ExactCluster) map[string]bool {
	out := map[string]bool{}
	for _, c := range clusters {
		for _, r := range c.Refs {
			out[r.PackID] = true
		}
	}
	return out
}

func densitySummaries(byScenario map[string][]float64) []ScenarioDensity {
	scenarios := make([]string, 0, len(byScenario))
	for s := range byScenario {
		scenarios = append(scenarios, s)
	}
	sort.Strings(scenarios)

	out := make([]ScenarioDensity, 0, len(scenarios))
	for _, s := range scenarios {
		vals := byScenario[s]
		d := ScenarioDensity{Scenario: s, Packs: len(vals), MinAvg: vals[0], MaxAvg: vals[0]}
		sum := 0.0
		for _, v := range vals {
			if v < d.MinAvg {
				d.MinAvg = v
			}
			if v > d.MaxAvg {
				d.MaxAvg = v
			}
			sum += v
		}
		d.MeanAvg = sum / float64(len(vals))
		out = append(out, d)
	}
	return out
}
