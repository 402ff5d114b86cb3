package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/platform/logger"
	"github.com/yungbote/packgate/internal/quality/coherence"
	"github.com/yungbote/packgate/internal/quality/dedupe"
	"github.com/yungbote/packgate/internal/quality/gate"
	"github.com/yungbote/packgate/internal/quality/lexicon"
	"github.com/yungbote/packgate/internal/quality/metrics"
)

type Deps struct {
	Log *logger.Logger
	Lex *lexicon.Store
}

type Input struct {
	Packs     []*domain.Pack
	Workers   int
	ReleaseID string
}

type Output struct {
	Verdicts     []domain.Verdict
	Bundles      []domain.MetricBundle
	Report       coherence.Report
	HardFailures int
	Warnings     int
}

// Run evaluates every pack, then reduces the per-pack results into the
// catalog coherence report. Per-pack evaluation is a pure function of one
// pack plus the immutable lexicon store, so it fans out across a bounded
// worker pool; results are re-sorted afterwards so output never depends on
// scheduling order.
func Run(ctx context.Context, deps Deps, input Input) (Output, error) {
	if deps.Lex == nil {
		return Output{}, fmt.Errorf("engine: missing lexicon store")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	workers := input.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Deterministic pack order before and independent of the fan-out.
	packs := make([]*domain.Pack, len(input.Packs))
	copy(packs, input.Packs)
	sort.Slice(packs, func(i, j int) bool {
		a, b := packs[i], packs[j]
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.ID < b.ID
	})

	bundles := make([]domain.MetricBundle, len(packs))
	verdicts := make([]domain.Verdict, len(packs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pack := range packs {
		i, pack := i, pack
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			bundle := metrics.Compute(pack, deps.Lex)
			dup := dedupe.Find(packSentences(pack), deps.Lex.Thresholds.NearDupPack)
			verdicts[i] = gate.Evaluate(pack, bundle, dup, deps.Lex)
			bundles[i] = bundle
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, fmt.Errorf("engine: pack evaluation: %w", err)
	}

	// Reduction barrier: catalog-wide duplicate detection needs every
	// prompt, then the coherence aggregation needs every per-pack result.
	var all []dedupe.Sentence
	for _, pack := range packs {
		all = append(all, packSentences(pack)...)
	}
	catalogDup, err := dedupe.FindParallel(ctx, all, deps.Lex.Thresholds.NearDupCatalog, workers)
	if err != nil {
		return Output{}, fmt.Errorf("engine: catalog duplicate scan: %w", err)
	}

	// Cross-pack exact duplicates are hard failures on every involved pack.
	flagCrossPackDuplicates(packs, verdicts, catalogDup)

	out := Output{Bundles: bundles, Verdicts: verdicts}
	bannedHits := 0
	for i := range verdicts {
		out.HardFailures += verdicts[i].HardFailures()
		out.Warnings += verdicts[i].Warnings()
		bannedHits += bundles[i].BannedTotal()
	}

	out.Report = coherence.Aggregate(coherence.Input{
		Packs:     packs,
		Bundles:   bundles,
		Verdicts:  verdicts,
		Catalog:   catalogDup,
		Lex:       deps.Lex,
		ReleaseID: input.ReleaseID,
	})

	for i, pack := range packs {
		pack.Analytics = &domain.Analytics{
			MetricBundle:       bundles[i],
			PassesQualityGates: verdicts[i].Passed,
		}
	}

	if deps.Log != nil {
		deps.Log.Info("Evaluation complete",
			"packs", len(packs),
			"passed", out.Report.PassedCount,
			"hard_failures", out.HardFailures,
			"warnings", out.Warnings,
			"banned_hits", bannedHits,
		)
	}
	return out, nil
}

func packSentences(pack *domain.Pack) []dedupe.Sentence {
	out := make([]dedupe.Sentence, 0, len(pack.Prompts))
	for _, p := range pack.Prompts {
		out = append(out, dedupe.Sentence{PackID: pack.ID, PromptID: p.ID, Text: p.Text})
	}
	return out
}

// flagCrossPackDuplicates appends an exact-duplicate hard failure to every
// pack sharing normalized text with another pack in the workspace.
func flagCrossPackDuplicates(packs []*domain.Pack, verdicts []domain.Verdict, catalog dedupe.Result) {
	indexByPack := map[string]int{}
	for i, pack := range packs {
		indexByPack[pack.ID] = i
	}
	for _, cluster := range catalog.Exact {
		involved := map[string][]string{}
		for _, ref := range cluster.Refs {
			involved[ref.PackID] = append(involved[ref.PackID], ref.PromptID)
		}
		if len(involved) < 2 {
			continue // within one pack: already handled by the per-pack gate
		}
		for _, ref := range cluster.Refs {
			i, ok := indexByPack[ref.PackID]
			if !ok {
				continue
			}
			verdicts[i].Violations = append(verdicts[i].Violations, domain.Violation{
				RuleID:   "exact_duplicate_cross_pack",
				Severity: domain.SeverityHardFail,
				Message:  fmt.Sprintf("prompt text duplicated across packs (cluster of %d prompts)", len(cluster.Refs)),
				PromptID: ref.PromptID,
			})
			verdicts[i].Passed = false
		}
	}
}
