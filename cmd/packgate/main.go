package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/packgate/internal/catalog"
	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/platform/db"
	"github.com/yungbote/packgate/internal/platform/envutil"
	"github.com/yungbote/packgate/internal/platform/logger"
	"github.com/yungbote/packgate/internal/quality/coherence"
	"github.com/yungbote/packgate/internal/quality/engine"
	"github.com/yungbote/packgate/internal/quality/lexicon"
	"github.com/yungbote/packgate/internal/repos"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("packgate", flag.ContinueOnError)
	var (
		packsDir   = fs.String("packs", "", "directory of pack JSON files (required)")
		lexiconDir = fs.String("lexicon", "", "directory of lexicon YAML files (required)")
		outDir     = fs.String("out", "out", "directory for reports and annotated packs")
		workers    = fs.Int("workers", envutil.GetEnvAsInt("PACKGATE_WORKERS", 0, nil), "evaluation worker count (0 = NumCPU)")
		release    = fs.String("release", "", "release identifier stamped into the report")
		noDB       = fs.Bool("no-db", envutil.GetEnvAsBool("PACKGATE_NO_DB", false, nil), "skip persisting the run to the audit database")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log, err := logger.New(envutil.GetEnv("LOG_MODE", "dev", nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "packgate: init logger: %v\n", err)
		return 2
	}
	defer log.Sync()

	if *packsDir == "" || *lexiconDir == "" {
		log.Error("Both -packs and -lexicon are required")
		return 2
	}

	ctx := context.Background()

	lex, err := lexicon.Load(*lexiconDir, log)
	if err != nil {
		log.Error("Failed to load lexicon", "dir", *lexiconDir, "error", err)
		return 2
	}
	packs, err := catalog.LoadDir(*packsDir, log)
	if err != nil {
		log.Error("Failed to load packs", "dir", *packsDir, "error", err)
		return 2
	}
	log.Info("Loaded workspace", "packs", len(packs), "scenarios", len(lex.Scenarios))

	out, err := engine.Run(ctx, engine.Deps{Log: log, Lex: lex}, engine.Input{
		Packs:     packs,
		Workers:   *workers,
		ReleaseID: *release,
	})
	if err != nil {
		log.Error("Evaluation failed", "error", err)
		return 2
	}

	if err := writeOutputs(*outDir, packs, out); err != nil {
		log.Error("Failed to write outputs", "dir", *outDir, "error", err)
		return 2
	}
	log.Info("Wrote reports", "dir", *outDir)

	// Archival is best effort: a broken audit database must never flip a
	// release decision.
	if !*noDB {
		if err := persistRun(ctx, log, out, *release, packs); err != nil {
			log.Warn("Failed to persist run", "error", err)
		}
	}

	return disposition(out.HardFailures)
}

// disposition maps an evaluation outcome onto the process exit code.
// Warnings alone never block a release.
func disposition(hardFailures int) int {
	if hardFailures > 0 {
		return 1
	}
	return 0
}

func writeOutputs(dir string, packs []*domain.Pack, out engine.Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	rawJSON, err := coherence.RenderJSON(out.Report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "coherence.json"), rawJSON, 0o644); err != nil {
		return fmt.Errorf("write coherence.json: %w", err)
	}
	md := coherence.RenderMarkdown(out.Report)
	if err := os.WriteFile(filepath.Join(dir, "coherence.md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("write coherence.md: %w", err)
	}
	if err := catalog.WriteVerdicts(filepath.Join(dir, "verdicts.json"), out.Verdicts); err != nil {
		return err
	}
	return catalog.WriteAnnotated(filepath.Join(dir, "packs"), packs)
}

func persistRun(ctx context.Context, log *logger.Logger, out engine.Output, release string, packs []*domain.Pack) error {
	svc, err := db.NewService(log)
	if err != nil {
		return err
	}
	if err := svc.AutoMigrateAll(); err != nil {
		return err
	}
	runRepo := repos.NewEvaluationRunRepo(svc.DB(), log)
	verdictRepo := repos.NewPackVerdictRepo(svc.DB(), log)

	reportJSON, err := coherence.RenderJSON(out.Report)
	if err != nil {
		return err
	}
	run := &domain.EvaluationRun{
		ID:           uuid.New(),
		ReleaseID:    release,
		PackCount:    len(packs),
		HardFailures: out.HardFailures,
		Warnings:     out.Warnings,
		Passed:       out.HardFailures == 0,
		Report:       datatypes.JSON(reportJSON),
		CreatedAt:    time.Now().UTC(),
	}
	if err := runRepo.Create(ctx, nil, run); err != nil {
		return err
	}

	riskByPack := map[string]int{}
	for _, r := range out.Report.Risks {
		riskByPack[r.PackID] = r.Score
	}
	packByID := map[string]*domain.Pack{}
	for _, p := range packs {
		packByID[p.ID] = p
	}

	rows := make([]*domain.PackVerdictRow, 0, len(out.Verdicts))
	for _, v := range out.Verdicts {
		raw, err := json.Marshal(v.Violations)
		if err != nil {
			return fmt.Errorf("marshal violations for %s: %w", v.PackID, err)
		}
		row := &domain.PackVerdictRow{
			ID:         uuid.New(),
			RunID:      run.ID,
			PackID:     v.PackID,
			Passed:     v.Passed,
			RiskScore:  riskByPack[v.PackID],
			Violations: datatypes.JSON(raw),
			CreatedAt:  time.Now().UTC(),
		}
		if p, ok := packByID[v.PackID]; ok {
			row.Scenario = p.Scenario
			row.Level = p.Level
		}
		rows = append(rows, row)
	}
	if _, err := verdictRepo.CreateMany(ctx, nil, rows); err != nil {
		return err
	}
	log.Info("Persisted evaluation run", "run_id", run.ID, "verdicts", len(rows))
	return nil
}
