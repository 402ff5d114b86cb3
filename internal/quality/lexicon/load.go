package lexicon

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/packgate/internal/platform/apperr"
	"github.com/yungbote/packgate/internal/platform/logger"
)

const (
	scenariosFile  = "scenarios.yaml"
	denylistFile   = "denylist.yaml"
	pragmaticsFile = "pragmatics.yaml"
	analyticsFile  = "analytics.yaml"
)

type denylistDoc struct {
	Generic []string `yaml:"generic"`
	Calques []string `yaml:"calques"`
}

type pragmaticsDoc struct {
	Rules []PragmaticsRule `yaml:"rules"`
}

type analyticsDoc struct {
	FormalAddress          []string          `yaml:"formal_address"`
	Weekdays               []string          `yaml:"weekdays"`
	CurrencySymbols        []string          `yaml:"currency_symbols"`
	HighStakesScenarios    []string          `yaml:"high_stakes_scenarios"`
	GlossRequiredFromLevel string            `yaml:"gloss_required_from_level"`
	FocusByStructure       map[string]string `yaml:"focus_by_structure"`
	OutcomeByScenario      map[string]string `yaml:"outcome_by_scenario"`
	Thresholds             Thresholds        `yaml:"thresholds"`
}

// Load reads every mandatory lexicon file from dir. A missing file aborts
// the whole batch: a partially-evaluated catalog report would be misleading.
// All phrase material is normalized once here so the hot path never
// re-normalizes dictionary entries.
func Load(dir string, log *logger.Logger) (*Store, error) {
	if log != nil {
		log = log.With("component", "lexicon")
	}

	store := &Store{
		Scenarios:         map[string][]string{},
		FocusByStructure:  map[string]string{},
		OutcomeByScenario: map[string]string{},
		Thresholds:        defaultThresholds(),
	}

	var scenarios map[string][]string
	if err := readYAML(filepath.Join(dir, scenariosFile), &scenarios); err != nil {
		return nil, err
	}
	for id, terms := range scenarios {
		store.Scenarios[id] = normalizePhrases(terms)
	}

	var deny denylistDoc
	if err := readYAML(filepath.Join(dir, denylistFile), &deny); err != nil {
		return nil, err
	}
	store.Generic = normalizePhrases(deny.Generic)
	store.Calques = normalizePhrases(deny.Calques)

	var prag pragmaticsDoc
	if err := readYAML(filepath.Join(dir, pragmaticsFile), &prag); err != nil {
		return nil, err
	}
	store.Pragmatics = make([]PragmaticsRule, 0, len(prag.Rules))
	for _, r := range prag.Rules {
		r.RequireAny = normalizePhrases(r.RequireAny)
		r.Forbidden = normalizePhrases(r.Forbidden)
		store.Pragmatics = append(store.Pragmatics, r)
	}

	var ana analyticsDoc
	if err := readYAML(filepath.Join(dir, analyticsFile), &ana); err != nil {
		return nil, err
	}
	store.FormalAddress = ana.FormalAddress
	store.Weekdays = normalizePhrases(ana.Weekdays)
	store.CurrencySymbols = ana.CurrencySymbols
	store.HighStakesScenarios = ana.HighStakesScenarios
	store.GlossRequiredFromLevel = ana.GlossRequiredFromLevel
	for k, v := range ana.FocusByStructure {
		store.FocusByStructure[k] = v
	}
	for k, v := range ana.OutcomeByScenario {
		store.OutcomeByScenario[k] = v
	}
	applyThresholdOverrides(&store.Thresholds, ana.Thresholds)

	if len(store.FormalAddress) == 0 {
		store.FormalAddress = []string{"Sie", "Ihnen"}
	}
	if len(store.Weekdays) == 0 {
		store.Weekdays = normalizePhrases([]string{
			"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag",
		})
	}
	if len(store.CurrencySymbols) == 0 {
		store.CurrencySymbols = []string{"€", "$", "£"}
	}

	if log != nil {
		log.Info("Lexicons loaded",
			"scenarios", len(store.Scenarios),
			"generic_phrases", len(store.Generic),
			"calques", len(store.Calques),
			"pragmatics_rules", len(store.Pragmatics),
		)
	}
	return store, nil
}

func readYAML(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("lexicon: %s: %w", path, apperr.ErrMissingLexicon)
		}
		return fmt.Errorf("lexicon: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("lexicon: parse %s: %w", path, err)
	}
	return nil
}

func applyThresholdOverrides(dst *Thresholds, src Thresholds) {
	if src.MinMultiSlotRate > 0 {
		dst.MinMultiSlotRate = src.MinMultiSlotRate
	}
	if src.MinQualifyingRate > 0 {
		dst.MinQualifyingRate = src.MinQualifyingRate
	}
	if src.MinAvgHits > 0 {
		dst.MinAvgHits = src.MinAvgHits
	}
	if src.MinConcretePrompts > 0 {
		dst.MinConcretePrompts = src.MinConcretePrompts
	}
	if src.NearDupPack > 0 {
		dst.NearDupPack = src.NearDupPack
	}
	if src.NearDupCatalog > 0 {
		dst.NearDupCatalog = src.NearDupCatalog
	}
	if src.RiskSkeletonShare > 0 {
		dst.RiskSkeletonShare = src.RiskSkeletonShare
	}
	if src.RiskLowDensityAvg > 0 {
		dst.RiskLowDensityAvg = src.RiskLowDensityAvg
	}
}
