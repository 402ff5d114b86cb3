package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/platform/apperr"
	"github.com/yungbote/packgate/internal/platform/logger"
)

const (
	minPromptLen = 12
	maxPromptLen = 140
)

// LoadDir reads every *.json pack document from dir in filename order and
// validates the documented contract. Any breach aborts the whole batch: a
// partially-loaded catalog would produce a misleading report.
func LoadDir(dir string, log *logger.Logger) ([]*domain.Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	packs := make([]*domain.Pack, 0, len(names))
	seen := map[string]string{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		var pack domain.Pack
		if err := json.Unmarshal(raw, &pack); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
		}
		if err := Validate(&pack); err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", path, err)
		}
		if prev, dup := seen[pack.ID]; dup {
			return nil, fmt.Errorf("catalog: pack id %q in %s already defined in %s: %w", pack.ID, name, prev, apperr.ErrInvalidArgument)
		}
		seen[pack.ID] = name
		packs = append(packs, &pack)
	}

	if log != nil {
		log.Info("Catalog loaded", "dir", dir, "packs", len(packs))
	}
	return packs, nil
}

// Validate enforces the pack/prompt input contract. The engine assumes
// schema-valid input everywhere downstream, so breaches are batch-fatal.
func Validate(pack *domain.Pack) error {
	if pack.ID == "" {
		return fmt.Errorf("pack id missing: %w", apperr.ErrInvalidArgument)
	}
	if pack.Scenario == "" {
		return fmt.Errorf("pack %s: scenario missing: %w", pack.ID, apperr.ErrInvalidArgument)
	}
	if pack.Level == "" {
		return fmt.Errorf("pack %s: level missing: %w", pack.ID, apperr.ErrInvalidArgument)
	}
	if pack.PrimaryStructure == "" {
		return fmt.Errorf("pack %s: primaryStructure missing: %w", pack.ID, apperr.ErrInvalidArgument)
	}
	if len(pack.Prompts) == 0 {
		return fmt.Errorf("pack %s: no prompts: %w", pack.ID, apperr.ErrInvalidArgument)
	}

	slots := map[string]bool{}
	for _, s := range pack.VariationSlots {
		slots[s] = true
	}
	promptIDs := map[string]bool{}
	for i, p := range pack.Prompts {
		if p.ID == "" {
			return fmt.Errorf("pack %s: prompt %d has no id: %w", pack.ID, i, apperr.ErrInvalidArgument)
		}
		if promptIDs[p.ID] {
			return fmt.Errorf("pack %s: duplicate prompt id %q: %w", pack.ID, p.ID, apperr.ErrInvalidArgument)
		}
		promptIDs[p.ID] = true
		if n := utf8.RuneCountInString(p.Text); n < minPromptLen || n > maxPromptLen {
			return fmt.Errorf("pack %s: prompt %s text length %d outside [%d, %d]: %w",
				pack.ID, p.ID, n, minPromptLen, maxPromptLen, apperr.ErrInvalidArgument)
		}
		if p.Intent == "" {
			return fmt.Errorf("pack %s: prompt %s has no intent: %w", pack.ID, p.ID, apperr.ErrInvalidArgument)
		}
		for _, slot := range p.SlotsChanged {
			if !slots[slot] {
				return fmt.Errorf("pack %s: prompt %s slotsChanged %q not in variationSlots: %w",
					pack.ID, p.ID, slot, apperr.ErrInvalidArgument)
			}
		}
	}
	return nil
}
