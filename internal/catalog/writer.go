package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yungbote/packgate/internal/domain"
)

// WriteAnnotated writes each pack back out with its analytics block
// attached, one file per pack, into dir.
func WriteAnnotated(dir string, packs []*domain.Pack) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("catalog: create %s: %w", dir, err)
	}
	for _, pack := range packs {
		out, err := json.MarshalIndent(pack, "", "  ")
		if err != nil {
			return fmt.Errorf("catalog: marshal pack %s: %w", pack.ID, err)
		}
		path := filepath.Join(dir, pack.ID+".json")
		if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("catalog: write %s: %w", path, err)
		}
	}
	return nil
}

// WriteVerdicts writes the full verdict list as one JSON document.
func WriteVerdicts(path string, verdicts []domain.Verdict) error {
	out, err := json.MarshalIndent(verdicts, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: marshal verdicts: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("catalog: write %s: %w", path, err)
	}
	return nil
}
