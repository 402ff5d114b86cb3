package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/platform/apperr"
	"github.com/yungbote/packgate/internal/platform/logger"
)

func validPack(id string) *domain.Pack {
	return &domain.Pack{
		ID:               id,
		Scenario:         "work",
		Level:            "A2",
		PrimaryStructure: "modal_verbs",
		VariationSlots:   []string{"subject", "verb"},
		Prompts: []domain.Prompt{
			{ID: "s1", Text: "Können Sie bitte kommen?", Intent: "request"},
			{ID: "s2", Text: "Der Kollege kommt am Montag.", Intent: "inform", SlotsChanged: []string{"subject"}},
		},
	}
}

func writePack(t *testing.T, dir, name string, pack *domain.Pack) {
	t.Helper()
	raw, err := json.Marshal(pack)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadDir_OrdersByFilename(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "b.json", validPack("pack_b"))
	writePack(t, dir, "a.json", validPack("pack_a"))
	packs, err := LoadDir(dir, logger.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(packs) != 2 || packs[0].ID != "pack_a" || packs[1].ID != "pack_b" {
		t.Fatalf("unexpected order: %v", packs)
	}
}

func TestLoadDir_DuplicatePackIDFailsBatch(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "a.json", validPack("pack_a"))
	writePack(t, dir, "b.json", validPack("pack_a"))
	_, err := LoadDir(dir, logger.NewNop())
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestValidate_TextLengthBounds(t *testing.T) {
	pack := validPack("p1")
	pack.Prompts[0].Text = "Zu kurz." // under 12 runes
	if err := Validate(pack); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected length violation, got %v", err)
	}
}

func TestValidate_SlotsChangedMustBeDeclared(t *testing.T) {
	pack := validPack("p1")
	pack.Prompts[1].SlotsChanged = []string{"tense"}
	if err := Validate(pack); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected undeclared slot violation, got %v", err)
	}
}

func TestValidate_MissingIntent(t *testing.T) {
	pack := validPack("p1")
	pack.Prompts[0].Intent = ""
	if err := Validate(pack); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected intent violation, got %v", err)
	}
}

func TestWriteAnnotated_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	pack := validPack("pack_a")
	pack.Analytics = &domain.Analytics{PassesQualityGates: true}
	if err := WriteAnnotated(dir, []*domain.Pack{pack}); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "pack_a.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got domain.Pack
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Analytics == nil || !got.Analytics.PassesQualityGates {
		t.Fatalf("analytics block lost on round trip: %+v", got)
	}
}
