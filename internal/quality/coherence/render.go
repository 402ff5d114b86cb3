package coherence

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MarshalJSON-stable rendering: encoding/json sorts map keys, every slice in
// the report is pre-sorted, so repeated runs over the same input produce
// byte-identical output.
func RenderJSON(rep Report) ([]byte, error) {
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("coherence: marshal report: %w", err)
	}
	return append(out, '\n'), nil
}

// RenderMarkdown produces the human-readable companion to the JSON report.
func RenderMarkdown(rep Report) string {
	var b strings.Builder

	b.WriteString("# Catalog Coherence Report\n\n")
	if rep.ReleaseID != "" {
		fmt.Fprintf(&b, "Release: `%s`\n\n", rep.ReleaseID)
	}
	fmt.Fprintf(&b, "- Packs: %d (%d passed)\n", rep.PackCount, rep.PassedCount)
	fmt.Fprintf(&b, "- Prompts: %d\n", rep.PromptCount)
	fmt.Fprintf(&b, "- Hard failures: %d\n", rep.HardFailures)
	fmt.Fprintf(&b, "- Warnings: %d\n\n", rep.Warnings)

	b.WriteString("## Coverage\n\n")
	writeCounts(&b, "Scenario", rep.Coverage.ByScenario)
	writeCounts(&b, "Level", rep.Coverage.ByLevel)
	writeCounts(&b, "Register", rep.Coverage.ByRegister)
	writeCounts(&b, "Structure", rep.Coverage.ByStructure)

	if len(rep.Density) > 0 {
		b.WriteString("## Scenario token density\n\n")
		b.WriteString("| Scenario | Packs | Min | Mean | Max |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, d := range rep.Density {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %.2f |\n", d.Scenario, d.Packs, d.MinAvg, d.MeanAvg, d.MaxAvg)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Banned phrases\n\n")
	if len(rep.BannedHits) == 0 {
		b.WriteString("None found.\n\n")
	} else {
		for _, hit := range rep.BannedHits {
			fmt.Fprintf(&b, "- `%s` (%s) in %s/%s\n", hit.Phrase, hit.List, hit.PackID, hit.PromptID)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Duplicates\n\n")
	if len(rep.Exact) == 0 && len(rep.Near) == 0 {
		b.WriteString("No exact or near duplicates at catalog thresholds.\n\n")
	} else {
		for _, c := range rep.Exact {
			refs := make([]string, 0, len(c.Refs))
			for _, r := range c.Refs {
				refs = append(refs, r.PackID+"/"+r.PromptID)
			}
			fmt.Fprintf(&b, "- exact: %s\n", strings.Join(refs, ", "))
		}
		for _, p := range rep.Near {
			fmt.Fprintf(&b, "- near (%.2f): %s/%s ~ %s/%s\n", p.Score, p.A.PackID, p.A.PromptID, p.B.PackID, p.B.PromptID)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Top risk packs\n\n")
	// Risks are stored ascending; walk from the tail for the riskiest first.
	shown := 0
	for i := len(rep.Risks) - 1; i >= 0 && shown < 10; i-- {
		r := rep.Risks[i]
		if r.Score == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s/%s): score %d [%s]\n", r.PackID, r.Scenario, r.Level, r.Score, strings.Join(r.Reasons, ", "))
		shown++
	}
	if shown == 0 {
		b.WriteString("No packs carry a nonzero risk score.\n")
	}

	return b.String()
}

func writeCounts(b *strings.Builder, label string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(b, "**%s**: ", label)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if name == "" {
			name = "unspecified"
		}
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[k]))
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("\n\n")
}
