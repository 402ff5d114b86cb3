package domain

// Prompt is one practice sentence plus its linguistic metadata. Prompts are
// owned by exactly one Pack and are immutable once handed to the engine.
type Prompt struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Intent   string `json:"intent"`
	Register string `json:"register,omitempty"`
	Meaning  string `json:"meaning,omitempty"`
	// Step groups prompts into drill steps; slotsChanged is interpreted
	// relative to the previous prompt of the same step.
	Step         int      `json:"step,omitempty"`
	SlotsChanged []string `json:"slotsChanged,omitempty"`
	Alternates   []string `json:"alternates,omitempty"`
}

// Pack is a named, ordered collection of prompts sharing scenario, register
// and grammatical-focus metadata. The engine never mutates pack content; it
// only attaches the derived Analytics block.
type Pack struct {
	ID               string     `json:"id"`
	Name             string     `json:"name,omitempty"`
	Scenario         string     `json:"scenario"`
	Register         string     `json:"register,omitempty"`
	Level            string     `json:"level"`
	PrimaryStructure string     `json:"primaryStructure"`
	VariationSlots   []string   `json:"variationSlots,omitempty"`
	Prompts          []Prompt   `json:"prompts"`
	Analytics        *Analytics `json:"analytics,omitempty"`
}

// EffectiveRegister resolves a prompt's register, falling back to the pack
// register when the prompt does not declare one.
func (p *Pack) EffectiveRegister(pr Prompt) string {
	if pr.Register != "" {
		return pr.Register
	}
	return p.Register
}

// CEFR level ordering used for gloss-requirement decisions. Unknown levels
// rank below A1 so they never accidentally trigger high-stakes rules.
var levelRank = map[string]int{
	"A1": 1,
	"A2": 2,
	"B1": 3,
	"B2": 4,
	"C1": 5,
	"C2": 6,
}

func LevelRank(level string) int {
	return levelRank[level]
}
