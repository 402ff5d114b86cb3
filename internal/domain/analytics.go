package domain

// Slot-variation signal strategies. Explicit uses the generator-declared
// slotsChanged lists; heuristic falls back to first/second-token
// subject/verb extraction and is always annotated with a warning.
const (
	SignalExplicit  = "explicit"
	SignalHeuristic = "heuristic"
)

// BannedHit is one denylisted phrase found in one prompt.
type BannedHit struct {
	Phrase   string `json:"phrase"`
	List     string `json:"list"` // "generic" or "calque"
	PromptID string `json:"promptId"`
	Count    int    `json:"count"`
}

// PragmaticsIssue is one pragmatics-rule breach on one prompt.
type PragmaticsIssue struct {
	Rule     string `json:"rule"`
	PromptID string `json:"promptId"`
	Reason   string `json:"reason"`
}

// MetricBundle is the full set of deterministic per-pack metrics. Every
// field is reproducible byte-for-byte from the pack text and the lexicons:
// no randomness, no clock, no I/O.
type MetricBundle struct {
	PromptCount int `json:"promptCount"`

	SlotSignal        string  `json:"slotSignal"`
	MultiSlotRate     float64 `json:"multiSlotRate"`
	HeuristicSubjects int     `json:"heuristicSubjects,omitempty"`
	HeuristicVerbs    int     `json:"heuristicVerbs,omitempty"`
	HeuristicPassed   bool    `json:"heuristicPassed,omitempty"`

	ScenarioKnown   bool    `json:"scenarioKnown"`
	AvgScenarioHits float64 `json:"avgScenarioHits"`
	QualifyingRate  float64 `json:"qualifyingRate"`

	UniqueTokenRatio   float64 `json:"uniqueTokenRatio"`
	RegisterConsistent bool    `json:"registerConsistent"`
	ConcretenessCount  int     `json:"concretenessCount"`

	BannedHits       []BannedHit       `json:"bannedHits,omitempty"`
	PragmaticsIssues []PragmaticsIssue `json:"pragmaticsIssues,omitempty"`

	CognitiveLoad  string `json:"cognitiveLoad"`
	Focus          string `json:"focus"`
	FluencyOutcome string `json:"fluencyOutcome,omitempty"`

	// SkeletonTopShare is the fraction of prompts sharing the most common
	// normalized sentence-skeleton pattern; high values indicate templated
	// filler.
	SkeletonTopShare float64 `json:"skeletonTopShare"`
}

// BannedTotal sums occurrence counts across all banned-phrase hits.
func (m MetricBundle) BannedTotal() int {
	total := 0
	for _, h := range m.BannedHits {
		total += h.Count
	}
	return total
}

// Analytics is the per-pack block attached back onto the pack for the
// publish collaborator.
type Analytics struct {
	MetricBundle
	PassesQualityGates bool `json:"passesQualityGates"`
}
