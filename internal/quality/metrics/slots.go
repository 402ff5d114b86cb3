package metrics

import (
	"github.com/yungbote/packgate/internal/domain"
)

// computeSlotSignal selects the slot-variation strategy for a pack. When the
// generator declared slotsChanged lists the explicit strategy applies;
// otherwise a first/second-token subject/verb heuristic stands in. The
// heuristic assumes subject-initial clauses and misclassifies anything else,
// so the gate layer always attaches a warning when it is in use.
func computeSlotSignal(pack *domain.Pack, tokenLists [][]string, m *domain.MetricBundle) {
	if hasExplicitSignal(pack) {
		m.SlotSignal = domain.SignalExplicit
		m.MultiSlotRate = explicitMultiSlotRate(pack)
		return
	}
	m.SlotSignal = domain.SignalHeuristic
	subjects, verbs := heuristicSubjectsVerbs(tokenLists)
	m.HeuristicSubjects = subjects
	m.HeuristicVerbs = verbs
	m.HeuristicPassed = subjects >= 2 && verbs >= 2
}

func hasExplicitSignal(pack *domain.Pack) bool {
	for _, p := range pack.Prompts {
		if len(p.SlotsChanged) > 0 {
			return true
		}
	}
	return false
}

// explicitMultiSlotRate counts prompts whose slotsChanged list names at
// least two slots relative to the previous prompt of the same step. The
// first prompt of each step has no predecessor and never counts.
func explicitMultiSlotRate(pack *domain.Pack) float64 {
	multi := 0
	for i, p := range pack.Prompts {
		if i == 0 || p.Step != pack.Prompts[i-1].Step {
			continue
		}
		if len(p.SlotsChanged) >= 2 {
			multi++
		}
	}
	return float64(multi) / float64(len(pack.Prompts))
}

// heuristicSubjectsVerbs extracts the first token as subject and the second
// as verb of a subject-initial clause and counts distinct values across the
// pack.
func heuristicSubjectsVerbs(tokenLists [][]string) (int, int) {
	subjects := map[string]bool{}
	verbs := map[string]bool{}
	for _, tokens := range tokenLists {
		if len(tokens) >= 1 {
			subjects[tokens[0]] = true
		}
		if len(tokens) >= 2 {
			verbs[tokens[1]] = true
		}
	}
	return len(subjects), len(verbs)
}
