package domain

// Severity of a gate violation. Hard failures block publication; warnings
// are recorded and never block.
type Severity string

const (
	SeverityHardFail Severity = "hard_fail"
	SeverityWarning  Severity = "warning"
)

// Violation is one gate-rule breach. Violations are data, never errors.
type Violation struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	PromptID string   `json:"promptId,omitempty"`
}

// Verdict is the complete audit for one pack: pass/fail plus every
// violation found, in rule order. Created once per run, never mutated.
type Verdict struct {
	PackID     string      `json:"packId"`
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations,omitempty"`
}

func (v Verdict) HardFailures() int {
	n := 0
	for _, viol := range v.Violations {
		if viol.Severity == SeverityHardFail {
			n++
		}
	}
	return n
}

func (v Verdict) Warnings() int {
	n := 0
	for _, viol := range v.Violations {
		if viol.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
