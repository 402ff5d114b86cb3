package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EvaluationRun is the persisted audit row for one engine run. The archived
// report lets release tooling diff consecutive runs without re-evaluating.
type EvaluationRun struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReleaseID    string         `gorm:"index" json:"release_id"`
	PackCount    int            `json:"pack_count"`
	HardFailures int            `json:"hard_failures"`
	Warnings     int            `json:"warnings"`
	Passed       bool           `json:"passed"`
	Report       datatypes.JSON `json:"report"`
	CreatedAt    time.Time      `json:"created_at"`
}

// PackVerdictRow is the persisted per-pack verdict within a run.
type PackVerdictRow struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID      uuid.UUID      `gorm:"type:uuid;index" json:"run_id"`
	PackID     string         `gorm:"index" json:"pack_id"`
	Scenario   string         `json:"scenario"`
	Level      string         `json:"level"`
	Passed     bool           `json:"passed"`
	RiskScore  int            `json:"risk_score"`
	Violations datatypes.JSON `json:"violations"`
	CreatedAt  time.Time      `json:"created_at"`
}
