package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/citybike/warehouse/internal/validate"
)

// ModelStatus is the per-model outcome of a run.
type ModelStatus string

const (
	// StatusSuccess: materialized and every error-severity rule passed.
	StatusSuccess ModelStatus = "success"
	// StatusFailed: materialization errored or an error-severity rule found
	// violations.
	StatusFailed ModelStatus = "failed"
	// StatusSkipped: an upstream model failed, so this model never ran.
	StatusSkipped ModelStatus = "skipped"
)

// ModelReport is the user-visible outcome for one model: materialization
// status plus the full list of validation rule outcomes with violating-row
// counts.
type ModelReport struct {
	Model       string             `json:"model"`
	Layer       string             `json:"layer"`
	Status      ModelStatus        `json:"status"`
	Rows        int                `json:"rows"`
	ParseErrors int                `json:"parse_errors,omitempty"`
	Error       string             `json:"error,omitempty"`
	Validation  []validate.Outcome `json:"validation,omitempty"`
}

// RunReport is the full outcome of one pipeline run, one entry per model in
// registry order.
type RunReport struct {
	ID          uuid.UUID     `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
	Succeeded   bool          `json:"succeeded"`
	Models      []ModelReport `json:"models"`
}
