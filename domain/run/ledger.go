package run

import (
	"adpulse/domain/core"
	"adpulse/domain/plan"
)

// Stage names recorded in ledger errors.
const (
	StageInsight    = "insight"
	StageEvaluation = "evaluation"
	StageCreative   = "creative"
	StageScheduling = "scheduling"
)

// Error is one isolated failure recorded during a run.
type Error struct {
	Stage        string `json:"stage"`
	TaskID       string `json:"task_id,omitempty"`
	HypothesisID string `json:"hypothesis_id,omitempty"`
	Error        string `json:"error"`
}

// ExecutedTask records that the executor processed a task.
type ExecutedTask struct {
	TaskID   string `json:"task_id"`
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Priority int    `json:"priority"`
}

// Ledger accumulates run diagnostics. It is owned exclusively by the
// pipeline executor for the lifetime of one run and appended to in order
// by a single control thread.
type Ledger struct {
	Errors        []Error        `json:"errors"`
	TasksExecuted []ExecutedTask `json:"tasks_executed"`
}

// NewLedger returns an empty ledger with non-nil slices so JSON output
// is always arrays, never null.
func NewLedger() *Ledger {
	return &Ledger{
		Errors:        []Error{},
		TasksExecuted: []ExecutedTask{},
	}
}

// RecordError appends an isolated failure.
func (l *Ledger) RecordError(stage, taskID, hypothesisID string, err error) {
	l.Errors = append(l.Errors, Error{
		Stage:        stage,
		TaskID:       taskID,
		HypothesisID: hypothesisID,
		Error:        err.Error(),
	})
}

// RecordTask appends an executed-task entry.
func (l *Ledger) RecordTask(t plan.Task) {
	l.TasksExecuted = append(l.TasksExecuted, ExecutedTask{
		TaskID:   t.ID.String(),
		Name:     t.Name,
		Scope:    t.Scope,
		Priority: t.Priority,
	})
}

// Manifest is the persisted run metadata wrapping the ledger.
type Manifest struct {
	RunID     core.RunID        `json:"run_id"`
	Query     string            `json:"query"`
	Timestamp core.Timestamp    `json:"timestamp"`
	Ledger    *Ledger           `json:"ledger"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// NewManifest creates a manifest for a fresh run.
func NewManifest(runID core.RunID, query string) *Manifest {
	return &Manifest{
		RunID:     runID,
		Query:     query,
		Timestamp: core.Now(),
		Ledger:    NewLedger(),
		Artifacts: map[string]string{},
	}
}
