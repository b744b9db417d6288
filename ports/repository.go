package ports

import (
	"context"

	"adpulse/domain/core"
	"adpulse/domain/creative"
	"adpulse/domain/run"
	"adpulse/domain/verdict"
)

// ResultRepositoryPort persists a completed run for diagnostics and review.
type ResultRepositoryPort interface {
	SaveRun(ctx context.Context, runID core.RunID, results []verdict.ValidationResult,
		creatives []creative.Candidate, ledger *run.Ledger) error
}
