package ports

import (
	"context"

	"adpulse/domain/insight"
	"adpulse/domain/verdict"
)

// EvaluatorPort validates one hypothesis against the dataset. The concrete
// evaluator never returns an error - every internal failure degrades to an
// INCONCLUSIVE result - but the error leg exists so the executor can defend
// against misbehaving implementations with a typed outcome instead of a
// broad recover.
type EvaluatorPort interface {
	Validate(ctx context.Context, hyp insight.Hypothesis) (verdict.ValidationResult, error)
}
