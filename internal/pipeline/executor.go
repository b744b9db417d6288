// Package pipeline drives one end-to-end validation run: schedule the
// planned tasks, generate hypotheses per task, validate each hypothesis,
// and trigger creative generation where a validated creative-fatigue
// verdict calls for it.
//
// The executor is deliberately single-threaded. Results, creatives and
// ledger entries are appended in task order, then hypothesis order, so
// two runs over the same inputs produce identical output ordering.
// Every collaborator failure is isolated to its task or hypothesis and
// recorded in the ledger; the run itself never aborts because one step
// misbehaved.
package pipeline

import (
	"context"
	"fmt"

	"adpulse/domain/creative"
	"adpulse/domain/insight"
	"adpulse/domain/plan"
	"adpulse/domain/run"
	"adpulse/domain/verdict"
	"adpulse/ports"
)

const (
	// creativeSampleSize is how many dataset creatives are offered to the
	// generator as inspiration.
	creativeSampleSize = 20
	// creativeVariants is how many replacement candidates are requested
	// per triggering verdict.
	creativeVariants = 4
)

// Executor wires the pipeline collaborators together for one run.
type Executor struct {
	scheduler SchedulerPort
	generator ports.HypothesisGeneratorPort
	evaluator ports.EvaluatorPort
	creatives ports.CreativeGeneratorPort
	data      ports.TimeSeriesPort
	rec       ports.Recorder
}

// SchedulerPort orders tasks for execution. Satisfied by scheduler.Scheduler.
type SchedulerPort interface {
	Order(tasks []plan.Task) []plan.Task
}

// New creates an executor. All collaborators except rec are required.
func New(
	scheduler SchedulerPort,
	generator ports.HypothesisGeneratorPort,
	evaluator ports.EvaluatorPort,
	creatives ports.CreativeGeneratorPort,
	data ports.TimeSeriesPort,
	rec ports.Recorder,
) *Executor {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Executor{
		scheduler: scheduler,
		generator: generator,
		evaluator: evaluator,
		creatives: creatives,
		data:      data,
		rec:       rec,
	}
}

// Result bundles everything one run produced.
type Result struct {
	Results   []verdict.ValidationResult
	Creatives []creative.Candidate
	Ledger    *run.Ledger
}

// Run executes the planned tasks and returns all accumulated outputs.
// The returned slices are never nil and their order is deterministic.
func (e *Executor) Run(ctx context.Context, tasks []plan.Task, summary ports.DatasetSummary) Result {
	out := Result{
		Results:   []verdict.ValidationResult{},
		Creatives: []creative.Candidate{},
		Ledger:    run.NewLedger(),
	}

	ordered := e.scheduler.Order(tasks)
	e.rec.Info("pipeline: executing %d tasks", len(ordered))

	for _, task := range ordered {
		out.Ledger.RecordTask(task)

		hyps, err := e.generator.Generate(ctx, task, summary)
		if err != nil {
			e.rec.Error("pipeline: hypothesis generation failed for task %s: %v", task.ID, err)
			out.Ledger.RecordError(run.StageInsight, task.ID.String(), "", err)
			continue
		}
		if len(hyps) == 0 {
			e.rec.Debug("pipeline: task %s produced no hypotheses", task.ID)
			continue
		}

		for _, hyp := range hyps {
			res, err := e.evaluator.Validate(ctx, hyp)
			if err != nil {
				// The concrete evaluator never errors; this guards against
				// substitute implementations that do.
				e.rec.Error("pipeline: evaluator returned error for hypothesis %s: %v", hyp.ID, err)
				out.Ledger.RecordError(run.StageEvaluation, task.ID.String(), hyp.ID.String(), err)
				res = verdict.ValidationResult{
					HypothesisID:         hyp.ID,
					Driver:               hyp.Driver,
					HypothesisText:       hyp.Hypothesis,
					SupportingDataPoints: hyp.SupportingDataPoints,
					Validation:           verdict.Validation{Error: err.Error()},
					Impact:               verdict.ImpactLow,
					ConfidenceFinal:      0,
					Status:               verdict.StatusInconclusive,
					Notes:                fmt.Sprintf("Evaluator error: %v", err),
				}
			}
			out.Results = append(out.Results, res)

			if res.Status == verdict.StatusValidated && res.Driver == insight.DriverCreativeFatigue {
				cands := e.generateCreatives(ctx, task, hyp, out.Ledger)
				out.Creatives = append(out.Creatives, cands...)
			}
		}
	}

	e.rec.Info("pipeline: run complete, %d results, %d creatives, %d errors",
		len(out.Results), len(out.Creatives), len(out.Ledger.Errors))
	return out
}

// generateCreatives asks the creative generator for replacements scoped to
// the triggering task's campaign. Failures land in the ledger and yield an
// empty slice.
func (e *Executor) generateCreatives(ctx context.Context, task plan.Task, hyp insight.Hypothesis, ledger *run.Ledger) []creative.Candidate {
	sample, err := e.data.CreativesSample(ctx, creativeSampleSize)
	if err != nil {
		e.rec.Warn("pipeline: creatives sample unavailable for task %s: %v", task.ID, err)
		ledger.RecordError(run.StageCreative, task.ID.String(), hyp.ID.String(), err)
		return nil
	}

	cands, err := e.creatives.GenerateForCampaign(ctx, task.Scope, sample, creativeVariants)
	if err != nil {
		e.rec.Error("pipeline: creative generation failed for task %s: %v", task.ID, err)
		ledger.RecordError(run.StageCreative, task.ID.String(), hyp.ID.String(), err)
		return nil
	}
	e.rec.Info("pipeline: generated %d creative candidates for scope %s", len(cands), task.Scope)
	return cands
}
