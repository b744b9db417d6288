// Package heuristic generates hypotheses algorithmically from metric
// movement, for offline runs where no LLM credentials are configured.
package heuristic

import (
	"context"
	"fmt"

	"adpulse/domain/insight"
	"adpulse/domain/plan"
	"adpulse/ports"
)

// Thresholds for reading a recent-versus-baseline shift off the series.
const (
	dropThresholdPct = -10.0
	riseThresholdPct = 10.0
)

// Generator creates hypotheses from the shape of the task's target series.
// It satisfies ports.HypothesisGeneratorPort.
type Generator struct {
	data ports.TimeSeriesPort
	rec  ports.Recorder
}

// NewGenerator creates a heuristic hypothesis generator over data.
func NewGenerator(data ports.TimeSeriesPort, rec ports.Recorder) *Generator {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Generator{data: data, rec: rec}
}

// Generate compares the last 30% of the target series against the first
// 70% and emits one hypothesis per detected movement. A flat series yields
// no hypotheses, which is a valid outcome, not an error.
func (g *Generator) Generate(ctx context.Context, task plan.Task, summary ports.DatasetSummary) ([]insight.Hypothesis, error) {
	values, err := g.data.Series(ctx, task.Scope, task.Target)
	if err != nil {
		return nil, fmt.Errorf("heuristic generator: %w", err)
	}
	if len(values) < 4 {
		g.rec.Debug("heuristic: series too short for task %s (%d points)", task.ID, len(values))
		return []insight.Hypothesis{}, nil
	}

	split := int(float64(len(values)) * 0.7)
	if split < 1 {
		split = 1
	}
	baselineMean := mean(values[:split])
	recentMean := mean(values[split:])
	if baselineMean == 0 {
		return []insight.Hypothesis{}, nil
	}
	deltaPct := (recentMean - baselineMean) / baselineMean * 100

	evidence := fmt.Sprintf("%s baseline mean %.4f vs recent mean %.4f (%+.1f%%)",
		task.Target, baselineMean, recentMean, deltaPct)

	switch {
	case deltaPct <= dropThresholdPct:
		h, _ := insight.New(
			fmt.Sprintf("%s_h1", task.ID),
			fmt.Sprintf("Recent %s decline in scope %s is driven by creative fatigue", task.Target, task.Scope),
			insight.DriverCreativeFatigue,
			0.6,
			[]string{evidence},
			[]string{"compare recent vs baseline segment means"},
		)
		return []insight.Hypothesis{h}, nil
	case deltaPct >= riseThresholdPct:
		h, _ := insight.New(
			fmt.Sprintf("%s_h1", task.ID),
			fmt.Sprintf("Recent %s improvement in scope %s reflects seasonal demand", task.Target, task.Scope),
			insight.DriverSeasonality,
			0.5,
			[]string{evidence},
			[]string{"check movement against prior-period seasonality"},
		)
		return []insight.Hypothesis{h}, nil
	default:
		g.rec.Debug("heuristic: no notable %s movement for task %s (%+.1f%%)", task.Target, task.ID, deltaPct)
		return []insight.Hypothesis{}, nil
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
