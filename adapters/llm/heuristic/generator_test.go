package heuristic

import (
	"context"
	"testing"

	"adpulse/domain/creative"
	"adpulse/domain/insight"
	"adpulse/domain/plan"
	"adpulse/ports"
)

type stubSeries struct {
	values []float64
	err    error
}

func (s *stubSeries) Series(ctx context.Context, scope, metric string) ([]float64, error) {
	return s.values, s.err
}

func (s *stubSeries) CreativesSample(ctx context.Context, n int) ([]creative.Sample, error) {
	return nil, nil
}

func testTask(t *testing.T) plan.Task {
	t.Helper()
	task, err := plan.NewTask("t1", "ctr_check", plan.TypeMetricCheck, "ctr", plan.ScopeAllCampaigns, 1, nil)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	return task
}

func declining() []float64 {
	values := make([]float64, 20)
	for i := range values {
		if i < 14 {
			values[i] = 0.05
		} else {
			values[i] = 0.03
		}
	}
	return values
}

func TestGenerateFlagsDeclineAsFatigue(t *testing.T) {
	gen := NewGenerator(&stubSeries{values: declining()}, nil)

	hyps, err := gen.Generate(context.Background(), testTask(t), ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(hyps) != 1 {
		t.Fatalf("want 1 hypothesis for a 40%% drop, got %d", len(hyps))
	}
	if hyps[0].Driver != insight.DriverCreativeFatigue {
		t.Errorf("decline should map to creative_fatigue, got %s", hyps[0].Driver)
	}
	if len(hyps[0].SupportingDataPoints) == 0 {
		t.Error("hypothesis must carry its evidence")
	}
}

func TestGenerateFlagsRiseAsSeasonality(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		if i < 14 {
			values[i] = 0.03
		} else {
			values[i] = 0.05
		}
	}
	gen := NewGenerator(&stubSeries{values: values}, nil)

	hyps, err := gen.Generate(context.Background(), testTask(t), ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(hyps) != 1 || hyps[0].Driver != insight.DriverSeasonality {
		t.Errorf("rise should map to seasonality, got %+v", hyps)
	}
}

func TestGenerateFlatSeriesYieldsNothing(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 0.05
	}
	gen := NewGenerator(&stubSeries{values: values}, nil)

	hyps, err := gen.Generate(context.Background(), testTask(t), ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(hyps) != 0 {
		t.Errorf("flat series must yield no hypotheses, got %d", len(hyps))
	}
}

func TestGeneratePropagatesSeriesError(t *testing.T) {
	gen := NewGenerator(&stubSeries{err: &ports.SeriesError{Reason: ports.SeriesMissing}}, nil)

	if _, err := gen.Generate(context.Background(), testTask(t), ports.DatasetSummary{}); err == nil {
		t.Error("a missing series is a real generator failure and must error")
	}
}

func TestCreativeGeneratorSeedsFromTopSamples(t *testing.T) {
	sample := []creative.Sample{
		{Campaign: "camp_a", Message: "weak performer", CTR: 0.01},
		{Campaign: "camp_a", Message: "top performer", CTR: 0.08},
	}
	gen := NewCreativeGenerator(nil)

	cands, err := gen.GenerateForCampaign(context.Background(), "camp_a", sample, 4)
	if err != nil {
		t.Fatalf("GenerateForCampaign failed: %v", err)
	}
	if len(cands) != 4 {
		t.Fatalf("want 4 candidates, got %d", len(cands))
	}
	if len(cands[0].InspirationRefs) == 0 || cands[0].InspirationRefs[0] != "top performer" {
		t.Errorf("first candidate should seed from the best sample, got %+v", cands[0].InspirationRefs)
	}
	for _, c := range cands {
		if c.CreativeID == "" {
			t.Error("candidate missing creative id")
		}
		if c.Campaign != "camp_a" {
			t.Errorf("wrong campaign: %s", c.Campaign)
		}
	}
}

func TestCreativeGeneratorNoSamples(t *testing.T) {
	gen := NewCreativeGenerator(nil)

	cands, err := gen.GenerateForCampaign(context.Background(), "camp_a", nil, 2)
	if err != nil {
		t.Fatalf("GenerateForCampaign failed: %v", err)
	}
	if len(cands) != 2 {
		t.Errorf("want 2 candidates without samples, got %d", len(cands))
	}
}
