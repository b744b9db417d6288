package llm

import (
	"context"
	"errors"
	"testing"

	"adpulse/domain/insight"
	"adpulse/domain/plan"
	"adpulse/ports"
)

func TestPlannerParsesModelPlan(t *testing.T) {
	client := &MockClient{Responses: []string{`{
		"plan_description": "trend then check",
		"tasks": [
			{"id": "t1", "name": "roas_trend", "type": "timeseries", "target": "roas", "scope": "all_campaigns", "priority": 1, "depends_on": []},
			{"id": "t2", "name": "ctr_check", "type": "metric_check", "target": "ctr", "scope": "all_campaigns", "priority": 2, "depends_on": ["t1"]}
		]
	}`}}

	p, err := NewPlanner(client, 1000, nil).Plan(context.Background(), "why did roas drop", ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(p.Tasks) != 2 {
		t.Fatalf("want 2 tasks, got %d", len(p.Tasks))
	}
	if p.Tasks[1].DependsOn[0].String() != "t1" {
		t.Errorf("t2 dependency lost: %+v", p.Tasks[1].DependsOn)
	}
	if p.Description != "trend then check" {
		t.Errorf("description lost: %q", p.Description)
	}
}

func TestPlannerFallsBackOnClientError(t *testing.T) {
	client := &MockClient{Error: errors.New("rate limited")}

	p, err := NewPlanner(client, 1000, nil).Plan(context.Background(), "query", ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("planner must degrade, not error: %v", err)
	}
	if len(p.Tasks) != 2 {
		t.Fatalf("fallback plan must have 2 tasks, got %d", len(p.Tasks))
	}
	if p.Tasks[0].Target != "roas" || p.Tasks[1].Target != "ctr" {
		t.Errorf("unexpected fallback targets: %s, %s", p.Tasks[0].Target, p.Tasks[1].Target)
	}
}

func TestPlannerFallsBackOnGarbageReply(t *testing.T) {
	client := &MockClient{Responses: []string{"I cannot make a plan right now."}}

	p, err := NewPlanner(client, 1000, nil).Plan(context.Background(), "query", ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("planner must degrade, not error: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("fallback plan must be valid: %v", err)
	}
}

func TestPlannerRejectsDuplicateTaskIDs(t *testing.T) {
	client := &MockClient{Responses: []string{`{"tasks": [
		{"id": "t1", "priority": 1}, {"id": "t1", "priority": 2}
	]}`}}

	p, err := NewPlanner(client, 1000, nil).Plan(context.Background(), "query", ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("planner must degrade, not error: %v", err)
	}
	// Duplicate ids invalidate the model plan, so the fallback takes over.
	if len(p.Tasks) != 2 || p.Tasks[0].ID.String() != "t1" || p.Tasks[1].ID.String() != "t2" {
		t.Errorf("expected fallback plan, got %+v", p.Tasks)
	}
}

func taskForTest(t *testing.T) plan.Task {
	t.Helper()
	task, err := plan.NewTask("t1", "ctr_check", plan.TypeMetricCheck, "ctr", "camp_a", 1, nil)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	return task
}

func TestHypothesisGeneratorParsesReply(t *testing.T) {
	client := &MockClient{Responses: []string{`[
		{"id": "h1", "hypothesis": "CTR fell because creatives are stale",
		 "driver": "creative_fatigue", "initial_confidence": 0.7,
		 "supporting_data_points": ["ctr down 30% in week 3"],
		 "required_checks": ["segment comparison"]}
	]`}}

	hyps, err := NewHypothesisGenerator(client, 1000, nil).Generate(context.Background(), taskForTest(t), ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(hyps) != 1 {
		t.Fatalf("want 1 hypothesis, got %d", len(hyps))
	}
	h := hyps[0]
	if h.Driver != insight.DriverCreativeFatigue {
		t.Errorf("driver lost: %s", h.Driver)
	}
	if h.InitialConfidence != 0.7 {
		t.Errorf("confidence lost: %v", h.InitialConfidence)
	}
	if len(h.SupportingDataPoints) != 1 {
		t.Errorf("supporting data lost: %+v", h.SupportingDataPoints)
	}
}

func TestHypothesisGeneratorFallsBack(t *testing.T) {
	client := &MockClient{Error: errors.New("timeout")}

	hyps, err := NewHypothesisGenerator(client, 1000, nil).Generate(context.Background(), taskForTest(t), ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("generator must degrade, not error: %v", err)
	}
	if len(hyps) != 1 {
		t.Fatalf("want 1 fallback hypothesis, got %d", len(hyps))
	}
	if hyps[0].Driver != insight.DriverCreativeFatigue {
		t.Errorf("fallback driver must be creative_fatigue, got %s", hyps[0].Driver)
	}
	if hyps[0].InitialConfidence != 0.55 {
		t.Errorf("fallback confidence must be 0.55, got %v", hyps[0].InitialConfidence)
	}
}

func TestHypothesisGeneratorClipsConfidence(t *testing.T) {
	client := &MockClient{Responses: []string{`[
		{"id": "h1", "hypothesis": "x", "driver": "other", "initial_confidence": 1.8}
	]`}}

	hyps, err := NewHypothesisGenerator(client, 1000, nil).Generate(context.Background(), taskForTest(t), ports.DatasetSummary{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if hyps[0].InitialConfidence != 1.0 {
		t.Errorf("confidence must clip to 1, got %v", hyps[0].InitialConfidence)
	}
}

func TestCreativeGeneratorDedupesAndTopsUp(t *testing.T) {
	first := `[
		{"creative_type": "image", "headline": "Same", "body": "Copy", "cta": "Go", "rationale": "r"},
		{"creative_type": "image", "headline": "same", "body": "copy", "cta": "Go", "rationale": "R"},
		{"creative_type": "video", "headline": "Other", "body": "Thing", "cta": "Go", "rationale": "r2"}
	]`
	topUp := `[
		{"creative_type": "carousel", "headline": "Third", "body": "Angle", "cta": "Go", "rationale": "r3"},
		{"creative_type": "carousel", "headline": "Fourth", "body": "Angle", "cta": "Go", "rationale": "r4"}
	]`
	client := &MockClient{Responses: []string{first, topUp}}

	cands, err := NewCreativeGenerator(client, 1000, nil).GenerateForCampaign(context.Background(), "camp_a", nil, 4)
	if err != nil {
		t.Fatalf("GenerateForCampaign failed: %v", err)
	}
	if client.Calls != 2 {
		t.Errorf("want one top-up call after dedupe, got %d calls", client.Calls)
	}
	if len(cands) != 4 {
		t.Fatalf("want 4 candidates after top-up, got %d", len(cands))
	}
	seen := map[string]bool{}
	for _, c := range cands {
		if seen[c.DedupeKey()] {
			t.Errorf("duplicate candidate survived: %s", c.Headline)
		}
		seen[c.DedupeKey()] = true
		if c.Campaign != "camp_a" {
			t.Errorf("campaign not assigned: %+v", c)
		}
		if c.CreativeID == "" {
			t.Error("candidate missing creative id")
		}
	}
}

func TestCreativeGeneratorTrimsExcess(t *testing.T) {
	reply := `[
		{"headline": "A", "body": "1"}, {"headline": "B", "body": "2"},
		{"headline": "C", "body": "3"}, {"headline": "D", "body": "4"},
		{"headline": "E", "body": "5"}
	]`
	client := &MockClient{Responses: []string{reply}}

	cands, err := NewCreativeGenerator(client, 1000, nil).GenerateForCampaign(context.Background(), "camp_a", nil, 3)
	if err != nil {
		t.Fatalf("GenerateForCampaign failed: %v", err)
	}
	if len(cands) != 3 {
		t.Errorf("want exactly 3 candidates, got %d", len(cands))
	}
}

func TestCreativeGeneratorFallsBackOnError(t *testing.T) {
	client := &MockClient{Error: errors.New("model down")}

	cands, err := NewCreativeGenerator(client, 1000, nil).GenerateForCampaign(context.Background(), "camp_a", nil, 4)
	if err != nil {
		t.Fatalf("creative generator must degrade, not error: %v", err)
	}
	if len(cands) != 4 {
		t.Errorf("want 4 templated fallback candidates, got %d", len(cands))
	}
}
