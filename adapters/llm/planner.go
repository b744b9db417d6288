package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"adpulse/domain/core"
	"adpulse/domain/plan"
	"adpulse/ports"
)

// Planner turns a free-text analysis query into a task plan using the
// model, falling back to a fixed two-task plan when the model fails.
type Planner struct {
	client    Client
	maxTokens int
	rec       ports.Recorder
}

// NewPlanner creates the planning adapter.
func NewPlanner(client Client, maxTokens int, rec ports.Recorder) *Planner {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Planner{client: client, maxTokens: maxTokens, rec: rec}
}

const plannerPromptTemplate = `You are a marketing analytics planner.
Given the user's question and a dataset summary, produce a JSON object:
{
  "plan_description": "...",
  "tasks": [
    {"id": "t1", "name": "...", "type": "timeseries|metric_check|segment_analysis",
     "target": "metric name", "scope": "campaign name or all_campaigns",
     "priority": 1, "depends_on": []}
  ]
}
Rules: 2 to 5 tasks, unique ids, lower priority runs first, depends_on may
only reference ids in this plan. Output JSON only.

Question: %s

Dataset summary: %s`

// Plan asks the model for a task plan. Any failure along the way degrades
// to the deterministic fallback plan rather than an error: planning must
// never block a run.
func (p *Planner) Plan(ctx context.Context, query string, summary ports.DatasetSummary) (*plan.Plan, error) {
	summaryJSON, _ := json.Marshal(summary)
	prompt := fmt.Sprintf(plannerPromptTemplate, query, string(summaryJSON))

	reply, err := p.client.ChatCompletion(ctx, prompt, p.maxTokens)
	if err != nil {
		p.rec.Warn("planner: model call failed, using fallback plan: %v", err)
		return FallbackPlan(query), nil
	}

	parsed, err := p.parsePlan(query, reply)
	if err != nil {
		p.rec.Warn("planner: could not parse model plan, using fallback: %v", err)
		return FallbackPlan(query), nil
	}
	return parsed, nil
}

func (p *Planner) parsePlan(query, reply string) (*plan.Plan, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Description string `json:"plan_description"`
		Tasks       []struct {
			ID        string   `json:"id"`
			Name      string   `json:"name"`
			Type      string   `json:"type"`
			Target    string   `json:"target"`
			Scope     string   `json:"scope"`
			Priority  int      `json:"priority"`
			DependsOn []string `json:"depends_on"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(decoded.Tasks) == 0 {
		return nil, fmt.Errorf("model plan contains no tasks")
	}

	tasks := make([]plan.Task, 0, len(decoded.Tasks))
	for i, t := range decoded.Tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			id = fmt.Sprintf("t%d", i+1)
		}
		task, err := plan.NewTask(id, t.Name, plan.TaskType(t.Type), t.Target, t.Scope, t.Priority, t.DependsOn)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	out := &plan.Plan{
		Query:       query,
		Description: decoded.Description,
		GeneratedAt: core.Now(),
		Tasks:       tasks,
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// FallbackPlan is the deterministic plan used when no model is available:
// a ROAS trend scan followed by a dependent CTR check. Offline runs use it
// directly.
func FallbackPlan(query string) *plan.Plan {
	t1, _ := plan.NewTask("t1", "roas_timeseries", plan.TypeTimeseries, "roas", plan.ScopeAllCampaigns, 1, nil)
	t2, _ := plan.NewTask("t2", "ctr_check", plan.TypeMetricCheck, "ctr", plan.ScopeAllCampaigns, 2, []string{"t1"})
	return &plan.Plan{
		Query:       query,
		Description: "fallback plan: ROAS trend then CTR check",
		GeneratedAt: core.Now(),
		Tasks:       []plan.Task{t1, t2},
	}
}
