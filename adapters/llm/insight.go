package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"adpulse/domain/insight"
	"adpulse/domain/plan"
	"adpulse/ports"
)

// HypothesisGenerator asks the model for data-grounded hypotheses about
// one analysis task. A malformed or failed reply degrades to a single
// conservative creative-fatigue hypothesis so the pipeline always has
// something to evaluate.
type HypothesisGenerator struct {
	client    Client
	maxTokens int
	rec       ports.Recorder
}

// NewHypothesisGenerator creates the insight adapter.
func NewHypothesisGenerator(client Client, maxTokens int, rec ports.Recorder) *HypothesisGenerator {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &HypothesisGenerator{client: client, maxTokens: maxTokens, rec: rec}
}

const insightPromptTemplate = `You are a marketing performance analyst.
For the analysis task below, propose 1 to 3 hypotheses explaining the
observed metric behavior. Output a JSON array only:
[
  {"id": "h1", "hypothesis": "...",
   "driver": "creative_fatigue|audience_saturation|bid_competition|seasonality|other",
   "initial_confidence": 0.0,
   "supporting_data_points": ["..."],
   "required_checks": ["..."]}
]

Task: %s (type=%s, target=%s, scope=%s)

Dataset summary: %s`

// Generate produces hypotheses for a task.
func (g *HypothesisGenerator) Generate(ctx context.Context, task plan.Task, summary ports.DatasetSummary) ([]insight.Hypothesis, error) {
	summaryJSON, _ := json.Marshal(summary)
	prompt := fmt.Sprintf(insightPromptTemplate, task.Name, task.Type, task.Target, task.Scope, string(summaryJSON))

	reply, err := g.client.ChatCompletion(ctx, prompt, g.maxTokens)
	if err != nil {
		g.rec.Warn("insight: model call failed for task %s, using fallback hypothesis: %v", task.ID, err)
		return g.fallback(task), nil
	}

	hyps, err := g.parseHypotheses(task, reply)
	if err != nil {
		g.rec.Warn("insight: could not parse model reply for task %s, using fallback: %v", task.ID, err)
		return g.fallback(task), nil
	}
	return hyps, nil
}

func (g *HypothesisGenerator) parseHypotheses(task plan.Task, reply string) ([]insight.Hypothesis, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}

	var decoded []struct {
		ID                   string   `json:"id"`
		Hypothesis           string   `json:"hypothesis"`
		Driver               string   `json:"driver"`
		InitialConfidence    float64  `json:"initial_confidence"`
		SupportingDataPoints []string `json:"supporting_data_points"`
		RequiredChecks       []string `json:"required_checks"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode hypotheses: %w", err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("model returned no hypotheses")
	}

	hyps := make([]insight.Hypothesis, 0, len(decoded))
	for i, d := range decoded {
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("%s_h%d", task.ID, i+1)
		}
		h, err := insight.New(id, d.Hypothesis, insight.Driver(d.Driver), d.InitialConfidence, d.SupportingDataPoints, d.RequiredChecks)
		if err != nil {
			return nil, err
		}
		hyps = append(hyps, h)
	}
	return hyps, nil
}

// fallback is the conservative default hypothesis: declining engagement
// on the task's target metric attributed to creative fatigue.
func (g *HypothesisGenerator) fallback(task plan.Task) []insight.Hypothesis {
	h, _ := insight.New(
		fmt.Sprintf("%s_h1", task.ID),
		fmt.Sprintf("Declining %s is driven by creative fatigue in scope %s", task.Target, task.Scope),
		insight.DriverCreativeFatigue,
		0.55,
		[]string{fmt.Sprintf("task %s flagged %s for review", task.ID, task.Target)},
		[]string{"compare recent vs baseline segment means"},
	)
	return []insight.Hypothesis{h}
}
