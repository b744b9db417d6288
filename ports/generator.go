package ports

import (
	"context"

	"adpulse/domain/creative"
	"adpulse/domain/insight"
	"adpulse/domain/plan"
)

// PlannerPort turns a free-text query plus dataset context into a plan.
type PlannerPort interface {
	Plan(ctx context.Context, query string, summary DatasetSummary) (*plan.Plan, error)
}

// HypothesisGeneratorPort produces hypotheses for one analysis task.
// "No findings" is an empty slice, not an error; the error leg is for
// real collaborator failures only.
type HypothesisGeneratorPort interface {
	Generate(ctx context.Context, task plan.Task, summary DatasetSummary) ([]insight.Hypothesis, error)
}

// CreativeGeneratorPort proposes replacement creatives for a campaign.
type CreativeGeneratorPort interface {
	GenerateForCampaign(ctx context.Context, campaign string, sample []creative.Sample, n int) ([]creative.Candidate, error)
}

// DatasetSummary is the lightweight dataset digest handed to generators
// as prompt context.
type DatasetSummary struct {
	Rows               int                `json:"n_rows"`
	DateMin            string             `json:"date_min,omitempty"`
	DateMax            string             `json:"date_max,omitempty"`
	CampaignCount      int                `json:"campaign_count"`
	TopCampaignsBySpend map[string]float64 `json:"top_campaigns_by_spend,omitempty"`
}
