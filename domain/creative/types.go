package creative

import (
	"strings"

	"adpulse/domain/core"
)

// Candidate is one proposed replacement creative for a campaign.
type Candidate struct {
	Campaign        string          `json:"campaign"`
	CreativeID      core.CreativeID `json:"creative_id"`
	CreativeType    string          `json:"creative_type"`
	Headline        string          `json:"headline"`
	Body            string          `json:"body"`
	CTA             string          `json:"cta"`
	Rationale       string          `json:"rationale,omitempty"`
	InspirationRefs []string        `json:"inspiration_refs,omitempty"`
}

// DedupeKey is the case-insensitive identity used to drop repeated
// generator output: headline + body + rationale.
func (c Candidate) DedupeKey() string {
	return strings.ToLower(strings.TrimSpace(c.Headline)) + "|" +
		strings.ToLower(strings.TrimSpace(c.Body)) + "|" +
		strings.ToLower(strings.TrimSpace(c.Rationale))
}

// Sample is one existing creative drawn from the dataset, passed to the
// creative generator as inspiration material.
type Sample struct {
	Campaign     string  `json:"campaign_name"`
	AdsetName    string  `json:"adset_name"`
	CreativeType string  `json:"creative_type"`
	Message      string  `json:"creative_message"`
	CTR          float64 `json:"ctr"`
}
