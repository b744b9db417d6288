package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"adpulse/domain/core"
	"adpulse/domain/creative"
	"adpulse/ports"
)

// CreativeGenerator proposes replacement ad creatives for a fatigued
// campaign, seeded with samples of existing creatives. Duplicate
// proposals are dropped and a single top-up call is made when dedupe
// leaves the batch short.
type CreativeGenerator struct {
	client    Client
	maxTokens int
	rec       ports.Recorder
}

// NewCreativeGenerator creates the creative adapter.
func NewCreativeGenerator(client Client, maxTokens int, rec ports.Recorder) *CreativeGenerator {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &CreativeGenerator{client: client, maxTokens: maxTokens, rec: rec}
}

const creativePromptTemplate = `You are a senior performance marketing copywriter.
Campaign %q is showing creative fatigue. Propose %d fresh ad creatives that
break the existing patterns. Existing creatives for inspiration:
%s

Output a JSON array only:
[
  {"creative_type": "image|video|carousel", "headline": "...", "body": "...",
   "cta": "...", "rationale": "...", "inspiration_refs": ["..."]}
]`

// GenerateForCampaign produces up to n deduplicated creative candidates.
// A failed model call falls back to templated variants so a validated
// fatigue verdict always yields actionable output.
func (c *CreativeGenerator) GenerateForCampaign(ctx context.Context, campaign string, sample []creative.Sample, n int) ([]creative.Candidate, error) {
	if n <= 0 {
		n = 4
	}

	candidates, err := c.generateOnce(ctx, campaign, sample, n)
	if err != nil {
		c.rec.Warn("creative: model call failed for campaign %s, using templated fallback: %v", campaign, err)
		return c.fallback(campaign, n), nil
	}

	seen := make(map[string]struct{}, len(candidates))
	unique := dedupe(candidates, seen)

	// One top-up attempt when dedupe leaves the batch short.
	if len(unique) < n {
		more, err := c.generateOnce(ctx, campaign, sample, n-len(unique))
		if err != nil {
			c.rec.Debug("creative: top-up call failed for campaign %s: %v", campaign, err)
		} else {
			unique = append(unique, dedupe(more, seen)...)
		}
	}

	if len(unique) > n {
		unique = unique[:n]
	}
	return unique, nil
}

func (c *CreativeGenerator) generateOnce(ctx context.Context, campaign string, sample []creative.Sample, n int) ([]creative.Candidate, error) {
	sampleJSON, _ := json.MarshalIndent(sample, "", "  ")
	prompt := fmt.Sprintf(creativePromptTemplate, campaign, n, string(sampleJSON))

	reply, err := c.client.ChatCompletion(ctx, prompt, c.maxTokens)
	if err != nil {
		return nil, err
	}
	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}

	var decoded []struct {
		CreativeType    string   `json:"creative_type"`
		Headline        string   `json:"headline"`
		Body            string   `json:"body"`
		CTA             string   `json:"cta"`
		Rationale       string   `json:"rationale"`
		InspirationRefs []string `json:"inspiration_refs"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode creatives: %w", err)
	}

	candidates := make([]creative.Candidate, 0, len(decoded))
	for _, d := range decoded {
		if d.Headline == "" && d.Body == "" {
			continue
		}
		creativeType := d.CreativeType
		if creativeType == "" {
			creativeType = "image"
		}
		candidates = append(candidates, creative.Candidate{
			Campaign:        campaign,
			CreativeID:      core.NewCreativeID(),
			CreativeType:    creativeType,
			Headline:        d.Headline,
			Body:            d.Body,
			CTA:             d.CTA,
			Rationale:       d.Rationale,
			InspirationRefs: d.InspirationRefs,
		})
	}
	return candidates, nil
}

// dedupe keeps candidates whose key has not been seen, updating seen.
func dedupe(cands []creative.Candidate, seen map[string]struct{}) []creative.Candidate {
	out := make([]creative.Candidate, 0, len(cands))
	for _, cand := range cands {
		key := cand.DedupeKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cand)
	}
	return out
}

// fallback produces deterministic templated variants.
func (c *CreativeGenerator) fallback(campaign string, n int) []creative.Candidate {
	angles := []struct {
		headline string
		body     string
		cta      string
	}{
		{"Fresh look, same results", "We rebuilt our best offer from the ground up. See what changed.", "Shop Now"},
		{"Limited time: something new", "Our latest drop is here for a short window only.", "Learn More"},
		{"Real customers, real wins", "See why thousands switched this month.", "Get Started"},
		{"Stop scrolling, start saving", "A new angle on the deal you almost missed.", "Claim Offer"},
	}

	out := make([]creative.Candidate, 0, n)
	for i := 0; i < n; i++ {
		a := angles[i%len(angles)]
		out = append(out, creative.Candidate{
			Campaign:     campaign,
			CreativeID:   core.NewCreativeID(),
			CreativeType: "image",
			Headline:     a.headline,
			Body:         a.body,
			CTA:          a.cta,
			Rationale:    "templated fallback variant",
		})
	}
	return out
}
