package heuristic

import (
	"context"
	"fmt"
	"sort"

	"adpulse/domain/core"
	"adpulse/domain/creative"
	"adpulse/ports"
)

// CreativeGenerator produces templated replacement creatives without a
// model, remixing the highest-performing sampled messages. It satisfies
// ports.CreativeGeneratorPort.
type CreativeGenerator struct {
	rec ports.Recorder
}

// NewCreativeGenerator creates the offline creative generator.
func NewCreativeGenerator(rec ports.Recorder) *CreativeGenerator {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &CreativeGenerator{rec: rec}
}

var angles = []struct {
	headline string
	cta      string
}{
	{"A fresh take on %s", "Shop Now"},
	{"New this week for %s", "Learn More"},
	{"Why customers keep coming back to %s", "Get Started"},
	{"The %s offer you have not seen yet", "Claim Offer"},
}

// GenerateForCampaign builds n templated candidates. The best sampled
// creatives by CTR seed the body copy so output stays anchored to what
// already works in the account.
func (g *CreativeGenerator) GenerateForCampaign(ctx context.Context, campaign string, sample []creative.Sample, n int) ([]creative.Candidate, error) {
	if n <= 0 {
		n = 4
	}

	ranked := make([]creative.Sample, len(sample))
	copy(ranked, sample)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CTR > ranked[j].CTR
	})

	out := make([]creative.Candidate, 0, n)
	for i := 0; i < n; i++ {
		a := angles[i%len(angles)]
		body := "Discover what changed and why it matters for you."
		refs := []string(nil)
		if len(ranked) > 0 {
			seed := ranked[i%len(ranked)]
			body = fmt.Sprintf("Building on what resonated: %s", seed.Message)
			refs = []string{seed.Message}
		}
		out = append(out, creative.Candidate{
			Campaign:        campaign,
			CreativeID:      core.NewCreativeID(),
			CreativeType:    "image",
			Headline:        fmt.Sprintf(a.headline, campaign),
			Body:            body,
			CTA:             a.cta,
			Rationale:       "templated remix of top-performing creative",
			InspirationRefs: refs,
		})
	}

	g.rec.Debug("heuristic: generated %d templated creatives for campaign %s", len(out), campaign)
	return out, nil
}
