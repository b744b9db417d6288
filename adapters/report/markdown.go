package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"adpulse/domain/creative"
	"adpulse/domain/run"
	"adpulse/domain/verdict"
)

// RenderMarkdown builds the human-readable run report.
func RenderMarkdown(manifest *run.Manifest, results []verdict.ValidationResult, creatives []creative.Candidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Campaign Insight Report\n\n")
	fmt.Fprintf(&b, "- **Run:** `%s`\n", manifest.RunID)
	fmt.Fprintf(&b, "- **Query:** %s\n", manifest.Query)
	fmt.Fprintf(&b, "- **Generated:** %s\n\n", manifest.Timestamp.Time().Format("2006-01-02 15:04:05 MST"))

	byStatus := map[verdict.Status][]verdict.ValidationResult{}
	for _, r := range results {
		byStatus[r.Status] = append(byStatus[r.Status], r)
	}

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "%d hypotheses evaluated: %d validated, %d inconclusive, %d refuted.\n\n",
		len(results),
		len(byStatus[verdict.StatusValidated]),
		len(byStatus[verdict.StatusInconclusive]),
		len(byStatus[verdict.StatusRefuted]))

	writeSection(&b, "Validated Findings", byStatus[verdict.StatusValidated])
	writeSection(&b, "Inconclusive", byStatus[verdict.StatusInconclusive])
	writeSection(&b, "Refuted", byStatus[verdict.StatusRefuted])

	if len(creatives) > 0 {
		fmt.Fprintf(&b, "## Proposed Creatives\n\n")
		for _, c := range creatives {
			fmt.Fprintf(&b, "### %s (`%s`)\n\n", c.Headline, c.CreativeID)
			fmt.Fprintf(&b, "- **Campaign:** %s\n", c.Campaign)
			fmt.Fprintf(&b, "- **Type:** %s\n", c.CreativeType)
			fmt.Fprintf(&b, "- **Body:** %s\n", c.Body)
			if c.CTA != "" {
				fmt.Fprintf(&b, "- **CTA:** %s\n", c.CTA)
			}
			if c.Rationale != "" {
				fmt.Fprintf(&b, "- **Rationale:** %s\n", c.Rationale)
			}
			b.WriteString("\n")
		}
	}

	if len(manifest.Ledger.Errors) > 0 {
		fmt.Fprintf(&b, "## Run Diagnostics\n\n")
		fmt.Fprintf(&b, "%d isolated failures during this run:\n\n", len(manifest.Ledger.Errors))
		for _, e := range manifest.Ledger.Errors {
			fmt.Fprintf(&b, "- `%s` stage", e.Stage)
			if e.TaskID != "" {
				fmt.Fprintf(&b, ", task `%s`", e.TaskID)
			}
			if e.HypothesisID != "" {
				fmt.Fprintf(&b, ", hypothesis `%s`", e.HypothesisID)
			}
			fmt.Fprintf(&b, ": %s\n", e.Error)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeSection(b *strings.Builder, title string, results []verdict.ValidationResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, r := range results {
		fmt.Fprintf(b, "### %s\n\n", r.HypothesisText)
		fmt.Fprintf(b, "- **Driver:** %s\n", r.Driver)
		fmt.Fprintf(b, "- **Impact:** %s\n", r.Impact)
		fmt.Fprintf(b, "- **Confidence:** %.2f\n", r.ConfidenceFinal)
		if r.Evidence != nil {
			ev := r.Evidence
			fmt.Fprintf(b, "- **Baseline CTR:** %.4f, **Current CTR:** %.4f\n", ev.BaselineCTR, ev.CurrentCTR)
			if ev.DeltaPct != nil {
				fmt.Fprintf(b, "- **Change:** %+.1f%%\n", *ev.DeltaPct)
			}
			fmt.Fprintf(b, "- **p-value:** %.4f, **effect size:** %.3f (n=%d/%d)\n",
				ev.PValue, ev.EffectSize, ev.NBaseline, ev.NTest)
		}
		if r.Notes != "" {
			fmt.Fprintf(b, "- **Notes:** %s\n", r.Notes)
		}
		b.WriteString("\n")
	}
}

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Campaign Insight Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
h1 { border-bottom: 2px solid #e0e0e0; padding-bottom: .4rem; }
h2 { margin-top: 2rem; color: #16213e; }
code { background: #f4f4f8; padding: .1rem .3rem; border-radius: 3px; }
</style>
</head>
<body>
%s
</body>
</html>`

// RenderHTML converts the markdown report into a standalone HTML page.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(doc, renderer)
	return []byte(fmt.Sprintf(htmlShell, string(body)))
}
