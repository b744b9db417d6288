// Package report writes run artifacts: JSON outputs for machines, a
// markdown report for humans, and an HTML rendering of that report for
// the results server.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"adpulse/domain/core"
	"adpulse/domain/creative"
	"adpulse/domain/run"
	"adpulse/domain/verdict"
	"adpulse/ports"
)

// Writer persists run artifacts under a run-scoped output directory.
type Writer struct {
	outDir string
	rec    ports.Recorder
}

// NewWriter creates a writer rooted at outDir.
func NewWriter(outDir string, rec ports.Recorder) *Writer {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Writer{outDir: outDir, rec: rec}
}

// WriteAll writes every artifact for one run and records their paths in
// the manifest. Returns the path of the markdown report.
func (w *Writer) WriteAll(manifest *run.Manifest, results []verdict.ValidationResult, creatives []creative.Candidate) (string, error) {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	runID := manifest.RunID

	insightsPath, err := w.writeJSON(fmt.Sprintf("insights_%s.json", runID), results)
	if err != nil {
		return "", err
	}
	manifest.Artifacts["insights"] = insightsPath

	creativesPath, err := w.writeJSON(fmt.Sprintf("creatives_%s.json", runID), creatives)
	if err != nil {
		return "", err
	}
	manifest.Artifacts["creatives"] = creativesPath

	md := RenderMarkdown(manifest, results, creatives)
	mdPath := filepath.Join(w.outDir, fmt.Sprintf("report_%s.md", runID))
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("failed to write markdown report: %w", err)
	}
	manifest.Artifacts["report_md"] = mdPath

	htmlPath := filepath.Join(w.outDir, fmt.Sprintf("report_%s.html", runID))
	if err := os.WriteFile(htmlPath, RenderHTML(md), 0o644); err != nil {
		return "", fmt.Errorf("failed to write html report: %w", err)
	}
	manifest.Artifacts["report_html"] = htmlPath

	// The manifest goes last so it can reference every other artifact.
	metadataPath, err := w.writeJSON(fmt.Sprintf("run_metadata_%s.json", runID), manifest)
	if err != nil {
		return "", err
	}
	manifest.Artifacts["run_metadata"] = metadataPath

	w.rec.Info("report: wrote %d artifacts for run %s to %s", len(manifest.Artifacts), runID, w.outDir)
	return mdPath, nil
}

func (w *Writer) writeJSON(name string, v interface{}) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(w.outDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// LatestReportHTML finds the most recent HTML report in outDir, by the
// timestamp-ordered run id embedded in the filename.
func LatestReportHTML(outDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(outDir, "report_*.html"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no reports found in %s", outDir)
	}
	latest := matches[0]
	for _, m := range matches[1:] {
		if m > latest {
			latest = m
		}
	}
	return latest, nil
}

// LatestInsights loads the most recent insights artifact in outDir.
func LatestInsights(outDir string) ([]verdict.ValidationResult, core.RunID, error) {
	matches, err := filepath.Glob(filepath.Join(outDir, "insights_*.json"))
	if err != nil || len(matches) == 0 {
		return nil, "", fmt.Errorf("no insights found in %s", outDir)
	}
	latest := matches[0]
	for _, m := range matches[1:] {
		if m > latest {
			latest = m
		}
	}

	raw, err := os.ReadFile(latest)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", latest, err)
	}
	var results []verdict.ValidationResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", latest, err)
	}

	base := filepath.Base(latest)
	runID := core.RunID(base[len("insights_") : len(base)-len(".json")])
	return results, runID, nil
}
