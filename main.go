package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"adpulse/adapters/dataset"
	"adpulse/adapters/llm"
	"adpulse/adapters/llm/heuristic"
	"adpulse/adapters/postgres"
	"adpulse/adapters/report"
	"adpulse/domain/core"
	"adpulse/domain/plan"
	"adpulse/domain/run"
	"adpulse/internal"
	"adpulse/internal/config"
	"adpulse/internal/evaluator"
	"adpulse/internal/pipeline"
	"adpulse/internal/scheduler"
	"adpulse/ports"
	"adpulse/ui"
)

const defaultQuery = "Why did ROAS drop over the last two weeks?"

func main() {
	// Load .env file if present (ignore errors, env vars take precedence)
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	if err := runApp(logger); err != nil {
		logger.Error("run failed: %v", err)
		os.Exit(1)
	}
}

func runApp(logger *internal.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	query := defaultQuery
	if args := os.Args[1:]; len(args) > 0 {
		query = strings.Join(args, " ")
	}

	ds, err := dataset.Load(cfg.Paths.DataFile, logger)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	summary := ds.Summary()
	logger.Info("dataset: %d rows, %d campaigns, %s to %s",
		summary.Rows, summary.CampaignCount, summary.DateMin, summary.DateMax)

	ctx := context.Background()
	taskPlan, err := buildPlan(ctx, cfg, query, summary, logger)
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}
	logger.Info("plan: %d tasks (%s)", len(taskPlan.Tasks), taskPlan.Description)

	hypGen, creativeGen := buildGenerators(cfg, ds, logger)
	eval := evaluator.New(cfg.Evaluator, ds, logger)
	exec := pipeline.New(scheduler.New(logger), hypGen, eval, creativeGen, ds, logger)

	result := exec.Run(ctx, taskPlan.Tasks, summary)

	manifest := run.NewManifest(core.NewRunID(), query)
	manifest.Ledger = result.Ledger
	for _, t := range result.Ledger.TasksExecuted {
		logger.Debug("executed task %s (%s)", t.TaskID, t.Name)
	}

	writer := report.NewWriter(cfg.Paths.OutDir, logger)
	mdPath, err := writer.WriteAll(manifest, result.Results, result.Creatives)
	if err != nil {
		return fmt.Errorf("write artifacts: %w", err)
	}
	logger.Info("report written to %s", mdPath)

	if cfg.Database.URL != "" {
		if err := persistRun(ctx, cfg.Database.URL, manifest, result, logger); err != nil {
			// Persistence is best-effort: the artifacts on disk are the
			// source of truth for this run.
			logger.Error("postgres: failed to persist run %s: %v", manifest.RunID, err)
		}
	}

	if cfg.Server.Port != "" {
		server := ui.NewServer(cfg.Paths.OutDir, logger)
		return server.ListenAndServe(":" + cfg.Server.Port)
	}
	return nil
}

// buildPlan uses the LLM planner when credentials are configured, the
// deterministic fallback plan otherwise.
func buildPlan(ctx context.Context, cfg *config.Config, query string, summary ports.DatasetSummary, logger *internal.Logger) (*plan.Plan, error) {
	if cfg.LLM.APIKey == "" {
		logger.Info("planner: no API key configured, using fallback plan")
		return llm.FallbackPlan(query), nil
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     60 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return llm.NewPlanner(client, cfg.LLM.MaxTokens, logger).Plan(ctx, query, summary)
}

// buildGenerators wires the hypothesis and creative generators, choosing
// LLM-backed adapters when credentials exist and heuristic ones otherwise.
func buildGenerators(cfg *config.Config, ds *dataset.Dataset, logger *internal.Logger) (ports.HypothesisGeneratorPort, ports.CreativeGeneratorPort) {
	if cfg.LLM.APIKey == "" {
		logger.Info("generators: no API key configured, using heuristic generators")
		return heuristic.NewGenerator(ds, logger), heuristic.NewCreativeGenerator(logger)
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     60 * time.Second,
	})
	if err != nil {
		logger.Warn("generators: client setup failed (%v), using heuristic generators", err)
		return heuristic.NewGenerator(ds, logger), heuristic.NewCreativeGenerator(logger)
	}
	return llm.NewHypothesisGenerator(client, cfg.LLM.MaxTokens, logger),
		llm.NewCreativeGenerator(client, cfg.LLM.MaxTokens, logger)
}

func persistRun(ctx context.Context, databaseURL string, manifest *run.Manifest, result pipeline.Result, logger *internal.Logger) error {
	repo, err := postgres.NewResultRepository(databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.SaveRun(ctx, manifest.RunID, result.Results, result.Creatives, result.Ledger); err != nil {
		return err
	}
	logger.Info("postgres: persisted run %s", manifest.RunID)
	return nil
}
