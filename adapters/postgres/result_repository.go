// Package postgres persists run results for later inspection. Persistence
// is optional: the pipeline runs fully without a DATABASE_URL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"adpulse/domain/core"
	"adpulse/domain/creative"
	"adpulse/domain/run"
	"adpulse/domain/verdict"
)

const schema = `
CREATE TABLE IF NOT EXISTS validation_results (
	id            BIGSERIAL PRIMARY KEY,
	run_id        TEXT NOT NULL,
	hypothesis_id TEXT NOT NULL,
	driver        TEXT NOT NULL,
	status        TEXT NOT NULL,
	impact        TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_validation_results_run ON validation_results (run_id);

CREATE TABLE IF NOT EXISTS creative_candidates (
	id          BIGSERIAL PRIMARY KEY,
	run_id      TEXT NOT NULL,
	creative_id TEXT NOT NULL,
	campaign    TEXT NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_creative_candidates_run ON creative_candidates (run_id);

CREATE TABLE IF NOT EXISTS run_ledgers (
	run_id     TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// ResultRepository stores validation results, creatives and the run ledger.
// It satisfies ports.ResultRepositoryPort.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository connects to Postgres and ensures the schema exists.
func NewResultRepository(databaseURL string) (*ResultRepository, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &ResultRepository{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *ResultRepository) Close() error {
	return r.db.Close()
}

// SaveRun persists everything one run produced inside a single transaction.
func (r *ResultRepository) SaveRun(ctx context.Context, runID core.RunID, results []verdict.ValidationResult, creatives []creative.Candidate, ledger *run.Ledger) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const insertResult = `INSERT INTO validation_results
		(run_id, hypothesis_id, driver, status, impact, confidence, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, res := range results {
		payload, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal result %s: %w", res.HypothesisID, err)
		}
		if _, err := tx.ExecContext(ctx, insertResult,
			runID.String(), res.HypothesisID.String(), string(res.Driver),
			string(res.Status), string(res.Impact), res.ConfidenceFinal, payload,
		); err != nil {
			return fmt.Errorf("failed to insert result %s: %w", res.HypothesisID, err)
		}
	}

	const insertCreative = `INSERT INTO creative_candidates
		(run_id, creative_id, campaign, payload)
		VALUES ($1, $2, $3, $4)`
	for _, cand := range creatives {
		payload, err := json.Marshal(cand)
		if err != nil {
			return fmt.Errorf("failed to marshal creative %s: %w", cand.CreativeID, err)
		}
		if _, err := tx.ExecContext(ctx, insertCreative,
			runID.String(), cand.CreativeID.String(), cand.Campaign, payload,
		); err != nil {
			return fmt.Errorf("failed to insert creative %s: %w", cand.CreativeID, err)
		}
	}

	ledgerPayload, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	const insertLedger = `INSERT INTO run_ledgers (run_id, payload) VALUES ($1, $2)
		ON CONFLICT (run_id) DO UPDATE SET payload = EXCLUDED.payload`
	if _, err := tx.ExecContext(ctx, insertLedger, runID.String(), ledgerPayload); err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", runID, err)
	}
	return nil
}
