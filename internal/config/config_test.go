package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultEvaluatorConfig(t *testing.T) {
	ec := DefaultEvaluatorConfig()
	if ec.PValueThreshold != 0.05 {
		t.Errorf("p_value_threshold default: %v", ec.PValueThreshold)
	}
	if ec.CTRDropPctThreshold != 20.0 {
		t.Errorf("ctr_drop_pct_threshold default: %v", ec.CTRDropPctThreshold)
	}
	if ec.MinSamplesForTTest != 10 {
		t.Errorf("min_samples_for_ttest default: %v", ec.MinSamplesForTTest)
	}
	if ec.BootstrapIters != 2000 {
		t.Errorf("bootstrap_iters default: %v", ec.BootstrapIters)
	}
	if ec.BootstrapSeed != 42 {
		t.Errorf("bootstrap_seed default: %v", ec.BootstrapSeed)
	}
	if ec.RollingWindowDays != 7 {
		t.Errorf("rolling_window_days default: %v", ec.RollingWindowDays)
	}
}

func TestLoadAppliesThresholdsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	yaml := "thresholds:\n  p_value_threshold: 0.01\n  rolling_window_days: 14\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write thresholds: %v", err)
	}
	t.Setenv("THRESHOLDS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Evaluator.PValueThreshold != 0.01 {
		t.Errorf("file override lost: %v", cfg.Evaluator.PValueThreshold)
	}
	if cfg.Evaluator.RollingWindowDays != 14 {
		t.Errorf("file override lost: %v", cfg.Evaluator.RollingWindowDays)
	}
	// Untouched keys keep their defaults.
	if cfg.Evaluator.BootstrapIters != 2000 {
		t.Errorf("default lost: %v", cfg.Evaluator.BootstrapIters)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("thresholds:\n  p_value_threshold: 0.01\n"), 0o644); err != nil {
		t.Fatalf("write thresholds: %v", err)
	}
	t.Setenv("THRESHOLDS_FILE", path)
	t.Setenv("P_VALUE_THRESHOLD", "0.02")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Evaluator.PValueThreshold != 0.02 {
		t.Errorf("env must win over file, got %v", cfg.Evaluator.PValueThreshold)
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("P_VALUE_THRESHOLD", "1.5")

	if _, err := Load(); err == nil {
		t.Error("p_value_threshold outside (0,1) must fail validation")
	}
}

func TestLoadMissingThresholdsFile(t *testing.T) {
	t.Setenv("THRESHOLDS_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Error("a configured but unreadable thresholds file must fail")
	}
}
