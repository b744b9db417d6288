package verdict

import (
	"adpulse/domain/core"
	"adpulse/domain/insight"
)

// Status represents the validation status of a hypothesis
type Status string

const (
	StatusValidated    Status = "VALIDATED"
	StatusRefuted      Status = "REFUTED"
	StatusInconclusive Status = "INCONCLUSIVE"
)

// Impact classifies the business impact of a confirmed metric movement
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Method identifies which statistical test produced the p-value
type Method string

const (
	MethodTTest     Method = "t-test"
	MethodBootstrap Method = "bootstrap"
)

// ChangePoint is the outcome of the sliding-window change-point heuristic.
// BestSplit is nil when the series was too short for the window.
type ChangePoint struct {
	BestSplit      *int    `json:"best_split"`
	RelativeChange float64 `json:"relative_change"`
	MethodNote     string  `json:"method_note"`
}

// Validation carries the raw statistical outputs of one evaluation.
// Error is set only on the failure path, in which case the numeric
// fields are zero-valued.
type Validation struct {
	Metric            string      `json:"metric,omitempty"`
	Method            Method      `json:"method,omitempty"`
	BaselineMean      float64     `json:"baseline_mean"`
	TestMean          float64     `json:"test_mean"`
	RelativeChangePct float64     `json:"relative_change_pct"`
	PValue            float64     `json:"p_value"`
	EffectSize        float64     `json:"effect_size"`
	NBaseline         int         `json:"n_baseline"`
	NTest             int         `json:"n_test"`
	ChangePoint       ChangePoint `json:"change_point"`
	Error             string      `json:"error,omitempty"`
}

// Evidence holds the derived display fields consumed by reporting.
// DeltaPct is nil when the baseline mean was zero or unknown.
type Evidence struct {
	BaselineCTR float64     `json:"baseline_ctr"`
	CurrentCTR  float64     `json:"current_ctr"`
	DeltaPct    *float64    `json:"ctr_delta_pct"`
	EffectSize  float64     `json:"effect_size"`
	PValue      float64     `json:"p_value"`
	NBaseline   int         `json:"n_baseline"`
	NTest       int         `json:"n_test"`
	ChangePoint ChangePoint `json:"change_point"`
}

// ValidationResult is the immutable verdict on a single hypothesis.
// Driver, HypothesisText and SupportingDataPoints echo the evaluated
// hypothesis so the result is self-contained for reporting.
type ValidationResult struct {
	HypothesisID         core.HypothesisID `json:"hypothesis_id"`
	Driver               insight.Driver    `json:"driver"`
	HypothesisText       string            `json:"hypothesis_text"`
	SupportingDataPoints []string          `json:"supporting_data_points"`
	Validation           Validation        `json:"validation"`
	Evidence             *Evidence         `json:"evidence,omitempty"`
	Impact               Impact            `json:"impact"`
	ConfidenceFinal      float64           `json:"confidence_final"`
	Status               Status            `json:"status"`
	Notes                string            `json:"notes,omitempty"`
}
