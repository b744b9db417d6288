package insight

import (
	"adpulse/domain/core"
)

// Driver is a categorical tag naming the presumed cause behind a hypothesis.
type Driver string

const (
	DriverCreativeFatigue    Driver = "creative_fatigue"
	DriverAudienceSaturation Driver = "audience_saturation"
	DriverBidCompetition     Driver = "bid_competition"
	DriverSeasonality        Driver = "seasonality"
	DriverOther              Driver = "other"
)

// Hypothesis is a data-grounded claim about a metric movement, produced by
// a generator collaborator and consumed read-only by the evaluator.
type Hypothesis struct {
	ID                   core.HypothesisID `json:"id"`
	Hypothesis           string            `json:"hypothesis"`
	Driver               Driver            `json:"driver"`
	InitialConfidence    float64           `json:"initial_confidence"`
	SupportingDataPoints []string          `json:"supporting_data_points"`
	RequiredChecks       []string          `json:"required_checks"`
}

// New builds a validated Hypothesis, applying defaults for optional fields.
// InitialConfidence is clipped to [0,1] rather than rejected: generator
// output is best-effort and a clipped value is still usable evidence.
func New(id, text string, driver Driver, initialConfidence float64, supporting, checks []string) (Hypothesis, error) {
	hid, err := core.ParseHypothesisID(id)
	if err != nil {
		return Hypothesis{}, core.NewValidationError("hypothesis.id", err.Error())
	}
	if text == "" {
		text = "No hypothesis provided"
	}
	if driver == "" {
		driver = DriverOther
	}
	if initialConfidence < 0 {
		initialConfidence = 0
	}
	if initialConfidence > 1 {
		initialConfidence = 1
	}
	if supporting == nil {
		supporting = []string{}
	}
	if checks == nil {
		checks = []string{}
	}
	return Hypothesis{
		ID:                   hid,
		Hypothesis:           text,
		Driver:               driver,
		InitialConfidence:    initialConfidence,
		SupportingDataPoints: supporting,
		RequiredChecks:       checks,
	}, nil
}
