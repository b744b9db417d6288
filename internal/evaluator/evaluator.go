// Package evaluator validates hypotheses against observed metric data.
//
// The evaluator is a pure statistical machine: it reads the CTR series
// through a TimeSeriesPort, splits it chronologically, compares the
// segments with Welch's t-test or a fixed-seed bootstrap, and folds the
// numbers through a deterministic decision ladder. It never returns an
// error to its caller. Missing data and internal computation failures
// degrade to an INCONCLUSIVE verdict with a low confidence so one broken
// hypothesis cannot take down a pipeline run.
package evaluator

import (
	"context"
	"fmt"
	"math"

	"adpulse/domain/insight"
	"adpulse/domain/plan"
	"adpulse/domain/verdict"
	"adpulse/internal/config"
	"adpulse/ports"
)

// Confidence assigned on the degraded paths. Data unavailability is
// slightly more trustworthy than an internal computation failure.
const (
	confidenceDataUnavailable   = 0.2
	confidenceComputationFailed = 0.1
)

// Evaluator validates hypotheses about the CTR metric across all campaigns.
type Evaluator struct {
	cfg    config.EvaluatorConfig
	series ports.TimeSeriesPort
	rec    ports.Recorder
}

// New creates an evaluator reading from series with thresholds cfg.
func New(cfg config.EvaluatorConfig, series ports.TimeSeriesPort, rec ports.Recorder) *Evaluator {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Evaluator{cfg: cfg, series: series, rec: rec}
}

// Validate evaluates a single hypothesis and always returns a usable
// result. The error return exists to satisfy ports.EvaluatorPort and is
// always nil.
func (e *Evaluator) Validate(ctx context.Context, hyp insight.Hypothesis) (res verdict.ValidationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.rec.Error("evaluator: panic validating hypothesis %s: %v", hyp.ID, r)
			res = e.computationFailed(hyp, fmt.Sprintf("%v", r))
			err = nil
		}
	}()

	values, serr := e.series.Series(ctx, plan.ScopeAllCampaigns, "ctr")
	if serr != nil || len(values) < 2 {
		e.rec.Warn("evaluator: no usable ctr series for hypothesis %s: %v", hyp.ID, serr)
		return e.dataUnavailable(hyp, serr), nil
	}

	baseline, test := splitBaselineTest(values)

	var (
		method verdict.Method
		pValue float64
	)
	if len(baseline) >= e.cfg.MinSamplesForTTest && len(test) >= e.cfg.MinSamplesForTTest {
		method = verdict.MethodTTest
		pValue = welchPValue(baseline, test)
	} else {
		method = verdict.MethodBootstrap
		pValue = bootstrapPValue(baseline, test, e.cfg.BootstrapIters, e.cfg.BootstrapSeed)
	}

	baselineMean := mean(baseline)
	testMean := mean(test)
	effectSize := cohenD(baseline, test)

	relChangePct := (testMean - baselineMean) / math.Max(epsilon, baselineMean) * 100
	// DeltaPct display and the impact cap treat a near-zero baseline as
	// undefined; the raw magnitude above still feeds the status decision.
	relDefined := math.Abs(baselineMean) > epsilon

	cp := changePoint(values, e.cfg.RollingWindowDays)
	if cp.BestSplit != nil && math.Abs(cp.RelativeChange) < e.cfg.ChangePointRelativeThreshold {
		// A split below the reporting threshold is noise, not a shift.
		cp.BestSplit = nil
		cp.RelativeChange = 0
		cp.MethodNote += ", no shift above threshold"
	}

	validation := verdict.Validation{
		Metric:            "ctr",
		Method:            method,
		BaselineMean:      baselineMean,
		TestMean:          testMean,
		RelativeChangePct: relChangePct,
		PValue:            pValue,
		EffectSize:        effectSize,
		NBaseline:         len(baseline),
		NTest:             len(test),
		ChangePoint:       cp,
	}

	nTotal := len(values)
	status := e.decideStatus(pValue, effectSize, relChangePct, nTotal)
	confidence := e.calibrateConfidence(hyp.InitialConfidence, pValue, effectSize, nTotal)
	impact := e.classifyImpact(relChangePct, relDefined, effectSize, pValue)

	var deltaPct *float64
	if relDefined {
		d := relChangePct
		deltaPct = &d
	}
	evidence := &verdict.Evidence{
		BaselineCTR: baselineMean,
		CurrentCTR:  testMean,
		DeltaPct:    deltaPct,
		EffectSize:  effectSize,
		PValue:      pValue,
		NBaseline:   len(baseline),
		NTest:       len(test),
		ChangePoint: cp,
	}

	e.rec.Debug("evaluator: hypothesis %s -> %s (p=%.4f, d=%.3f, delta=%.1f%%, method=%s)",
		hyp.ID, status, pValue, effectSize, relChangePct, method)

	return verdict.ValidationResult{
		HypothesisID:         hyp.ID,
		Driver:               hyp.Driver,
		HypothesisText:       hyp.Hypothesis,
		SupportingDataPoints: hyp.SupportingDataPoints,
		Validation:           validation,
		Evidence:             evidence,
		Impact:               impact,
		ConfidenceFinal:      confidence,
		Status:               status,
		Notes:                fmt.Sprintf("Evaluated driver=%s using %s", hyp.Driver, method),
	}, nil
}

// decideStatus applies the verdict ladder, strongest evidence first:
// very strong (p<0.01, |d|>=0.5, n>=30) and threshold evidence (p below
// the configured cutoff with a relative change past the CTR threshold)
// both validate; significance alone is inconclusive; anything weaker
// refutes.
func (e *Evaluator) decideStatus(pValue, effectSize, relChangePct float64, nTotal int) verdict.Status {
	switch {
	case pValue < 0.01 && math.Abs(effectSize) >= 0.5 && nTotal >= 30:
		return verdict.StatusValidated
	case pValue < e.cfg.PValueThreshold && math.Abs(relChangePct) >= e.cfg.CTRDropPctThreshold:
		return verdict.StatusValidated
	case pValue < e.cfg.PValueThreshold:
		return verdict.StatusInconclusive
	default:
		return verdict.StatusRefuted
	}
}

// calibrateConfidence adjusts the generator's prior with additive
// increments for significance, effect magnitude and sample size, then
// clips to [0,1].
func (e *Evaluator) calibrateConfidence(initial, pValue, effectSize float64, nTotal int) float64 {
	conf := initial

	switch {
	case pValue < 0.01:
		conf += 0.25
	case pValue < 0.05:
		conf += 0.12
	default:
		conf -= 0.12
	}

	absD := math.Abs(effectSize)
	switch {
	case absD >= 0.8:
		conf += 0.2
	case absD >= 0.5:
		conf += 0.1
	}

	if nTotal < 30 {
		conf -= 0.15
	}

	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// classifyImpact buckets the movement into low/medium/high. An undefined
// relative change (zero baseline) caps the classification at medium.
func (e *Evaluator) classifyImpact(relChangePct float64, relDefined bool, effectSize, pValue float64) verdict.Impact {
	if !relDefined {
		return verdict.ImpactMedium
	}
	absRel := math.Abs(relChangePct)
	absD := math.Abs(effectSize)
	switch {
	case absRel > 25 && absD > 0.5 && pValue < 0.05:
		return verdict.ImpactHigh
	case absRel > 10 && absD > 0.3:
		return verdict.ImpactMedium
	default:
		return verdict.ImpactLow
	}
}

// dataUnavailable is the degraded verdict for a missing or too-short series.
func (e *Evaluator) dataUnavailable(hyp insight.Hypothesis, cause error) verdict.ValidationResult {
	reason := "series unavailable"
	if cause != nil {
		reason = cause.Error()
	}
	return verdict.ValidationResult{
		HypothesisID:         hyp.ID,
		Driver:               hyp.Driver,
		HypothesisText:       hyp.Hypothesis,
		SupportingDataPoints: hyp.SupportingDataPoints,
		Validation:           verdict.Validation{Metric: "ctr", Error: reason},
		Impact:               verdict.ImpactLow,
		ConfidenceFinal:      confidenceDataUnavailable,
		Status:               verdict.StatusInconclusive,
		Notes:                fmt.Sprintf("Insufficient data for evaluation (driver=%s)", hyp.Driver),
	}
}

// computationFailed is the degraded verdict for an internal failure.
func (e *Evaluator) computationFailed(hyp insight.Hypothesis, detail string) verdict.ValidationResult {
	return verdict.ValidationResult{
		HypothesisID:         hyp.ID,
		Driver:               hyp.Driver,
		HypothesisText:       hyp.Hypothesis,
		SupportingDataPoints: hyp.SupportingDataPoints,
		Validation:           verdict.Validation{Metric: "ctr", Error: detail},
		Impact:               verdict.ImpactLow,
		ConfidenceFinal:      confidenceComputationFailed,
		Status:               verdict.StatusInconclusive,
		Notes:                fmt.Sprintf("Evaluation failed internally: %s", detail),
	}
}
