package ports

import (
	"context"

	"adpulse/domain/creative"
)

// SeriesReason explains why a time series could not be produced.
type SeriesReason string

const (
	SeriesMissing        SeriesReason = "timeseries_missing"
	SeriesEmpty          SeriesReason = "timeseries_empty"
	SeriesMetricNotFound SeriesReason = "metric_missing"
)

// SeriesError is the typed failure signal of TimeSeriesPort. Providers
// return it instead of panicking or returning ad hoc error strings, so the
// evaluator can degrade on a typed outcome.
type SeriesError struct {
	Reason SeriesReason
	Scope  string
	Metric string
}

func (e *SeriesError) Error() string {
	return string(e.Reason) + " (scope=" + e.Scope + ", metric=" + e.Metric + ")"
}

// TimeSeriesPort supplies a metric's values over a date range, optionally
// filtered by campaign scope. Implementations must preserve chronological
// order and must not silently reorder.
type TimeSeriesPort interface {
	// Series returns one value per day, oldest first. Scope
	// plan.ScopeAllCampaigns (or "all") means no campaign filter.
	Series(ctx context.Context, scope, metric string) ([]float64, error)

	// CreativesSample returns up to n deduplicated creatives from the
	// dataset for use as generation inspiration.
	CreativesSample(ctx context.Context, n int) ([]creative.Sample, error)
}
