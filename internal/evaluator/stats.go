package evaluator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"adpulse/domain/verdict"
)

// epsilon guards relative-change divisions against a zero baseline mean.
const epsilon = 1e-9

func mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// sampleVariance returns the (n-1)-weighted variance, 0 for fewer than
// two points.
func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	v, err := stats.SampleVariance(xs)
	if err != nil {
		return 0
	}
	return v
}

// welchPValue computes the two-tailed p-value of Welch's unequal-variance
// t-test using the Student's t CDF with Welch-Satterthwaite degrees of
// freedom. Zero pooled standard error is mapped deterministically: equal
// means give p=1, different means p=0. A NaN here would poison the
// decision machine downstream.
func welchPValue(baseline, test []float64) float64 {
	n1 := float64(len(baseline))
	n2 := float64(len(test))
	if n1 < 2 || n2 < 2 {
		return 1.0
	}

	mean1 := mean(baseline)
	mean2 := mean(test)
	var1 := sampleVariance(baseline)
	var2 := sampleVariance(test)

	se2 := var1/n1 + var2/n2
	if se2 == 0 {
		if mean1 == mean2 {
			return 1.0
		}
		return 0.0
	}

	tStat := (mean2 - mean1) / math.Sqrt(se2)
	df := se2 * se2 / (math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))
	if math.IsNaN(df) || df <= 0 {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - tDist.CDF(math.Abs(tStat)))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// bootstrapPValue runs a fixed-seed permutation bootstrap: resample the
// pooled segments with replacement, recompute the test-minus-baseline mean
// difference, and report the fraction of |resampled diff| >= |observed|.
// The fixed seed makes results reproducible across runs.
func bootstrapPValue(baseline, test []float64, iters int, seed int64) float64 {
	if len(baseline) == 0 || len(test) == 0 || iters < 1 {
		return 1.0
	}

	pool := make([]float64, 0, len(baseline)+len(test))
	pool = append(pool, baseline...)
	pool = append(pool, test...)
	nA := len(baseline)

	obs := mean(test) - mean(baseline)
	rng := rand.New(rand.NewSource(seed))

	sample := make([]float64, len(pool))
	extreme := 0
	for i := 0; i < iters; i++ {
		for j := range sample {
			sample[j] = pool[rng.Intn(len(pool))]
		}
		diff := mean(sample[nA:]) - mean(sample[:nA])
		if math.Abs(diff) >= math.Abs(obs) {
			extreme++
		}
	}
	return float64(extreme) / float64(iters)
}

// cohenD computes the standardized mean difference (test minus baseline)
// normalized by the pooled (n-1)-weighted standard deviation. Zero pooled
// deviation yields exactly 0, never NaN.
func cohenD(baseline, test []float64) float64 {
	na := len(baseline)
	nb := len(test)
	if na+nb-2 <= 0 {
		return 0
	}

	varA := sampleVariance(baseline)
	varB := sampleVariance(test)

	denom := float64(na + nb - 2)
	if denom < 1 {
		denom = 1
	}
	pooledSD := math.Sqrt((float64(na-1)*varA + float64(nb-1)*varB) / denom)
	if pooledSD == 0 {
		return 0
	}
	return (mean(test) - mean(baseline)) / pooledSD
}

// splitBaselineTest splits a series chronologically into the first 70%
// (baseline, minimum one point) and the remaining 30% (test). The ordered
// split encodes the assumption that hypotheses concern a recent shift.
func splitBaselineTest(values []float64) (baseline, test []float64) {
	idx := int(float64(len(values)) * 0.7)
	if idx < 1 {
		idx = 1
	}
	return values[:idx], values[idx:]
}

// changePoint scans the full series with a symmetric sliding window and
// reports the index with the largest absolute relative difference between
// the window means to its left and right. Indices with a zero or undefined
// left mean are skipped.
func changePoint(values []float64, window int) verdict.ChangePoint {
	cp := verdict.ChangePoint{}
	if len(values) < 2*window {
		cp.MethodNote = "timeseries too short for change-point heuristic"
		return cp
	}

	n := len(values)
	bestRel := 0.0
	var bestIdx *int
	for idx := window; idx < n-window; idx++ {
		left := mean(values[idx-window : idx])
		right := mean(values[idx : idx+window])
		if left == 0 || math.IsNaN(left) {
			continue
		}
		rel := (right - left) / left
		if math.Abs(rel) > math.Abs(bestRel) {
			bestRel = rel
			i := idx
			bestIdx = &i
		}
	}

	cp.BestSplit = bestIdx
	cp.RelativeChange = bestRel
	cp.MethodNote = fmt.Sprintf("rolling-window(%d) heuristic", window)
	return cp
}
