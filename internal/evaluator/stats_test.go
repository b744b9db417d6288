package evaluator

import (
	"math"
	"testing"
)

func TestWelchPValueIdenticalConstants(t *testing.T) {
	a := []float64{0.05, 0.05, 0.05, 0.05}
	b := []float64{0.05, 0.05, 0.05}
	if p := welchPValue(a, b); p != 1.0 {
		t.Errorf("identical constant segments: want p=1, got %v", p)
	}
}

func TestWelchPValueZeroVarianceDifferentMeans(t *testing.T) {
	a := []float64{0.05, 0.05, 0.05, 0.05}
	b := []float64{0.02, 0.02, 0.02}
	if p := welchPValue(a, b); p != 0.0 {
		t.Errorf("constant segments with different means: want p=0, got %v", p)
	}
}

func TestWelchPValueSeparatedSegments(t *testing.T) {
	a := make([]float64, 15)
	b := make([]float64, 15)
	for i := range a {
		a[i] = 0.050 + 0.001*float64(i%3)
		b[i] = 0.020 + 0.001*float64(i%3)
	}
	p := welchPValue(a, b)
	if p >= 0.01 {
		t.Errorf("clearly separated segments: want p < 0.01, got %v", p)
	}
}

func TestWelchPValueOverlappingSegments(t *testing.T) {
	a := []float64{0.05, 0.07, 0.04, 0.06, 0.05, 0.08, 0.03, 0.06, 0.05, 0.07}
	b := []float64{0.06, 0.04, 0.07, 0.05, 0.06, 0.04, 0.07, 0.05, 0.06, 0.05}
	p := welchPValue(a, b)
	if p < 0.05 {
		t.Errorf("overlapping noisy segments: want p >= 0.05, got %v", p)
	}
}

func TestBootstrapPValueReproducible(t *testing.T) {
	a := []float64{0.05, 0.051, 0.049, 0.052, 0.048}
	b := []float64{0.02, 0.021, 0.019}

	p1 := bootstrapPValue(a, b, 2000, 42)
	p2 := bootstrapPValue(a, b, 2000, 42)
	if p1 != p2 {
		t.Errorf("same seed must reproduce: %v vs %v", p1, p2)
	}
}

func TestBootstrapPValueExtremeDifference(t *testing.T) {
	a := []float64{0.050, 0.051, 0.049, 0.052, 0.048, 0.050, 0.051}
	b := []float64{0.020, 0.021, 0.019}
	p := bootstrapPValue(a, b, 2000, 42)
	if p >= 0.05 {
		t.Errorf("extreme observed difference: want p < 0.05, got %v", p)
	}
}

func TestBootstrapPValueNoDifference(t *testing.T) {
	a := []float64{0.05, 0.05, 0.05, 0.05}
	b := []float64{0.05, 0.05}
	// Observed diff is zero, so every resample is at least as extreme.
	if p := bootstrapPValue(a, b, 500, 42); p != 1.0 {
		t.Errorf("zero observed difference: want p=1, got %v", p)
	}
}

func TestCohenDZeroPooledDeviation(t *testing.T) {
	a := []float64{0.05, 0.05, 0.05}
	b := []float64{0.02, 0.02, 0.02}
	if d := cohenD(a, b); d != 0 {
		t.Errorf("zero pooled deviation must give d=0, got %v", d)
	}
}

func TestCohenDDirection(t *testing.T) {
	a := []float64{0.05, 0.06, 0.04, 0.055, 0.045}
	b := []float64{0.02, 0.03, 0.01, 0.025, 0.015}
	d := cohenD(a, b)
	if d >= 0 {
		t.Errorf("test below baseline must give negative d, got %v", d)
	}
	if math.Abs(d) < 0.8 {
		t.Errorf("separation this large should be a large effect, got %v", d)
	}
}

func TestSplitBaselineTest(t *testing.T) {
	tests := []struct {
		n            int
		wantBaseline int
	}{
		{2, 1},
		{3, 2},
		{10, 7},
		{30, 21},
		{31, 21},
	}
	for _, tt := range tests {
		values := make([]float64, tt.n)
		baseline, test := splitBaselineTest(values)
		if len(baseline) != tt.wantBaseline {
			t.Errorf("n=%d: want baseline %d, got %d", tt.n, tt.wantBaseline, len(baseline))
		}
		if len(baseline)+len(test) != tt.n {
			t.Errorf("n=%d: segments must cover the series", tt.n)
		}
	}
}

func TestChangePointFindsStep(t *testing.T) {
	values := make([]float64, 21)
	for i := range values {
		if i < 10 {
			values[i] = 1.0
		} else {
			values[i] = 2.0
		}
	}

	cp := changePoint(values, 7)
	if cp.BestSplit == nil {
		t.Fatal("expected a change point for a step series")
	}
	if *cp.BestSplit != 10 {
		t.Errorf("want split at 10, got %d", *cp.BestSplit)
	}
	if math.Abs(cp.RelativeChange-1.0) > 1e-9 {
		t.Errorf("want relative change 1.0, got %v", cp.RelativeChange)
	}
}

func TestChangePointBounds(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = float64(i) * 0.1
	}

	cp := changePoint(values, 7)
	if cp.BestSplit == nil {
		t.Fatal("expected a change point for a trending series")
	}
	if *cp.BestSplit < 7 || *cp.BestSplit >= len(values)-7 {
		t.Errorf("split %d outside valid range [7, %d)", *cp.BestSplit, len(values)-7)
	}
}

func TestChangePointShortSeries(t *testing.T) {
	values := make([]float64, 13)
	cp := changePoint(values, 7)
	if cp.BestSplit != nil {
		t.Errorf("series shorter than two windows must yield no split, got %d", *cp.BestSplit)
	}
	if cp.MethodNote == "" {
		t.Error("expected a note explaining the short series")
	}
}

func TestChangePointSkipsZeroLeftMean(t *testing.T) {
	values := make([]float64, 20)
	for i := 10; i < 20; i++ {
		values[i] = 1.0
	}
	// Early indices have a zero left-window mean and must be skipped, not
	// produce an infinite relative change.
	cp := changePoint(values, 7)
	if math.IsInf(cp.RelativeChange, 0) || math.IsNaN(cp.RelativeChange) {
		t.Errorf("relative change must stay finite, got %v", cp.RelativeChange)
	}
}
