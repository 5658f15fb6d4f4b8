package calc

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{42}, 42},
		{"even count", []float64{1, 2, 3, 4}, 2.5},
		{"negatives", []float64{-10, 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.values); !almostEqual(got, tt.want) {
				t.Errorf("Mean(%v) = %f, want %f", tt.values, got, tt.want)
			}
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); !almostEqual(got, tt.want) {
				t.Errorf("Median(%v) = %f, want %f", tt.values, got, tt.want)
			}
		})
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, tt := range tests {
		if got := Quantile(values, tt.q); !almostEqual(got, tt.want) {
			t.Errorf("Quantile(%v, %v) = %f, want %f", values, tt.q, got, tt.want)
		}
	}

	// Input order must not matter and the input must not be mutated.
	shuffled := []float64{4, 1, 3, 2}
	if got := Quantile(shuffled, 0.25); !almostEqual(got, 1.75) {
		t.Errorf("Quantile on unsorted input = %f, want 1.75", got)
	}
	if shuffled[0] != 4 {
		t.Error("Quantile mutated its input")
	}
}

func TestSampleStdDev(t *testing.T) {
	got, ok := SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !ok {
		t.Fatal("expected a std dev for 8 values")
	}
	if math.Abs(got-2.1380899353) > 1e-6 {
		t.Errorf("SampleStdDev = %f, want ~2.13809", got)
	}

	for _, values := range [][]float64{nil, {}, {5}} {
		if _, ok := SampleStdDev(values); ok {
			t.Errorf("SampleStdDev(%v): expected ok=false", values)
		}
	}
}

func TestMinMax(t *testing.T) {
	min, max := MinMax([]float64{3, -1, 7, 0})
	if min != -1 || max != 7 {
		t.Errorf("MinMax = (%f, %f), want (-1, 7)", min, max)
	}

	min, max = MinMax(nil)
	if min != 0 || max != 0 {
		t.Errorf("MinMax(nil) = (%f, %f), want (0, 0)", min, max)
	}
}
