package current

import (
	"errors"
	"math"
	"testing"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
	"gonum.org/v1/gonum/stat"
)

func TestAddNoiseUsesGlobalScale(t *testing.T) {
	// One large spike dominates the amplitude; every sample, including the
	// small ones, must receive noise scaled by it.
	trace := make([]float64, 20000)
	trace[0] = 100
	noisy, err := AddNoise(trace, 0.05, stochastic.NewSource(8))
	if err != nil {
		t.Fatalf("AddNoise: %v", err)
	}

	diff := make([]float64, len(trace)-1)
	for i := 1; i < len(trace); i++ {
		diff[i-1] = noisy[i] - trace[i]
	}
	sd := stat.StdDev(diff, nil)
	if math.Abs(sd-5) > 0.2 {
		t.Errorf("noise sd = %v, want ~5 (0.05 * peak 100)", sd)
	}
	if trace[1] != 0 {
		t.Error("AddNoise mutated its input")
	}
}

func TestAddNoiseZeroFraction(t *testing.T) {
	trace := []float64{1, -2, 3}
	noisy, err := AddNoise(trace, 0, stochastic.NewSource(1))
	if err != nil {
		t.Fatalf("AddNoise: %v", err)
	}
	for i := range trace {
		if noisy[i] != trace[i] {
			t.Errorf("noisy[%d] = %v, want %v", i, noisy[i], trace[i])
		}
	}
}

func TestAddNoiseDeterministic(t *testing.T) {
	trace := []float64{1, 2, 3, 4}
	a, _ := AddNoise(trace, 0.05, stochastic.NewSource(12))
	b, _ := AddNoise(trace, 0.05, stochastic.NewSource(12))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs", i)
		}
	}
}

func TestAddNoiseInvalid(t *testing.T) {
	if _, err := AddNoise([]float64{1}, -0.1, stochastic.NewSource(1)); !errors.Is(err, simerr.ErrInvalidParameter) {
		t.Errorf("negative fraction error = %v", err)
	}
	if _, err := AddNoise([]float64{1}, 0.1, nil); !errors.Is(err, simerr.ErrInvalidParameter) {
		t.Errorf("nil source error = %v", err)
	}
}

func TestPeakAmplitude(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{1, -3, 2}, 3},
		{[]float64{-1, 4}, 4},
	}
	for _, tt := range tests {
		if got := PeakAmplitude(tt.in); got != tt.want {
			t.Errorf("PeakAmplitude(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindPeaks(t *testing.T) {
	e := []float64{-0.4, 0, 0.5, 1.0, 0.5}
	i := []float64{-3, 0, 2, 7, 1}
	p, err := FindPeaks(e, i)
	if err != nil {
		t.Fatalf("FindPeaks: %v", err)
	}
	if p.Oxidation.Index != 3 || p.Oxidation.Potential != 1.0 || p.Oxidation.Current != 7 {
		t.Errorf("oxidation = %+v", p.Oxidation)
	}
	if p.Reduction.Index != 0 || p.Reduction.Potential != -0.4 {
		t.Errorf("reduction = %+v", p.Reduction)
	}
	if _, err := FindPeaks(nil, nil); err == nil {
		t.Error("expected error for empty trace")
	}
}

func TestSweep(t *testing.T) {
	eta, i, err := Sweep(DefaultSweepParams())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(eta) != 400 || len(i) != 400 {
		t.Fatalf("lengths = %d, %d", len(eta), len(i))
	}
	if eta[0] != -0.5 {
		t.Errorf("eta[0] = %v", eta[0])
	}
	// Symmetric alpha and axis give an odd function.
	for k := 0; k < 200; k++ {
		a, b := i[k], i[len(i)-1-k]
		if math.Abs(a+b) > 1e-9*math.Abs(a) {
			t.Fatalf("i[%d]=%v and mirror %v are not antisymmetric", k, a, b)
		}
	}

	p := DefaultSweepParams()
	p.Points = 1
	if _, _, err := Sweep(p); !errors.Is(err, simerr.ErrInvalidParameter) {
		t.Errorf("Sweep(points=1) error = %v", err)
	}
}
