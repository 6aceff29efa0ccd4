package simulation

import (
	"math"
	"testing"
)

// AssertInRange asserts that every value of xs lies in [lo, hi].
func AssertInRange(t *testing.T, name string, xs []float64, lo, hi float64) {
	t.Helper()
	for i, x := range xs {
		if x < lo || x > hi {
			t.Errorf("AssertInRange: %s[%d] = %.6f not in [%.4f, %.4f]", name, i, x, lo, hi)
			return
		}
	}
}

// AssertIdentical asserts that two sequences are bit-identical.
func AssertIdentical(t *testing.T, name string, a, b []float64) {
	t.Helper()
	if len(a) != len(b) {
		t.Errorf("AssertIdentical: %s lengths differ: %d vs %d", name, len(a), len(b))
		return
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			t.Errorf("AssertIdentical: %s[%d] differs: %v vs %v", name, i, a[i], b[i])
			return
		}
	}
}

// AssertLength asserts that every named sequence has exactly n samples.
func AssertLength(t *testing.T, n int, named map[string][]float64) {
	t.Helper()
	for name, xs := range named {
		if len(xs) != n {
			t.Errorf("AssertLength: %s has %d samples, want %d", name, len(xs), n)
		}
	}
}

// AssertMassBalance asserts dopamine[i] + quinone[i] stays at its initial
// value within tol. Pulses only add peroxide, so the check holds with or
// without stress events.
func AssertMassBalance(t *testing.T, res *OxidationResult, tol float64) {
	t.Helper()
	want := res.Dopamine[0] + res.Quinone[0]
	for i := range res.Dopamine {
		got := res.Dopamine[i] + res.Quinone[i]
		if math.Abs(got-want) > tol {
			t.Errorf("AssertMassBalance: step %d: dopamine+quinone = %.12f, want %.12f", i, got, want)
			return
		}
	}
}

// AssertNonDecreasing asserts that xs never decreases.
func AssertNonDecreasing(t *testing.T, name string, xs []int) {
	t.Helper()
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[i-1] {
			t.Errorf("AssertNonDecreasing: %s[%d] = %d < %s[%d] = %d", name, i, xs[i], name, i-1, xs[i-1])
			return
		}
	}
}
