package current

import (
	"math"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
	"gonum.org/v1/gonum/floats"
)

// Variant selects which current model a trace uses.
type Variant string

const (
	// VariantFull sums charge transfer, diffusion and adsorption.
	VariantFull Variant = "full"

	// VariantIdeal reports only the charge-transfer term.
	VariantIdeal Variant = "ideal"
)

// Valid returns true if the variant is recognized.
func (v Variant) Valid() bool {
	return v == VariantFull || v == VariantIdeal
}

// Trace evaluates the model at every (potential, time) pair.
func (m *Model) Trace(potentials, times []float64, variant Variant) ([]float64, error) {
	if len(potentials) != len(times) {
		return nil, simerr.Invalid(component, "potentials", float64(len(potentials)), "length must match the time grid")
	}
	if !variant.Valid() {
		return nil, simerr.Invalid(component, "variant", 0, "unknown variant "+string(variant))
	}

	out := make([]float64, len(potentials))
	for i, e := range potentials {
		if variant == VariantIdeal {
			out[i] = m.Ideal(e)
		} else {
			out[i] = m.Current(e, times[i])
		}
	}
	return out, nil
}

// PeakAmplitude returns max |x| over the whole slice.
func PeakAmplitude(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(xs)), math.Abs(floats.Min(xs)))
}

// AddNoise returns a copy of trace with zero-mean Gaussian noise added. The
// standard deviation is fraction times the peak absolute amplitude of the
// entire clean trace, computed once before any sample is perturbed.
func AddNoise(trace []float64, fraction float64, src *stochastic.Source) ([]float64, error) {
	if err := simerr.NonNegative(component, "noise_fraction", fraction); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, simerr.Invalid(component, "source", 0, "random source is required")
	}

	sigma := fraction * PeakAmplitude(trace)
	out := make([]float64, len(trace))
	for i, v := range trace {
		out[i] = v + src.Gaussian(0, sigma)
	}
	return out, nil
}

// CountNonFinite returns the number of NaN or infinite samples.
func CountNonFinite(xs []float64) int {
	n := 0
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			n++
		}
	}
	return n
}
