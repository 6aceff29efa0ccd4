package stochastic

import (
	"math"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
)

const component = "stochastic"

// Range is a closed interval [Lo, Hi].
type Range struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Contains reports whether lo <= x <= hi.
func (r Range) Contains(x float64) bool {
	return x >= r.Lo && x <= r.Hi
}

// Validate checks the bounds are finite and ordered.
func (r Range) Validate(name string) error {
	if err := simerr.First(
		simerr.Finite(component, name+".lo", r.Lo),
		simerr.Finite(component, name+".hi", r.Hi),
	); err != nil {
		return err
	}
	if r.Lo > r.Hi {
		return simerr.Invalid(component, name+".lo", r.Lo, "must not exceed hi")
	}
	return nil
}

// Process parameterises a mean-reverting trajectory
//
//	x[i+1] = x[i] + Theta*(Mean - x[i])*dt + Sigma*sqrt(dt)*Z_i
//
// followed by a clamp of the whole trajectory into Clamp.
type Process struct {
	Initial float64 `json:"initial" yaml:"initial"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Theta   float64 `json:"theta" yaml:"theta"`
	Sigma   float64 `json:"sigma" yaml:"sigma"`
	Clamp   Range   `json:"clamp" yaml:"clamp"`
}

// PHProcess is the extracellular pH fluctuation model (physiological 6.5-7.8).
func PHProcess() Process {
	return Process{
		Initial: 7.2,
		Mean:    7.2,
		Theta:   0.05,
		Sigma:   0.1,
		Clamp:   Range{Lo: 6.5, Hi: 7.8},
	}
}

// OxygenProcess is the dissolved-oxygen fraction model (10%-30%).
func OxygenProcess() Process {
	return Process{
		Initial: 0.20,
		Mean:    0.20,
		Theta:   0.05,
		Sigma:   0.05,
		Clamp:   Range{Lo: 0.10, Hi: 0.30},
	}
}

// Validate checks the process parameters.
func (p Process) Validate() error {
	return simerr.First(
		simerr.Finite(component, "initial", p.Initial),
		simerr.Finite(component, "mean", p.Mean),
		simerr.NonNegative(component, "theta", p.Theta),
		simerr.NonNegative(component, "sigma", p.Sigma),
		p.Clamp.Validate("clamp"),
	)
}

// Generate returns steps+1 samples. The raw recurrence runs unclamped to the
// end and the clamp is applied to the finished sequence; clamping inside the
// loop would change the dynamics near the bounds.
func (p Process) Generate(dt float64, steps int, src *Source) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := simerr.Positive(component, "dt", dt); err != nil {
		return nil, err
	}
	if steps < 0 {
		return nil, simerr.Invalid(component, "steps", float64(steps), "must be non-negative")
	}
	if src == nil {
		return nil, simerr.Invalid(component, "source", 0, "random source is required")
	}

	x := make([]float64, steps+1)
	x[0] = p.Initial
	noise := p.Sigma * math.Sqrt(dt)
	for i := 0; i < steps; i++ {
		x[i+1] = x[i] + p.Theta*(p.Mean-x[i])*dt + noise*src.Normal()
	}
	Clamp(x, p.Clamp)
	return x, nil
}

// Clamp forces every element of xs into r in place.
func Clamp(xs []float64, r Range) {
	for i, v := range xs {
		xs[i] = math.Min(math.Max(v, r.Lo), r.Hi)
	}
}
