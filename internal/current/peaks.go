package current

import (
	"fmt"
	"math"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"gonum.org/v1/gonum/floats"
)

// Peak is one extremum of a voltammogram.
type Peak struct {
	Index     int     `json:"index"`
	Potential float64 `json:"potential"`
	Current   float64 `json:"current"`
}

// Peaks holds the oxidation (maximum) and reduction (minimum) peaks.
type Peaks struct {
	Oxidation Peak `json:"oxidation"`
	Reduction Peak `json:"reduction"`
}

// FindPeaks locates the oxidation and reduction peaks of a current trace.
// Ties resolve to the first occurrence.
func FindPeaks(potentials, trace []float64) (Peaks, error) {
	if len(trace) == 0 || len(potentials) != len(trace) {
		return Peaks{}, simerr.Invalid(component, "trace", float64(len(trace)), "needs one potential per sample")
	}
	ox := floats.MaxIdx(trace)
	red := floats.MinIdx(trace)
	return Peaks{
		Oxidation: Peak{Index: ox, Potential: potentials[ox], Current: trace[ox]},
		Reduction: Peak{Index: red, Potential: potentials[red], Current: trace[red]},
	}, nil
}

// SweepParams describes a steady-state Butler-Volmer sweep over overpotential.
type SweepParams struct {
	I0          float64 `json:"i0" yaml:"i0"` // exchange current, A
	Alpha       float64 `json:"alpha" yaml:"alpha"`
	Electrons   float64 `json:"electrons" yaml:"electrons"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	EtaMin      float64 `json:"eta_min" yaml:"eta_min"`
	EtaMax      float64 `json:"eta_max" yaml:"eta_max"`
	Points      int     `json:"points" yaml:"points"`
}

// DefaultSweepParams mirrors the textbook dopamine sweep: 400 points over
// +/-0.5 V with i0 = 1 uA.
func DefaultSweepParams() SweepParams {
	return SweepParams{
		I0:          constants.DefaultSweepI0,
		Alpha:       constants.DefaultAlpha,
		Electrons:   constants.DefaultElectrons,
		Temperature: constants.RoomTemperature,
		EtaMin:      constants.DefaultSweepEtaMin,
		EtaMax:      constants.DefaultSweepEtaMax,
		Points:      constants.DefaultSweepPoints,
	}
}

// Validate checks the sweep parameters. The point count is bounded by
// constants.MaxGridSamples like every other sampled axis.
func (p SweepParams) Validate() error {
	if err := simerr.First(
		simerr.Positive(component, "i0", p.I0),
		simerr.Positive(component, "electrons", p.Electrons),
		simerr.Positive(component, "temperature", p.Temperature),
		simerr.Finite(component, "eta_min", p.EtaMin),
		simerr.Finite(component, "eta_max", p.EtaMax),
	); err != nil {
		return err
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return simerr.Invalid(component, "alpha", p.Alpha, "must lie in [0, 1]")
	}
	if p.Points < 2 {
		return simerr.Invalid(component, "points", float64(p.Points), "need at least two points")
	}
	if p.Points > constants.MaxGridSamples {
		return simerr.Invalid(component, "points", float64(p.Points), fmt.Sprintf("must not exceed %d", constants.MaxGridSamples))
	}
	if p.EtaMax <= p.EtaMin {
		return simerr.Invalid(component, "eta_max", p.EtaMax, "must exceed eta_min")
	}
	return nil
}

// Sweep evaluates i0*(exp((1-alpha)*nF*eta/RT) - exp(-alpha*nF*eta/RT)) on an
// evenly spaced overpotential axis. It returns the axis and the currents.
func Sweep(p SweepParams) (eta, i []float64, err error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	nfrt := p.Electrons * constants.Faraday / (constants.GasConstant * p.Temperature)
	eta = make([]float64, p.Points)
	floats.Span(eta, p.EtaMin, p.EtaMax)
	i = make([]float64, p.Points)
	for k, x := range eta {
		i[k] = butlerVolmer(p.I0, p.Alpha, nfrt, x)
	}
	return eta, i, nil
}

// butlerVolmer is i0*(exp((1-alpha)*f*eta) - exp(-alpha*f*eta)) with f = nF/RT.
func butlerVolmer(i0, alpha, nfrt, eta float64) float64 {
	return i0 * (math.Exp((1-alpha)*nfrt*eta) - math.Exp(-alpha*nfrt*eta))
}
