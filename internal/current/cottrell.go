package current

import (
	"fmt"
	"math"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
)

// cottrellFloor replaces t = 0 so the 1/sqrt(t) term stays finite.
const cottrellFloor = 1e-6

// Cottrell returns the Cottrell-like diffusion current k/sqrt(t) at every
// sample time, substituting a 1 us floor for t = 0.
func Cottrell(k float64, times []float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		if t == 0 {
			t = cottrellFloor
		}
		out[i] = k / math.Sqrt(t)
	}
	return out
}

// CottrellParams describes the time-domain model: a Butler-Volmer kinetic
// current around EEq plus a diffusion current K/sqrt(t).
type CottrellParams struct {
	I0          float64 `json:"i0" yaml:"i0"` // exchange current, A
	Alpha       float64 `json:"alpha" yaml:"alpha"`
	Electrons   float64 `json:"electrons" yaml:"electrons"`
	Temperature float64 `json:"temperature" yaml:"temperature"` // K
	EEq         float64 `json:"e_eq" yaml:"e_eq"`               // V
	K           float64 `json:"k" yaml:"k"`                     // A*s^0.5
	UnitFactor  float64 `json:"unit_factor" yaml:"unit_factor"` // A -> reported unit
}

// DefaultCottrellParams returns i0 = 1 uA/cm^2 over 0.01 cm^2, one electron,
// k = 1e-7, reported in microamps.
func DefaultCottrellParams() CottrellParams {
	return CottrellParams{
		I0:          constants.DefaultCottrellJ0 * constants.DefaultCottrellArea,
		Alpha:       constants.DefaultAlpha,
		Electrons:   constants.DefaultCottrellElectrons,
		Temperature: constants.DefaultCottrellTemperature,
		K:           constants.DefaultCottrellK,
		UnitFactor:  constants.MicroampsPerAmp,
	}
}

// Validate checks the parameters.
func (p CottrellParams) Validate() error {
	if err := simerr.First(
		simerr.Positive(component, "i0", p.I0),
		simerr.Positive(component, "electrons", p.Electrons),
		simerr.Positive(component, "temperature", p.Temperature),
		simerr.Finite(component, "e_eq", p.EEq),
		simerr.NonNegative(component, "k", p.K),
		simerr.Positive(component, "unit_factor", p.UnitFactor),
	); err != nil {
		return err
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return simerr.Invalid(component, "alpha", p.Alpha, "must lie in [0, 1]")
	}
	return nil
}

// CottrellTrace holds the two contributions and their sum, in the reported
// unit, one value per sample.
type CottrellTrace struct {
	Kinetic   []float64
	Diffusion []float64
	Total     []float64
}

// Trace evaluates the model at every (potential, time) pair.
func (p CottrellParams) Trace(potentials, times []float64) (*CottrellTrace, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(potentials) != len(times) {
		return nil, simerr.Invalid(component, "potentials", float64(len(potentials)),
			fmt.Sprintf("length must match the %d sample times", len(times)))
	}

	nfrt := p.Electrons * constants.Faraday / (constants.GasConstant * p.Temperature)
	diffusion := Cottrell(p.K, times)
	tr := &CottrellTrace{
		Kinetic:   make([]float64, len(times)),
		Diffusion: diffusion,
		Total:     make([]float64, len(times)),
	}
	for i, e := range potentials {
		tr.Kinetic[i] = butlerVolmer(p.I0, p.Alpha, nfrt, e-p.EEq) * p.UnitFactor
		tr.Diffusion[i] *= p.UnitFactor
		tr.Total[i] = tr.Kinetic[i] + tr.Diffusion[i]
	}
	return tr, nil
}
