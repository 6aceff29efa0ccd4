// Package kinetics integrates dopamine auto-oxidation under fluctuating pH and
// dissolved oxygen with fixed-step explicit Euler.
//
// The reaction network is
//
//	DA + O2 -> DA-quinone + H2O2        rate v = kBase*[DA]*O2*10^(pH-7.2)
//	H2O2 -> (enzymatic removal)         rate kDecomp*[H2O2]
//
// plus exogenous H2O2 pulses injected after the kinetic update of the step
// they are scheduled on.
package kinetics

import (
	"math"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
)

const component = "kinetics"

// Params are the rate constants of the network.
type Params struct {
	KBase    float64 `json:"k_base" yaml:"k_base"`
	KDecomp  float64 `json:"k_decomp" yaml:"k_decomp"`
	PHAnchor float64 `json:"ph_anchor" yaml:"ph_anchor"`

	// ClampNonNegative floors every concentration at zero after each step.
	// Off by default: the unclamped model can drive peroxide negative under
	// extreme rates and that behavior is kept.
	ClampNonNegative bool `json:"clamp_non_negative" yaml:"clamp_non_negative"`
}

// DefaultParams returns the reference rate constants.
func DefaultParams() Params {
	return Params{
		KBase:    constants.DefaultKBase,
		KDecomp:  constants.DefaultKDecomp,
		PHAnchor: constants.PHAnchor,
	}
}

// Validate checks the rate constants.
func (p Params) Validate() error {
	return simerr.First(
		simerr.Finite(component, "k_base", p.KBase),
		simerr.Finite(component, "k_decomp", p.KDecomp),
		simerr.Finite(component, "ph_anchor", p.PHAnchor),
	)
}

// State is one sample of the three tracked concentrations.
type State struct {
	Dopamine float64 `json:"dopamine" yaml:"dopamine"`
	Peroxide float64 `json:"peroxide" yaml:"peroxide"`
	Quinone  float64 `json:"quinone" yaml:"quinone"`
}

// Trajectory holds one State per grid sample as three parallel sequences.
type Trajectory struct {
	Dopamine []float64
	Peroxide []float64
	Quinone  []float64
}

// Len returns the number of samples.
func (tr *Trajectory) Len() int { return len(tr.Dopamine) }

// At returns the state at sample i.
func (tr *Trajectory) At(i int) State {
	return State{Dopamine: tr.Dopamine[i], Peroxide: tr.Peroxide[i], Quinone: tr.Quinone[i]}
}

// PHFactor is the decade-per-pH-unit multiplier anchored at anchor.
func PHFactor(ph, anchor float64) float64 {
	return math.Pow(10, ph-anchor)
}

// Rate is the instantaneous oxidation rate.
func (p Params) Rate(dopamine, oxygen, ph float64) float64 {
	return p.KBase * dopamine * oxygen * PHFactor(ph, p.PHAnchor)
}

// Pulse reports an exogenous pulse applied after step Step.
type Pulse struct {
	Step      int
	Magnitude float64
	Events    int
}

// Options carries the optional inputs of Integrate.
type Options struct {
	// Pulses supplies the stress events; nil means none.
	Pulses *events.Table

	// OnPulse, if set, is called for every index that receives a pulse.
	OnPulse func(Pulse)
}

// Integrate advances initial over the grid. ph and oxygen must have one value
// per grid sample. At step i -> i+1:
//
//	v          = Rate(DA[i], O2[i], pH[i])
//	DA[i+1]    = DA[i] - v*dt
//	H2O2[i+1]  = H2O2[i] + (v - kDecomp*H2O2[i])*dt  (+ pulse at i)
//	Q[i+1]     = Q[i] + v*dt
func Integrate(grid *timegrid.Grid, initial State, ph, oxygen []float64, p Params, opts Options) (*Trajectory, error) {
	if grid == nil || grid.Len() == 0 {
		return nil, simerr.Invalid(component, "grid", 0, "time grid is empty")
	}
	if err := simerr.First(
		p.Validate(),
		simerr.Positive(component, "dt", grid.Dt()),
		simerr.Finite(component, "dopamine0", initial.Dopamine),
		simerr.Finite(component, "peroxide0", initial.Peroxide),
		simerr.Finite(component, "quinone0", initial.Quinone),
	); err != nil {
		return nil, err
	}
	n := grid.Len()
	if len(ph) != n {
		return nil, simerr.Invalid(component, "ph", float64(len(ph)), "length must match the time grid")
	}
	if len(oxygen) != n {
		return nil, simerr.Invalid(component, "oxygen", float64(len(oxygen)), "length must match the time grid")
	}

	dt := grid.Dt()
	tr := &Trajectory{
		Dopamine: make([]float64, n),
		Peroxide: make([]float64, n),
		Quinone:  make([]float64, n),
	}
	tr.Dopamine[0] = initial.Dopamine
	tr.Peroxide[0] = initial.Peroxide
	tr.Quinone[0] = initial.Quinone

	for i := 0; i < n-1; i++ {
		da, h2o2, q := tr.Dopamine[i], tr.Peroxide[i], tr.Quinone[i]
		v := p.Rate(da, oxygen[i], ph[i])

		da += -v * dt
		h2o2 += (v - p.KDecomp*h2o2) * dt
		q += v * dt

		if mag, count := opts.Pulses.Pulse(i); count > 0 {
			h2o2 += mag
			if opts.OnPulse != nil {
				opts.OnPulse(Pulse{Step: i, Magnitude: mag, Events: count})
			}
		}

		if p.ClampNonNegative {
			da, h2o2, q = math.Max(da, 0), math.Max(h2o2, 0), math.Max(q, 0)
		}
		tr.Dopamine[i+1], tr.Peroxide[i+1], tr.Quinone[i+1] = da, h2o2, q
	}
	return tr, nil
}
