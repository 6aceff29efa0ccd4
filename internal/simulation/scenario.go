package simulation

import (
	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/kinetics"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/waveform"
)

const component = "simulation"

// FSCVScenario defines one fast-scan cyclic voltammetry run.
type FSCVScenario struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Scan is the triangular waveform. Scan.Vertex also normalises the
	// adsorption term, overriding Current.EVertex. A zero Scan.Total is
	// derived from Current.ScanRate.
	Scan waveform.Params `json:"scan" yaml:"scan"`

	// Dt is the sample spacing in seconds.
	Dt float64 `json:"dt" yaml:"dt"`

	Current current.Params  `json:"current" yaml:"current"`
	Variant current.Variant `json:"variant" yaml:"variant"`

	// Noise adds Gaussian measurement noise of NoiseFraction times the peak
	// absolute current.
	Noise         bool    `json:"noise" yaml:"noise"`
	NoiseFraction float64 `json:"noise_fraction" yaml:"noise_fraction"`

	// Terms also reports the charge-transfer, diffusion and adsorption
	// contributions of the full model as separate series.
	Terms bool `json:"terms,omitempty" yaml:"terms"`

	Seed uint64 `json:"seed" yaml:"-"`
}

// DefaultFSCVScenario returns the reference dopamine scan: -0.4 V to 1.3 V
// and back over 10 ms, sampled every 10 us, full model, with noise.
func DefaultFSCVScenario() FSCVScenario {
	return FSCVScenario{
		Name: "fscv",
		Scan: waveform.Params{
			Start:  constants.DefaultEStart,
			Vertex: constants.DefaultEVertex,
			Total:  constants.DefaultScanTime,
		},
		Dt:            constants.DefaultScanDt,
		Current:       current.DefaultParams(),
		Variant:       current.VariantFull,
		Noise:         true,
		NoiseFraction: constants.NoiseFraction,
		Seed:          constants.DefaultSeed,
	}
}

// currentParams returns the model parameters with the vertex taken from the scan.
func (s FSCVScenario) currentParams() current.Params {
	p := s.Current
	p.EVertex = s.Scan.Vertex
	return p
}

// scan returns the waveform with a zero Total replaced by the time one
// start -> vertex -> start sweep takes at Current.ScanRate.
func (s FSCVScenario) scan() (waveform.Params, error) {
	p := s.Scan
	if p.Total == 0 {
		d, err := waveform.ScanDuration(p.Start, p.Vertex, s.Current.ScanRate)
		if err != nil {
			return p, err
		}
		p.Total = d
	}
	return p, nil
}

// Validate checks the whole scenario before any sample is computed.
func (s FSCVScenario) Validate() error {
	scan, err := s.scan()
	if err != nil {
		return err
	}
	if err := scan.Validate(); err != nil {
		return err
	}
	if err := simerr.Positive(component, "dt", s.Dt); err != nil {
		return err
	}
	if s.Dt > scan.Total {
		return simerr.Invalid(component, "dt", s.Dt, "must not exceed the scan duration")
	}
	if _, err := timegrid.Steps(scan.Total, s.Dt); err != nil {
		return err
	}
	if err := s.currentParams().Validate(); err != nil {
		return err
	}
	if !s.Variant.Valid() {
		return simerr.Invalid(component, "variant", 0, "unknown variant "+string(s.Variant))
	}
	if s.Noise {
		return simerr.NonNegative(component, "noise_fraction", s.NoiseFraction)
	}
	return nil
}

// PulseSpec configures the exogenous H2O2 stress pulses of an oxidation run.
type PulseSpec struct {
	Count     int              `json:"count" yaml:"count"`
	Magnitude stochastic.Range `json:"magnitude" yaml:"magnitude"`
	Policy    events.Policy    `json:"policy" yaml:"policy"`
}

// OxidationScenario defines one stochastic dopamine auto-oxidation run.
type OxidationScenario struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Total and Dt define the closed time grid, in seconds.
	Total float64 `json:"total" yaml:"total"`
	Dt    float64 `json:"dt" yaml:"dt"`

	Initial  kinetics.State  `json:"initial" yaml:"initial"`
	Kinetics kinetics.Params `json:"kinetics" yaml:"kinetics"`

	PH     stochastic.Process `json:"ph" yaml:"ph"`
	Oxygen stochastic.Process `json:"oxygen" yaml:"oxygen"`

	Pulses PulseSpec `json:"pulses" yaml:"pulses"`

	Seed uint64 `json:"seed" yaml:"-"`
}

// DefaultOxidationScenario returns the one-hour reference run: 1.0 dopamine,
// 0.1 H2O2, physiological pH and oxygen, five pulses of 0.1 to 0.5.
func DefaultOxidationScenario() OxidationScenario {
	return OxidationScenario{
		Name:  "oxidation",
		Total: constants.DefaultReactionTime,
		Dt:    constants.DefaultReactionDt,
		Initial: kinetics.State{
			Dopamine: constants.DefaultDopamine,
			Peroxide: constants.DefaultPeroxide,
		},
		Kinetics: kinetics.DefaultParams(),
		PH:       stochastic.PHProcess(),
		Oxygen:   stochastic.OxygenProcess(),
		Pulses: PulseSpec{
			Count:     constants.DefaultPulseCount,
			Magnitude: stochastic.Range{Lo: constants.DefaultPulseMin, Hi: constants.DefaultPulseMax},
			Policy:    events.PolicySum,
		},
		Seed: constants.DefaultSeed,
	}
}

// Validate checks the whole scenario before any random draw is taken.
func (s OxidationScenario) Validate() error {
	if err := simerr.First(
		simerr.Positive(component, "total", s.Total),
		simerr.Positive(component, "dt", s.Dt),
	); err != nil {
		return err
	}
	if s.Dt > s.Total {
		return simerr.Invalid(component, "dt", s.Dt, "must not exceed the total time")
	}
	if _, err := timegrid.Steps(s.Total, s.Dt); err != nil {
		return err
	}
	if err := simerr.First(
		s.Kinetics.Validate(),
		s.PH.Validate(),
		s.Oxygen.Validate(),
		simerr.Finite(component, "dopamine0", s.Initial.Dopamine),
		simerr.Finite(component, "peroxide0", s.Initial.Peroxide),
		simerr.Finite(component, "quinone0", s.Initial.Quinone),
	); err != nil {
		return err
	}
	if s.Pulses.Count < 0 {
		return simerr.Invalid(component, "pulses.count", float64(s.Pulses.Count), "must be non-negative")
	}
	if s.Pulses.Count > 0 {
		if err := s.Pulses.Magnitude.Validate("pulses.magnitude"); err != nil {
			return err
		}
	}
	if _, err := events.ParsePolicy(string(s.Pulses.Policy)); err != nil {
		return simerr.Invalid(component, "pulses.policy", 0, err.Error())
	}
	return nil
}
