// Package current computes electrode current for an applied potential using a
// Butler-Volmer charge-transfer term plus diffusion and adsorption
// contributions, together with the ideal (charge-transfer only) variant.
//
// Exponentials are not saturated: a large overpotential overflows to +Inf or
// NaN and the value is returned as is. Callers that need to detect this use
// CountNonFinite on the finished trace.
package current

import (
	"math"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
)

const component = "current"

// Params holds the electrochemical constants of the current model.
type Params struct {
	Alpha       float64 `json:"alpha" yaml:"alpha"`               // charge-transfer coefficient
	Electrons   float64 `json:"electrons" yaml:"electrons"`       // n
	Faraday     float64 `json:"faraday" yaml:"faraday"`           // C/mol
	GasConstant float64 `json:"gas_constant" yaml:"gas_constant"` // J/(mol*K)
	Temperature float64 `json:"temperature" yaml:"temperature"`   // K
	K0          float64 `json:"k0" yaml:"k0"`                     // cm/s
	Area        float64 `json:"area" yaml:"area"`                 // cm^2
	CBulk       float64 `json:"c_bulk" yaml:"c_bulk"`             // mol/cm^3
	E0          float64 `json:"e0" yaml:"e0"`                     // V
	ScanRate    float64 `json:"scan_rate" yaml:"scan_rate"`       // V/s
	EVertex     float64 `json:"e_vertex" yaml:"e_vertex"`         // V, normalises the adsorption sine
	Diffusivity float64 `json:"diffusivity" yaml:"diffusivity"`   // cm^2/s
	Delta       float64 `json:"delta" yaml:"delta"`               // diffusion layer, cm
	UnitFactor  float64 `json:"unit_factor" yaml:"unit_factor"`   // A -> reported unit
}

// DefaultParams returns the dopamine parameters of the reference FSCV setup.
func DefaultParams() Params {
	return Params{
		Alpha:       constants.DefaultAlpha,
		Electrons:   constants.DefaultElectrons,
		Faraday:     constants.Faraday,
		GasConstant: constants.GasConstant,
		Temperature: constants.RoomTemperature,
		K0:          constants.DefaultK0,
		Area:        constants.DefaultArea,
		CBulk:       constants.DefaultBulkConcentration,
		E0:          constants.DefaultE0,
		ScanRate:    constants.DefaultScanRate,
		EVertex:     constants.DefaultEVertex,
		Diffusivity: constants.DefaultDiffusivity,
		Delta:       constants.DefaultDiffusionLayer,
		UnitFactor:  constants.MicroampsPerAmp,
	}
}

// Validate checks every parameter the model divides by or scales with.
func (p Params) Validate() error {
	if err := simerr.First(
		simerr.Finite(component, "alpha", p.Alpha),
		simerr.Positive(component, "electrons", p.Electrons),
		simerr.Positive(component, "faraday", p.Faraday),
		simerr.Positive(component, "gas_constant", p.GasConstant),
		simerr.Positive(component, "temperature", p.Temperature),
		simerr.NonNegative(component, "k0", p.K0),
		simerr.Positive(component, "area", p.Area),
		simerr.NonNegative(component, "c_bulk", p.CBulk),
		simerr.Finite(component, "e0", p.E0),
		simerr.NonNegative(component, "scan_rate", p.ScanRate),
		simerr.NonZero(component, "e_vertex", p.EVertex),
		simerr.Positive(component, "diffusivity", p.Diffusivity),
		simerr.Positive(component, "delta", p.Delta),
		simerr.Positive(component, "unit_factor", p.UnitFactor),
	); err != nil {
		return err
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return simerr.Invalid(component, "alpha", p.Alpha, "must lie in [0, 1]")
	}
	return nil
}

// Model evaluates the current for a validated parameter set.
type Model struct {
	p        Params
	nfrt     float64 // n*F/(R*T)
	j0       float64 // exchange current density n*F*k0*C
	jLimit   float64 // diffusion plateau n*F*D*C/delta
	tauScale float64 // D/delta^2
}

// NewModel validates p and precomputes the derived constants.
func NewModel(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	nF := p.Electrons * p.Faraday
	return &Model{
		p:        p,
		nfrt:     nF / (p.GasConstant * p.Temperature),
		j0:       nF * p.K0 * p.CBulk,
		jLimit:   nF * p.Diffusivity * p.CBulk / p.Delta,
		tauScale: p.Diffusivity / (p.Delta * p.Delta),
	}, nil
}

// Params returns the parameters the model was built from.
func (m *Model) Params() Params { return m.p }

// ExchangeDensity returns j0 = n*F*k0*C_bulk.
func (m *Model) ExchangeDensity() float64 { return m.j0 }

// ChargeTransfer is the Butler-Volmer term: anodic branch weighted by
// (1-alpha), cathodic branch by alpha.
func (m *Model) ChargeTransfer(e float64) float64 {
	eta := e - m.p.E0
	return m.j0 * (math.Exp((1-m.p.Alpha)*m.nfrt*eta) - math.Exp(-m.p.Alpha*m.nfrt*eta))
}

// Diffusion is the saturating approach to the diffusion-limited plateau. It
// depends on the time since the scan started, not on the potential.
func (m *Model) Diffusion(elapsed float64) float64 {
	return m.jLimit * (1 - math.Exp(-m.p.ScanRate*elapsed/m.tauScale))
}

// Adsorption contributes only on the positive-potential branch.
func (m *Model) Adsorption(e float64) float64 {
	if e <= 0 {
		return 0
	}
	return constants.AdsorptionWeight * m.j0 * math.Sin(math.Pi*e/m.p.EVertex)
}

// Density is the total current density in A/cm^2.
func (m *Model) Density(e, elapsed float64) float64 {
	return m.ChargeTransfer(e) + m.Diffusion(elapsed) + m.Adsorption(e)
}

// Current is the total current in the reported unit.
func (m *Model) Current(e, elapsed float64) float64 {
	return m.Density(e, elapsed) * m.p.Area * m.p.UnitFactor
}

// Ideal is the charge-transfer-only current in the reported unit.
func (m *Model) Ideal(e float64) float64 {
	return m.ChargeTransfer(e) * m.p.Area * m.p.UnitFactor
}

// Terms splits the current at one sample into its three contributions, in the
// reported unit.
type Terms struct {
	ChargeTransfer float64 `json:"charge_transfer"`
	Diffusion      float64 `json:"diffusion"`
	Adsorption     float64 `json:"adsorption"`
}

// Total returns the sum of the contributions.
func (t Terms) Total() float64 {
	return t.ChargeTransfer + t.Diffusion + t.Adsorption
}

// Decompose returns the per-term contributions at (e, elapsed).
func (m *Model) Decompose(e, elapsed float64) Terms {
	scale := m.p.Area * m.p.UnitFactor
	return Terms{
		ChargeTransfer: m.ChargeTransfer(e) * scale,
		Diffusion:      m.Diffusion(elapsed) * scale,
		Adsorption:     m.Adsorption(e) * scale,
	}
}
