// Package waveform generates the triangular applied-potential sweep used in
// fast-scan cyclic voltammetry.
package waveform

import (
	"math"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
)

const component = "waveform"

// Params describes a single triangular scan: Start -> Vertex -> Start over Total seconds.
type Params struct {
	Start  float64 `json:"start" yaml:"start"`   // volts
	Vertex float64 `json:"vertex" yaml:"vertex"` // volts, the turning point
	Total  float64 `json:"total" yaml:"total"`   // seconds
}

// Validate checks the scan parameters.
func (p Params) Validate() error {
	return simerr.First(
		simerr.Finite(component, "start", p.Start),
		simerr.Finite(component, "vertex", p.Vertex),
		simerr.Positive(component, "total", p.Total),
	)
}

// Generate returns one applied potential per grid sample.
//
// Samples with t <= Total/2 lie on the ramp-up branch, the rest on the
// ramp-down branch. Interpolation is written as a*(1-f) + b*f so the vertex
// and the start potential are reproduced exactly at f = 1 and f = 0.
func Generate(p Params, grid *timegrid.Grid) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if grid == nil || grid.Len() == 0 {
		return nil, simerr.Invalid(component, "grid", 0, "time grid is empty")
	}

	half := p.Total / 2
	out := make([]float64, grid.Len())
	for i := range out {
		out[i] = At(p, half, grid.At(i))
	}
	return out, nil
}

// At evaluates the waveform at time t given the precomputed half period.
func At(p Params, half, t float64) float64 {
	if t <= half {
		f := t / half
		return p.Start*(1-f) + p.Vertex*f
	}
	f := (t - half) / half
	return p.Vertex*(1-f) + p.Start*f
}

// ScanDuration returns the time needed to sweep start -> vertex -> start at rate V/s.
func ScanDuration(start, vertex, rate float64) (float64, error) {
	if err := simerr.Positive(component, "scan_rate", rate); err != nil {
		return 0, err
	}
	d := 2 * math.Abs(vertex-start) / rate
	if d == 0 {
		return 0, simerr.Invalid(component, "vertex", vertex, "must differ from start")
	}
	return d, nil
}
