package simulation

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/waveform"
)

// CottrellScenario defines a slow time-domain scan: a triangular potential
// sampled at Points evenly spaced instants from 0 to Scan.Total inclusive,
// with a Butler-Volmer kinetic current plus a K/sqrt(t) diffusion current.
type CottrellScenario struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Scan   waveform.Params `json:"scan" yaml:"scan"`
	Points int             `json:"points" yaml:"points"`

	Current current.CottrellParams `json:"current" yaml:"current"`
}

// DefaultCottrellScenario returns the reference run: -0.5 V to 0.5 V and back
// over 2 s in 1000 samples, k = 1e-7.
func DefaultCottrellScenario() CottrellScenario {
	return CottrellScenario{
		Name: "cottrell",
		Scan: waveform.Params{
			Start:  constants.DefaultCottrellEMin,
			Vertex: constants.DefaultCottrellEMax,
			Total:  constants.DefaultCottrellTime,
		},
		Points:  constants.DefaultCottrellPoints,
		Current: current.DefaultCottrellParams(),
	}
}

// Validate checks the whole scenario before any sample is computed.
func (s CottrellScenario) Validate() error {
	if err := s.Scan.Validate(); err != nil {
		return err
	}
	if s.Points < 2 || s.Points > constants.MaxGridSamples {
		return simerr.Invalid(component, "points", float64(s.Points),
			fmt.Sprintf("must lie in [2, %d]", constants.MaxGridSamples))
	}
	return s.Current.Validate()
}

// CottrellResult holds every sequence of a finished Cottrell run. All slices
// have one value per grid sample.
type CottrellResult struct {
	Name string `json:"name"`

	Times     []float64 `json:"times"`
	Potential []float64 `json:"potential"`

	// Current is Kinetic + Diffusion.
	Current   []float64 `json:"current"`
	Kinetic   []float64 `json:"kinetic"`
	Diffusion []float64 `json:"diffusion"`

	Peaks     current.Peaks `json:"peaks"`
	NonFinite int           `json:"non_finite"`

	Summary map[string]float64 `json:"summary"`
}

// Columns returns the run as named series in export order.
func (res *CottrellResult) Columns() series.Table {
	return series.Table{
		{Name: "time", Values: res.Times},
		{Name: "potential", Values: res.Potential},
		{Name: "current", Values: res.Current},
		{Name: "kinetic", Values: res.Kinetic},
		{Name: "diffusion", Values: res.Diffusion},
	}
}

// RunCottrell validates the scenario, then computes the waveform on an evenly
// spaced grid and evaluates both current contributions.
func (r *Runner) RunCottrell(s CottrellScenario) (*CottrellResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger := r.log().With("run", "cottrell")

	grid, err := timegrid.NewLinspace(s.Scan.Total, s.Points)
	if err != nil {
		return nil, err
	}
	potential, err := waveform.Generate(s.Scan, grid)
	if err != nil {
		return nil, err
	}

	r.trace().Event("run_started", map[string]any{
		"kind":    string(constants.RunKindCottrell),
		"samples": grid.Len(),
	})
	logger.Debug("cottrell run started", "samples", grid.Len(), "dt", grid.Dt())

	times := grid.Times()
	tr, err := s.Current.Trace(potential, times)
	if err != nil {
		return nil, err
	}

	res := &CottrellResult{
		Name:      s.Name,
		Times:     times,
		Potential: potential,
		Current:   tr.Total,
		Kinetic:   tr.Kinetic,
		Diffusion: tr.Diffusion,
		NonFinite: current.CountNonFinite(tr.Total),
	}
	if res.NonFinite > 0 {
		logger.Warn("current trace contains non-finite samples", "count", res.NonFinite)
		r.trace().Event("non_finite_current", map[string]any{"count": res.NonFinite})
	}

	res.Peaks, err = current.FindPeaks(potential, tr.Total)
	if err != nil {
		return nil, err
	}
	res.Summary = map[string]float64{
		"samples":            float64(grid.Len()),
		"dt":                 grid.Dt(),
		"oxidation_peak":     res.Peaks.Oxidation.Current,
		"oxidation_peak_e":   res.Peaks.Oxidation.Potential,
		"reduction_peak":     res.Peaks.Reduction.Current,
		"reduction_peak_e":   res.Peaks.Reduction.Potential,
		"max_kinetic":        floats.Max(tr.Kinetic),
		"min_kinetic":        floats.Min(tr.Kinetic),
		"initial_diffusion":  tr.Diffusion[0],
		"final_diffusion":    tr.Diffusion[len(tr.Diffusion)-1],
		"non_finite_samples": float64(res.NonFinite),
	}

	r.trace().Event("run_finished", map[string]any{
		"kind":           string(constants.RunKindCottrell),
		"oxidation_peak": res.Peaks.Oxidation.Current,
	})
	logger.Info("cottrell run finished",
		"samples", grid.Len(),
		"oxidation_peak", res.Peaks.Oxidation.Current,
		"reduction_peak", res.Peaks.Reduction.Current)
	return res, nil
}
