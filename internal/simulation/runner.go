package simulation

import (
	"context"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/kinetics"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/logging"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/waveform"
)

// Runner executes scenarios. Both fields are optional.
type Runner struct {
	Logger *slog.Logger
	Trace  *logging.RunTrace
}

// NewRunner creates a runner. A nil logger discards output; a nil trace
// records nothing.
func NewRunner(logger *slog.Logger, trace *logging.RunTrace) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{Logger: logger, Trace: trace}
}

func (r *Runner) log() *slog.Logger {
	if r == nil || r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

func (r *Runner) trace() *logging.RunTrace {
	if r == nil {
		return nil
	}
	return r.Trace
}

// FSCVResult holds every sequence of a finished FSCV run. All slices have one
// value per grid sample.
type FSCVResult struct {
	Name    string          `json:"name"`
	Seed    uint64          `json:"seed"`
	Variant current.Variant `json:"variant"`

	// Duration is the scan time in seconds, derived from the scan rate when
	// the scenario left it zero.
	Duration float64 `json:"duration"`

	Times     []float64 `json:"times"`
	Potential []float64 `json:"potential"`

	// Clean is the noiseless model output; Current is what was "measured"
	// and equals Clean when noise is off.
	Clean   []float64 `json:"clean"`
	Current []float64 `json:"current"`

	// ChargeTransfer, Diffusion and Adsorption are the noiseless per-term
	// contributions of the full model. They are nil unless the scenario asked
	// for terms.
	ChargeTransfer []float64 `json:"charge_transfer,omitempty"`
	Diffusion      []float64 `json:"diffusion,omitempty"`
	Adsorption     []float64 `json:"adsorption,omitempty"`

	// Peaks are located on the clean trace.
	Peaks current.Peaks `json:"peaks"`

	// NonFinite counts samples of Clean that overflowed to +/-Inf or NaN.
	NonFinite int `json:"non_finite"`

	Summary map[string]float64 `json:"summary"`
}

// Columns returns the run as named series in export order.
func (res *FSCVResult) Columns() series.Table {
	cols := series.Table{
		{Name: "time", Values: res.Times},
		{Name: "potential", Values: res.Potential},
		{Name: "current", Values: res.Current},
		{Name: "clean_current", Values: res.Clean},
	}
	if res.ChargeTransfer != nil {
		cols = append(cols,
			series.Column{Name: "charge_transfer", Values: res.ChargeTransfer},
			series.Column{Name: "diffusion", Values: res.Diffusion},
			series.Column{Name: "adsorption", Values: res.Adsorption},
		)
	}
	return cols
}

// decompose splits the full-model current at every sample into its terms.
func decompose(m *current.Model, potential, times []float64) (ct, diff, ads []float64) {
	ct = make([]float64, len(times))
	diff = make([]float64, len(times))
	ads = make([]float64, len(times))
	for i, e := range potential {
		t := m.Decompose(e, times[i])
		ct[i], diff[i], ads[i] = t.ChargeTransfer, t.Diffusion, t.Adsorption
	}
	return ct, diff, ads
}

// RunFSCV validates the scenario, then computes the waveform and current trace.
func (r *Runner) RunFSCV(s FSCVScenario) (*FSCVResult, error) {
	if s.Variant == "" {
		s.Variant = current.VariantFull
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger := r.log().With("run", "fscv", "seed", s.Seed)

	scan, err := s.scan()
	if err != nil {
		return nil, err
	}
	if s.Scan.Total == 0 {
		logger.Debug("scan duration derived from scan rate", "duration", scan.Total, "scan_rate", s.Current.ScanRate)
	}
	s.Scan = scan

	grid, err := timegrid.NewHalfOpen(s.Scan.Total, s.Dt)
	if err != nil {
		return nil, err
	}
	potential, err := waveform.Generate(s.Scan, grid)
	if err != nil {
		return nil, err
	}
	model, err := current.NewModel(s.currentParams())
	if err != nil {
		return nil, err
	}

	r.trace().Event("run_started", map[string]any{
		"kind":    string(constants.RunKindFSCV),
		"seed":    s.Seed,
		"samples": grid.Len(),
		"variant": string(s.Variant),
	})
	logger.Debug("fscv run started", "samples", grid.Len(), "variant", s.Variant)

	times := grid.Times()
	clean, err := model.Trace(potential, times, s.Variant)
	if err != nil {
		return nil, err
	}

	measured := clean
	if s.Noise {
		measured, err = current.AddNoise(clean, s.NoiseFraction, stochastic.NewSource(s.Seed))
		if err != nil {
			return nil, err
		}
	}

	res := &FSCVResult{
		Name:      s.Name,
		Seed:      s.Seed,
		Variant:   s.Variant,
		Duration:  s.Scan.Total,
		Times:     times,
		Potential: potential,
		Clean:     clean,
		Current:   measured,
		NonFinite: current.CountNonFinite(clean),
	}
	if s.Terms {
		res.ChargeTransfer, res.Diffusion, res.Adsorption = decompose(model, potential, times)
	}
	if res.NonFinite > 0 {
		logger.Warn("current trace contains non-finite samples", "count", res.NonFinite)
		r.trace().Event("non_finite_current", map[string]any{"count": res.NonFinite})
	}

	res.Peaks, err = current.FindPeaks(potential, clean)
	if err != nil {
		return nil, err
	}
	res.Summary = map[string]float64{
		"samples":            float64(grid.Len()),
		"duration":           s.Scan.Total,
		"oxidation_peak":     res.Peaks.Oxidation.Current,
		"oxidation_peak_e":   res.Peaks.Oxidation.Potential,
		"reduction_peak":     res.Peaks.Reduction.Current,
		"reduction_peak_e":   res.Peaks.Reduction.Potential,
		"peak_amplitude":     current.PeakAmplitude(clean),
		"exchange_density":   model.ExchangeDensity(),
		"non_finite_samples": float64(res.NonFinite),
	}

	r.trace().Event("run_finished", map[string]any{
		"kind":           string(constants.RunKindFSCV),
		"seed":           s.Seed,
		"oxidation_peak": res.Peaks.Oxidation.Current,
	})
	logger.Info("fscv run finished",
		"samples", grid.Len(),
		"oxidation_peak", res.Peaks.Oxidation.Current,
		"reduction_peak", res.Peaks.Reduction.Current)
	return res, nil
}

// OxidationResult holds every sequence of a finished oxidation run. All
// slices have one value per grid sample.
type OxidationResult struct {
	Name string `json:"name"`
	Seed uint64 `json:"seed"`

	Times    []float64 `json:"times"`
	PH       []float64 `json:"ph"`
	Oxygen   []float64 `json:"oxygen"`
	Dopamine []float64 `json:"dopamine"`
	Peroxide []float64 `json:"peroxide"`
	Quinone  []float64 `json:"quinone"`

	Events []events.Event `json:"events"`

	// Applied is the number of grid steps that received a pulse. Events on
	// the final sample have no following step and are never applied.
	Applied    int `json:"applied"`
	Collisions int `json:"collisions"`

	Summary map[string]float64 `json:"summary"`
}

// Columns returns the run as named series in export order.
func (res *OxidationResult) Columns() series.Table {
	return series.Table{
		{Name: "time", Values: res.Times},
		{Name: "ph", Values: res.PH},
		{Name: "oxygen", Values: res.Oxygen},
		{Name: "dopamine", Values: res.Dopamine},
		{Name: "peroxide", Values: res.Peroxide},
		{Name: "quinone", Values: res.Quinone},
	}
}

// RunOxidation validates the scenario, draws the pH and oxygen trajectories
// and the stress pulses, and integrates the reaction network.
func (r *Runner) RunOxidation(s OxidationScenario) (*OxidationResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	policy, _ := events.ParsePolicy(string(s.Pulses.Policy))
	logger := r.log().With("run", "oxidation", "seed", s.Seed)

	grid, err := timegrid.NewClosed(s.Total, s.Dt)
	if err != nil {
		return nil, err
	}

	r.trace().Event("run_started", map[string]any{
		"kind":    string(constants.RunKindOxidation),
		"seed":    s.Seed,
		"samples": grid.Len(),
		"pulses":  s.Pulses.Count,
	})
	logger.Debug("oxidation run started", "samples", grid.Len(), "pulses", s.Pulses.Count)

	src := stochastic.NewSource(s.Seed)
	ph, err := s.PH.Generate(grid.Dt(), grid.Steps(), src)
	if err != nil {
		return nil, err
	}
	oxygen, err := s.Oxygen.Generate(grid.Dt(), grid.Steps(), src)
	if err != nil {
		return nil, err
	}

	var evs []events.Event
	if s.Pulses.Count > 0 {
		evs, err = events.Schedule(s.Total, s.Pulses.Count, s.Pulses.Magnitude, grid, src)
		if err != nil {
			return nil, err
		}
	}
	table := events.NewTable(evs, policy)
	if c := events.Collisions(evs); c > 0 {
		logger.Debug("stress pulses share a grid index", "collisions", c, "policy", policy)
	}

	applied := 0
	tr, err := kinetics.Integrate(grid, s.Initial, ph, oxygen, s.Kinetics, kinetics.Options{
		Pulses: table,
		OnPulse: func(p kinetics.Pulse) {
			applied++
			logger.Log(context.Background(), logging.LevelTrace, "pulse applied", "step", p.Step, "magnitude", p.Magnitude)
			r.trace().Event("event_applied", map[string]any{
				"step":      p.Step,
				"t":         grid.At(p.Step),
				"magnitude": p.Magnitude,
				"events":    p.Events,
			})
		},
	})
	if err != nil {
		return nil, err
	}

	res := &OxidationResult{
		Name:       s.Name,
		Seed:       s.Seed,
		Times:      grid.Times(),
		PH:         ph,
		Oxygen:     oxygen,
		Dopamine:   tr.Dopamine,
		Peroxide:   tr.Peroxide,
		Quinone:    tr.Quinone,
		Events:     evs,
		Applied:    applied,
		Collisions: events.Collisions(evs),
	}
	res.Summary = oxidationSummary(res)
	if res.Summary["min_peroxide"] < 0 {
		logger.Warn("peroxide went negative", "min", res.Summary["min_peroxide"])
	}

	r.trace().Event("run_finished", map[string]any{
		"kind":          string(constants.RunKindOxidation),
		"seed":          s.Seed,
		"final_quinone": res.Summary["final_quinone"],
		"applied":       applied,
	})
	logger.Info("oxidation run finished",
		"samples", grid.Len(),
		"final_dopamine", res.Summary["final_dopamine"],
		"final_quinone", res.Summary["final_quinone"],
		"pulses_applied", applied)
	return res, nil
}

func oxidationSummary(res *OxidationResult) map[string]float64 {
	last := len(res.Times) - 1
	injected := 0.0
	for _, ev := range res.Events {
		injected += ev.Magnitude
	}
	return map[string]float64{
		"samples":        float64(len(res.Times)),
		"final_dopamine": res.Dopamine[last],
		"final_peroxide": res.Peroxide[last],
		"final_quinone":  res.Quinone[last],
		"min_peroxide":   floats.Min(res.Peroxide),
		"max_peroxide":   floats.Max(res.Peroxide),
		"ph_mean":        stat.Mean(res.PH, nil),
		"ph_std":         stat.StdDev(res.PH, nil),
		"oxygen_mean":    stat.Mean(res.Oxygen, nil),
		"oxygen_std":     stat.StdDev(res.Oxygen, nil),
		"events":         float64(len(res.Events)),
		"events_applied": float64(res.Applied),
		"injected":       injected,
		"mass_balance":   math.Abs(res.Dopamine[last] + res.Quinone[last] - res.Dopamine[0] - res.Quinone[0]),
	}
}
