// Package events schedules exogenous oxidative-stress pulses (sudden H2O2
// additions) onto a simulation time grid.
package events

import (
	"sort"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
)

const component = "events"

// Event is a single stress pulse. Events are created once per run and never mutated.
type Event struct {
	Index     int     `json:"index"`
	Time      float64 `json:"time"`
	Magnitude float64 `json:"magnitude"`
}

// Schedule draws count pulse times uniformly over [0, total), sorts them,
// then draws count magnitudes uniformly from magnitudes. The i-th sorted time
// is paired with the i-th magnitude draw. Each time maps to the grid sample
// at or before it.
//
// The draw order (all times, then all magnitudes) is part of the contract:
// changing it changes every seeded run.
func Schedule(total float64, count int, magnitudes stochastic.Range, grid *timegrid.Grid, src *stochastic.Source) ([]Event, error) {
	if err := simerr.Positive(component, "total", total); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, simerr.Invalid(component, "count", float64(count), "must be non-negative")
	}
	if err := magnitudes.Validate("magnitude"); err != nil {
		return nil, err
	}
	if grid == nil || grid.Len() == 0 {
		return nil, simerr.Invalid(component, "grid", 0, "time grid is empty")
	}
	if src == nil {
		return nil, simerr.Invalid(component, "source", 0, "random source is required")
	}

	times := src.Uniforms(count, 0, total)
	sort.Float64s(times)
	mags := src.Uniforms(count, magnitudes.Lo, magnitudes.Hi)

	out := make([]Event, count)
	for i := range out {
		out[i] = Event{
			Index:     grid.Index(times[i]),
			Time:      times[i],
			Magnitude: mags[i],
		}
	}
	return out, nil
}
