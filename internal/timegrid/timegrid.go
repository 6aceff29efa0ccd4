// Package timegrid provides the immutable uniform time axis shared by every
// simulation component.
package timegrid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
)

const component = "timegrid"

// ratioTolerance absorbs representation error in total/dt before flooring.
// 0.01/1e-5 evaluates to 999.9999999999999 and must count as 1000 steps.
const ratioTolerance = 1e-9

// Grid is an ordered, uniformly spaced sequence of sample times starting at 0.
// A Grid is never mutated after construction.
type Grid struct {
	dt    float64
	total float64
	times []float64
}

// Steps returns floor(total/dt), tolerant to floating-point representation error.
// Ratios that would give a grid longer than constants.MaxGridSamples are
// rejected.
func Steps(total, dt float64) (int, error) {
	if err := simerr.First(
		simerr.Positive(component, "total", total),
		simerr.Positive(component, "dt", dt),
	); err != nil {
		return 0, err
	}
	if dt > total {
		return 0, simerr.Invalid(component, "dt", dt, "must not exceed total")
	}
	ratio := math.Floor(total/dt + ratioTolerance)
	// The closed grid holds ratio+1 samples.
	if ratio+1 > constants.MaxGridSamples {
		return 0, simerr.Invalid(component, "dt", dt, fmt.Sprintf("grid would exceed %d samples", constants.MaxGridSamples))
	}
	return int(ratio), nil
}

// NewClosed builds the grid 0, dt, ..., N*dt with N = floor(total/dt),
// giving N+1 samples.
func NewClosed(total, dt float64) (*Grid, error) {
	n, err := Steps(total, dt)
	if err != nil {
		return nil, err
	}
	return build(total, dt, n+1), nil
}

// NewHalfOpen builds the grid 0, dt, ..., (N-1)*dt, i.e. the half-open
// interval [0, total) with N samples.
func NewHalfOpen(total, dt float64) (*Grid, error) {
	n, err := Steps(total, dt)
	if err != nil {
		return nil, err
	}
	return build(total, dt, n), nil
}

// NewLinspace builds points evenly spaced samples over [0, total] inclusive.
func NewLinspace(total float64, points int) (*Grid, error) {
	if err := simerr.Positive(component, "total", total); err != nil {
		return nil, err
	}
	if points < 2 {
		return nil, simerr.Invalid(component, "points", float64(points), "need at least two samples")
	}
	if points > constants.MaxGridSamples {
		return nil, simerr.Invalid(component, "points", float64(points), fmt.Sprintf("must not exceed %d", constants.MaxGridSamples))
	}
	times := make([]float64, points)
	floats.Span(times, 0, total)
	times[points-1] = total
	return &Grid{dt: total / float64(points-1), total: total, times: times}, nil
}

func build(total, dt float64, length int) *Grid {
	times := make([]float64, length)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return &Grid{dt: dt, total: total, times: times}
}

// Len returns the number of samples.
func (g *Grid) Len() int { return len(g.times) }

// Steps returns the number of integration steps between samples (Len-1).
func (g *Grid) Steps() int { return len(g.times) - 1 }

// Dt returns the sample spacing.
func (g *Grid) Dt() float64 { return g.dt }

// Total returns the requested duration the grid was built from.
func (g *Grid) Total() float64 { return g.total }

// At returns the time of sample i.
func (g *Grid) At(i int) float64 { return g.times[i] }

// Times returns a copy of the sample times.
func (g *Grid) Times() []float64 {
	out := make([]float64, len(g.times))
	copy(out, g.times)
	return out
}

// Index maps a time to the sample at or before it, clamped into the grid.
func (g *Grid) Index(t float64) int {
	i := int(math.Floor(t / g.dt))
	if i < 0 {
		return 0
	}
	if i > len(g.times)-1 {
		return len(g.times) - 1
	}
	return i
}
