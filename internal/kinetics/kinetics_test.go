package kinetics

import (
	"errors"
	"math"
	"testing"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
)

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestMassBalanceWithoutDecomposition(t *testing.T) {
	grid, err := timegrid.NewClosed(3600, 0.1)
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	src := stochastic.NewSource(17)
	ph, err := stochastic.PHProcess().Generate(grid.Dt(), grid.Steps(), src)
	if err != nil {
		t.Fatalf("ph: %v", err)
	}
	o2, err := stochastic.OxygenProcess().Generate(grid.Dt(), grid.Steps(), src)
	if err != nil {
		t.Fatalf("oxygen: %v", err)
	}

	p := Params{KBase: 0.01, KDecomp: 0, PHAnchor: 7.2}
	tr, err := Integrate(grid, State{Dopamine: 1, Peroxide: 0.1}, ph, o2, p, Options{})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	total := tr.Dopamine[0] + tr.Quinone[0]
	for i := 0; i < tr.Len(); i++ {
		if got := tr.Dopamine[i] + tr.Quinone[i]; math.Abs(got-total) > 1e-9 {
			t.Fatalf("step %d: DA+Q = %v, want %v", i, got, total)
		}
	}
	if tr.Dopamine[tr.Len()-1] >= tr.Dopamine[0] {
		t.Error("dopamine should be consumed")
	}
}

// Zero oxidation rate leaves dopamine untouched and peroxide follows the
// explicit-Euler discretisation of first-order decay.
func TestZeroRatePeroxideDecay(t *testing.T) {
	grid, err := timegrid.NewClosed(3600, 0.1)
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	n := grid.Len()
	p := Params{KBase: 0, KDecomp: 0.001, PHAnchor: 7.2}
	tr, err := Integrate(grid, State{Dopamine: 1.0, Peroxide: 0.1}, constant(n, 7.2), constant(n, 0.2), p, Options{})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	for i := 0; i < n; i++ {
		if tr.Dopamine[i] != 1.0 {
			t.Fatalf("dopamine[%d] = %v, want 1.0", i, tr.Dopamine[i])
		}
		if tr.Quinone[i] != 0 {
			t.Fatalf("quinone[%d] = %v, want 0", i, tr.Quinone[i])
		}
	}

	for _, i := range []int{0, 1, 100, 10000, n - 1} {
		euler := 0.1 * math.Pow(1-0.001*0.1, float64(i))
		if got := tr.Peroxide[i]; math.Abs(got-euler) > 1e-12 {
			t.Errorf("peroxide[%d] = %v, want Euler %v", i, got, euler)
		}
		exact := 0.1 * math.Exp(-0.001*grid.At(i))
		if got := tr.Peroxide[i]; math.Abs(got-exact) > 1e-3*exact {
			t.Errorf("peroxide[%d] = %v, want ~%v (closed form)", i, got, exact)
		}
	}
}

func TestPulsesAppliedAfterUpdate(t *testing.T) {
	grid, _ := timegrid.NewClosed(10, 1)
	n := grid.Len()
	p := Params{KBase: 0, KDecomp: 0.5, PHAnchor: 7.2}
	evs := []events.Event{{Index: 2, Magnitude: 1}, {Index: 2, Magnitude: 0.5}}

	var seen []Pulse
	tr, err := Integrate(grid, State{Peroxide: 1}, constant(n, 7.2), constant(n, 0.2), p, Options{
		Pulses:  events.NewTable(evs, events.PolicySum),
		OnPulse: func(pl Pulse) { seen = append(seen, pl) },
	})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	// p[1]=0.5, p[2]=0.25, p[3]=0.125+1.5
	if tr.Peroxide[3] != 1.625 {
		t.Errorf("peroxide[3] = %v, want 1.625", tr.Peroxide[3])
	}
	if len(seen) != 1 || seen[0].Step != 2 || seen[0].Events != 2 || seen[0].Magnitude != 1.5 {
		t.Errorf("OnPulse calls = %+v", seen)
	}

	tr, _ = Integrate(grid, State{Peroxide: 1}, constant(n, 7.2), constant(n, 0.2), p, Options{
		Pulses: events.NewTable(evs, events.PolicyFirst),
	})
	if tr.Peroxide[3] != 1.125 {
		t.Errorf("first policy: peroxide[3] = %v, want 1.125", tr.Peroxide[3])
	}
}

func TestEventAtLastIndexNeverApplied(t *testing.T) {
	grid, _ := timegrid.NewClosed(5, 1)
	n := grid.Len()
	evs := []events.Event{{Index: n - 1, Magnitude: 9}}
	tr, err := Integrate(grid, State{Peroxide: 0.1}, constant(n, 7.2), constant(n, 0.2), Params{PHAnchor: 7.2}, Options{
		Pulses: events.NewTable(evs, events.PolicySum),
	})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if tr.Peroxide[n-1] != 0.1 {
		t.Errorf("peroxide[last] = %v, want 0.1", tr.Peroxide[n-1])
	}
}

func TestNegativePeroxideNotClamped(t *testing.T) {
	grid, _ := timegrid.NewClosed(10, 1)
	n := grid.Len()
	// kDecomp*dt > 2 makes explicit Euler overshoot below zero.
	p := Params{KBase: 0, KDecomp: 3, PHAnchor: 7.2}
	tr, err := Integrate(grid, State{Peroxide: 1}, constant(n, 7.2), constant(n, 0.2), p, Options{})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if tr.Peroxide[1] != -2 {
		t.Errorf("peroxide[1] = %v, want -2", tr.Peroxide[1])
	}

	p.ClampNonNegative = true
	tr, _ = Integrate(grid, State{Peroxide: 1}, constant(n, 7.2), constant(n, 0.2), p, Options{})
	for i, v := range tr.Peroxide {
		if v < 0 {
			t.Fatalf("clamped peroxide[%d] = %v", i, v)
		}
	}
}

func TestPHFactor(t *testing.T) {
	tests := []struct {
		ph   float64
		want float64
	}{
		{7.2, 1},
		{8.2, 10},
		{6.2, 0.1},
	}
	for _, tt := range tests {
		if got := PHFactor(tt.ph, 7.2); math.Abs(got-tt.want) > 1e-12*tt.want {
			t.Errorf("PHFactor(%v) = %v, want %v", tt.ph, got, tt.want)
		}
	}
}

func TestIntegrateInvalid(t *testing.T) {
	grid, _ := timegrid.NewClosed(10, 1)
	n := grid.Len()
	good := constant(n, 7.2)
	tests := []struct {
		name   string
		grid   *timegrid.Grid
		ph, o2 []float64
		p      Params
	}{
		{"nil grid", nil, good, good, DefaultParams()},
		{"short ph", grid, good[:3], good, DefaultParams()},
		{"short oxygen", grid, good, good[:3], DefaultParams()},
		{"nan rate", grid, good, good, Params{KBase: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Integrate(tt.grid, State{Dopamine: 1}, tt.ph, tt.o2, tt.p, Options{})
			if !errors.Is(err, simerr.ErrInvalidParameter) {
				t.Errorf("error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}
