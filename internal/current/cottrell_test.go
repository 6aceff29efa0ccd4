package current

import (
	"errors"
	"math"
	"testing"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
)

func TestCottrell(t *testing.T) {
	got := Cottrell(1e-7, []float64{0, 1, 4})
	if got[0] != 1e-7/math.Sqrt(1e-6) {
		t.Errorf("t=0 sample = %v", got[0])
	}
	if got[1] != 1e-7 || got[2] != 0.5e-7 {
		t.Errorf("got %v", got)
	}
}

func TestCottrellTrace(t *testing.T) {
	p := DefaultCottrellParams()
	potentials := []float64{0, 0.1, -0.1}
	times := []float64{0, 1, 4}

	tr, err := p.Trace(potentials, times)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}

	if tr.Kinetic[0] != 0 {
		t.Errorf("kinetic current at equilibrium = %v, want 0", tr.Kinetic[0])
	}
	if tr.Kinetic[1] != -tr.Kinetic[2] {
		t.Errorf("kinetic current not antisymmetric at alpha 0.5: %v, %v", tr.Kinetic[1], tr.Kinetic[2])
	}

	f := p.Electrons * constants.Faraday / (constants.GasConstant * p.Temperature)
	want := p.I0 * p.UnitFactor * 2 * math.Sinh(0.5*f*0.1)
	if math.Abs(tr.Kinetic[1]-want) > 1e-12*math.Abs(want) {
		t.Errorf("kinetic[1] = %v, want %v", tr.Kinetic[1], want)
	}

	for i, tt := range times {
		if tt == 0 {
			tt = 1e-6
		}
		wantDiff := p.K / math.Sqrt(tt) * p.UnitFactor
		if math.Abs(tr.Diffusion[i]-wantDiff) > 1e-12*wantDiff {
			t.Errorf("diffusion[%d] = %v, want %v", i, tr.Diffusion[i], wantDiff)
		}
		if tr.Total[i] != tr.Kinetic[i]+tr.Diffusion[i] {
			t.Errorf("total[%d] = %v, want kinetic + diffusion", i, tr.Total[i])
		}
	}
}

func TestCottrellTraceShiftsWithEquilibrium(t *testing.T) {
	p := DefaultCottrellParams()
	p.EEq = 0.2
	tr, err := p.Trace([]float64{0.2}, []float64{1})
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if tr.Kinetic[0] != 0 {
		t.Errorf("kinetic current at e_eq = %v, want 0", tr.Kinetic[0])
	}
}

func TestCottrellTraceInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CottrellParams)
	}{
		{"zero i0", func(p *CottrellParams) { p.I0 = 0 }},
		{"alpha above one", func(p *CottrellParams) { p.Alpha = 2 }},
		{"negative k", func(p *CottrellParams) { p.K = -1 }},
		{"nan temperature", func(p *CottrellParams) { p.Temperature = math.NaN() }},
		{"zero unit factor", func(p *CottrellParams) { p.UnitFactor = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultCottrellParams()
			tt.mutate(&p)
			if _, err := p.Trace([]float64{0}, []float64{0}); !errors.Is(err, simerr.ErrInvalidParameter) {
				t.Errorf("Trace() error = %v, want ErrInvalidParameter", err)
			}
		})
	}

	if _, err := DefaultCottrellParams().Trace([]float64{0, 1}, []float64{0}); !errors.Is(err, simerr.ErrInvalidParameter) {
		t.Errorf("length mismatch error = %v", err)
	}
}

func TestSweepParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepParams)
		ok     bool
	}{
		{"defaults", func(p *SweepParams) {}, true},
		{"zero i0", func(p *SweepParams) { p.I0 = 0 }, false},
		{"alpha below zero", func(p *SweepParams) { p.Alpha = -0.1 }, false},
		{"one point", func(p *SweepParams) { p.Points = 1 }, false},
		{"too many points", func(p *SweepParams) { p.Points = constants.MaxGridSamples + 1 }, false},
		{"inverted range", func(p *SweepParams) { p.EtaMin, p.EtaMax = 0.5, -0.5 }, false},
		{"infinite eta", func(p *SweepParams) { p.EtaMax = math.Inf(1) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultSweepParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, simerr.ErrInvalidParameter) {
				t.Errorf("Validate() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}
