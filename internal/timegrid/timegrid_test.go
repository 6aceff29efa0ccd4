package timegrid

import (
	"errors"
	"math"
	"testing"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
)

func TestNewClosed(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		dt      float64
		wantLen int
	}{
		{"reaction hour", 3600, 0.1, 36001},
		{"fscv scan", 0.01, 1e-5, 1001},
		{"unit", 1, 0.25, 5},
		{"non-multiple", 1, 0.3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewClosed(tt.total, tt.dt)
			if err != nil {
				t.Fatalf("NewClosed: %v", err)
			}
			if g.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", g.Len(), tt.wantLen)
			}
			if g.Steps() != tt.wantLen-1 {
				t.Errorf("Steps() = %d, want %d", g.Steps(), tt.wantLen-1)
			}
			if g.At(0) != 0 {
				t.Errorf("At(0) = %v, want 0", g.At(0))
			}
		})
	}
}

func TestNewHalfOpenMatchesArange(t *testing.T) {
	g, err := NewHalfOpen(0.01, 1e-5)
	if err != nil {
		t.Fatalf("NewHalfOpen: %v", err)
	}
	if g.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", g.Len())
	}
	if g.At(500) != 0.01/2 {
		t.Errorf("At(500) = %v, want exactly %v", g.At(500), 0.01/2)
	}
}

func TestNewLinspace(t *testing.T) {
	g, err := NewLinspace(2.0, 1000)
	if err != nil {
		t.Fatalf("NewLinspace: %v", err)
	}
	if g.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", g.Len())
	}
	if g.At(g.Len()-1) != 2.0 {
		t.Errorf("last sample = %v, want 2.0", g.At(g.Len()-1))
	}
	if math.Abs(g.Dt()-2.0/999) > 1e-15 {
		t.Errorf("Dt() = %v", g.Dt())
	}
}

func TestInvalidGrids(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Grid, error)
	}{
		{"zero total", func() (*Grid, error) { return NewClosed(0, 0.1) }},
		{"negative dt", func() (*Grid, error) { return NewClosed(1, -0.1) }},
		{"zero dt", func() (*Grid, error) { return NewHalfOpen(1, 0) }},
		{"dt beyond total", func() (*Grid, error) { return NewHalfOpen(1, 2) }},
		{"one point", func() (*Grid, error) { return NewLinspace(1, 1) }},
		{"nan total", func() (*Grid, error) { return NewLinspace(math.NaN(), 10) }},
		{"ratio overflows int", func() (*Grid, error) { return NewClosed(1e300, 1) }},
		{"too many samples", func() (*Grid, error) { return NewHalfOpen(1e9, 1e-3) }},
		{"closed grid one past the limit", func() (*Grid, error) { return NewClosed(constants.MaxGridSamples, 1) }},
		{"too many points", func() (*Grid, error) { return NewLinspace(1, constants.MaxGridSamples+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, simerr.ErrInvalidParameter) {
				t.Errorf("error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	g, err := NewClosed(1, 0.1)
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	tests := []struct {
		t    float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{0.25, 2},
		{0.99, 9},
		{5, 10},
	}
	for _, tt := range tests {
		if got := g.Index(tt.t); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestTimesIsCopy(t *testing.T) {
	g, _ := NewClosed(1, 0.5)
	times := g.Times()
	times[0] = 42
	if g.At(0) != 0 {
		t.Error("mutating Times() result changed the grid")
	}
}

func TestStepsAtLimit(t *testing.T) {
	n, err := Steps(constants.MaxGridSamples-1, 1)
	if err != nil {
		t.Fatalf("Steps at the limit: %v", err)
	}
	if n != constants.MaxGridSamples-1 {
		t.Errorf("Steps() = %d, want %d", n, constants.MaxGridSamples-1)
	}
}
