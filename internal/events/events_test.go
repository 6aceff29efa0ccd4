package events

import (
	"errors"
	"testing"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/timegrid"
)

func TestScheduleProperties(t *testing.T) {
	grid, err := timegrid.NewClosed(3600, 0.1)
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	mags := stochastic.Range{Lo: 0.1, Hi: 0.5}

	for seed := uint64(0); seed < 50; seed++ {
		evs, err := Schedule(3600, 5, mags, grid, stochastic.NewSource(seed))
		if err != nil {
			t.Fatalf("Schedule(seed=%d): %v", seed, err)
		}
		if len(evs) != 5 {
			t.Fatalf("seed %d: len = %d, want 5", seed, len(evs))
		}
		for i, ev := range evs {
			if ev.Index < 0 || ev.Index > grid.Steps() {
				t.Errorf("seed %d: index %d outside [0, %d]", seed, ev.Index, grid.Steps())
			}
			if i > 0 && ev.Index < evs[i-1].Index {
				t.Errorf("seed %d: indices not non-decreasing at %d", seed, i)
			}
			if !mags.Contains(ev.Magnitude) {
				t.Errorf("seed %d: magnitude %v outside range", seed, ev.Magnitude)
			}
			if ev.Index != int(ev.Time/0.1) {
				t.Errorf("seed %d: index %d does not floor time %v", seed, ev.Index, ev.Time)
			}
		}
	}
}

func TestScheduleDeterministic(t *testing.T) {
	grid, _ := timegrid.NewClosed(100, 1)
	mags := stochastic.Range{Lo: 0.1, Hi: 0.5}
	a, _ := Schedule(100, 8, mags, grid, stochastic.NewSource(4))
	b, _ := Schedule(100, 8, mags, grid, stochastic.NewSource(4))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("event %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestScheduleZeroCount(t *testing.T) {
	grid, _ := timegrid.NewClosed(10, 1)
	evs, err := Schedule(10, 0, stochastic.Range{Lo: 0.1, Hi: 0.5}, grid, stochastic.NewSource(1))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(evs) != 0 {
		t.Errorf("len = %d, want 0", len(evs))
	}
}

func TestScheduleInvalid(t *testing.T) {
	grid, _ := timegrid.NewClosed(10, 1)
	ok := stochastic.Range{Lo: 0.1, Hi: 0.5}
	tests := []struct {
		name  string
		total float64
		count int
		mags  stochastic.Range
		grid  *timegrid.Grid
		src   *stochastic.Source
	}{
		{"zero total", 0, 1, ok, grid, stochastic.NewSource(1)},
		{"negative count", 10, -1, ok, grid, stochastic.NewSource(1)},
		{"inverted range", 10, 1, stochastic.Range{Lo: 1, Hi: 0}, grid, stochastic.NewSource(1)},
		{"nil grid", 10, 1, ok, nil, stochastic.NewSource(1)},
		{"nil source", 10, 1, ok, grid, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Schedule(tt.total, tt.count, tt.mags, tt.grid, tt.src)
			if !errors.Is(err, simerr.ErrInvalidParameter) {
				t.Errorf("error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}
