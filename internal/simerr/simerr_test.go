package simerr

import (
	"errors"
	"math"
	"testing"
)

func TestParamErrorUnwrap(t *testing.T) {
	err := Positive("waveform", "total", 0)
	if err == nil {
		t.Fatal("expected error for zero total")
	}
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("errors.Is(%v, ErrInvalidParameter) = false", err)
	}

	var pe *ParamError
	if !errors.As(err, &pe) {
		t.Fatalf("errors.As failed for %T", err)
	}
	if pe.Component != "waveform" || pe.Name != "total" {
		t.Errorf("got component=%q name=%q", pe.Component, pe.Name)
	}
}

func TestChecks(t *testing.T) {
	tests := []struct {
		name    string
		check   func(string, string, float64) error
		value   float64
		wantErr bool
	}{
		{"positive ok", Positive, 1, false},
		{"positive zero", Positive, 0, true},
		{"positive negative", Positive, -1, true},
		{"positive nan", Positive, math.NaN(), true},
		{"positive inf", Positive, math.Inf(1), true},
		{"non-negative zero", NonNegative, 0, false},
		{"non-negative negative", NonNegative, -0.1, true},
		{"non-zero ok", NonZero, -1.3, false},
		{"non-zero zero", NonZero, 0, true},
		{"finite ok", Finite, -5, false},
		{"finite nan", Finite, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check("c", "x", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("check(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	a := errors.New("a")
	b := errors.New("b")
	if got := First(nil, a, b); got != a {
		t.Errorf("First() = %v, want a", got)
	}
	if got := First(nil, nil); got != nil {
		t.Errorf("First() = %v, want nil", got)
	}
}
