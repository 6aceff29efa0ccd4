// Package simerr defines the error taxonomy shared by the simulation packages.
//
// Every parameter check in the engine returns a *ParamError, which unwraps to
// ErrInvalidParameter so callers can match the whole class with errors.Is.
package simerr

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is the root of every configuration-validation failure.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParamError describes a single rejected parameter.
type ParamError struct {
	Component string
	Name      string
	Value     float64
	Reason    string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: invalid parameter %s=%g: %s", e.Component, e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// Invalid builds a ParamError with a free-form reason.
func Invalid(component, name string, value float64, reason string) error {
	return &ParamError{Component: component, Name: name, Value: value, Reason: reason}
}

// Positive rejects values that are not finite and strictly greater than zero.
func Positive(component, name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return Invalid(component, name, value, "must be positive")
	}
	return nil
}

// NonNegative rejects negative or non-finite values.
func NonNegative(component, name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return Invalid(component, name, value, "must be non-negative")
	}
	return nil
}

// NonZero rejects zero and non-finite values.
func NonZero(component, name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value == 0 {
		return Invalid(component, name, value, "must be non-zero")
	}
	return nil
}

// Finite rejects NaN and infinities.
func Finite(component, name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Invalid(component, name, value, "must be finite")
	}
	return nil
}

// First returns the first non-nil error, or nil.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
