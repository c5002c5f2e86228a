package signal

import (
	"errors"
	"fmt"
)

var (
	// ErrOversaturated indicates the critical flow ratio sum reached 1.0,
	// where Webster's formula is undefined.
	ErrOversaturated = errors.New("intersection oversaturated")

	// ErrInvalidInput indicates a malformed lane set.
	ErrInvalidInput = errors.New("invalid lane input")

	// ErrUnknownClass indicates a count for a class absent from the
	// weight table under the reject policy.
	ErrUnknownClass = errors.New("unknown vehicle class")
)

// InvalidInputError reports a malformed lane set with the offending
// approach identified. Direction is empty for set-level problems
// (wrong lane count, nil input).
type InvalidInputError struct {
	Direction Direction
	Reason    string
}

func (e *InvalidInputError) Error() string {
	if e.Direction == "" {
		return fmt.Sprintf("invalid lane input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid lane input for %s: %s", e.Direction, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// UnknownClassError identifies the lane and class that failed strict
// weight-table lookup.
type UnknownClassError struct {
	Direction Direction
	Class     VehicleClass
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown vehicle class %q on %s lane", e.Class, e.Direction)
}

func (e *UnknownClassError) Unwrap() error { return ErrUnknownClass }

// OversaturationError carries the critical flow ratio sum that made the
// cycle formula undefined.
type OversaturationError struct {
	CriticalSum float64
}

func (e *OversaturationError) Error() string {
	return fmt.Sprintf("intersection oversaturated: critical flow ratio sum %.3f >= 1.0", e.CriticalSum)
}

func (e *OversaturationError) Unwrap() error { return ErrOversaturated }
