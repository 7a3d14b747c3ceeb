package dynamo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Domain errors for controller and simulation operations.
var (
	// ErrInvalidState indicates a state with NaN/Inf values or a zero-norm orientation.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN, Inf or zero quaternion)")

	// ErrInvalidConfig indicates configuration rejected at construction time.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnstable indicates the simulated plant diverged.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrDimensionMismatch indicates mismatched vector or matrix sizes.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
