package field

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidDimension indicates a grid dimension below 1.
	ErrInvalidDimension = errors.New("field: grid dimensions must be at least 1")

	// ErrInvalidExtent indicates a non-positive physical extent.
	ErrInvalidExtent = errors.New("field: grid extents must be positive")

	// ErrInvalidKernelParameter indicates a non-positive kernel amplitude or width.
	ErrInvalidKernelParameter = errors.New("field: kernel amplitudes and widths must be positive")

	// ErrInvalidDriveParameter indicates an unknown drive type or bad drive shape.
	ErrInvalidDriveParameter = errors.New("field: invalid drive parameters")

	// ErrUnstableStep indicates a non-positive integration time step.
	ErrUnstableStep = errors.New("field: time step must be positive")

	// ErrIncompatibleShape indicates a field state built on a different grid.
	ErrIncompatibleShape = errors.New("field: state shape does not match grid")

	// ErrInvalidTransition indicates a controller call out of order.
	ErrInvalidTransition = errors.New("field: operation not allowed in current state")
)

// DivergenceError reports non-finite activity values detected after an
// integration step. The field state is left at its last valid value.
type DivergenceError struct {
	Step   int     // step counter at which divergence was detected
	Time   float64 // simulation time of the last valid state
	MaxAbs float64 // largest finite magnitude before the failed step
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("field: numerical divergence at step %d (t=%.4f, last max |u|=%.4g)",
		e.Step, e.Time, e.MaxAbs)
}
