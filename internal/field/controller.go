package field

import (
	"context"
	"fmt"
	"log/slog"
)

// ControllerState enumerates the controller's lifecycle states.
type ControllerState string

const (
	StateIdle       ControllerState = "idle"
	StateConfigured ControllerState = "configured"
	StateRunning    ControllerState = "running"
	StatePaused     ControllerState = "paused"
)

// runChunk bounds the size of a run sub-batch. Each chunk is atomic: all
// of its steps complete or the state is rolled back to the chunk start.
// Cancellation takes effect at chunk boundaries, never mid-step.
const runChunk = 32

// Controller orchestrates grid, kernel, integrator and analyzer across a
// run. It is the single owner of the field state; the integrator it holds
// is the only writer, everything else reads snapshots. Access is
// single-threaded by contract; a concurrent control surface must
// serialize its calls.
type Controller struct {
	log *slog.Logger

	state  ControllerState
	failed bool // divergence latch; cleared by Reset or Configure

	params   Params
	grid     *Grid
	kernel   *Kernel
	field    *State
	integ    *Integrator
	analyzer *Analyzer
	history  *flowHistory

	chunkBackup []float64
}

// NewController returns an idle controller. A nil logger uses the default.
func NewController(log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{log: log, state: StateIdle, history: newFlowHistory(0)}
}

// State returns the current lifecycle state.
func (c *Controller) State() ControllerState { return c.state }

// Configure validates params, rebuilds grid, kernel, integrator and
// analyzer, and seeds a fresh field state. Allowed from Idle, Configured
// and Paused; a validation failure leaves the previous configuration and
// state untouched.
func (c *Controller) Configure(p Params) error {
	if c.state == StateRunning {
		return fmt.Errorf("%w: configure while %s", ErrInvalidTransition, c.state)
	}
	p = p.withDefaults()

	grid, err := NewGrid(p.Grid)
	if err != nil {
		return err
	}
	kernel, err := NewKernel(grid, p.Kernel)
	if err != nil {
		return err
	}
	drive, err := NewDrive(grid, p.Drive)
	if err != nil {
		return err
	}
	integ, err := NewIntegrator(grid, kernel, drive, p.Nonlinearity, p.Dynamics, c.log)
	if err != nil {
		return err
	}
	state, err := NewState(grid, p.Seed)
	if err != nil {
		return err
	}

	c.params = p
	c.grid = grid
	c.kernel = kernel
	c.field = state
	c.integ = integ
	c.analyzer = NewAnalyzer(integ)
	c.history = newFlowHistory(p.HistoryDepth)
	c.chunkBackup = make([]float64, grid.Size())
	c.failed = false
	c.state = StateConfigured

	c.log.Debug("configured",
		"grid", fmt.Sprintf("%dx%dx%d", grid.Nx, grid.Ny, grid.Nz),
		"dt", p.Dynamics.Dt, "method", p.Dynamics.Method,
		"kernel_sum", kernel.Sum())
	return nil
}

// Start moves Configured → Running.
func (c *Controller) Start() error {
	if c.state != StateConfigured {
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, c.state)
	}
	c.state = StateRunning
	return nil
}

// Pause moves Running → Paused.
func (c *Controller) Pause() error {
	if c.state != StateRunning {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, c.state)
	}
	c.state = StatePaused
	return nil
}

// Reset clears the field state and returns to Idle from any state. The
// configuration must be supplied again before stepping. Resetting twice is
// the same as resetting once.
func (c *Controller) Reset() {
	c.field = nil
	c.grid = nil
	c.kernel = nil
	c.integ = nil
	c.analyzer = nil
	c.history.clear()
	c.failed = false
	c.state = StateIdle
}

// Step advances the simulation by a single time step. Running only.
func (c *Controller) Step() error {
	if c.state != StateRunning || c.failed {
		return fmt.Errorf("%w: step while %s", ErrInvalidTransition, c.describe())
	}
	if err := c.integ.Step(c.field); err != nil {
		c.noteStepFailure(err)
		return err
	}
	return nil
}

// Run advances the simulation by n steps in bounded sub-batches and emits
// a snapshot of the batch result. Cancellation via ctx takes effect at the
// next chunk boundary and leaves the controller Paused with the state as
// of the last completed chunk. A diverged chunk is rolled back whole.
func (c *Controller) Run(ctx context.Context, n int) (*Snapshot, error) {
	if c.state != StateRunning || c.failed {
		return nil, fmt.Errorf("%w: run while %s", ErrInvalidTransition, c.describe())
	}
	if n <= 0 {
		return nil, fmt.Errorf("field: run batch size must be positive, got %d", n)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	remaining := n
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			c.state = StatePaused
			return c.emit(), err
		}
		chunk := runChunk
		if remaining < chunk {
			chunk = remaining
		}
		if err := c.runChunk(chunk); err != nil {
			return nil, err
		}
		remaining -= chunk
	}
	return c.emit(), nil
}

// runChunk performs one atomic sub-batch: on any step failure the state is
// restored to the chunk start before the error is surfaced.
func (c *Controller) runChunk(steps int) error {
	copy(c.chunkBackup, c.field.U)
	startTime := c.field.Time

	for s := 0; s < steps; s++ {
		if err := c.integ.Step(c.field); err != nil {
			copy(c.field.U, c.chunkBackup)
			c.field.Time = startTime
			c.noteStepFailure(err)
			return err
		}
	}
	return nil
}

// emit builds the post-batch snapshot and, when history is enabled,
// records the current energy-flow frame.
func (c *Controller) emit() *Snapshot {
	if c.params.HistoryDepth > 0 {
		if flow, err := c.analyzer.Compute(c.field, EnergyGradientFlux); err == nil {
			c.history.push(flow)
		}
	}
	return newSnapshot(c.grid, c.field, nil)
}

// Snapshot returns an on-demand copy of the current state, with the power
// diagnostic attached when withEnergy is set. Not available while Idle.
func (c *Controller) Snapshot(withEnergy bool) (*Snapshot, error) {
	if c.state == StateIdle {
		return nil, fmt.Errorf("%w: snapshot while %s", ErrInvalidTransition, c.state)
	}
	var energy []float64
	if withEnergy {
		var err error
		energy, err = c.analyzer.Compute(c.field, EnergyPower)
		if err != nil {
			return nil, err
		}
	}
	return newSnapshot(c.grid, c.field, energy), nil
}

// History returns the retained energy-flow frames, oldest first.
func (c *Controller) History() [][]float64 { return c.history.Frames() }

// noteStepFailure latches divergence so that stepping stays rejected until
// Reset or Configure, while the last valid state remains inspectable.
func (c *Controller) noteStepFailure(err error) {
	if _, ok := err.(*DivergenceError); ok {
		c.failed = true
		c.state = StatePaused
		c.log.Error("run halted by numerical divergence", "err", err)
	}
}

func (c *Controller) describe() string {
	if c.failed {
		return string(c.state) + " (diverged; reset or configure to continue)"
	}
	return string(c.state)
}
