package field

import (
	"fmt"
	"log/slog"
	"math"
)

// Method selects the time-stepping scheme.
type Method string

const (
	// MethodEuler is the explicit Euler baseline.
	MethodEuler Method = "euler"
	// MethodRK4 is the classical fourth-order Runge-Kutta variant, four
	// right-hand-side evaluations per step.
	MethodRK4 Method = "rk4"
)

// stabilityBound is the conservative Δt limit derived from the linearized
// decay term -u. Exceeding it is a warning, not an error: the equation is
// nonlinear and larger steps can still converge in specific regimes.
const stabilityBound = 2.0

// Nonlinearity is the saturating sigmoid f(x) = 1/(1+exp(-β(x-θ))).
type Nonlinearity struct {
	Beta  float64 `yaml:"beta"`
	Theta float64 `yaml:"theta"`
}

// Eval applies the sigmoid pointwise.
func (n Nonlinearity) Eval(x float64) float64 {
	return 1 / (1 + math.Exp(-n.Beta*(x-n.Theta)))
}

// Slope is the derivative f'(x) = β f(x)(1-f(x)).
func (n Nonlinearity) Slope(x float64) float64 {
	f := n.Eval(x)
	return n.Beta * f * (1 - f)
}

// Dynamics are the time-stepping parameters. The decay rate is fixed at 1.
type Dynamics struct {
	Dt          float64  `yaml:"dt"`
	Method      Method   `yaml:"method"`
	Convolution ConvMode `yaml:"convolution"`
}

// Integrator advances a State under du/dt = -u + (K ⊛ f(u)) + I(t).
// It is the only component allowed to mutate field state. A failed step
// leaves the state untouched: the update is computed into scratch storage
// and copied over only after every value checks out finite.
type Integrator struct {
	grid  *Grid
	conv  *convolver
	drive *Drive
	nl    Nonlinearity

	dt     float64
	method Method
	steps  int

	// Scratch buffers reused across steps.
	fu, next       []float64
	k1, k2, k3, k4 []float64
	mid            []float64
}

// NewIntegrator wires the grid, kernel, drive and nonlinearity into a
// stepper. Fails when dt is non-positive; warns on log when dt exceeds
// the stability bound. A nil logger uses the default.
func NewIntegrator(g *Grid, k *Kernel, d *Drive, nl Nonlinearity, dyn Dynamics, log *slog.Logger) (*Integrator, error) {
	if log == nil {
		log = slog.Default()
	}
	if dyn.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g", ErrUnstableStep, dyn.Dt)
	}
	if dyn.Dt > stabilityBound {
		log.Warn("time step exceeds stability bound; expect divergence outside benign regimes",
			"dt", dyn.Dt, "bound", stabilityBound)
	}
	if !k.Grid().SameShape(g) {
		return nil, fmt.Errorf("%w: kernel %dx%dx%d vs grid %dx%dx%d",
			ErrIncompatibleShape, k.Grid().Nx, k.Grid().Ny, k.Grid().Nz, g.Nx, g.Ny, g.Nz)
	}

	method := dyn.Method
	switch method {
	case "":
		method = MethodEuler
	case MethodEuler, MethodRK4:
	default:
		return nil, fmt.Errorf("field: unknown integration method %q", method)
	}

	n := g.Size()
	it := &Integrator{
		grid:   g,
		conv:   newConvolver(g, k, dyn.Convolution),
		drive:  d,
		nl:     nl,
		dt:     dyn.Dt,
		method: method,
		fu:     make([]float64, n),
		next:   make([]float64, n),
	}
	if method == MethodRK4 {
		it.k1 = make([]float64, n)
		it.k2 = make([]float64, n)
		it.k3 = make([]float64, n)
		it.k4 = make([]float64, n)
		it.mid = make([]float64, n)
	}
	return it, nil
}

// Dt returns the configured step size.
func (it *Integrator) Dt() float64 { return it.dt }

// Steps returns the number of completed steps since construction.
func (it *Integrator) Steps() int { return it.steps }

// Derivative evaluates the governing right-hand side
// -u + (K ⊛ f(u)) + I(t) into dst. The energy-flow analyzer uses the same
// evaluation, so diagnostics cannot drift from the dynamics.
func (it *Integrator) Derivative(u []float64, t float64, dst []float64) {
	for i, v := range u {
		it.fu[i] = it.nl.Eval(v)
	}
	it.conv.apply(it.fu, dst)
	it.drive.AddTo(dst, t)
	for i, v := range u {
		dst[i] -= v
	}
}

// Step advances the state by one dt. On divergence the state is left at
// its pre-step value and a *DivergenceError is returned.
func (it *Integrator) Step(s *State) error {
	if s == nil || !s.grid.SameShape(it.grid) || len(s.U) != it.grid.Size() {
		return fmt.Errorf("%w: state does not match integrator grid", ErrIncompatibleShape)
	}

	switch it.method {
	case MethodRK4:
		it.stepRK4(s)
	default:
		it.stepEuler(s)
	}

	for _, v := range it.next {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &DivergenceError{Step: it.steps + 1, Time: s.Time, MaxAbs: maxAbs(s.U)}
		}
	}

	copy(s.U, it.next)
	s.Time += it.dt
	it.steps++
	return nil
}

func (it *Integrator) stepEuler(s *State) {
	it.Derivative(s.U, s.Time, it.next)
	for i, v := range s.U {
		it.next[i] = v + it.dt*it.next[i]
	}
}

func (it *Integrator) stepRK4(s *State) {
	u, t, dt := s.U, s.Time, it.dt

	it.Derivative(u, t, it.k1)
	for i, v := range u {
		it.mid[i] = v + 0.5*dt*it.k1[i]
	}
	it.Derivative(it.mid, t+0.5*dt, it.k2)
	for i, v := range u {
		it.mid[i] = v + 0.5*dt*it.k2[i]
	}
	it.Derivative(it.mid, t+0.5*dt, it.k3)
	for i, v := range u {
		it.mid[i] = v + dt*it.k3[i]
	}
	it.Derivative(it.mid, t+dt, it.k4)

	for i, v := range u {
		it.next[i] = v + dt/6*(it.k1[i]+2*it.k2[i]+2*it.k3[i]+it.k4[i])
	}
}

func maxAbs(u []float64) float64 {
	var m float64
	for _, v := range u {
		if a := math.Abs(v); a > m && !math.IsNaN(a) && !math.IsInf(a, 0) {
			m = a
		}
	}
	return m
}
