package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// EnergyMethod names an energy-flow diagnostic.
type EnergyMethod string

const (
	// EnergyPower is the power density P(x) = u(x) · du/dt(x), with the
	// derivative recomputed from the governing equation rather than a
	// finite difference across steps.
	EnergyPower EnergyMethod = "power"
	// EnergyGradientFlux is the smoothed gradient magnitude |∇u|,
	// min-max normalized to [0, 1], the quantity the original explorer
	// visualized as energy flow.
	EnergyGradientFlux EnergyMethod = "gradient_flux"
)

// Analyzer derives energy-flow fields from the current state. It reads the
// state and never mutates it; the derived array is computed fresh on every
// call and has no lifecycle of its own.
type Analyzer struct {
	integ *Integrator
	grad  []float64
	tmp   []float64
}

// NewAnalyzer builds an analyzer bound to the integrator's grid and
// governing equation.
func NewAnalyzer(integ *Integrator) *Analyzer {
	n := integ.grid.Size()
	return &Analyzer{
		integ: integ,
		grad:  make([]float64, n),
		tmp:   make([]float64, n),
	}
}

// Compute returns a freshly allocated energy-flow array for the state.
// States from a different grid are rejected, never silently truncated.
func (a *Analyzer) Compute(s *State, method EnergyMethod) ([]float64, error) {
	g := a.integ.grid
	if s == nil || !s.grid.SameShape(g) || len(s.U) != g.Size() {
		return nil, fmt.Errorf("%w: analyzer grid %dx%dx%d", ErrIncompatibleShape, g.Nx, g.Ny, g.Nz)
	}

	out := make([]float64, g.Size())
	switch method {
	case EnergyGradientFlux:
		a.gradientFlux(s.U, out)
	default:
		a.integ.Derivative(s.U, s.Time, out)
		for i, v := range s.U {
			out[i] *= v
		}
	}
	return out, nil
}

// gradientFlux computes |∇u| with periodic central differences, smooths it
// with a separable 3-tap binomial filter and rescales to [0, 1].
func (a *Analyzer) gradientFlux(u, out []float64) {
	g := a.integ.grid
	nx, ny, nz := g.Nx, g.Ny, g.Nz

	for i := 0; i < nx; i++ {
		ip, im := wrap(i+1, nx), wrap(i-1, nx)
		for j := 0; j < ny; j++ {
			jp, jm := wrap(j+1, ny), wrap(j-1, ny)
			for k := 0; k < nz; k++ {
				kp, km := wrap(k+1, nz), wrap(k-1, nz)
				gx := (u[g.Idx(ip, j, k)] - u[g.Idx(im, j, k)]) / (2 * g.Dx)
				gy := (u[g.Idx(i, jp, k)] - u[g.Idx(i, jm, k)]) / (2 * g.Dy)
				gz := (u[g.Idx(i, j, kp)] - u[g.Idx(i, j, km)]) / (2 * g.Dz)
				a.grad[g.Idx(i, j, k)] = math.Sqrt(gx*gx + gy*gy + gz*gz)
			}
		}
	}

	smooth3(a.grad, a.tmp, g)
	copy(out, a.grad)

	min := floats.Min(out)
	max := floats.Max(out)
	scale := 1 / (max - min + 1e-8)
	for i, v := range out {
		out[i] = (v - min) * scale
	}
}

// smooth3 applies a [1/4, 1/2, 1/4] filter along each axis with periodic
// wrap, a cheap stand-in for a σ≈1 Gaussian blur.
func smooth3(data, tmp []float64, g *Grid) {
	nx, ny, nz := g.Nx, g.Ny, g.Nz

	for i := 0; i < nx; i++ {
		ip, im := wrap(i+1, nx), wrap(i-1, nx)
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				tmp[g.Idx(i, j, k)] = 0.25*data[g.Idx(im, j, k)] + 0.5*data[g.Idx(i, j, k)] + 0.25*data[g.Idx(ip, j, k)]
			}
		}
	}
	for j := 0; j < ny; j++ {
		jp, jm := wrap(j+1, ny), wrap(j-1, ny)
		for i := 0; i < nx; i++ {
			for k := 0; k < nz; k++ {
				data[g.Idx(i, j, k)] = 0.25*tmp[g.Idx(i, jm, k)] + 0.5*tmp[g.Idx(i, j, k)] + 0.25*tmp[g.Idx(i, jp, k)]
			}
		}
	}
	for k := 0; k < nz; k++ {
		kp, km := wrap(k+1, nz), wrap(k-1, nz)
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				tmp[g.Idx(i, j, k)] = 0.25*data[g.Idx(i, j, km)] + 0.5*data[g.Idx(i, j, k)] + 0.25*data[g.Idx(i, j, kp)]
			}
		}
	}
	copy(data, tmp)
}

func wrap(i, n int) int {
	if i < 0 {
		return i + n
	}
	if i >= n {
		return i - n
	}
	return i
}
