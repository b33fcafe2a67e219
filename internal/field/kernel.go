package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// KernelParams describe the difference-of-Gaussians coupling kernel:
// local excitation with amplitude ExcAmp and width ExcWidth, surround
// inhibition with amplitude InhAmp and width InhWidth. All four must be
// positive. The zero value of Unnormalized keeps the default
// normalization (divide by the sum of absolute weights) enabled.
type KernelParams struct {
	ExcAmp   float64 `yaml:"exc_amp"`
	ExcWidth float64 `yaml:"exc_width"`
	InhAmp   float64 `yaml:"inh_amp"`
	InhWidth float64 `yaml:"inh_width"`

	Unnormalized bool `yaml:"unnormalized"`
}

// Kernel is the spatial coupling kernel sampled on a grid, centered at the
// domain midpoint and truncated at the domain edges. It is immutable once
// built and shared by the integrator across all time steps; it is rebuilt
// only when kernel parameters change.
type Kernel struct {
	grid   *Grid
	params KernelParams

	// W holds the kernel weights in grid layout, W[g.Idx(i,j,k)] being the
	// weight at displacement (X[i], Y[j], Z[k]) from the kernel center.
	W []float64
}

// NewKernel samples K(r) = Ae*exp(-r²/2σe²) - Ai*exp(-r²/2σi²) over the
// grid. Unless disabled, weights are divided by the sum of their absolute
// values so the coupling strength is independent of grid resolution.
func NewKernel(g *Grid, p KernelParams) (*Kernel, error) {
	if p.ExcAmp <= 0 || p.ExcWidth <= 0 || p.InhAmp <= 0 || p.InhWidth <= 0 {
		return nil, fmt.Errorf("%w: exc=%g/%g inh=%g/%g",
			ErrInvalidKernelParameter, p.ExcAmp, p.ExcWidth, p.InhAmp, p.InhWidth)
	}

	w := make([]float64, g.Size())
	twoSigE := 2 * p.ExcWidth * p.ExcWidth
	twoSigI := 2 * p.InhWidth * p.InhWidth
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				x, y, z := g.X[i], g.Y[j], g.Z[k]
				r2 := x*x + y*y + z*z
				w[g.Idx(i, j, k)] = p.ExcAmp*math.Exp(-r2/twoSigE) - p.InhAmp*math.Exp(-r2/twoSigI)
			}
		}
	}

	if !p.Unnormalized {
		var sumAbs float64
		for _, v := range w {
			sumAbs += math.Abs(v)
		}
		if sumAbs > 0 {
			floats.Scale(1/sumAbs, w)
		}
	}

	return &Kernel{grid: g, params: p, W: w}, nil
}

// Grid returns the grid the kernel was sampled on.
func (k *Kernel) Grid() *Grid { return k.grid }

// Sum returns the net coupling weight. Negative totals mean inhibition
// dominates excitation.
func (k *Kernel) Sum() float64 { return floats.Sum(k.W) }

// shifted samples the kernel in circular displacement space, the layout
// circular convolution expects: index d along an axis carries the signed
// offset signedOffset(d, n) cells from the origin. Sampling the offsets
// directly, instead of rolling W, keeps h[d] == h[n-d] exact on even
// axes too, where the domain coordinates straddle the origin by half a
// cell and no roll can recenter them.
func (k *Kernel) shifted() []float64 {
	g, p := k.grid, k.params
	h := make([]float64, g.Size())
	twoSigE := 2 * p.ExcWidth * p.ExcWidth
	twoSigI := 2 * p.InhWidth * p.InhWidth
	for i := 0; i < g.Nx; i++ {
		x := float64(signedOffset(i, g.Nx)) * g.Dx
		for j := 0; j < g.Ny; j++ {
			y := float64(signedOffset(j, g.Ny)) * g.Dy
			for k3 := 0; k3 < g.Nz; k3++ {
				z := float64(signedOffset(k3, g.Nz)) * g.Dz
				r2 := x*x + y*y + z*z
				h[g.Idx(i, j, k3)] = p.ExcAmp*math.Exp(-r2/twoSigE) - p.InhAmp*math.Exp(-r2/twoSigI)
			}
		}
	}

	if !p.Unnormalized {
		var sumAbs float64
		for _, v := range h {
			sumAbs += math.Abs(v)
		}
		if sumAbs > 0 {
			floats.Scale(1/sumAbs, h)
		}
	}
	return h
}

// signedOffset maps a circular index to its signed cell offset from the
// origin: the positive half first, then the wrapped negative half.
func signedOffset(i, n int) int {
	if i < (n+1)/2 {
		return i
	}
	return i - n
}
