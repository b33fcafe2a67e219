package field

import "github.com/mjibson/go-dsp/fft"

// ConvMode selects how the kernel convolution is evaluated.
type ConvMode string

const (
	// ConvAuto picks spectral for large grids and direct otherwise.
	ConvAuto ConvMode = "auto"
	// ConvDirect sums the kernel-weighted neighborhood explicitly. O(N²),
	// easy to verify on small grids.
	ConvDirect ConvMode = "direct"
	// ConvSpectral multiplies in the frequency domain. O(N log N).
	ConvSpectral ConvMode = "spectral"
)

// spectralMinSize is the grid size at which ConvAuto switches from direct
// summation to the spectral path.
const spectralMinSize = 4096

// convolver applies the circular convolution K ⊛ v over the grid. Both
// paths use periodic boundaries so they agree to rounding error; the
// kernel is sampled once at construction in displacement space, its
// center at the origin.
type convolver struct {
	grid     *Grid
	shifted  []float64
	spectral bool

	// Scratch reused across steps, spectral path only.
	spectrum []complex128
	buf      []complex128
}

func newConvolver(g *Grid, k *Kernel, mode ConvMode) *convolver {
	c := &convolver{grid: g, shifted: k.shifted()}
	switch mode {
	case ConvDirect:
	case ConvSpectral:
		c.spectral = true
	default:
		c.spectral = g.Size() >= spectralMinSize
	}
	if c.spectral {
		c.spectrum = make([]complex128, g.Size())
		for i, v := range c.shifted {
			c.spectrum[i] = complex(v, 0)
		}
		fft3(c.spectrum, g.Nx, g.Ny, g.Nz, false)
		c.buf = make([]complex128, g.Size())
	}
	return c
}

// apply writes K ⊛ src into dst. src and dst must not alias.
func (c *convolver) apply(src, dst []float64) {
	if c.spectral {
		c.applySpectral(src, dst)
		return
	}
	c.applyDirect(src, dst)
}

func (c *convolver) applyDirect(src, dst []float64) {
	g := c.grid
	nx, ny, nz := g.Nx, g.Ny, g.Nz
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				var sum float64
				for mi := 0; mi < nx; mi++ {
					si := i - mi
					if si < 0 {
						si += nx
					}
					for mj := 0; mj < ny; mj++ {
						sj := j - mj
						if sj < 0 {
							sj += ny
						}
						hRow := (mi*ny + mj) * nz
						sRow := (si*ny + sj) * nz
						for mk := 0; mk < nz; mk++ {
							sk := k - mk
							if sk < 0 {
								sk += nz
							}
							sum += c.shifted[hRow+mk] * src[sRow+sk]
						}
					}
				}
				dst[(i*ny+j)*nz+k] = sum
			}
		}
	}
}

func (c *convolver) applySpectral(src, dst []float64) {
	g := c.grid
	for i, v := range src {
		c.buf[i] = complex(v, 0)
	}
	fft3(c.buf, g.Nx, g.Ny, g.Nz, false)
	for i := range c.buf {
		c.buf[i] *= c.spectrum[i]
	}
	fft3(c.buf, g.Nx, g.Ny, g.Nz, true)
	for i := range dst {
		dst[i] = real(c.buf[i])
	}
}

// fft3 transforms data in place, one axis at a time. The inverse carries
// the full 1/N normalization because fft.IFFT normalizes each 1D sweep.
func fft3(data []complex128, nx, ny, nz int, inverse bool) {
	tr := fft.FFT
	if inverse {
		tr = fft.IFFT
	}

	// Z sweeps: runs are contiguous.
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			off := (i*ny + j) * nz
			copy(data[off:off+nz], tr(data[off:off+nz]))
		}
	}

	// Y sweeps, stride nz.
	bufY := make([]complex128, ny)
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				bufY[j] = data[(i*ny+j)*nz+k]
			}
			res := tr(bufY)
			for j := 0; j < ny; j++ {
				data[(i*ny+j)*nz+k] = res[j]
			}
		}
	}

	// X sweeps, stride ny*nz.
	bufX := make([]complex128, nx)
	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				bufX[i] = data[(i*ny+j)*nz+k]
			}
			res := tr(bufX)
			for i := 0; i < nx; i++ {
				data[(i*ny+j)*nz+k] = res[i]
			}
		}
	}
}
