package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// GridParams are the discretization parameters supplied by the control surface.
type GridParams struct {
	Nx int `yaml:"nx"`
	Ny int `yaml:"ny"`
	Nz int `yaml:"nz"`

	Lx float64 `yaml:"lx"`
	Ly float64 `yaml:"ly"`
	Lz float64 `yaml:"lz"`
}

// Grid is the discretized 3D spatial domain. It is immutable after
// construction and shared read-only by every other component. Axis
// coordinates are endpoint-inclusive and centered on the domain midpoint,
// so the origin sits at the middle of each extent.
type Grid struct {
	Nx, Ny, Nz int     // points per axis
	Lx, Ly, Lz float64 // physical extents
	Dx, Dy, Dz float64 // derived spacing

	// Per-axis coordinate values, length Nx/Ny/Nz.
	X, Y, Z []float64
}

// NewGrid validates the parameters and builds the coordinate axes.
func NewGrid(p GridParams) (*Grid, error) {
	if p.Nx < 1 || p.Ny < 1 || p.Nz < 1 {
		return nil, fmt.Errorf("%w: got %dx%dx%d", ErrInvalidDimension, p.Nx, p.Ny, p.Nz)
	}
	if p.Lx <= 0 || p.Ly <= 0 || p.Lz <= 0 {
		return nil, fmt.Errorf("%w: got %gx%gx%g", ErrInvalidExtent, p.Lx, p.Ly, p.Lz)
	}

	g := &Grid{
		Nx: p.Nx, Ny: p.Ny, Nz: p.Nz,
		Lx: p.Lx, Ly: p.Ly, Lz: p.Lz,
	}
	g.X, g.Dx = axisCoords(p.Nx, p.Lx)
	g.Y, g.Dy = axisCoords(p.Ny, p.Ly)
	g.Z, g.Dz = axisCoords(p.Nz, p.Lz)
	return g, nil
}

// axisCoords builds one coordinate axis spanning [-l/2, l/2] inclusive.
// A single-point axis collapses to the origin with spacing l.
func axisCoords(n int, l float64) ([]float64, float64) {
	c := make([]float64, n)
	if n == 1 {
		c[0] = 0
		return c, l
	}
	floats.Span(c, -l/2, l/2)
	return c, l / float64(n-1)
}

// Size returns the total number of grid points.
func (g *Grid) Size() int { return g.Nx * g.Ny * g.Nz }

// Idx maps integer grid coordinates to the flat storage index.
func (g *Grid) Idx(i, j, k int) int { return (i*g.Ny+j)*g.Nz + k }

// SameShape reports whether two grids have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Nx == o.Nx && g.Ny == o.Ny && g.Nz == o.Nz
}
