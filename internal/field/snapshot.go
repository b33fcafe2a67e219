package field

import "math"

// Snapshot is an immutable copy of the field state at a point in simulated
// time, plus an optional energy-flow field, handed to visualization after
// each run batch or on demand. It carries its own shape and extents so a
// renderer needs no reference back into the live simulation.
type Snapshot struct {
	Time float64

	Nx, Ny, Nz int
	Lx, Ly, Lz float64

	// Activity is the field u in grid layout, (i*Ny+j)*Nz+k indexing.
	Activity []float64

	// EnergyFlow is nil unless the snapshot was requested with energy.
	EnergyFlow []float64
}

func newSnapshot(g *Grid, s *State, energy []float64) *Snapshot {
	u := make([]float64, len(s.U))
	copy(u, s.U)
	return &Snapshot{
		Time: s.Time,
		Nx:   g.Nx, Ny: g.Ny, Nz: g.Nz,
		Lx: g.Lx, Ly: g.Ly, Lz: g.Lz,
		Activity:   u,
		EnergyFlow: energy,
	}
}

// At returns the activity at integer grid coordinates.
func (s *Snapshot) At(i, j, k int) float64 {
	return s.Activity[(i*s.Ny+j)*s.Nz+k]
}

// Peak returns the largest activity magnitude.
func (s *Snapshot) Peak() float64 {
	var m float64
	for _, v := range s.Activity {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// Slice extracts a 2D plane of activity perpendicular to the given axis
// ('x', 'y' or 'z') for plan-view rendering. Out-of-range indices default
// to the middle plane. The returned extent is [hmin, hmax, vmin, vmax] for
// the remaining two axes in x-before-y-before-z order.
func (s *Snapshot) Slice(axis rune, index int) ([][]float64, [4]float64) {
	var rows, cols int
	var extent [4]float64

	halfX, halfY, halfZ := s.Lx/2, s.Ly/2, s.Lz/2
	switch axis {
	case 'x':
		if index < 0 || index >= s.Nx {
			index = s.Nx / 2
		}
		rows, cols = s.Ny, s.Nz
		extent = [4]float64{-halfY, halfY, -halfZ, halfZ}
	case 'y':
		if index < 0 || index >= s.Ny {
			index = s.Ny / 2
		}
		rows, cols = s.Nx, s.Nz
		extent = [4]float64{-halfX, halfX, -halfZ, halfZ}
	default:
		axis = 'z'
		if index < 0 || index >= s.Nz {
			index = s.Nz / 2
		}
		rows, cols = s.Nx, s.Ny
		extent = [4]float64{-halfX, halfX, -halfY, halfY}
	}

	plane := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		plane[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			switch axis {
			case 'x':
				plane[r][c] = s.At(index, r, c)
			case 'y':
				plane[r][c] = s.At(r, index, c)
			default:
				plane[r][c] = s.At(r, c, index)
			}
		}
	}
	return plane, extent
}
