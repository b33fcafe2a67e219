package field

import (
	"errors"
	"math"
	"testing"
)

func TestGridSpacingMatchesExtent(t *testing.T) {
	tests := []struct {
		name string
		p    GridParams
	}{
		{"cubic", GridParams{Nx: 16, Ny: 16, Nz: 16, Lx: 10, Ly: 10, Lz: 10}},
		{"anisotropic", GridParams{Nx: 8, Ny: 12, Nz: 20, Lx: 4, Ly: 9.5, Lz: 1}},
		{"thin", GridParams{Nx: 2, Ny: 2, Nz: 64, Lx: 1, Ly: 1, Lz: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.p)
			if err != nil {
				t.Fatalf("NewGrid: %v", err)
			}
			checks := []struct {
				d, l float64
				n    int
			}{{g.Dx, g.Lx, g.Nx}, {g.Dy, g.Ly, g.Ny}, {g.Dz, g.Lz, g.Nz}}
			for _, c := range checks {
				got := c.d * float64(c.n-1)
				if math.Abs(got-c.l) > 1e-12*c.l {
					t.Errorf("spacing*(n-1) = %g, want %g", got, c.l)
				}
			}
		})
	}
}

func TestGridSinglePointAxis(t *testing.T) {
	g, err := NewGrid(GridParams{Nx: 1, Ny: 4, Nz: 4, Lx: 7, Ly: 1, Lz: 1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.Dx != 7 {
		t.Errorf("single-point spacing = %g, want extent 7", g.Dx)
	}
	if g.X[0] != 0 {
		t.Errorf("single-point coordinate = %g, want 0", g.X[0])
	}
}

func TestGridAxesCenteredOnMidpoint(t *testing.T) {
	g, err := NewGrid(GridParams{Nx: 5, Ny: 5, Nz: 5, Lx: 10, Ly: 10, Lz: 10})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.X[0] != -5 || g.X[4] != 5 {
		t.Errorf("axis endpoints = [%g, %g], want [-5, 5]", g.X[0], g.X[4])
	}
	if math.Abs(g.X[2]) > 1e-12 {
		t.Errorf("axis midpoint = %g, want 0", g.X[2])
	}
}

func TestGridValidation(t *testing.T) {
	tests := []struct {
		name string
		p    GridParams
		want error
	}{
		{"zero dimension", GridParams{Nx: 0, Ny: 4, Nz: 4, Lx: 1, Ly: 1, Lz: 1}, ErrInvalidDimension},
		{"negative dimension", GridParams{Nx: 4, Ny: -1, Nz: 4, Lx: 1, Ly: 1, Lz: 1}, ErrInvalidDimension},
		{"zero extent", GridParams{Nx: 4, Ny: 4, Nz: 4, Lx: 0, Ly: 1, Lz: 1}, ErrInvalidExtent},
		{"negative extent", GridParams{Nx: 4, Ny: 4, Nz: 4, Lx: 1, Ly: 1, Lz: -2}, ErrInvalidExtent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGrid(tt.p); !errors.Is(err, tt.want) {
				t.Errorf("NewGrid error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGridIdx(t *testing.T) {
	g, err := NewGrid(GridParams{Nx: 3, Ny: 4, Nz: 5, Lx: 1, Ly: 1, Lz: 1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	seen := make(map[int]bool)
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				idx := g.Idx(i, j, k)
				if idx < 0 || idx >= g.Size() || seen[idx] {
					t.Fatalf("Idx(%d,%d,%d) = %d not a bijection into [0,%d)", i, j, k, idx, g.Size())
				}
				seen[idx] = true
			}
		}
	}
}
