package field

import (
	"fmt"
	"math"
)

// DriveType names the external input shapes.
type DriveType string

const (
	DriveNone     DriveType = "none"
	DriveConstant DriveType = "constant"
	DrivePulse    DriveType = "pulse"
	DriveBump     DriveType = "bump"
)

// DriveSpec configures the external input I(t). Constant applies Magnitude
// everywhere for all time; pulse applies it only while t < Duration; bump
// applies a Gaussian profile of the given width centered at (X, Y, Z),
// scaled by Magnitude.
type DriveSpec struct {
	Type      DriveType `yaml:"type"`
	Magnitude float64   `yaml:"magnitude"`
	Duration  float64   `yaml:"duration"`
	X         float64   `yaml:"x"`
	Y         float64   `yaml:"y"`
	Z         float64   `yaml:"z"`
	Width     float64   `yaml:"width"`
}

// Drive evaluates I(t) over the grid. Spatial profiles are sampled once at
// construction; only the time gating is evaluated per step.
type Drive struct {
	spec    DriveSpec
	profile []float64 // nil for uniform or absent drives
}

// NewDrive validates the spec and precomputes the spatial profile.
func NewDrive(g *Grid, spec DriveSpec) (*Drive, error) {
	switch spec.Type {
	case DriveNone, "":
		return &Drive{spec: DriveSpec{Type: DriveNone}}, nil
	case DriveConstant:
		return &Drive{spec: spec}, nil
	case DrivePulse:
		if spec.Duration <= 0 {
			return nil, fmt.Errorf("%w: pulse duration must be positive, got %g",
				ErrInvalidDriveParameter, spec.Duration)
		}
		return &Drive{spec: spec}, nil
	case DriveBump:
		if spec.Width <= 0 {
			return nil, fmt.Errorf("%w: bump width must be positive, got %g",
				ErrInvalidDriveParameter, spec.Width)
		}
		d := &Drive{spec: spec, profile: make([]float64, g.Size())}
		twoSig := 2 * spec.Width * spec.Width
		for i := 0; i < g.Nx; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					dx := g.X[i] - spec.X
					dy := g.Y[j] - spec.Y
					dz := g.Z[k] - spec.Z
					r2 := dx*dx + dy*dy + dz*dz
					d.profile[g.Idx(i, j, k)] = spec.Magnitude * math.Exp(-r2/twoSig)
				}
			}
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: unknown drive type %q", ErrInvalidDriveParameter, spec.Type)
	}
}

// AddTo accumulates I(t) into dst.
func (d *Drive) AddTo(dst []float64, t float64) {
	switch d.spec.Type {
	case DriveConstant:
		for i := range dst {
			dst[i] += d.spec.Magnitude
		}
	case DrivePulse:
		if t < d.spec.Duration {
			for i := range dst {
				dst[i] += d.spec.Magnitude
			}
		}
	case DriveBump:
		for i := range dst {
			dst[i] += d.profile[i]
		}
	}
}
