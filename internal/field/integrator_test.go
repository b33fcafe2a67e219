package field

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func buildIntegrator(t *testing.T, g *Grid, kp KernelParams, dyn Dynamics, nl Nonlinearity, ds DriveSpec) *Integrator {
	t.Helper()
	k, err := NewKernel(g, kp)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	d, err := NewDrive(g, ds)
	if err != nil {
		t.Fatalf("NewDrive: %v", err)
	}
	it, err := NewIntegrator(g, k, d, nl, dyn, nil)
	if err != nil {
		t.Fatalf("NewIntegrator: %v", err)
	}
	return it
}

func TestIntegratorRejectsNonPositiveDt(t *testing.T) {
	g := testGrid(t, 4, 1)
	k, err := NewKernel(g, KernelParams{ExcAmp: 1, ExcWidth: 1, InhAmp: 0.5, InhWidth: 2})
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	d, _ := NewDrive(g, DriveSpec{Type: DriveNone})
	for _, dt := range []float64{0, -0.1} {
		if _, err := NewIntegrator(g, k, d, Nonlinearity{Beta: 4}, Dynamics{Dt: dt}, nil); !errors.Is(err, ErrUnstableStep) {
			t.Errorf("dt=%g: error = %v, want ErrUnstableStep", dt, err)
		}
	}
}

func TestIntegratorWarnsThroughInjectedLogger(t *testing.T) {
	g := testGrid(t, 4, 1)
	k, err := NewKernel(g, KernelParams{ExcAmp: 1, ExcWidth: 1, InhAmp: 0.5, InhWidth: 2})
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	d, err := NewDrive(g, DriveSpec{Type: DriveNone})
	if err != nil {
		t.Fatalf("NewDrive: %v", err)
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	if _, err := NewIntegrator(g, k, d, Nonlinearity{Beta: 4}, Dynamics{Dt: 5}, log); err != nil {
		t.Fatalf("NewIntegrator: %v", err)
	}
	if !strings.Contains(buf.String(), "stability") {
		t.Errorf("no stability warning on the supplied logger, got %q", buf.String())
	}

	buf.Reset()
	if _, err := NewIntegrator(g, k, d, Nonlinearity{Beta: 4}, Dynamics{Dt: 0.05}, log); err != nil {
		t.Fatalf("NewIntegrator: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output for a stable step size: %q", buf.String())
	}
}

func TestIntegratorTotalActivityDecaysUnderInhibition(t *testing.T) {
	// Zero drive plus an inhibition-dominant kernel: the decay term owns
	// the dynamics and total activity must not increase.
	g := testGrid(t, 8, 10)
	it := buildIntegrator(t, g,
		KernelParams{ExcAmp: 0.2, ExcWidth: 1, InhAmp: 1, InhWidth: 2},
		Dynamics{Dt: 0.05, Method: MethodEuler, Convolution: ConvDirect},
		Nonlinearity{Beta: 4, Theta: 0.5},
		DriveSpec{Type: DriveNone})

	s, err := NewState(g, Seed{Kind: SeedBump, Amplitude: 1, Width: 2})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	prev := floats.Sum(s.U)
	for i := 0; i < 40; i++ {
		if err := it.Step(s); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		total := floats.Sum(s.U)
		if total > prev+1e-9 {
			t.Fatalf("step %d: total activity rose from %g to %g", i, prev, total)
		}
		prev = total
	}
}

func TestIntegratorDivergenceDetectedAndStatePreserved(t *testing.T) {
	// An unstable step size with strong unnormalized positive feedback
	// must blow up within a bounded number of steps, and the failed step
	// must leave the state exactly as it was.
	g := testGrid(t, 8, 10)
	it := buildIntegrator(t, g,
		KernelParams{ExcAmp: 50, ExcWidth: 2, InhAmp: 0.01, InhWidth: 0.5, Unnormalized: true},
		Dynamics{Dt: 10, Method: MethodEuler, Convolution: ConvDirect},
		Nonlinearity{Beta: 4, Theta: 0.5},
		DriveSpec{Type: DriveNone})

	s, err := NewState(g, Seed{Kind: SeedBump, Amplitude: 1, Width: 2})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	const maxSteps = 2000
	for i := 0; i < maxSteps; i++ {
		before := s.Clone()
		err := it.Step(s)
		if err == nil {
			continue
		}
		var div *DivergenceError
		if !errors.As(err, &div) {
			t.Fatalf("step %d: error = %v, want *DivergenceError", i, err)
		}
		if s.Time != before.Time {
			t.Errorf("time advanced across failed step: %g vs %g", s.Time, before.Time)
		}
		for idx := range s.U {
			if s.U[idx] != before.U[idx] {
				t.Fatalf("activity mutated by failed step at %d", idx)
			}
		}
		return
	}
	t.Fatalf("no divergence within %d steps", maxSteps)
}

func TestIntegratorRK4MatchesEulerAtSmallDt(t *testing.T) {
	g := testGrid(t, 8, 10)
	kp := KernelParams{ExcAmp: 1, ExcWidth: 1, InhAmp: 0.5, InhWidth: 3}
	nl := Nonlinearity{Beta: 4, Theta: 0.5}
	seed := Seed{Kind: SeedBump, Amplitude: 1, Width: 2}

	euler := buildIntegrator(t, g, kp, Dynamics{Dt: 0.001, Method: MethodEuler, Convolution: ConvDirect}, nl, DriveSpec{})
	rk4 := buildIntegrator(t, g, kp, Dynamics{Dt: 0.001, Method: MethodRK4, Convolution: ConvDirect}, nl, DriveSpec{})

	se, err := NewState(g, seed)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	sr, err := NewState(g, seed)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	for i := 0; i < 20; i++ {
		if err := euler.Step(se); err != nil {
			t.Fatalf("euler step: %v", err)
		}
		if err := rk4.Step(sr); err != nil {
			t.Fatalf("rk4 step: %v", err)
		}
	}
	for i := range se.U {
		if math.Abs(se.U[i]-sr.U[i]) > 1e-4 {
			t.Fatalf("schemes disagree at %d: euler %g vs rk4 %g", i, se.U[i], sr.U[i])
		}
	}
}

func TestIntegratorRejectsForeignState(t *testing.T) {
	g := testGrid(t, 8, 10)
	other := testGrid(t, 6, 10)
	it := buildIntegrator(t, g,
		KernelParams{ExcAmp: 1, ExcWidth: 1, InhAmp: 0.5, InhWidth: 3},
		Dynamics{Dt: 0.05, Convolution: ConvDirect},
		Nonlinearity{Beta: 4, Theta: 0.5},
		DriveSpec{Type: DriveNone})

	s, err := NewState(other, Seed{Kind: SeedZero})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if err := it.Step(s); !errors.Is(err, ErrIncompatibleShape) {
		t.Errorf("Step error = %v, want ErrIncompatibleShape", err)
	}
}

func TestDrivePulseSwitchesOff(t *testing.T) {
	g := testGrid(t, 4, 1)
	d, err := NewDrive(g, DriveSpec{Type: DrivePulse, Magnitude: 2, Duration: 1.5})
	if err != nil {
		t.Fatalf("NewDrive: %v", err)
	}

	dst := make([]float64, g.Size())
	d.AddTo(dst, 0.5)
	if dst[0] != 2 {
		t.Errorf("pulse inactive at t=0.5: got %g, want 2", dst[0])
	}
	d.AddTo(dst, 2.0)
	if dst[0] != 2 {
		t.Errorf("pulse still active at t=2.0: got %g, want 2", dst[0])
	}
}

func TestDriveBumpLocalized(t *testing.T) {
	g := testGrid(t, 9, 10)
	d, err := NewDrive(g, DriveSpec{Type: DriveBump, Magnitude: 3, Width: 1, X: 0, Y: 0, Z: 0})
	if err != nil {
		t.Fatalf("NewDrive: %v", err)
	}
	dst := make([]float64, g.Size())
	d.AddTo(dst, 0)

	center := dst[g.Idx(4, 4, 4)]
	corner := dst[g.Idx(0, 0, 0)]
	if math.Abs(center-3) > 1e-12 {
		t.Errorf("bump center = %g, want 3", center)
	}
	if corner >= center/100 {
		t.Errorf("bump corner = %g, want far below center %g", corner, center)
	}
}

func TestDriveValidation(t *testing.T) {
	g := testGrid(t, 4, 1)
	bad := []DriveSpec{
		{Type: "laser"},
		{Type: DrivePulse, Magnitude: 1, Duration: 0},
		{Type: DriveBump, Magnitude: 1, Width: 0},
	}
	for _, spec := range bad {
		if _, err := NewDrive(g, spec); !errors.Is(err, ErrInvalidDriveParameter) {
			t.Errorf("NewDrive(%+v) error = %v, want ErrInvalidDriveParameter", spec, err)
		}
	}
}
