package field

import "testing"

func TestSnapshotIsACopy(t *testing.T) {
	g := testGrid(t, 6, 5)
	s, err := NewState(g, Seed{Kind: SeedBump, Amplitude: 1, Width: 1})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	snap := newSnapshot(g, s, nil)
	s.U[0] = 99

	if snap.Activity[0] == 99 {
		t.Error("snapshot shares storage with the live state")
	}
}

func TestSnapshotSlice(t *testing.T) {
	g := testGrid(t, 5, 10)
	s, err := NewState(g, Seed{Kind: SeedBump, Amplitude: 2, Width: 1.5})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	snap := newSnapshot(g, s, nil)

	plane, extent := snap.Slice('z', 2)
	if len(plane) != 5 || len(plane[0]) != 5 {
		t.Fatalf("slice shape = %dx%d, want 5x5", len(plane), len(plane[0]))
	}
	if extent != [4]float64{-5, 5, -5, 5} {
		t.Errorf("extent = %v, want [-5 5 -5 5]", extent)
	}
	if plane[2][2] != snap.At(2, 2, 2) {
		t.Errorf("slice center %g != activity center %g", plane[2][2], snap.At(2, 2, 2))
	}

	// Out-of-range indices fall back to the middle plane.
	fallback, _ := snap.Slice('x', -7)
	want, _ := snap.Slice('x', 2)
	for r := range fallback {
		for c := range fallback[r] {
			if fallback[r][c] != want[r][c] {
				t.Fatal("out-of-range slice index did not default to the middle plane")
			}
		}
	}
}
