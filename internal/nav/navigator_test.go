package nav

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/demwalk/internal/dem"
	"github.com/Faultbox/demwalk/internal/ground"
	"github.com/Faultbox/demwalk/internal/terrain"
)

func surfaceFromElev(t *testing.T, rows, cols int, elev func(r, c int) float64) *ground.Surface {
	t.Helper()
	data := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data[r*cols+c] = elev(r, c)
		}
	}
	g, err := dem.NewGrid(rows, cols, data, dem.Identity())
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	s, err := dem.Sample(g, 1)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	m, err := terrain.Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ground.NewSurface(m)
}

func flatSurface(t *testing.T, size int, h float64) *ground.Surface {
	return surfaceFromElev(t, size, size, func(r, c int) float64 { return h })
}

func TestNewSnapsToGround(t *testing.T) {
	s := flatSurface(t, 5, 3)
	params := DefaultParams()
	n := New(s, params, Pose{Position: mgl64.Vec3{2, 2, 100}})
	if got := n.Pose().Position.Z(); math.Abs(got-(3+params.EyeHeight)) > 1e-9 {
		t.Errorf("start z = %g, want %g", got, 3+params.EyeHeight)
	}
}

func TestStepForwardOnFlatGround(t *testing.T) {
	s := flatSurface(t, 10, 0)
	params := DefaultParams()
	params.Speed = 1
	// Heading 0 faces +Y.
	n := New(s, params, Pose{Position: mgl64.Vec3{4, 4, 0}})

	p := n.Step(Intent{Forward: true}, 1)
	if math.Abs(p.Position.X()-4) > 1e-9 || math.Abs(p.Position.Y()-5) > 1e-9 {
		t.Errorf("moved to (%g, %g), want (4, 5)", p.Position.X(), p.Position.Y())
	}
	if math.Abs(p.Position.Z()-params.EyeHeight) > 1e-9 {
		t.Errorf("z = %g, want eye height %g", p.Position.Z(), params.EyeHeight)
	}
}

func TestStepHeadingRelative(t *testing.T) {
	s := flatSurface(t, 10, 0)
	params := DefaultParams()
	params.Speed = 1

	tests := []struct {
		heading float64
		dx, dy  float64
	}{
		{0, 0, 1},
		{90, 1, 0},
		{180, 0, -1},
		{270, -1, 0},
	}
	for _, tt := range tests {
		n := New(s, params, Pose{Position: mgl64.Vec3{4, 4, 0}, Heading: tt.heading})
		p := n.Step(Intent{Forward: true}, 1)
		if math.Abs(p.Position.X()-(4+tt.dx)) > 1e-9 || math.Abs(p.Position.Y()-(4+tt.dy)) > 1e-9 {
			t.Errorf("heading %g: moved to (%g, %g), want (%g, %g)",
				tt.heading, p.Position.X(), p.Position.Y(), 4+tt.dx, 4+tt.dy)
		}
	}
}

func TestStepDiagonalNormalized(t *testing.T) {
	// Forward+right must not move faster than forward alone.
	s := flatSurface(t, 10, 0)
	params := DefaultParams()
	params.Speed = 2
	n := New(s, params, Pose{Position: mgl64.Vec3{4, 4, 0}})

	start := n.Pose().Position
	p := n.Step(Intent{Forward: true, Right: true}, 1)
	planar := p.Position.Sub(start)
	planar[2] = 0
	if math.Abs(planar.Len()-2) > 1e-9 {
		t.Errorf("diagonal step length %g, want 2", planar.Len())
	}
}

func TestStepClimbLimited(t *testing.T) {
	// 2x2 grid with a 10m cliff vertex at (1, 1). One step toward the cliff
	// with maxClimb = 1 must not teleport onto the full height.
	s := surfaceFromElev(t, 2, 2, func(r, c int) float64 {
		if r == 1 && c == 1 {
			return 10
		}
		return 0
	})
	params := DefaultParams()
	params.Speed = 1
	params.EyeHeight = 0

	start := Pose{Position: mgl64.Vec3{0.2, 0.2, 0}, Heading: 45}
	n := New(s, params, start)
	startZ := n.Pose().Position.Z()

	p := n.Step(Intent{Forward: true}, 1)
	if p.Position.Z() >= 10 {
		t.Errorf("z = %g: teleported onto the cliff", p.Position.Z())
	}
	if p.Position.Z() <= startZ {
		t.Errorf("z = %g, want above start height %g", p.Position.Z(), startZ)
	}

	// The slide fraction, not the full displacement, was applied.
	planar := p.Position.Sub(start.Position)
	planar[2] = 0
	if full := params.Speed * 1; planar.Len() >= full/2 {
		t.Errorf("slid %g planar units, want < %g", planar.Len(), full/2)
	}
}

func TestStepDescendFraction(t *testing.T) {
	// Walking off a 10m drop applies the descend fraction.
	s := surfaceFromElev(t, 2, 3, func(r, c int) float64 {
		if c == 2 {
			return -10
		}
		return 0
	})
	params := DefaultParams()
	params.Speed = 1
	params.EyeHeight = 0

	start := Pose{Position: mgl64.Vec3{0.9, 0.5, 0}, Heading: 90} // toward +X
	n := New(s, params, start)

	p := n.Step(Intent{Forward: true}, 1)
	moved := p.Position.X() - start.Position.X()
	if math.Abs(moved-params.DescendFraction) > 1e-9 {
		t.Errorf("moved %g in x, want descend fraction %g", moved, params.DescendFraction)
	}
	if p.Position.Z() >= 0 {
		t.Errorf("z = %g, want below the upper plateau", p.Position.Z())
	}
}

func TestStepHoldsPoseOffMesh(t *testing.T) {
	s := flatSurface(t, 3, 0)
	params := DefaultParams()
	params.Speed = 10 // one step far past the footprint
	n := New(s, params, Pose{Position: mgl64.Vec3{1, 1, 0}})

	before := n.Pose()
	p := n.Step(Intent{Forward: true}, 1)
	if p.Position != before.Position {
		t.Errorf("position %v changed on a ground-query miss, want %v", p.Position, before.Position)
	}
	if n.Misses() == 0 {
		t.Error("miss counter not incremented")
	}
}

func TestLookWrapAndClamp(t *testing.T) {
	s := flatSurface(t, 3, 0)
	params := DefaultParams()
	params.Sensitivity = 100
	n := New(s, params, Pose{Position: mgl64.Vec3{1, 1, 0}, Heading: 10})

	// Heading decreases with positive dx and wraps.
	p := n.Step(Intent{LookDX: 0.5}, 0.016)
	if math.Abs(p.Heading-320) > 1e-9 {
		t.Errorf("heading = %g, want 320", p.Heading)
	}

	// Pitch clamps at +/-89.
	p = n.Step(Intent{LookDY: 5}, 0.016)
	if p.Pitch != 89 {
		t.Errorf("pitch = %g, want clamp at 89", p.Pitch)
	}
	p = n.Step(Intent{LookDY: -50}, 0.016)
	if p.Pitch != -89 {
		t.Errorf("pitch = %g, want clamp at -89", p.Pitch)
	}
}

func TestTurnKeys(t *testing.T) {
	s := flatSurface(t, 3, 0)
	params := DefaultParams()
	params.TurnSpeed = 90
	n := New(s, params, Pose{Position: mgl64.Vec3{1, 1, 0}})

	p := n.Step(Intent{TurnLeft: true}, 1)
	if math.Abs(p.Heading-90) > 1e-9 {
		t.Errorf("heading = %g after turn left, want 90", p.Heading)
	}
	p = n.Step(Intent{TurnRight: true}, 2)
	if math.Abs(p.Heading-270) > 1e-9 {
		t.Errorf("heading = %g after turn right, want 270", p.Heading)
	}
}
