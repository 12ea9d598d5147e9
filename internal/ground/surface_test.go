package ground

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/demwalk/internal/dem"
	"github.com/Faultbox/demwalk/internal/terrain"
)

func buildSurface(t *testing.T, rows, cols int, elev func(r, c int) float64) *Surface {
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
	return NewSurface(m)
}

func TestHeightAtFlatGrid(t *testing.T) {
	// Flat grid at h: every interior query returns h.
	const h = 7.5
	s := buildSurface(t, 5, 5, func(r, c int) float64 { return h })

	for _, q := range [][2]float64{
		{0.5, 0.5}, {1, 1}, {2.3, 3.7}, {3.999, 0.001}, {2, 2},
	} {
		hit, ok := s.HeightAt(q[0], q[1])
		if !ok {
			t.Errorf("HeightAt(%g, %g) missed", q[0], q[1])
			continue
		}
		if math.Abs(hit.Height-h) > 1e-9 {
			t.Errorf("HeightAt(%g, %g) = %g, want %g", q[0], q[1], hit.Height, h)
		}
		if hit.Normal.Sub(mgl64.Vec3{0, 0, 1}).Len() > 1e-9 {
			t.Errorf("HeightAt(%g, %g) normal %v, want +Z", q[0], q[1], hit.Normal)
		}
	}
}

func TestHeightAtCenterOfZeroGrid(t *testing.T) {
	s := buildSurface(t, 3, 3, func(r, c int) float64 { return 0 })
	hit, ok := s.HeightAt(1, 1)
	if !ok {
		t.Fatal("HeightAt(1, 1) missed")
	}
	if hit.Height != 0 {
		t.Errorf("HeightAt(1, 1) = %g, want 0", hit.Height)
	}
}

func TestHeightAtOutsideFootprint(t *testing.T) {
	s := buildSurface(t, 3, 3, func(r, c int) float64 { return 0 })
	for _, q := range [][2]float64{
		{-1, 1}, {1, -1}, {5, 1}, {1, 5}, {-10, -10},
	} {
		if _, ok := s.HeightAt(q[0], q[1]); ok {
			t.Errorf("HeightAt(%g, %g) hit outside footprint", q[0], q[1])
		}
	}
}

func TestHeightAtSlope(t *testing.T) {
	// z = row: height interpolates linearly in y.
	s := buildSurface(t, 4, 4, func(r, c int) float64 { return float64(r) })
	tests := []struct {
		x, y, want float64
	}{
		{1.5, 0, 0},
		{1.5, 1, 1},
		{0.5, 2.5, 2.5},
		{2, 0.25, 0.25},
	}
	for _, tt := range tests {
		hit, ok := s.HeightAt(tt.x, tt.y)
		if !ok {
			t.Errorf("HeightAt(%g, %g) missed", tt.x, tt.y)
			continue
		}
		if math.Abs(hit.Height-tt.want) > 1e-9 {
			t.Errorf("HeightAt(%g, %g) = %g, want %g", tt.x, tt.y, hit.Height, tt.want)
		}
		if hit.Normal.Z() <= 0 {
			t.Errorf("HeightAt(%g, %g) normal %v not upward", tt.x, tt.y, hit.Normal)
		}
	}
}

func TestHeightAtTopmostWins(t *testing.T) {
	// Two coplanar-in-xy triangles stacked at different heights: the query
	// must return the greater z.
	m := &terrain.Mesh{
		Vertices: []mgl64.Vec3{
			{0, 0, 0}, {4, 0, 0}, {0, 4, 0},
			{0, 0, 3}, {4, 0, 3}, {0, 4, 3},
		},
		Triangles: [][3]uint32{{0, 1, 2}, {3, 4, 5}},
	}
	m.ComputeNormals()
	s := NewSurface(m)

	hit, ok := s.HeightAt(1, 1)
	if !ok {
		t.Fatal("HeightAt(1, 1) missed")
	}
	if hit.Height != 3 {
		t.Errorf("HeightAt(1, 1) = %g, want topmost 3", hit.Height)
	}
}

func TestHeightAtSharedEdge(t *testing.T) {
	// Queries on the quad diagonal must hit despite sitting on a triangle
	// boundary.
	s := buildSurface(t, 3, 3, func(r, c int) float64 { return float64(r + c) })
	for _, d := range []float64{0.5, 1.0, 1.5} {
		hit, ok := s.HeightAt(d, d)
		if !ok {
			t.Errorf("HeightAt(%g, %g) missed on shared edge", d, d)
			continue
		}
		if math.Abs(hit.Height-2*d) > 1e-9 {
			t.Errorf("HeightAt(%g, %g) = %g, want %g", d, d, hit.Height, 2*d)
		}
	}
}

func TestBounds(t *testing.T) {
	s := buildSurface(t, 3, 4, func(r, c int) float64 { return float64(r) })
	min, max := s.Bounds()
	if min.X() != 0 || min.Y() != 0 || min.Z() != 0 {
		t.Errorf("min = %v, want origin", min)
	}
	if max.X() != 3 || max.Y() != 2 || max.Z() != 2 {
		t.Errorf("max = %v, want (3, 2, 2)", max)
	}
}
