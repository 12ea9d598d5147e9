package terrain

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/demwalk/internal/dem"
)

// flatSampled builds a sampled grid with constant elevation on an identity
// transform.
func flatSampled(t *testing.T, rows, cols int, height float64) *dem.Sampled {
	t.Helper()
	elev := make([]float64, rows*cols)
	for i := range elev {
		elev[i] = height
	}
	g, err := dem.NewGrid(rows, cols, elev, dem.Identity())
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	s, err := dem.Sample(g, 1)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	return s
}

func TestTessellateCounts(t *testing.T) {
	tests := []struct{ rows, cols int }{
		{2, 2}, {3, 3}, {4, 7}, {10, 10},
	}
	for _, tt := range tests {
		s := flatSampled(t, tt.rows, tt.cols, 0)
		m, err := Tessellate(s)
		if err != nil {
			t.Fatalf("Tessellate(%dx%d): %v", tt.rows, tt.cols, err)
		}
		wantVerts := tt.rows * tt.cols
		wantTris := 2 * (tt.rows - 1) * (tt.cols - 1)
		if len(m.Vertices) != wantVerts {
			t.Errorf("%dx%d: %d vertices, want %d", tt.rows, tt.cols, len(m.Vertices), wantVerts)
		}
		if len(m.Triangles) != wantTris {
			t.Errorf("%dx%d: %d triangles, want %d", tt.rows, tt.cols, len(m.Triangles), wantTris)
		}
	}
}

func TestTessellateTooSmall(t *testing.T) {
	s := &dem.Sampled{Rows: 1, Cols: 5, Elev: make([]float64, 5), X: make([]float64, 5), Y: make([]float64, 5)}
	if _, err := Tessellate(s); err == nil {
		t.Error("expected error for 1x5 sampled grid")
	}
}

func TestBuildFlat3x3(t *testing.T) {
	// 3x3 zero grid, identity transform: 8 triangles, 9 vertices, all
	// normals +Z.
	m, err := Build(flatSampled(t, 3, 3, 0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Vertices) != 9 {
		t.Errorf("%d vertices, want 9", len(m.Vertices))
	}
	if len(m.Triangles) != 8 {
		t.Errorf("%d triangles, want 8", len(m.Triangles))
	}
	up := mgl64.Vec3{0, 0, 1}
	for i, n := range m.Normals {
		if n.Sub(up).Len() > 1e-12 {
			t.Errorf("normal[%d] = %v, want +Z", i, n)
		}
	}
}

func TestTriangleIndicesValid(t *testing.T) {
	s := flatSampled(t, 6, 8, 3)
	m, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, tri := range m.Triangles {
		for _, vi := range tri {
			if int(vi) >= len(m.Vertices) {
				t.Fatalf("triangle %d references vertex %d of %d", i, vi, len(m.Vertices))
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			t.Fatalf("triangle %d repeats a vertex: %v", i, tri)
		}
	}
}

func TestTriangulationDiagonal(t *testing.T) {
	// Fixed split: first quad yields {0, cols, cols+1} and {0, cols+1, 1}.
	s := flatSampled(t, 2, 2, 0)
	m, err := Tessellate(s)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	want := [][3]uint32{{0, 2, 3}, {0, 3, 1}}
	for i, tri := range want {
		if m.Triangles[i] != tri {
			t.Errorf("triangle %d = %v, want %v", i, m.Triangles[i], tri)
		}
	}
}

func TestNormalsUnitLength(t *testing.T) {
	// A sloped, bumpy surface: every normal must still be unit length.
	rows, cols := 8, 8
	elev := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			elev[r*cols+c] = math.Sin(float64(r)) * math.Cos(float64(c)) * 4
		}
	}
	g, err := dem.NewGrid(rows, cols, elev, dem.Identity())
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	s, err := dem.Sample(g, 1)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	m, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, n := range m.Normals {
		if math.Abs(n.Len()-1) > 1e-9 {
			t.Errorf("normal[%d] has length %g", i, n.Len())
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	m, err := Build(flatSampled(t, 5, 5, 2))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	verts, tris := len(m.Vertices), len(m.Triangles)
	before := append([][3]uint32(nil), m.Triangles...)

	if err := m.Clean(); err != nil {
		t.Fatalf("second Clean: %v", err)
	}
	if len(m.Vertices) != verts || len(m.Triangles) != tris {
		t.Errorf("second Clean changed counts: %d/%d -> %d/%d",
			verts, tris, len(m.Vertices), len(m.Triangles))
	}
	for i := range before {
		if m.Triangles[i] != before[i] {
			t.Errorf("second Clean changed triangle %d: %v -> %v", i, before[i], m.Triangles[i])
		}
	}
}

func TestCleanRemovesDegenerateAndDuplicates(t *testing.T) {
	// Hand-built mesh: a valid triangle, a zero-area sliver, a duplicate of
	// vertex 0 and an unreferenced vertex.
	m := &Mesh{
		Vertices: []mgl64.Vec3{
			{0, 0, 0},         // 0
			{1, 0, 0},         // 1
			{0, 1, 0},         // 2
			{2, 0, 0},         // 3: collinear with 0 and 1
			{0, 0, 0},         // 4: duplicate of 0
			{5, 5, 5},         // 5: unreferenced
			{1, 1, 0},         // 6
		},
		Triangles: [][3]uint32{
			{0, 1, 2}, // valid
			{0, 1, 3}, // zero area
			{4, 1, 6}, // valid, references the duplicate vertex
			{1, 1, 2}, // repeated index
		},
	}
	m.ComputeNormals()

	if err := m.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if len(m.Triangles) != 2 {
		t.Fatalf("%d triangles after cleanup, want 2", len(m.Triangles))
	}
	// Vertices 3 (only used by the sliver) and 5 are pruned; 4 merges into 0.
	if len(m.Vertices) != 4 {
		t.Fatalf("%d vertices after cleanup, want 4", len(m.Vertices))
	}
	for i, tri := range m.Triangles {
		for _, vi := range tri {
			if int(vi) >= len(m.Vertices) {
				t.Errorf("triangle %d references pruned vertex %d", i, vi)
			}
		}
	}
	if len(m.Normals) != len(m.Vertices) {
		t.Errorf("normals length %d, vertices %d", len(m.Normals), len(m.Vertices))
	}
}

func TestCleanAllDegenerate(t *testing.T) {
	// Every vertex coincident: cleanup must fail rather than return an empty
	// mesh.
	m := &Mesh{
		Vertices:  []mgl64.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
		Triangles: [][3]uint32{{0, 1, 2}},
	}
	m.ComputeNormals()
	if err := m.Clean(); err == nil {
		t.Error("expected ErrDegenerateMesh")
	}
}

func TestClassify(t *testing.T) {
	// Elevations 0..99: thresholds at 29.7 and 59.4.
	rows, cols := 10, 10
	elev := make([]float64, rows*cols)
	for i := range elev {
		elev[i] = float64(i)
	}
	g, err := dem.NewGrid(rows, cols, elev, dem.Identity())
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	s, err := dem.Sample(g, 1)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	m, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	counts := m.Classify()
	if len(m.Colors) != len(m.Vertices) {
		t.Fatalf("colors length %d, vertices %d", len(m.Colors), len(m.Vertices))
	}
	if counts[ClassGround] != 30 || counts[ClassHill] != 30 || counts[ClassRock] != 40 {
		t.Errorf("class counts %v, want [30 30 40]", counts)
	}
	if m.Colors[0] != classColors[ClassGround] {
		t.Errorf("lowest vertex color %v, want ground tone", m.Colors[0])
	}
	if m.Colors[len(m.Colors)-1] != classColors[ClassRock] {
		t.Errorf("highest vertex color %v, want rock tone", m.Colors[len(m.Colors)-1])
	}
}
