// Package terrain builds triangulated surface meshes from sampled elevation
// grids.
package terrain

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/demwalk/internal/dem"
)

// ErrEmptyMesh is returned when the sampled grid has fewer than 2x2 points.
var ErrEmptyMesh = errors.New("terrain: sampled grid smaller than 2x2")

// ErrDegenerateMesh is returned when cleanup removes every triangle.
var ErrDegenerateMesh = errors.New("terrain: no triangles left after cleanup")

// Mesh is a triangulated surface: world-space vertices, parallel unit
// normals and a triangle index list. Colors is optional per-vertex data
// attached by the classifier; it never affects topology.
type Mesh struct {
	Vertices  []mgl64.Vec3
	Normals   []mgl64.Vec3
	Triangles [][3]uint32
	Colors    []mgl64.Vec3
}

// Build tessellates the sampled grid and runs the cleanup pass. This is the
// canonical path from DEM samples to a renderable mesh.
func Build(s *dem.Sampled) (*Mesh, error) {
	m, err := Tessellate(s)
	if err != nil {
		return nil, err
	}
	if err := m.Clean(); err != nil {
		return nil, err
	}
	return m, nil
}

// Tessellate emits one vertex per grid cell in row-major order
// (index = row*cols + col) and two triangles per interior quad, split along
// the diagonal from the quad's top-left to its bottom-right vertex. The
// split direction is the same for every quad so the surface has no seams.
// Normals are computed but no cleanup is performed.
func Tessellate(s *dem.Sampled) (*Mesh, error) {
	if s.Rows < 2 || s.Cols < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyMesh, s.Rows, s.Cols)
	}

	m := &Mesh{
		Vertices:  make([]mgl64.Vec3, s.Rows*s.Cols),
		Triangles: make([][3]uint32, 0, 2*(s.Rows-1)*(s.Cols-1)),
	}
	for k := range m.Vertices {
		m.Vertices[k] = mgl64.Vec3{s.X[k], s.Y[k], s.Elev[k]}
	}

	cols := s.Cols
	skipped := 0
	for r := 0; r < s.Rows-1; r++ {
		for c := 0; c < s.Cols-1; c++ {
			idx := uint32(r*cols + c)
			right := idx + 1
			down := idx + uint32(cols)
			downRight := down + 1

			for _, tri := range [][3]uint32{{idx, down, downRight}, {idx, downRight, right}} {
				// Unreachable given the loop bounds, but an index outside the
				// vertex array must never escape into the triangle list.
				if int(tri[0]) >= len(m.Vertices) || int(tri[1]) >= len(m.Vertices) || int(tri[2]) >= len(m.Vertices) {
					skipped++
					continue
				}
				m.Triangles = append(m.Triangles, tri)
			}
		}
	}
	if skipped > 0 {
		zap.L().Warn("skipped faces with out-of-range indices", zap.Int("count", skipped))
	}

	m.ComputeNormals()
	return m, nil
}

// ComputeNormals rebuilds per-vertex normals as the normalized sum of
// incident face normals. The cross product is proportional to face area, so
// larger faces weigh more. Vertices with no defined normal get +Z.
func (m *Mesh) ComputeNormals() {
	m.Normals = make([]mgl64.Vec3, len(m.Vertices))
	for _, tri := range m.Triangles {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		fn := b.Sub(a).Cross(c.Sub(a))
		for _, vi := range tri {
			m.Normals[vi] = m.Normals[vi].Add(fn)
		}
	}
	up := mgl64.Vec3{0, 0, 1}
	for i, n := range m.Normals {
		if l := n.Len(); l > normalEpsilon {
			m.Normals[i] = n.Mul(1 / l)
		} else {
			m.Normals[i] = up
		}
	}
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max
}
