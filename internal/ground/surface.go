// Package ground answers surface height queries against a terrain mesh by
// vertical ray intersection.
package ground

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/demwalk/internal/terrain"
)

// containEpsilon loosens the planar point-in-triangle test so queries on
// shared edges hit at least one of the adjacent triangles.
const containEpsilon = 1e-9

// Hit is the result of a successful ground query.
type Hit struct {
	Height float64
	Normal mgl64.Vec3
}

// Surface indexes a mesh for repeated vertical ray queries. The mesh must
// not be mutated after the surface is built.
type Surface struct {
	mesh     *terrain.Mesh
	min, max mgl64.Vec3

	// Uniform planar grid over the mesh footprint. Each cell lists the
	// triangles whose xy bounding box overlaps it.
	cellSize float64
	cellsX   int
	cellsY   int
	cells    [][]uint32
}

// NewSurface builds the planar triangle index for the mesh.
func NewSurface(m *terrain.Mesh) *Surface {
	s := &Surface{mesh: m}
	s.min, s.max = m.Bounds()

	spanX := s.max.X() - s.min.X()
	spanY := s.max.Y() - s.min.Y()
	if len(m.Triangles) == 0 || spanX <= 0 || spanY <= 0 {
		s.cellSize = 1
		s.cellsX, s.cellsY = 1, 1
		s.cells = make([][]uint32, 1)
		for t := range m.Triangles {
			s.cells[0] = append(s.cells[0], uint32(t))
		}
		return s
	}

	// Aim for a few triangles per cell on a regular heightfield.
	s.cellSize = math.Sqrt(2 * spanX * spanY / float64(len(m.Triangles)))
	s.cellsX = int(spanX/s.cellSize) + 1
	s.cellsY = int(spanY/s.cellSize) + 1
	s.cells = make([][]uint32, s.cellsX*s.cellsY)

	for t, tri := range m.Triangles {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		minX := math.Min(a.X(), math.Min(b.X(), c.X()))
		maxX := math.Max(a.X(), math.Max(b.X(), c.X()))
		minY := math.Min(a.Y(), math.Min(b.Y(), c.Y()))
		maxY := math.Max(a.Y(), math.Max(b.Y(), c.Y()))
		x0, y0 := s.cellAt(minX, minY)
		x1, y1 := s.cellAt(maxX, maxY)
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				i := cy*s.cellsX + cx
				s.cells[i] = append(s.cells[i], uint32(t))
			}
		}
	}
	return s
}

func (s *Surface) cellAt(x, y float64) (cx, cy int) {
	cx = int((x - s.min.X()) / s.cellSize)
	cy = int((y - s.min.Y()) / s.cellSize)
	if cx < 0 {
		cx = 0
	}
	if cx >= s.cellsX {
		cx = s.cellsX - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= s.cellsY {
		cy = s.cellsY - 1
	}
	return cx, cy
}

// Bounds returns the mesh bounding box.
func (s *Surface) Bounds() (min, max mgl64.Vec3) {
	return s.min, s.max
}

// HeightAt casts a ray straight down from above the mesh z-extent at planar
// position (x, y). When several triangles intersect (shared edges, numerical
// duplicates), the greatest z wins: the observer stands on the topmost
// surface. The returned normal faces upward. ok is false when the footprint
// does not cover (x, y).
func (s *Surface) HeightAt(x, y float64) (Hit, bool) {
	if x < s.min.X()-containEpsilon || x > s.max.X()+containEpsilon ||
		y < s.min.Y()-containEpsilon || y > s.max.Y()+containEpsilon {
		return Hit{}, false
	}

	cx, cy := s.cellAt(x, y)
	best := Hit{Height: math.Inf(-1)}
	found := false
	for _, t := range s.cells[cy*s.cellsX+cx] {
		tri := s.mesh.Triangles[t]
		a, b, c := s.mesh.Vertices[tri[0]], s.mesh.Vertices[tri[1]], s.mesh.Vertices[tri[2]]
		z, n, ok := heightInTriangle(x, y, a, b, c)
		if !ok {
			continue
		}
		if !found || z > best.Height {
			best = Hit{Height: z, Normal: n}
			found = true
		}
	}
	return best, found
}

// heightInTriangle solves the planar barycentric coordinates of (x, y) in
// triangle abc and, when contained, interpolates the surface height. This is
// the vertical-ray specialization: a (0,0,-1) ray from above the mesh hits a
// triangle exactly where its planar projection contains the query point.
func heightInTriangle(x, y float64, a, b, c mgl64.Vec3) (z float64, normal mgl64.Vec3, ok bool) {
	det := (b.Y()-c.Y())*(a.X()-c.X()) + (c.X()-b.X())*(a.Y()-c.Y())
	if math.Abs(det) < containEpsilon {
		return 0, normal, false // planar-degenerate triangle
	}
	wa := ((b.Y()-c.Y())*(x-c.X()) + (c.X()-b.X())*(y-c.Y())) / det
	wb := ((c.Y()-a.Y())*(x-c.X()) + (a.X()-c.X())*(y-c.Y())) / det
	wc := 1 - wa - wb
	if wa < -containEpsilon || wb < -containEpsilon || wc < -containEpsilon {
		return 0, normal, false
	}

	z = wa*a.Z() + wb*b.Z() + wc*c.Z()
	normal = b.Sub(a).Cross(c.Sub(a))
	if normal.Z() < 0 {
		normal = normal.Mul(-1)
	}
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1 / l)
	} else {
		normal = mgl64.Vec3{0, 0, 1}
	}
	return z, normal, true
}
