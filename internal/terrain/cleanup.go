package terrain

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	// areaEpsilon is the face area below which a triangle counts as
	// degenerate (collinear or coincident vertices).
	areaEpsilon = 1e-9
	// mergeEpsilon is the positional tolerance for unifying vertices.
	mergeEpsilon = 1e-6
	// normalEpsilon guards normalization of near-zero normal sums.
	normalEpsilon = 1e-12
)

// Clean removes degenerate triangles, merges duplicated vertices, prunes
// unreferenced vertices and recomputes normals. Running it on an already
// clean mesh changes nothing. Fails with ErrDegenerateMesh when nothing
// survives.
func (m *Mesh) Clean() error {
	removed := m.RemoveDegenerateTriangles()
	merged := m.MergeDuplicateVertices()
	pruned := m.PruneUnreferencedVertices()

	if removed+merged+pruned > 0 {
		zap.L().Debug("mesh cleanup",
			zap.Int("degenerate_triangles", removed),
			zap.Int("merged_vertices", merged),
			zap.Int("pruned_vertices", pruned),
			zap.Int("vertices", len(m.Vertices)),
			zap.Int("triangles", len(m.Triangles)))
	}

	if len(m.Triangles) == 0 {
		return ErrDegenerateMesh
	}
	m.ComputeNormals()
	return nil
}

// RemoveDegenerateTriangles drops triangles with a repeated vertex index or
// a face area below areaEpsilon. Returns the number removed.
func (m *Mesh) RemoveDegenerateTriangles() int {
	kept := m.Triangles[:0]
	for _, tri := range m.Triangles {
		if m.degenerate(tri) {
			continue
		}
		kept = append(kept, tri)
	}
	removed := len(m.Triangles) - len(kept)
	m.Triangles = kept
	return removed
}

func (m *Mesh) degenerate(tri [3]uint32) bool {
	if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
		return true
	}
	a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
	area := b.Sub(a).Cross(c.Sub(a)).Len() / 2
	return area < areaEpsilon
}

// MergeDuplicateVertices unifies vertices closer than mergeEpsilon, remaps
// triangle indices to the surviving vertex and drops triangles that collapse
// in the process. Returns the number of vertices merged away.
func (m *Mesh) MergeDuplicateVertices() int {
	// Bucket vertices by quantized position so near-equal positions land on
	// the same key.
	type key [3]int64
	canonical := make(map[key]uint32, len(m.Vertices))
	remap := make([]uint32, len(m.Vertices))
	merged := 0
	for i, v := range m.Vertices {
		k := key{
			int64(v[0] / mergeEpsilon),
			int64(v[1] / mergeEpsilon),
			int64(v[2] / mergeEpsilon),
		}
		if first, ok := canonical[k]; ok {
			remap[i] = first
			merged++
		} else {
			canonical[k] = uint32(i)
			remap[i] = uint32(i)
		}
	}
	if merged == 0 {
		return 0
	}

	kept := m.Triangles[:0]
	for _, tri := range m.Triangles {
		tri = [3]uint32{remap[tri[0]], remap[tri[1]], remap[tri[2]]}
		if m.degenerate(tri) {
			continue
		}
		kept = append(kept, tri)
	}
	m.Triangles = kept
	return merged
}

// PruneUnreferencedVertices drops vertices no triangle uses and compacts the
// index space so it stays dense. Returns the number pruned.
func (m *Mesh) PruneUnreferencedVertices() int {
	used := make([]bool, len(m.Vertices))
	for _, tri := range m.Triangles {
		used[tri[0]] = true
		used[tri[1]] = true
		used[tri[2]] = true
	}

	remap := make([]uint32, len(m.Vertices))
	vertices := m.Vertices[:0]
	var colors []mgl64.Vec3
	hasColors := len(m.Colors) == len(m.Vertices)
	if hasColors {
		colors = m.Colors[:0]
	}
	for i, u := range used {
		if !u {
			continue
		}
		remap[i] = uint32(len(vertices))
		vertices = append(vertices, m.Vertices[i])
		if hasColors {
			colors = append(colors, m.Colors[i])
		}
	}
	pruned := len(m.Vertices) - len(vertices)
	if pruned == 0 {
		return 0
	}

	m.Vertices = vertices
	if hasColors {
		m.Colors = colors
	}
	for t, tri := range m.Triangles {
		m.Triangles[t] = [3]uint32{remap[tri[0]], remap[tri[1]], remap[tri[2]]}
	}
	return pruned
}
