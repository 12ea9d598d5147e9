package terrain

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes the mesh as Wavefront OBJ: v lines (with the common
// r g b vertex-color extension when colors are attached), vn lines and
// f v//vn triplets. OBJ indices are 1-based.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)

	hasColors := len(m.Colors) == len(m.Vertices)
	for i, v := range m.Vertices {
		if hasColors {
			c := m.Colors[i]
			fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", v.X(), v.Y(), v.Z(), c.X(), c.Y(), c.Z())
		} else {
			fmt.Fprintf(bw, "v %g %g %g\n", v.X(), v.Y(), v.Z())
		}
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
	}
	for _, tri := range m.Triangles {
		a, b, c := tri[0]+1, tri[1]+1, tri[2]+1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}

	return bw.Flush()
}
