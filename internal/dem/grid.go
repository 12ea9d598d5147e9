// Package dem holds digital elevation model grids and the sampling step that
// prepares them for mesh construction.
package dem

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is returned when a grid (or its sampled form) drops below
// the 2x2 minimum a mesh needs.
var ErrInvalidGrid = errors.New("dem: grid smaller than 2x2")

// Affine maps grid indices to world coordinates using six coefficients,
// in the usual raster convention:
//
//	x = C + A*col + B*row
//	y = F + D*col + E*row
//
// A and E are the pixel scales, B and D the rotation/shear terms (usually
// zero), C and F the origin offsets.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns a transform where world coordinates equal grid indices.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Apply resolves a (row, col) index pair to world (x, y).
func (a Affine) Apply(row, col float64) (x, y float64) {
	x = a.C + a.A*col + a.B*row
	y = a.F + a.D*col + a.E*row
	return x, y
}

// Grid is an immutable rectangular grid of elevation samples in meters,
// together with the affine transform that places it in the world.
type Grid struct {
	rows, cols int
	elev       []float64 // row-major
	transform  Affine
}

// NewGrid creates a grid from row-major elevation data. The data slice is
// retained, not copied; callers hand over ownership.
func NewGrid(rows, cols int, elev []float64, transform Affine) (*Grid, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
	}
	if len(elev) != rows*cols {
		return nil, fmt.Errorf("dem: elevation data has %d samples, want %d", len(elev), rows*cols)
	}
	return &Grid{rows: rows, cols: cols, elev: elev, transform: transform}, nil
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// Transform returns the grid's index-to-world transform.
func (g *Grid) Transform() Affine { return g.transform }

// At returns the elevation at (row, col). Indices must be in range.
func (g *Grid) At(row, col int) float64 {
	return g.elev[row*g.cols+col]
}

// MinMax returns the lowest and highest elevation in the grid.
func (g *Grid) MinMax() (min, max float64) {
	min, max = g.elev[0], g.elev[0]
	for _, z := range g.elev[1:] {
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}
	return min, max
}
