package dem

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Sampled is a grid reduced by an integer stride, with world coordinates
// already resolved. It is a transient product consumed by the mesh builder.
type Sampled struct {
	Rows, Cols int
	Elev       []float64 // row-major elevations
	X, Y       []float64 // row-major world coordinates, parallel to Elev
}

// Sample selects a decimated subset of rows and columns from the grid.
// factor 1 keeps every sample. The selected indices are evenly spaced over
// [0, n-1] inclusive, so the grid corners are always represented. World
// coordinates come from the affine transform applied to the original
// (undecimated) indices, which keeps metric accuracy at any factor.
func Sample(g *Grid, factor int) (*Sampled, error) {
	if factor < 1 {
		return nil, fmt.Errorf("dem: downsample factor %d, want >= 1", factor)
	}

	rows := g.rows / factor
	cols := g.cols / factor
	if rows < 2 || cols < 2 {
		zap.L().Warn("grid too small after downsampling",
			zap.Int("rows", g.rows), zap.Int("cols", g.cols), zap.Int("factor", factor))
		return nil, fmt.Errorf("%w: %dx%d after factor %d", ErrInvalidGrid, rows, cols, factor)
	}

	rowIdx := spacedIndices(g.rows, rows)
	colIdx := spacedIndices(g.cols, cols)

	s := &Sampled{
		Rows: rows,
		Cols: cols,
		Elev: make([]float64, rows*cols),
		X:    make([]float64, rows*cols),
		Y:    make([]float64, rows*cols),
	}
	for i, r := range rowIdx {
		for j, c := range colIdx {
			k := i*cols + j
			s.Elev[k] = g.At(r, c)
			s.X[k], s.Y[k] = g.transform.Apply(float64(r), float64(c))
		}
	}
	return s, nil
}

// spacedIndices returns count integer positions evenly spanning [0, n-1]
// inclusive, rounding interpolated positions to the nearest integer.
func spacedIndices(n, count int) []int {
	idx := make([]int, count)
	step := float64(n-1) / float64(count-1)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * step))
	}
	return idx
}
