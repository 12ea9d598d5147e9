package dem

import "math"

// RollingHills generates a synthetic DEM of gentle sine-wave hills centered
// on the origin. spacing is the cell size in meters, amplitude the hill
// height. Useful as a stand-in terrain when no DEM file is available.
func RollingHills(rows, cols int, spacing, amplitude float64) (*Grid, error) {
	tf := Affine{
		A: spacing, C: -spacing * float64(cols-1) / 2,
		E: spacing, F: -spacing * float64(rows-1) / 2,
	}
	elev := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := tf.Apply(float64(r), float64(c))
			elev[r*cols+c] = (math.Sin(x*0.05) + math.Sin(y*0.05)) * amplitude
		}
	}
	return NewGrid(rows, cols, elev, tf)
}
