package dem

import (
	"bufio"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/tiff"
)

// LoadASC reads an ESRI ASCII grid (.asc) file. The header supplies the cell
// size and the lower-left corner; the first data row is the northernmost, so
// the row scale of the resulting transform is negative. NODATA cells are
// replaced with zero elevation.
func LoadASC(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dem: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	var (
		ncols, nrows       int
		xll, yll, cellsize float64
		nodata             = -9999.0
		hasNodata          bool
	)

	// Header: keyword/value pairs until the first numeric row.
	var firstDataLine string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		if _, err := strconv.ParseFloat(fields[0], 64); err == nil {
			firstDataLine = line
			break
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("dem: %s: malformed header line %q", path, line)
		}
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("dem: %s: header %s: %w", path, key, err)
		}
		switch key {
		case "ncols":
			ncols = int(val)
		case "nrows":
			nrows = int(val)
		case "xllcorner", "xllcenter":
			xll = val
		case "yllcorner", "yllcenter":
			yll = val
		case "cellsize":
			cellsize = val
		case "nodata_value":
			nodata = val
			hasNodata = true
		default:
			return nil, fmt.Errorf("dem: %s: unknown header key %q", path, key)
		}
	}
	if ncols < 2 || nrows < 2 || cellsize <= 0 {
		return nil, fmt.Errorf("dem: %s: incomplete header (ncols=%d nrows=%d cellsize=%g)", path, ncols, nrows, cellsize)
	}

	elev := make([]float64, 0, nrows*ncols)
	nodataCount := 0
	appendLine := func(line string) error {
		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return fmt.Errorf("dem: %s: bad sample %q: %w", path, tok, err)
			}
			if hasNodata && v == nodata {
				v = 0
				nodataCount++
			}
			elev = append(elev, v)
		}
		return nil
	}
	if firstDataLine != "" {
		if err := appendLine(firstDataLine); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if err := appendLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dem: read %s: %w", path, err)
	}
	if len(elev) != nrows*ncols {
		return nil, fmt.Errorf("dem: %s: got %d samples, want %d", path, len(elev), nrows*ncols)
	}
	if nodataCount > 0 {
		zap.L().Warn("NODATA cells zeroed", zap.String("path", path), zap.Int("count", nodataCount))
	}

	// Row 0 is the top of the map: y decreases with increasing row.
	tf := Affine{
		A: cellsize, C: xll,
		E: -cellsize, F: yll + cellsize*float64(nrows),
	}
	return NewGrid(nrows, ncols, elev, tf)
}

// LoadImage reads a grayscale heightmap image (PNG or TIFF) and maps pixel
// intensity linearly onto [minElev, maxElev]. cellSize is the planar extent
// of one pixel in meters.
func LoadImage(path string, cellSize, minElev, maxElev float64) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dem: open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dem: decode %s: %w", path, err)
	}

	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	elev := make([]float64, rows*cols)
	scale := (maxElev - minElev) / 65535.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			// Gray16 from RGBA; color.Gray models promote correctly.
			lum, _, _, _ := img.At(b.Min.X+c, b.Min.Y+r).RGBA()
			elev[r*cols+c] = minElev + float64(lum)*scale
		}
	}

	zap.L().Info("heightmap image loaded",
		zap.String("path", path), zap.String("format", format),
		zap.Int("rows", rows), zap.Int("cols", cols))

	// Image row 0 is the top edge, mirroring the .asc convention.
	tf := Affine{
		A: cellSize,
		E: -cellSize, F: cellSize * float64(rows),
	}
	return NewGrid(rows, cols, elev, tf)
}
