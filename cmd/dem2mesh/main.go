// dem2mesh is a headless CLI that converts a DEM into a Wavefront OBJ mesh.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/demwalk/internal/dem"
	"github.com/Faultbox/demwalk/internal/logger"
	"github.com/Faultbox/demwalk/internal/terrain"
)

func main() {
	var (
		output     = flag.String("o", "", "Output OBJ path (default: input with .obj extension)")
		downsample = flag.Int("downsample", 1, "Keep every Nth DEM sample")
		classify   = flag.Bool("classify", false, "Attach elevation-band vertex colors")
		cellSize   = flag.Float64("cell-size", 1.0, "Ground spacing for image DEMs")
		minElev    = flag.Float64("min-elev", 0, "Elevation mapped to black for image DEMs")
		maxElev    = flag.Float64("max-elev", 100, "Elevation mapped to white for image DEMs")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `dem2mesh - convert a DEM into an OBJ terrain mesh

Usage:
  dem2mesh [options] <input.asc|input.png|input.tif>

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	input := flag.Arg(0)

	level := "info"
	if *debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(input, *output, *downsample, *classify, *cellSize, *minElev, *maxElev); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string, downsample int, classify bool, cellSize, minElev, maxElev float64) error {
	var (
		grid *dem.Grid
		err  error
	)
	switch strings.ToLower(filepath.Ext(input)) {
	case ".asc":
		grid, err = dem.LoadASC(input)
	case ".png", ".tif", ".tiff":
		grid, err = dem.LoadImage(input, cellSize, minElev, maxElev)
	default:
		return fmt.Errorf("unsupported DEM format: %s", input)
	}
	if err != nil {
		return err
	}

	sampled, err := dem.Sample(grid, downsample)
	if err != nil {
		return err
	}

	mesh, err := terrain.Build(sampled)
	if err != nil {
		return err
	}
	if classify {
		mesh.Classify()
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".obj"
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := mesh.WriteOBJ(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("Wrote %s: %d vertices, %d triangles\n", output, len(mesh.Vertices), len(mesh.Triangles))
	return nil
}
