package geodesy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// CS2CS reprojects through the PROJ cs2cs tool. One process is started per
// call, so callers should batch points.
type CS2CS struct {
	// Path of the binary; "cs2cs" when empty.
	Path   string
	Logger *slog.Logger
}

// Reproject implements Reprojector.
func (c CS2CS) Reproject(ctx context.Context, src, dst int, pts []Point) ([]Point, error) {
	if len(pts) == 0 {
		return nil, nil
	}
	bin := c.Path
	if bin == "" {
		bin = "cs2cs"
	}
	var in bytes.Buffer
	for _, p := range pts {
		x, y := p.X, p.Y
		if src == WGS84 {
			// EPSG:4326 is latitude first.
			x, y = y, x
		}
		z := p.Z
		if math.IsNaN(z) {
			z = 0
		}
		fmt.Fprintf(&in, "%s %s %s\n", ftoa(x), ftoa(y), ftoa(z))
	}
	args := []string{"-f", "%.10f", fmt.Sprintf("EPSG:%d", src), fmt.Sprintf("EPSG:%d", dst)}
	out, err := run(ctx, bin, args, &in)
	if err != nil {
		return nil, err
	}
	rows, err := parseColumns(out, 3)
	if err != nil {
		return nil, fmt.Errorf("geodesy: cs2cs output: %w", err)
	}
	if len(rows) != len(pts) {
		return nil, ErrLengthMismatch
	}
	res := make([]Point, len(rows))
	for i, r := range rows {
		x, y := r[0], r[1]
		if dst == WGS84 {
			x, y = y, x
		}
		z := r[2]
		if !pts[i].HasZ() {
			z = math.NaN()
		}
		res[i] = Point{X: x, Y: y, Z: z}
	}
	c.logger().Debug("reprojected", "src", src, "dst", dst, "points", len(pts))
	return res, nil
}

func (c CS2CS) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// GDALSampler samples a raster through gdallocationinfo.
type GDALSampler struct {
	// Raster is the path of the elevation model.
	Raster string
	// EPSG is the coordinate system of the raster.
	EPSG int
	// Path of the binary; "gdallocationinfo" when empty.
	Path string
}

// CRS implements ElevationSampler.
func (g GDALSampler) CRS() int { return g.EPSG }

// Sample implements ElevationSampler.
func (g GDALSampler) Sample(ctx context.Context, pts []Point) ([]float64, error) {
	if len(pts) == 0 {
		return nil, nil
	}
	bin := g.Path
	if bin == "" {
		bin = "gdallocationinfo"
	}
	var in bytes.Buffer
	for _, p := range pts {
		fmt.Fprintf(&in, "%s %s\n", ftoa(p.X), ftoa(p.Y))
	}
	out, err := run(ctx, bin, []string{"-valonly", "-geoloc", g.Raster}, &in)
	if err != nil {
		return nil, err
	}
	// Points outside the raster print an empty line.
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != len(pts) {
		return nil, ErrLengthMismatch
	}
	res := make([]float64, len(lines))
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			res[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			return nil, fmt.Errorf("geodesy: gdallocationinfo output line %d: %w", i+1, err)
		}
		res[i] = v
	}
	return res, nil
}

// ---- helpers ----

func run(ctx context.Context, bin string, args []string, stdin *bytes.Buffer) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("geodesy: %s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// parseColumns reads whitespace separated numeric rows with at least n
// columns. "*" (PROJ's failure marker) parses as NaN.
func parseColumns(out []byte, n int) ([][]float64, error) {
	var rows [][]float64
	for i, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		f := strings.Fields(line)
		if len(f) < n {
			return nil, fmt.Errorf("line %d: want %d columns, got %d", i+1, n, len(f))
		}
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			if strings.HasPrefix(f[j], "*") {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(f[j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
