// Package geodesy defines the narrow interfaces through which the normalizer
// and transforms reach coordinate reprojection and elevation models, plus
// adapters that shell out to the PROJ and GDAL command line tools.
//
// All coordinates are passed in easting/northing (longitude/latitude) order
// regardless of the axis order the EPSG definition prescribes.
package geodesy

import (
	"context"
	"errors"
	"math"
)

// Well-known EPSG codes.
const (
	WGS84       = 4326
	WebMercator = 3857
)

// Point is a coordinate triple. Z is NaN when unknown.
type Point struct {
	X, Y, Z float64
}

// HasZ reports whether Z is known.
func (p Point) HasZ() bool { return !math.IsNaN(p.Z) }

// Reprojector converts points between coordinate reference systems. The
// result has the same length and order as pts.
type Reprojector interface {
	Reproject(ctx context.Context, src, dst int, pts []Point) ([]Point, error)
}

// ReprojectorFunc adapts a function to Reprojector.
type ReprojectorFunc func(ctx context.Context, src, dst int, pts []Point) ([]Point, error)

func (f ReprojectorFunc) Reproject(ctx context.Context, src, dst int, pts []Point) ([]Point, error) {
	return f(ctx, src, dst, pts)
}

// ElevationSampler reads terrain heights from an elevation model.
type ElevationSampler interface {
	// CRS is the EPSG code of the model; points must be given in it.
	CRS() int
	// Sample returns one height per point, NaN where the model has no data.
	Sample(ctx context.Context, pts []Point) ([]float64, error)
}

// ErrLengthMismatch is returned when a collaborator yields a different
// number of results than it was given.
var ErrLengthMismatch = errors.New("geodesy: result length mismatch")

// Reproject calls r unless src and dst are equal, in which case pts is
// returned as a copy.
func Reproject(ctx context.Context, r Reprojector, src, dst int, pts []Point) ([]Point, error) {
	if src == dst {
		return append([]Point(nil), pts...), nil
	}
	out, err := r.Reproject(ctx, src, dst, pts)
	if err != nil {
		return nil, err
	}
	if len(out) != len(pts) {
		return nil, ErrLengthMismatch
	}
	return out, nil
}
