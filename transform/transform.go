// Package transform holds the dataset rewrites the converter can chain
// between decoding and encoding. Each constructor returns an
// sgfdata.Transform that works on a clone of its input.
package transform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/geodesy"
	"github.com/reoring/sgfdata/metadata"
	"github.com/reoring/sgfdata/normalize"
	"github.com/reoring/sgfdata/rules"
)

// StopAgainstPresumedRock is the stop code DepthToMaterial records.
const StopAgainstPresumedRock = "stop_against_presumed_rock"

// DefaultMaterialColumn is the data column DepthToMaterial searches.
const DefaultMaterialColumn = sgf.KeyComments

// ErrInvalidSign is returned by DepthSign for a sign other than 1 or -1.
var ErrInvalidSign = errors.New("transform: depth sign must be 1 or -1")

// DepthSign rewrites depth, start_depth and end_depth in every data row to
// |v|*sign. Integer values stay integers; non-numeric values are kept.
func DepthSign(sign int) (sgf.Transform, error) {
	if sign != 1 && sign != -1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSign, sign)
	}
	return func(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, error) {
		out := d.Clone()
		for _, s := range out.Sections {
			if s.Data == nil {
				continue
			}
			for _, r := range s.Data.Records {
				for _, k := range sgf.DepthKeys {
					v, ok := r.Get(k)
					if !ok {
						continue
					}
					if i, ok := v.Int(); ok {
						if i < 0 {
							i = -i
						}
						r.Set(k, sgf.Integer(i*int64(sign)))
					} else if f, ok := v.Number(); ok {
						r.Set(k, sgf.Float(math.Abs(f)*float64(sign)))
					}
				}
			}
		}
		return out, nil
	}, nil
}

// DepthToMaterial sets depth_bedrock to the shallowest |start_depth| (or
// |depth| for rows without one) among the data rows whose column mentions a
// material, and records StopAgainstPresumedRock as the stop code. Materials
// are tried in order; the first with any matching row decides. A material
// matches as a whole word: neighbours may not be letters or underscores.
func DepthToMaterial(materials []string, column string) sgf.Transform {
	if column == "" {
		column = DefaultMaterialColumn
	}
	pats := make([]*regexp.Regexp, 0, len(materials))
	for _, m := range materials {
		if m = strings.TrimSpace(m); m == "" {
			continue
		}
		pats = append(pats, regexp.MustCompile(`(^|[^_a-zA-Z])`+regexp.QuoteMeta(m)+`([^_a-zA-Z]|$)`))
	}
	return func(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, error) {
		out := d.Clone()
		if len(pats) == 0 {
			return out, nil
		}
		for _, s := range out.Sections {
			if depth, ok := materialDepth(s, column, pats); ok {
				s.SetHeader(sgf.KeyDepthBedrock, sgf.Float(depth))
				s.SetHeader(sgf.KeyStopCode, sgf.Text(StopAgainstPresumedRock))
			}
		}
		return out, nil
	}
}

func materialDepth(s *sgf.Section, column string, pats []*regexp.Regexp) (float64, bool) {
	if s.Data == nil {
		return 0, false
	}
	best := make([]float64, len(pats))
	found := make([]bool, len(pats))
	for _, r := range s.Data.Records {
		v, ok := r.Get(column)
		if !ok || v.IsEmpty() {
			continue
		}
		m := match(pats, v.String())
		if m < 0 {
			continue
		}
		depth, ok := r.Get(sgf.KeyStartDepth)
		z, okz := depth.Number()
		if !ok || !okz {
			depth, _ = r.Get(sgf.KeyDepth)
			z, okz = depth.Number()
		}
		if !okz {
			continue
		}
		z = math.Abs(z)
		if !found[m] || z < best[m] {
			best[m], found[m] = z, true
		}
	}
	for i := range pats {
		if found[i] {
			return best[i], true
		}
	}
	return 0, false
}

// match returns the index of the first pattern found in s, or -1.
func match(pats []*regexp.Regexp, s string) int {
	for i, p := range pats {
		if p.MatchString(s) {
			return i
		}
	}
	return -1
}

// SampleElevation fills z_coordinate from an elevation model. Positions are
// read in crs, or in each section's own projection when crs is zero, and
// projected into the model's system with rp (which may be nil when no
// conversion is needed). Without overwrite, sections that already have a
// z_coordinate are left alone. Cells without data leave z unset.
func SampleElevation(sampler geodesy.ElevationSampler, rp geodesy.Reprojector, crs int, overwrite bool) sgf.Transform {
	return func(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, error) {
		out := d.Clone()
		groups := map[int][]*sgf.Section{}
		for _, s := range out.Sections {
			if !overwrite && s.HasHeader(sgf.KeyZ) {
				continue
			}
			if !s.HasHeader(sgf.KeyX) || !s.HasHeader(sgf.KeyY) {
				continue
			}
			src := crs
			if src == 0 {
				p, ok := sgf.SectionProjection(s)
				if !ok {
					continue
				}
				src = p
			}
			groups[src] = append(groups[src], s)
		}
		srcs := make([]int, 0, len(groups))
		for src := range groups {
			srcs = append(srcs, src)
		}
		sort.Ints(srcs)
		for _, src := range srcs {
			if err := sampleGroup(ctx, sampler, rp, src, groups[src]); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

func sampleGroup(ctx context.Context, sampler geodesy.ElevationSampler, rp geodesy.Reprojector, src int, group []*sgf.Section) error {
	pts := make([]geodesy.Point, len(group))
	for i, s := range group {
		x, _ := s.HeaderNumber(sgf.KeyX)
		y, _ := s.HeaderNumber(sgf.KeyY)
		pts[i] = geodesy.Point{X: x, Y: y, Z: math.NaN()}
	}
	dst := sampler.CRS()
	fail := func(msg string, err error) error {
		return sgf.Issues{{
			Path:    sgf.Root().Pointer(),
			Code:    sgf.CodeDependencyUnavailable,
			Message: msg,
			Cause:   err,
			Params:  map[string]any{"src": src, "dst": dst, "points": len(pts)},
		}}
	}
	if src != dst {
		if rp == nil {
			return fail("no reprojector for elevation sampling", fmt.Errorf("transform: cannot convert EPSG:%d to EPSG:%d", src, dst))
		}
		var err error
		if pts, err = geodesy.Reproject(ctx, rp, src, dst, pts); err != nil {
			return fail("reprojection failed", err)
		}
	}
	zs, err := sampler.Sample(ctx, pts)
	if err != nil {
		return fail("elevation sampling failed", err)
	}
	if len(zs) != len(group) {
		return fail("elevation sampling failed", geodesy.ErrLengthMismatch)
	}
	for i, s := range group {
		if !math.IsNaN(zs[i]) {
			s.SetHeader(sgf.KeyZ, sgf.Float(zs[i]))
		}
	}
	return nil
}

// Normalize wraps a Normalizer built from reg and opt.
func Normalize(reg *metadata.Registry, opt normalize.Options) sgf.Transform {
	return normalize.New(reg, opt).Transform()
}

// Validate wraps the default Validator. Findings are recorded in each
// section's errors flag.
func Validate() sgf.Transform { return rules.New().Transform() }
