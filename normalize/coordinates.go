package normalize

import (
	"context"
	"math"
	"sort"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/geodesy"
)

// Keys written by the coordinates stage.
const (
	KeyXOrig          = "x_orig"
	KeyYOrig          = "y_orig"
	KeyZOrig          = "z_orig"
	KeyProjectionOrig = "projection_orig"
	KeyXWeb           = "x_web"
	KeyYWeb           = "y_web"
	KeyLon            = "lon"
	KeyLat            = "lat"
)

type located struct {
	s   *sgf.Section
	src int
	pt  geodesy.Point
}

// coordinates reprojects every section with a position into the target
// system, web mercator and WGS84. Sections are grouped by source system so
// that each group costs one collaborator call per output system.
func (n *Normalizer) coordinates(ctx context.Context, d *sgf.Dataset) error {
	if n.opt.Reprojector == nil {
		n.opt.Logger.Debug("no reprojector configured, coordinates left as is")
		return nil
	}
	groups := map[int][]located{}
	for _, s := range d.Sections {
		if l, ok := original(s); ok {
			groups[l.src] = append(groups[l.src], l)
		}
	}
	if len(groups) == 0 {
		return nil
	}
	target := n.opt.Projection
	if target == 0 {
		target = majority(groups)
	}

	srcs := make([]int, 0, len(groups))
	for src := range groups {
		srcs = append(srcs, src)
	}
	sort.Ints(srcs)
	for _, src := range srcs {
		if err := n.reprojectGroup(ctx, src, target, groups[src]); err != nil {
			return err
		}
	}
	return nil
}

func (n *Normalizer) reprojectGroup(ctx context.Context, src, target int, group []located) error {
	pts := make([]geodesy.Point, len(group))
	for i, l := range group {
		pts[i] = l.pt
	}
	project := func(dst int) ([]geodesy.Point, error) {
		out, err := geodesy.Reproject(ctx, n.opt.Reprojector, src, dst, pts)
		if err != nil {
			return nil, sgf.Issues{{
				Path:    sgf.Root().Pointer(),
				Code:    sgf.CodeDependencyUnavailable,
				Message: "reprojection failed",
				Cause:   err,
				Params:  map[string]any{"src": src, "dst": dst, "points": len(pts)},
			}}
		}
		return out, nil
	}
	tgt, err := project(target)
	if err != nil {
		return err
	}
	web, err := project(geodesy.WebMercator)
	if err != nil {
		return err
	}
	geo, err := project(geodesy.WGS84)
	if err != nil {
		return err
	}
	for i, l := range group {
		s := l.s
		if !s.HasHeader(KeyXOrig) {
			s.SetHeader(KeyXOrig, sgf.Float(l.pt.X))
			s.SetHeader(KeyYOrig, sgf.Float(l.pt.Y))
			if l.pt.HasZ() {
				s.SetHeader(KeyZOrig, sgf.Float(l.pt.Z))
			}
			s.SetHeader(KeyProjectionOrig, sgf.Integer(int64(src)))
		}
		s.SetHeader(sgf.KeyX, sgf.Float(tgt[i].X))
		s.SetHeader(sgf.KeyY, sgf.Float(tgt[i].Y))
		if l.pt.HasZ() && !math.IsNaN(tgt[i].Z) {
			s.SetHeader(sgf.KeyZ, sgf.Float(tgt[i].Z))
		}
		s.SetHeader(sgf.KeyProjection, sgf.Integer(int64(target)))
		s.SetHeader(KeyXWeb, sgf.Float(web[i].X))
		s.SetHeader(KeyYWeb, sgf.Float(web[i].Y))
		s.SetHeader(KeyLon, sgf.Float(geo[i].X))
		s.SetHeader(KeyLat, sgf.Float(geo[i].Y))
	}
	n.opt.Logger.Debug("reprojected sections", "src", src, "dst", target, "sections", len(group))
	return nil
}

// original returns the position a section was surveyed in: the preserved
// *_orig values when an earlier run stored them, else the current ones.
func original(s *sgf.Section) (located, bool) {
	xKey, yKey, zKey, pKey := sgf.KeyX, sgf.KeyY, sgf.KeyZ, sgf.KeyProjection
	if s.HasHeader(KeyXOrig) {
		xKey, yKey, zKey, pKey = KeyXOrig, KeyYOrig, KeyZOrig, KeyProjectionOrig
	}
	x, okx := s.HeaderNumber(xKey)
	y, oky := s.HeaderNumber(yKey)
	pv, okp := s.Header(pKey)
	if !okx || !oky || !okp {
		return located{}, false
	}
	src, ok := sgf.EPSG(pv)
	if !ok {
		return located{}, false
	}
	z, okz := s.HeaderNumber(zKey)
	if !okz {
		z = math.NaN()
	}
	return located{s: s, src: src, pt: geodesy.Point{X: x, Y: y, Z: z}}, true
}

// majority returns the source system with most sections; ties go to the
// smallest code.
func majority(groups map[int][]located) int {
	best, count := 0, -1
	for src, g := range groups {
		if len(g) > count || (len(g) == count && src < best) {
			best, count = src, len(g)
		}
	}
	return best
}
