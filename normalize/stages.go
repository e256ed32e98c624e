package normalize

import (
	"cmp"
	"math"
	"slices"

	"github.com/google/uuid"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/metadata"
)

// fold moves vendor fields into their canonical counterparts. Empty source
// values are dropped without touching the target.
func (n *Normalizer) fold(d *sgf.Dataset) {
	for _, kind := range metadata.BlockKinds {
		targets := n.reg.NormalizationTargets(kind)
		if len(targets) == 0 {
			continue
		}
		for _, s := range d.Sections {
			b := s.Block(kind)
			if b == nil {
				continue
			}
			for _, r := range b.Records {
				foldRecord(r, targets)
			}
		}
	}
}

func foldRecord(r *sgf.Record, targets map[string]string) {
	for _, src := range r.Keys() {
		dst, ok := targets[src]
		if !ok {
			continue
		}
		v, _ := r.Get(src)
		switch {
		case v.IsEmpty():
			r.Delete(src)
		case r.Has(dst):
			r.Set(dst, v)
			r.Delete(src)
		default:
			r.Rename(src, dst)
		}
	}
}

// stopCode sets the header stop code from the last recorded comment.
func (n *Normalizer) stopCode(d *sgf.Dataset) {
	for _, s := range d.Sections {
		if s.HasHeader(sgf.KeyStopCode) || s.Data == nil {
			continue
		}
		if v, ok := s.Data.Table().Last(sgf.KeyComments); ok {
			s.SetHeader(sgf.KeyStopCode, v)
		}
	}
}

// depth derives depth_max_drilled, depth_min, depth_max and depth.
func (n *Normalizer) depth(d *sgf.Dataset) {
	for _, s := range d.Sections {
		if m, ok := s.Data.Table().MaxAbs(sgf.DepthKeys...); ok {
			fill(s, sgf.KeyDepthMaxDrilled, sgf.Float(m))
			fill(s, sgf.KeyDepthMin, sgf.Float(m))
			if n.rockStop(s) {
				fill(s, sgf.KeyDepthMax, sgf.Float(m))
			}
		}
		lo, okLo := s.HeaderNumber(sgf.KeyDepthMin)
		hi, okHi := s.HeaderNumber(sgf.KeyDepthMax)
		if okLo && okHi && lo == hi {
			fill(s, sgf.KeyDepth, sgf.Float(lo))
		}
	}
}

// rockStop reports whether the stop code, resolved through the comment
// labels, is one of the rock codes.
func (n *Normalizer) rockStop(s *sgf.Section) bool {
	v, ok := s.Header(sgf.KeyStopCode)
	if !ok || v.IsEmpty() {
		return false
	}
	code := n.reg.Label(metadata.Comments, v.String())
	return slices.Contains(n.opt.RockStopCodes, code)
}

// identifiers turns investigation points into text everywhere.
func (n *Normalizer) identifiers(d *sgf.Dataset) {
	for _, s := range d.Sections {
		if n.opt.GenerateIdentifiers && !s.HasHeader(sgf.KeyInvestigationPoint) {
			s.SetHeader(sgf.KeyInvestigationPoint, sgf.Text(uuid.NewString()))
		}
		for _, kind := range metadata.BlockKinds {
			b := s.Block(kind)
			if b == nil {
				continue
			}
			for _, r := range b.Records {
				if v, ok := r.Get(sgf.KeyInvestigationPoint); ok && v.Kind() != sgf.KindText {
					r.Set(sgf.KeyInvestigationPoint, sgf.Text(v.String()))
				}
			}
		}
		if !n.opt.PropagateIdentifier {
			continue
		}
		id, ok := s.Header(sgf.KeyInvestigationPoint)
		if !ok || id.IsEmpty() {
			continue
		}
		for _, b := range []*sgf.Block{s.Method, s.Data} {
			if b == nil {
				continue
			}
			for _, r := range b.Records {
				if !r.Has(sgf.KeyInvestigationPoint) {
					r.Set(sgf.KeyInvestigationPoint, id)
				}
			}
		}
	}
}

// order sorts sections by investigation point and data rows by depth.
// Both sorts are stable; missing keys sort last.
func order(d *sgf.Dataset) {
	slices.SortStableFunc(d.Sections, func(a, b *sgf.Section) int {
		av, aok := a.Header(sgf.KeyInvestigationPoint)
		bv, bok := b.Header(sgf.KeyInvestigationPoint)
		if c := missingLast(aok, bok); c != 0 || !aok {
			return c
		}
		return cmp.Compare(av.String(), bv.String())
	})
	for _, s := range d.Sections {
		if s.Data == nil {
			continue
		}
		slices.SortStableFunc(s.Data.Records, func(a, b *sgf.Record) int {
			ad, aok := rowDepth(a)
			bd, bok := rowDepth(b)
			if c := missingLast(aok, bok); c != 0 || !aok {
				return c
			}
			return cmp.Compare(ad, bd)
		})
	}
}

// ---- helpers ----

func fill(s *sgf.Section, key string, v sgf.Value) {
	if !s.HasHeader(key) {
		s.SetHeader(key, v)
	}
}

func missingLast(aok, bok bool) int {
	switch {
	case aok == bok:
		return 0
	case aok:
		return -1
	default:
		return 1
	}
}

func rowDepth(r *sgf.Record) (float64, bool) {
	for _, k := range sgf.DepthKeys {
		if v, ok := r.Get(k); ok {
			if f, ok := v.Number(); ok && !math.IsNaN(f) {
				return f, true
			}
		}
	}
	return 0, false
}
