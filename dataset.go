package sgfdata

import (
	"math"
	"strconv"
	"strings"
)

// Header identifiers the library reads or derives.
const (
	KeyInvestigationPoint = "investigation_point"
	KeyMethodCode         = "method_code"
	KeyStopCode           = "stop_code"
	KeyProjection         = "projection"
	KeyX                  = "x_coordinate"
	KeyY                  = "y_coordinate"
	KeyZ                  = "z_coordinate"
	KeyDepth              = "depth"
	KeyStartDepth         = "start_depth"
	KeyEndDepth           = "end_depth"
	KeyDepthMin           = "depth_min"
	KeyDepthMax           = "depth_max"
	KeyDepthMaxDrilled    = "depth_max_drilled"
	KeyDepthBedrock       = "depth_bedrock"
	KeyComments           = "comments"
	KeyDataFlags          = "allocated_value_during_performance_of_sounding"
	KeyErrors             = "errors"
)

// DepthKeys are the data columns that carry a depth.
var DepthKeys = []string{KeyDepth, KeyStartDepth, KeyEndDepth}

// SectionProjection returns the EPSG code in the header of s.
func SectionProjection(s *Section) (int, bool) {
	v, ok := s.Header(KeyProjection)
	if !ok {
		return 0, false
	}
	return EPSG(v)
}

// EPSG interprets v as an EPSG code. Integers, integral floats and numeric
// text (optionally prefixed "EPSG:") are accepted.
func EPSG(v Value) (int, bool) {
	if i, ok := v.Int(); ok {
		return int(i), true
	}
	if f, ok := v.Float(); ok && f == math.Trunc(f) && !math.IsNaN(f) {
		return int(f), true
	}
	if v.Kind() == KindText {
		s := strings.TrimSpace(v.String())
		s = strings.TrimPrefix(strings.ToUpper(s), "EPSG:")
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Projection returns the projection shared by every section. It reports
// false when sections disagree or any section lacks one.
func (d *Dataset) Projection() (int, bool) {
	code, found := 0, false
	for _, s := range d.Sections {
		p, ok := SectionProjection(s)
		if !ok {
			return 0, false
		}
		if found && p != code {
			return 0, false
		}
		code, found = p, true
	}
	return code, found
}

// Extent is a coordinate bounding box.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// Summary describes a dataset at a glance.
type Summary struct {
	Sections    int            `json:"sections"`
	DataRows    int            `json:"data_rows"`
	MethodRows  int            `json:"method_rows"`
	Methods     map[string]int `json:"methods"`
	Projections map[int]int    `json:"projections"`
	MaxDepth    float64        `json:"max_depth"`
	Extent      *Extent        `json:"extent,omitempty"`
	WithErrors  int            `json:"with_errors"`
}

// Summary counts sections, rows, method codes and projections and computes
// the deepest recorded depth and the coordinate extent.
func (d *Dataset) Summary() Summary {
	sum := Summary{Methods: map[string]int{}, Projections: map[int]int{}}
	for _, s := range d.Sections {
		sum.Sections++
		sum.DataRows += s.Data.Len()
		sum.MethodRows += s.Method.Len()
		if v, ok := s.Header(KeyMethodCode); ok {
			sum.Methods[v.String()]++
		}
		if p, ok := SectionProjection(s); ok {
			sum.Projections[p]++
		}
		if m, ok := s.Data.Table().MaxAbs(DepthKeys...); ok && m > sum.MaxDepth {
			sum.MaxDepth = m
		}
		if e, ok := s.HeaderNumber(KeyErrors); ok && e != 0 {
			sum.WithErrors++
		}
		x, okx := s.HeaderNumber(KeyX)
		y, oky := s.HeaderNumber(KeyY)
		if !okx || !oky {
			continue
		}
		if sum.Extent == nil {
			sum.Extent = &Extent{MinX: x, MinY: y, MaxX: x, MaxY: y}
			continue
		}
		sum.Extent.MinX = math.Min(sum.Extent.MinX, x)
		sum.Extent.MinY = math.Min(sum.Extent.MinY, y)
		sum.Extent.MaxX = math.Max(sum.Extent.MaxX, x)
		sum.Extent.MaxY = math.Max(sum.Extent.MaxY, y)
	}
	return sum
}
