package metadata

import (
	"fmt"
	"sort"
)

// Registry provides forward (code to ident) and reverse (ident to code)
// lookups for fields and enumerated values. Lookups fall back to returning
// their input unchanged, so unknown codes pass through the codec untouched.
//
// A Registry is immutable once New returns.
type Registry struct {
	fields map[BlockKind]*fieldTable
	labels map[LabelKind]*labelTable
}

type fieldTable struct {
	defs    []FieldDef
	byCode  map[string]int
	byIdent map[string]int
	targets map[string]string
}

type labelTable struct {
	labels  []Label
	byCode  map[string]int
	byIdent map[string]int
}

// New builds a Registry from raw tables. The input is copied; later changes to
// t do not affect the registry.
func New(t Tables) (*Registry, error) {
	r := &Registry{
		fields: make(map[BlockKind]*fieldTable, 3),
		labels: make(map[LabelKind]*labelTable, 3),
	}
	for _, kind := range []BlockKind{Main, Data, Method} {
		ft, err := newFieldTable(kind, t.Fields[kind])
		if err != nil {
			return nil, err
		}
		r.fields[kind] = ft
	}
	for _, kind := range []LabelKind{Methods, Comments, DataFlags} {
		lt, err := newLabelTable(kind, t.Labels[kind])
		if err != nil {
			return nil, err
		}
		r.labels[kind] = lt
	}
	return r, nil
}

func newFieldTable(kind BlockKind, in []FieldDef) (*fieldTable, error) {
	defs := append([]FieldDef(nil), in...)
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	for i := 1; i < len(defs); i++ {
		if defs[i].Code == defs[i-1].Code {
			return nil, fmt.Errorf("metadata: %s: duplicate field code %q", kind, defs[i].Code)
		}
	}
	makeFieldIdents(defs)

	ft := &fieldTable{
		defs:    defs,
		byCode:  make(map[string]int, len(defs)),
		byIdent: make(map[string]int, len(defs)),
		targets: make(map[string]string),
	}
	for i, d := range defs {
		if d.Code == "" {
			return nil, fmt.Errorf("metadata: %s: field %q has no code", kind, d.Name)
		}
		ft.byCode[d.Code] = i
		if _, dup := ft.byIdent[d.Ident]; !dup {
			ft.byIdent[d.Ident] = i
		}
	}
	for _, d := range defs {
		if d.Normalization == "" {
			continue
		}
		j, ok := ft.byCode[d.Normalization]
		if !ok {
			return nil, fmt.Errorf("metadata: %s: field %q normalizes into unknown code %q", kind, d.Code, d.Normalization)
		}
		if defs[j].Ident != d.Ident {
			ft.targets[d.Ident] = defs[j].Ident
		}
	}
	return ft, nil
}

func newLabelTable(kind LabelKind, in []Label) (*labelTable, error) {
	labels := append([]Label(nil), in...)
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Code < labels[j].Code })
	makeLabelIdents(labels)
	lt := &labelTable{
		labels:  labels,
		byCode:  make(map[string]int, len(labels)),
		byIdent: make(map[string]int, len(labels)),
	}
	for i, l := range labels {
		if _, dup := lt.byCode[l.Code]; dup {
			return nil, fmt.Errorf("metadata: %s: duplicate label code %q", kind, l.Code)
		}
		lt.byCode[l.Code] = i
		if _, dup := lt.byIdent[l.Ident]; !dup {
			lt.byIdent[l.Ident] = i
		}
	}
	return lt, nil
}

// Ident returns the identifier for a field code, or code itself when unknown.
func (r *Registry) Ident(kind BlockKind, code string) string {
	if ft := r.fields[kind]; ft != nil {
		if i, ok := ft.byCode[code]; ok {
			return ft.defs[i].Ident
		}
	}
	return code
}

// Code returns the legacy code for an identifier, or ident itself when
// unknown. When several codes share an identifier the first by code order wins.
func (r *Registry) Code(kind BlockKind, ident string) string {
	if ft := r.fields[kind]; ft != nil {
		if i, ok := ft.byIdent[ident]; ok {
			return ft.defs[i].Code
		}
	}
	return ident
}

// Field looks up a definition by code.
func (r *Registry) Field(kind BlockKind, code string) (FieldDef, bool) {
	if ft := r.fields[kind]; ft != nil {
		if i, ok := ft.byCode[code]; ok {
			return ft.defs[i], true
		}
	}
	return FieldDef{}, false
}

// FieldByIdent looks up a definition by identifier.
func (r *Registry) FieldByIdent(kind BlockKind, ident string) (FieldDef, bool) {
	if ft := r.fields[kind]; ft != nil {
		if i, ok := ft.byIdent[ident]; ok {
			return ft.defs[i], true
		}
	}
	return FieldDef{}, false
}

// TypeOf returns the declared type of an identifier (TypeNone when unknown).
func (r *Registry) TypeOf(kind BlockKind, ident string) FieldType {
	d, _ := r.FieldByIdent(kind, ident)
	return d.Type
}

// TypeOfCode returns the declared type of a legacy code (TypeNone when unknown).
func (r *Registry) TypeOfCode(kind BlockKind, code string) FieldType {
	d, _ := r.Field(kind, code)
	return d.Type
}

// NormalizationTargets returns source ident -> canonical ident for every field
// of kind that declares a normalization target. The map is a fresh copy.
func (r *Registry) NormalizationTargets(kind BlockKind) map[string]string {
	out := map[string]string{}
	if ft := r.fields[kind]; ft != nil {
		for k, v := range ft.targets {
			out[k] = v
		}
	}
	return out
}

// Fields returns a copy of the definitions of kind, sorted by code.
func (r *Registry) Fields(kind BlockKind) []FieldDef {
	if ft := r.fields[kind]; ft != nil {
		return append([]FieldDef(nil), ft.defs...)
	}
	return nil
}

// Label returns the identifier for an enumerated value code, or code itself
// when the table has no entry.
func (r *Registry) Label(kind LabelKind, code string) string {
	if lt := r.labels[kind]; lt != nil {
		if i, ok := lt.byCode[code]; ok {
			return lt.labels[i].Ident
		}
	}
	return code
}

// Unlabel is the inverse of Label; unknown identifiers are returned as is.
func (r *Registry) Unlabel(kind LabelKind, ident string) string {
	if lt := r.labels[kind]; lt != nil {
		if i, ok := lt.byIdent[ident]; ok {
			return lt.labels[i].Code
		}
	}
	return ident
}

// HasLabel reports whether code has an entry in the label table.
func (r *Registry) HasLabel(kind LabelKind, code string) bool {
	if lt := r.labels[kind]; lt != nil {
		_, ok := lt.byCode[code]
		return ok
	}
	return false
}

// Labels returns a copy of the label table of kind, sorted by code.
func (r *Registry) Labels(kind LabelKind) []Label {
	if lt := r.labels[kind]; lt != nil {
		return append([]Label(nil), lt.labels...)
	}
	return nil
}
