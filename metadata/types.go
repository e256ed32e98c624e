// Package metadata holds the field and value dictionaries that drive the SGF
// codec in both directions.
//
// A Registry is built once from six tables (three per-block field tables and
// three value label tables) and is immutable afterwards, so it can be shared
// freely between goroutines and injected into decoders, encoders and
// normalizers.
package metadata

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BlockKind names one of the three blocks of a section.
type BlockKind uint8

const (
	Main BlockKind = iota
	Data
	Method
)

// BlockKinds lists the block kinds in wire order.
var BlockKinds = []BlockKind{Main, Method, Data}

func (k BlockKind) String() string {
	switch k {
	case Main:
		return "main"
	case Data:
		return "data"
	case Method:
		return "method"
	default:
		return fmt.Sprintf("block(%d)", uint8(k))
	}
}

// ParseBlockKind resolves a block name ("main", "data", "method").
func ParseBlockKind(s string) (BlockKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main":
		return Main, nil
	case "data":
		return Data, nil
	case "method":
		return Method, nil
	}
	return 0, fmt.Errorf("metadata: unknown block kind %q", s)
}

// LabelKind names one of the value label tables.
type LabelKind uint8

const (
	Methods LabelKind = iota
	Comments
	DataFlags
)

func (k LabelKind) String() string {
	switch k {
	case Methods:
		return "methods"
	case Comments:
		return "comments"
	case DataFlags:
		return "data-flags"
	default:
		return fmt.Sprintf("labels(%d)", uint8(k))
	}
}

// FieldType is the declared wire type of a field.
type FieldType uint8

const (
	TypeNone FieldType = iota
	TypeDate
	TypeDateTime
	TypeTime
)

func (t FieldType) String() string {
	switch t {
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	case TypeTime:
		return "time"
	default:
		return ""
	}
}

// ParseFieldType maps a table cell to a FieldType. Empty cells are TypeNone.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TypeNone, nil
	case "date":
		return TypeDate, nil
	case "datetime":
		return TypeDateTime, nil
	case "time":
		return TypeTime, nil
	}
	return TypeNone, fmt.Errorf("metadata: unknown field type %q", s)
}

// UnmarshalYAML accepts the textual type names used in the tables.
func (t *FieldType) UnmarshalYAML(n *yaml.Node) error {
	ft, err := ParseFieldType(n.Value)
	if err != nil {
		return err
	}
	*t = ft
	return nil
}

// Precision controls how a datetime field is rendered on the wire.
type Precision uint8

const (
	PrecisionMinute Precision = iota
	PrecisionMillisecond
)

// UnmarshalYAML accepts "minute" (or empty) and "ms"/"millisecond".
func (p *Precision) UnmarshalYAML(n *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(n.Value)) {
	case "", "minute":
		*p = PrecisionMinute
	case "ms", "millisecond":
		*p = PrecisionMillisecond
	default:
		return fmt.Errorf("metadata: unknown precision %q", n.Value)
	}
	return nil
}

// FieldDef describes one legacy field code of a block kind.
type FieldDef struct {
	Code string    `yaml:"code"`
	Name string    `yaml:"name"`
	Unit string    `yaml:"unit"`
	Type FieldType `yaml:"type"`
	// Normalization is the code of the canonical field this one folds into.
	Normalization string    `yaml:"normalization"`
	Precision     Precision `yaml:"precision"`
	// Ident is generated when the registry is built.
	Ident string `yaml:"-"`
}

// Label maps a raw enumerated value code to its identifier.
type Label struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Ident string `yaml:"-"`
}

// Tables is the raw input of a Registry.
type Tables struct {
	Fields map[BlockKind][]FieldDef
	Labels map[LabelKind][]Label
}
