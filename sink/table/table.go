// Package table flattens a dataset into three wide tables, one per block
// kind, keyed by investigation point. The result is what the SQL sinks
// store and what Unflatten turns back into sections.
package table

import (
	"fmt"

	"github.com/google/uuid"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/metadata"
)

// ColumnType is the storage type inferred for a column.
type ColumnType uint8

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeFloat
	TypeDate
	TypeTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeDate:
		return "date"
	case TypeTimestamp:
		return "timestamp"
	}
	return "text"
}

// Column is one table column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a block kind flattened across sections. Rows hold one cell per
// column; missing cells are empty text.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]sgf.Value
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Set holds the three flattened tables.
type Set struct {
	Main   *Table
	Data   *Table
	Method *Table
}

// Tables returns the tables in wire order.
func (s *Set) Tables() []*Table { return []*Table{s.Main, s.Method, s.Data} }

// Options control flattening.
type Options struct {
	// IDColumn keys rows to sections; defaults to investigation_point.
	IDColumn string
	// Merge collapses the main records of a section into one row, later
	// records winning.
	Merge bool
}

func (o Options) id() string {
	if o.IDColumn == "" {
		return sgf.KeyInvestigationPoint
	}
	return o.IDColumn
}

// Flatten builds the three tables. Sections without an identifier get a
// random UUID. Repeated identifiers are reported as Issues with code
// duplicate_investigation_point.
func Flatten(d *sgf.Dataset, opts ...Options) (*Set, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	id := opt.id()
	bs := map[metadata.BlockKind]*builder{}
	for _, kind := range metadata.BlockKinds {
		bs[kind] = newBuilder(kind.String(), id)
	}

	seen := map[string]int{}
	var dups sgf.Issues
	for i, s := range d.Sections {
		ident := uuid.NewString()
		if v, ok := s.Header(id); ok && !v.IsEmpty() {
			ident = v.String()
		}
		if j, dup := seen[ident]; dup {
			dups = append(dups, sgf.SectionPath(i).Field("main").Field(id).Issue(
				sgf.CodeDuplicateInvestigationPoint,
				fmt.Sprintf("%s %q is not unique", id, ident),
				"first", j, "dup", i, id, ident,
			))
			continue
		}
		seen[ident] = i
		key := sgf.Text(ident)

		main := s.Main
		if opt.Merge && main.Len() > 1 {
			merged := &sgf.Record{}
			for _, r := range main.Records {
				for k, v := range r.All() {
					merged.Set(k, v)
				}
			}
			main = sgf.NewBlock(metadata.Main, merged)
		}
		if main.Len() == 0 {
			main = sgf.NewBlock(metadata.Main, &sgf.Record{})
		}
		bs[metadata.Main].add(key, main)
		bs[metadata.Method].add(key, s.Method)
		bs[metadata.Data].add(key, s.Data)
	}
	if len(dups) > 0 {
		return nil, dups
	}
	return &Set{
		Main:   bs[metadata.Main].build(),
		Data:   bs[metadata.Data].build(),
		Method: bs[metadata.Method].build(),
	}, nil
}

// Unflatten rebuilds sections from a Set. Sections follow the order of
// first appearance in the main table; rows whose identifier has no main
// row start a section of their own after those.
func Unflatten(set *Set, opts ...Options) (*sgf.Dataset, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	id := opt.id()
	d := &sgf.Dataset{}
	byID := map[string]*sgf.Section{}
	section := func(ident string) *sgf.Section {
		if s, ok := byID[ident]; ok {
			return s
		}
		s := &sgf.Section{}
		byID[ident] = s
		d.Sections = append(d.Sections, s)
		return s
	}
	for _, pair := range []struct {
		kind metadata.BlockKind
		t    *Table
	}{{metadata.Main, set.Main}, {metadata.Method, set.Method}, {metadata.Data, set.Data}} {
		if pair.t == nil {
			continue
		}
		at := pair.t.Index(id)
		if at < 0 {
			return nil, fmt.Errorf("table: %s has no %s column", pair.t.Name, id)
		}
		for _, row := range pair.t.Rows {
			s := section(row[at].String())
			b := s.Block(pair.kind)
			if b == nil {
				b = sgf.NewBlock(pair.kind)
				s.SetBlock(pair.kind, b)
			}
			r := &sgf.Record{}
			for j, c := range pair.t.Columns {
				if !row[j].IsEmpty() {
					r.Set(c.Name, row[j])
				}
			}
			b.Append(r)
		}
	}
	for _, s := range d.Sections {
		if s.Main == nil {
			s.Main = sgf.NewBlock(metadata.Main, &sgf.Record{})
		}
	}
	return d, nil
}

type builder struct {
	name  string
	cols  []string
	index map[string]int
	rows  []map[string]sgf.Value
}

func newBuilder(name, id string) *builder {
	return &builder{name: name, cols: []string{id}, index: map[string]int{id: 0}}
}

func (b *builder) add(key sgf.Value, blk *sgf.Block) {
	if blk == nil {
		return
	}
	id := b.cols[0]
	for _, r := range blk.Records {
		row := map[string]sgf.Value{id: key}
		for k, v := range r.All() {
			if k == id {
				continue
			}
			if _, ok := b.index[k]; !ok {
				b.index[k] = len(b.cols)
				b.cols = append(b.cols, k)
			}
			row[k] = v
		}
		b.rows = append(b.rows, row)
	}
}

func (b *builder) build() *Table {
	t := &Table{Name: b.name, Columns: make([]Column, len(b.cols)), Rows: make([][]sgf.Value, len(b.rows))}
	for i, r := range b.rows {
		row := make([]sgf.Value, len(b.cols))
		for k, v := range r {
			row[b.index[k]] = v
		}
		t.Rows[i] = row
	}
	for j, name := range b.cols {
		t.Columns[j] = Column{Name: name, Type: infer(t.Rows, j)}
	}
	return t
}

// infer picks the narrowest type that holds every non-empty cell of column
// j: integers widen to float, dates to timestamps, anything else is text.
func infer(rows [][]sgf.Value, j int) ColumnType {
	var seen [5]bool
	found := false
	for _, row := range rows {
		v := row[j]
		if v.IsEmpty() {
			continue
		}
		found = true
		seen[v.Kind()] = true
	}
	switch {
	case !found, seen[sgf.KindText]:
		return TypeText
	case (seen[sgf.KindInteger] || seen[sgf.KindFloat]) && (seen[sgf.KindDate] || seen[sgf.KindDateTime]):
		return TypeText
	case seen[sgf.KindFloat]:
		return TypeFloat
	case seen[sgf.KindInteger]:
		return TypeInteger
	case seen[sgf.KindDateTime]:
		return TypeTimestamp
	default:
		return TypeDate
	}
}
