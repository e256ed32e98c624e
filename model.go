package sgfdata

import (
	"github.com/reoring/sgfdata/metadata"
)

// Block is the ordered record sequence of one block kind within a Section.
// A nil *Block means the block is absent, which is distinct from a present
// block with no records.
type Block struct {
	Kind    metadata.BlockKind
	Records []*Record
}

// NewBlock returns a block of kind holding recs.
func NewBlock(kind metadata.BlockKind, recs ...*Record) *Block {
	return &Block{Kind: kind, Records: recs}
}

// Len returns the number of records; zero for an absent block.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}

// Append adds records at the end.
func (b *Block) Append(recs ...*Record) { b.Records = append(b.Records, recs...) }

// Clone returns a deep copy; nil stays nil.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	out := &Block{Kind: b.Kind, Records: make([]*Record, len(b.Records))}
	for i, r := range b.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// Table materializes a columnar view of the block.
func (b *Block) Table() *Table { return NewTable(b) }

// Keys returns the union of record keys in first-seen order.
func (b *Block) Keys() []string {
	if b == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, r := range b.Records {
		for k := range r.All() {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	return out
}

// Section is one borehole: a header (main), optional method metadata and
// optional per-depth data rows.
type Section struct {
	Main   *Block
	Method *Block
	Data   *Block
}

// NewSection returns a section with an empty header record.
func NewSection() *Section {
	return &Section{Main: NewBlock(metadata.Main, &Record{})}
}

// Block returns the block of kind, or nil when absent.
func (s *Section) Block(kind metadata.BlockKind) *Block {
	switch kind {
	case metadata.Main:
		return s.Main
	case metadata.Method:
		return s.Method
	case metadata.Data:
		return s.Data
	}
	return nil
}

// SetBlock replaces the block of kind.
func (s *Section) SetBlock(kind metadata.BlockKind, b *Block) {
	switch kind {
	case metadata.Main:
		s.Main = b
	case metadata.Method:
		s.Method = b
	case metadata.Data:
		s.Data = b
	}
}

// Header returns key from the header. When several main records carry the
// key the last one wins.
func (s *Section) Header(key string) (Value, bool) {
	if s.Main == nil {
		return Value{}, false
	}
	for i := len(s.Main.Records) - 1; i >= 0; i-- {
		if v, ok := s.Main.Records[i].Get(key); ok {
			return v, true
		}
	}
	return Value{}, false
}

// HeaderNumber returns a numeric header value; missing, text and NaN values
// report false.
func (s *Section) HeaderNumber(key string) (float64, bool) {
	v, ok := s.Header(key)
	if !ok {
		return 0, false
	}
	return v.Number()
}

// HasHeader reports whether key is set to a non-empty value.
func (s *Section) HasHeader(key string) bool {
	v, ok := s.Header(key)
	return ok && !v.IsEmpty()
}

// SetHeader stores key in the header: in the last main record that already
// carries it, otherwise in the first record. A missing main block is created.
func (s *Section) SetHeader(key string, v Value) {
	if s.Main == nil || len(s.Main.Records) == 0 {
		s.Main = NewBlock(metadata.Main, &Record{})
	}
	for i := len(s.Main.Records) - 1; i >= 0; i-- {
		if s.Main.Records[i].Has(key) {
			s.Main.Records[i].Set(key, v)
			return
		}
	}
	s.Main.Records[0].Set(key, v)
}

// Clone returns a deep copy.
func (s *Section) Clone() *Section {
	if s == nil {
		return nil
	}
	return &Section{Main: s.Main.Clone(), Method: s.Method.Clone(), Data: s.Data.Clone()}
}

// Dataset is the ordered list of sections decoded from one file.
type Dataset struct {
	Sections []*Section
}

// Len returns the number of sections.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Sections)
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{Sections: make([]*Section, len(d.Sections))}
	for i, s := range d.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}
