package sgfdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reoring/sgfdata/codec"
	eng "github.com/reoring/sgfdata/internal/engine"
	"github.com/reoring/sgfdata/metadata"
	"github.com/reoring/sgfdata/source"
)

// Decoder converts SGF text into a Dataset. A Decoder holds no per-call state
// and may be shared between goroutines.
type Decoder struct {
	reg *metadata.Registry
	opt DecodeOpt
}

// NewDecoder returns a Decoder using reg for code and label lookups.
func NewDecoder(reg *metadata.Registry, opts ...DecodeOpt) *Decoder {
	return &Decoder{reg: reg, opt: lastDecodeOpt(opts)}
}

// Decoded carries a Dataset together with decoding metadata.
type Decoded struct {
	Dataset *Dataset
	// Encoding is the character set the input was decoded with.
	Encoding string
	// Detected is set when Encoding came from detection.
	Detected *source.Detection
	// Warnings lists values that could not be coerced to their declared type.
	Warnings Issues
}

// Decode is shorthand for NewDecoder(reg, opts...).Decode(ctx, r).
func Decode(ctx context.Context, reg *metadata.Registry, r io.Reader, opts ...DecodeOpt) (*Dataset, error) {
	return NewDecoder(reg, opts...).Decode(ctx, r)
}

// DecodeString decodes UTF-8 text.
func DecodeString(ctx context.Context, reg *metadata.Registry, s string) (*Dataset, error) {
	return Decode(ctx, reg, strings.NewReader(s), DecodeOpt{Encoding: "utf-8"})
}

// Decode reads r to the end. Malformed field lines abort with a
// *SyntaxError; values that do not match their declared type degrade to Text.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) (*Dataset, error) {
	dm, err := d.DecodeWithMeta(ctx, r)
	if err != nil {
		return nil, err
	}
	return dm.Dataset, nil
}

// DecodeWithMeta is Decode that also reports the encoding used and the
// coercion fallbacks as warnings.
func (d *Decoder) DecodeWithMeta(ctx context.Context, r io.Reader) (Decoded, error) {
	src, err := source.Open(r, d.opt.Encoding, d.opt.Detector, d.opt.Logger)
	if errors.Is(err, source.ErrUnknownEncoding) {
		it := Root().Issue(CodeUnknownEncoding, err.Error(), "encoding", d.opt.Encoding)
		it.Cause = err
		return Decoded{}, Issues{it}
	}
	if err != nil {
		return Decoded{}, fmt.Errorf("sgfdata: %w", err)
	}
	out := Decoded{Encoding: src.Encoding, Detected: src.Detected}
	st := &decodeState{d: d, ds: &Dataset{}, warnings: &out.Warnings}

	sc := eng.NewScanner(source.NewLineReader(src))
	for n := 0; ; n++ {
		if n&0xff == 0 {
			if err := ctx.Err(); err != nil {
				return Decoded{}, err
			}
		}
		tok, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var fe *eng.FieldError
			if !errors.As(err, &fe) {
				return Decoded{}, fmt.Errorf("sgfdata: read: %w", err)
			}
			if !st.inBlock() {
				// Lines outside a block are ignored, malformed or not.
				continue
			}
			return Decoded{}, &SyntaxError{Line: tok.Line, Offset: fe.Offset, Raw: tok.Raw, Err: fe.Err}
		}
		st.consume(tok)
	}
	st.finish()
	out.Dataset = st.ds
	d.opt.Logger.Debug("decoded sgf", "sections", len(st.ds.Sections), "encoding", out.Encoding, "warnings", len(out.Warnings))
	return out, nil
}

// ---- helpers ----

type decodeState struct {
	d        *Decoder
	ds       *Dataset
	cur      *Section
	block    metadata.BlockKind
	selected bool
	warnings *Issues
}

func (st *decodeState) inBlock() bool { return st.cur != nil && st.selected }

func (st *decodeState) consume(tok eng.Token) {
	switch tok.Kind {
	case eng.KindSection:
		st.finish()
		st.cur = &Section{
			Main:   NewBlock(metadata.Main),
			Method: NewBlock(metadata.Method),
			Data:   NewBlock(metadata.Data),
		}
		st.block, st.selected = metadata.Main, true
	case eng.KindMethod:
		st.block, st.selected = metadata.Method, true
	case eng.KindData:
		st.block, st.selected = metadata.Data, true
	case eng.KindIgnore:
		st.selected = false
	case eng.KindFields:
		if !st.inBlock() {
			return
		}
		b := st.cur.Block(st.block)
		b.Append(st.record(tok, len(b.Records)))
	}
}

// finish closes the current section: absent blocks become nil and the header
// always holds at least one record.
func (st *decodeState) finish() {
	s := st.cur
	if s == nil {
		return
	}
	st.cur = nil
	if s.Main.Len() == 0 {
		s.Main.Append(&Record{})
	}
	if s.Method.Len() == 0 {
		s.Method = nil
	}
	if s.Data.Len() == 0 {
		s.Data = nil
	}
	st.ds.Sections = append(st.ds.Sections, s)
	if o := st.d.opt.Observer; o != nil {
		o.SectionDecoded(len(st.ds.Sections)-1, s)
	}
}

func (st *decodeState) record(tok eng.Token, row int) *Record {
	reg := st.d.reg
	rec := &Record{}
	for _, f := range tok.Fields {
		ident := reg.Ident(st.block, f.Key)
		v, err := coerce(reg.TypeOfCode(st.block, f.Key), f.Value)
		if err != nil {
			st.fallback(tok, row, ident, f, err)
		}
		rec.Set(ident, st.label(ident, v))
	}
	return rec
}

func (st *decodeState) fallback(tok eng.Token, row int, ident string, f eng.Field, err error) {
	st.d.opt.Logger.Debug("value kept as text", "block", st.block, "code", f.Key, "value", f.Value, "line", tok.Line, "err", err)
	if o := st.d.opt.Observer; o != nil {
		o.CoercionFallback(st.block, f.Key, f.Value, err)
	}
	rowRef := row
	if st.block == metadata.Main {
		rowRef = -1
	}
	iss := IssueAt(FieldPath(len(st.ds.Sections), st.block, rowRef, ident), CodeCoercionFallback,
		"value does not match declared type", map[string]any{"code": f.Key, "value": f.Value})
	iss.Line, iss.Cause, iss.InputFragment = tok.Line, err, tok.Raw
	*st.warnings = append(*st.warnings, iss)
}

// label replaces enumerated codes by their identifiers; unknown codes stay.
func (st *decodeState) label(ident string, v Value) Value {
	lk, ok := labelKindOf(st.block, ident)
	if !ok || v.IsEmpty() {
		return v
	}
	code := v.String()
	if !st.d.reg.HasLabel(lk, code) {
		return v
	}
	return Text(st.d.reg.Label(lk, code))
}

// labelKindOf names the label table used by a field, if any.
func labelKindOf(kind metadata.BlockKind, ident string) (metadata.LabelKind, bool) {
	switch {
	case kind == metadata.Main && ident == KeyMethodCode:
		return metadata.Methods, true
	case kind == metadata.Data && ident == KeyComments:
		return metadata.Comments, true
	case kind == metadata.Data && ident == KeyDataFlags:
		return metadata.DataFlags, true
	}
	return 0, false
}

// coerce converts raw wire text by declared type. It is total: the returned
// Value is always usable, err only reports that a typed field fell back to Text.
func coerce(t metadata.FieldType, raw string) (Value, error) {
	if raw == "" {
		return Text(raw), nil
	}
	switch t {
	case metadata.TypeDate:
		tm, err := codec.ParseDate(raw)
		if err != nil {
			return Text(raw), err
		}
		return Date(tm), nil
	case metadata.TypeDateTime:
		tm, err := codec.ParseDateTime(raw)
		if err != nil {
			return Text(raw), err
		}
		return DateTime(tm), nil
	}
	// time fields carry clock readings or seconds and take the untyped rule.
	return CoerceUntyped(raw), nil
}

// CoerceUntyped applies the untyped rule: integer, then float, else Text.
func CoerceUntyped(raw string) Value {
	if raw == "" {
		return Text(raw)
	}
	if i, err := codec.ParseInteger(raw); err == nil {
		return Integer(i)
	}
	if f, err := codec.ParseFloat(raw); err == nil {
		return Float(f)
	}
	return Text(raw)
}
