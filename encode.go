package sgfdata

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/reoring/sgfdata/codec"
	"github.com/reoring/sgfdata/metadata"
	"github.com/reoring/sgfdata/source"
)

// Wire markers written by the Encoder.
const (
	markerMain   = "$"
	markerMethod = "£"
	markerData   = "#"
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Encoder writes a Dataset as SGF text. It is the inverse of Decoder: labels
// are turned back into codes, identifiers into legacy keys and typed values
// into their wire form. The dataset is never modified.
type Encoder struct {
	reg *metadata.Registry
	opt EncodeOpt
}

// NewEncoder returns an Encoder using reg for reverse lookups.
func NewEncoder(reg *metadata.Registry, opts ...EncodeOpt) *Encoder {
	return &Encoder{reg: reg, opt: lastEncodeOpt(opts)}
}

// Encode is shorthand for NewEncoder(reg, opts...).Encode(ctx, w, d).
func Encode(ctx context.Context, reg *metadata.Registry, w io.Writer, d *Dataset, opts ...EncodeOpt) error {
	return NewEncoder(reg, opts...).Encode(ctx, w, d)
}

// EncodeString renders d as UTF-8 text.
func EncodeString(ctx context.Context, reg *metadata.Registry, d *Dataset) (string, error) {
	var b strings.Builder
	if err := Encode(ctx, reg, &b, d, EncodeOpt{Encoding: "utf-8"}); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Encode writes every section of d to w. For each section the header block
// is always written; the method and data blocks only when they hold records.
func (e *Encoder) Encode(ctx context.Context, w io.Writer, d *Dataset) error {
	tw, err := source.NewWriter(w, e.opt.Encoding)
	if err != nil {
		return fmt.Errorf("sgfdata: %w", err)
	}
	bw := bufio.NewWriter(tw)
	nl := "\n"
	if e.opt.CRLF {
		nl = "\r\n"
	}
	for i, s := range d.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.writeBlock(bw, markerMain, s.Main, true, nl)
		e.writeBlock(bw, markerMethod, s.Method, false, nl)
		e.writeBlock(bw, markerData, s.Data, false, nl)
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("sgfdata: write section %d: %w", i, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("sgfdata: write: %w", err)
	}
	e.opt.Logger.Debug("encoded sgf", "sections", len(d.Sections), "encoding", e.opt.Encoding)
	return nil
}

// EncodeRecord renders one record as a wire line without terminator.
func (e *Encoder) EncodeRecord(kind metadata.BlockKind, r *Record) string {
	var b strings.Builder
	for ident, v := range r.All() {
		code := e.reg.Code(kind, ident)
		s := e.render(kind, ident, code, v)
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(code)
		b.WriteByte('=')
		b.WriteString(s)
	}
	if b.Len() == 0 && r.Len() > 0 {
		// Every value is empty: keep the row with a bare key so that it
		// survives a decode.
		return e.reg.Code(kind, r.Keys()[0]) + "="
	}
	return b.String()
}

// ---- helpers ----

func (e *Encoder) writeBlock(w *bufio.Writer, marker string, b *Block, always bool, nl string) {
	if !always && b.Len() == 0 {
		return
	}
	w.WriteString(marker)
	w.WriteString(nl)
	if b == nil {
		return
	}
	for _, r := range b.Records {
		line := e.EncodeRecord(b.Kind, r)
		if line == "" {
			continue
		}
		w.WriteString(line)
		w.WriteString(nl)
	}
}

func (e *Encoder) render(kind metadata.BlockKind, ident, code string, v Value) string {
	if v.IsEmpty() {
		return ""
	}
	switch v.Kind() {
	case KindDate:
		t, _ := v.Time()
		return codec.FormatDate(t)
	case KindDateTime:
		t, _ := v.Time()
		def, _ := e.reg.Field(kind, code)
		return codec.FormatDateTime(t, def.Precision == metadata.PrecisionMillisecond)
	case KindFloat:
		f, _ := v.Float()
		return codec.Float().Encode(f)
	case KindText:
		s := v.String()
		if lk, ok := labelKindOf(kind, ident); ok {
			s = e.reg.Unlabel(lk, s)
		}
		return newlineReplacer.Replace(s)
	}
	return v.String()
}
