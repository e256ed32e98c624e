// Package engine tokenizes SGF text: it classifies lines into block markers
// and field lines and splits field lines into key/value pairs. It knows
// nothing about codes, types or the data model.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies a line.
type Kind int

const (
	KindBlank   Kind = iota // empty line
	KindSection             // "$": new section, selects the main block
	KindMethod              // "£" or "€"
	KindData                // "#"
	KindIgnore              // "#$": recognised, selects no block
	KindFields              // anything else
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindSection:
		return "section"
	case KindMethod:
		return "method"
	case KindData:
		return "data"
	case KindIgnore:
		return "ignore"
	case KindFields:
		return "fields"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsMarker reports whether k switches the current block.
func (k Kind) IsMarker() bool {
	return k == KindSection || k == KindMethod || k == KindData || k == KindIgnore
}

// Field is one key/value pair of a field line. Offset is the byte position of
// the field within the line.
type Field struct {
	Key    string
	Value  string
	Offset int
}

// Token is one classified input line.
type Token struct {
	Kind   Kind
	Line   int // 1-based
	Raw    string
	Fields []Field // KindFields only
}

// LineSource yields decoded lines without terminators.
type LineSource interface {
	Next() (string, error)
	Line() int
}

// Errors reported by SplitFields, wrapped in a *FieldError.
var (
	ErrEmptyField = errors.New("empty field")
	ErrEmptyKey   = errors.New("empty key")
)

// FieldError locates a tokenizer failure within a line.
type FieldError struct {
	Offset int
	Err    error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%v at byte %d", e.Err, e.Offset) }
func (e *FieldError) Unwrap() error { return e.Err }

// Classify returns the kind of a line. Markers must match exactly.
func Classify(line string) Kind {
	switch line {
	case "":
		return KindBlank
	case "$":
		return KindSection
	case "£", "€":
		return KindMethod
	case "#":
		return KindData
	case "#$":
		return KindIgnore
	}
	if strings.TrimSpace(line) == "" {
		return KindBlank
	}
	return KindFields
}

// SplitFields splits a field line. Fields are separated by a comma directly
// followed by an ASCII letter or '%', so values may contain commas as long as
// the next character is not a key start. Each field splits on its first '='.
// A field without '=' takes its first character as key and the rest as value
// (the '%' vendor timestamp). A trailing comma is not followed by a key start
// and so stays part of the last value.
func SplitFields(line string) ([]Field, error) {
	var out []Field
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] != ',' || i+1 >= len(line) || !isKeyStart(line[i+1]) {
			continue
		}
		f, err := splitField(line[start:i], start)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		start = i + 1
	}
	f, err := splitField(line[start:], start)
	if err != nil {
		return nil, err
	}
	return append(out, f), nil
}

// Scanner turns a LineSource into Tokens.
type Scanner struct {
	src LineSource
}

// NewScanner returns a Scanner reading from src.
func NewScanner(src LineSource) *Scanner { return &Scanner{src: src} }

// Next returns the next token, or the source's error (io.EOF at the end). Field lines that cannot be split
// yield a *FieldError together with the partially filled token, so callers
// can report the raw line.
func (s *Scanner) Next() (Token, error) {
	line, err := s.src.Next()
	if err != nil {
		return Token{}, err
	}
	tok := Token{Kind: Classify(line), Line: s.src.Line(), Raw: line}
	if tok.Kind != KindFields {
		return tok, nil
	}
	tok.Fields, err = SplitFields(line)
	return tok, err
}

// ---- helpers ----

func isKeyStart(c byte) bool {
	return c == '%' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func splitField(s string, offset int) (Field, error) {
	if s == "" {
		return Field{}, &FieldError{Offset: offset, Err: ErrEmptyField}
	}
	if k, v, ok := strings.Cut(s, "="); ok {
		if k == "" {
			return Field{}, &FieldError{Offset: offset, Err: ErrEmptyKey}
		}
		return Field{Key: k, Value: v, Offset: offset}, nil
	}
	// Keyless vendor field: first character is the key.
	_, n := utf8.DecodeRuneInString(s)
	return Field{Key: s[:n], Value: s[n:], Offset: offset}, nil
}
