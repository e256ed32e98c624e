package sgfdata

import (
	"fmt"
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/sgfdata/codec"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindText ValueKind = iota
	KindInteger
	KindFloat
	KindDate
	KindDateTime
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a decoded field value. The zero Value is empty text.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	t    time.Time
}

// Text returns a text Value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Integer returns an integer Value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float returns a float Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Date returns a calendar date Value; the time of day is discarded.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateTime returns a timestamp Value.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// Int returns the integer payload.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInteger }

// Float returns the float payload.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Time returns the payload of a date or datetime Value.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindDate || v.kind == KindDateTime
}

// Number returns integer and float payloads as float64. NaN floats are
// reported as not numeric.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, !math.IsNaN(v.f)
	}
	return 0, false
}

// IsEmpty reports whether the Value carries no information: empty text or NaN.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindText:
		return v.s == ""
	case KindFloat:
		return math.IsNaN(v.f)
	}
	return false
}

// String renders the Value in a stable human readable form. Dates render as
// YYYY-MM-DD and timestamps as RFC 3339; the wire form is produced by the
// Encoder.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return codec.FormatFloat(v.f)
	case KindDate:
		return v.t.Format(time.DateOnly)
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano)
	}
	return v.s
}

// Equal compares kind and payload. NaN equals NaN so that decoded datasets
// compare structurally.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == o.s
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	default:
		return v.t.Equal(o.t)
	}
}

// MarshalJSON renders numbers as JSON numbers (NaN as null), dates and
// timestamps as strings and text as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return strconv.AppendFloat(nil, v.f, 'g', -1, 64), nil
	}
	return json.Marshal(v.String())
}
