package codec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reInteger = regexp.MustCompile(`^\s*[-+]?[0-9]+\s*$`)
	reFloat   = regexp.MustCompile(`^\s*[-+]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][-+]?[0-9]+)?\s*$`)
)

// Integer returns the codec for whole numbers.
func Integer() Codec[int64] { return integerCodec{} }

type integerCodec struct{}

func (integerCodec) Decode(s string) (int64, error) { return ParseInteger(s) }
func (integerCodec) Encode(v int64) string          { return strconv.FormatInt(v, 10) }

// Float returns the codec for decimal numbers.
func Float() Codec[float64] { return floatCodec{} }

type floatCodec struct{}

func (floatCodec) Decode(s string) (float64, error) { return ParseFloat(s) }
func (floatCodec) Encode(v float64) string          { return FormatFloatWire(v) }

// ParseInteger accepts an optionally signed run of digits with surrounding
// whitespace. Values outside the int64 range are rejected.
func ParseInteger(s string) (int64, error) {
	if !reInteger.MatchString(s) {
		return 0, fmt.Errorf("integer %q: %w", s, ErrNoMatch)
	}
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// ParseFloat accepts decimal notation with optional sign, fraction and
// exponent. Words such as "nan" or "inf" are not numbers on the wire.
func ParseFloat(s string) (float64, error) {
	if !reFloat.MatchString(s) {
		return 0, fmt.Errorf("float %q: %w", s, ErrNoMatch)
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// FormatFloat renders the shortest decimal representation that round-trips.
// NaN renders as the empty string.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatFloatWire is FormatFloat that keeps a decimal point on integral
// values, so the text decodes back as a float rather than an integer.
func FormatFloatWire(v float64) string {
	s := FormatFloat(v)
	if s == "" || strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
