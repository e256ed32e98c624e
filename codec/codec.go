// Package codec converts scalar SGF wire values to typed Go values and back.
//
// The decoders are strict: they either return a value or an error. Callers in
// the decoding path turn errors into text fallbacks, so a malformed date never
// aborts a file.
package codec

import "errors"

// Codec converts between the wire text of a field and its domain value.
type Codec[T any] interface {
	Decode(s string) (T, error)
	Encode(v T) string
}

// ErrNoMatch is returned (wrapped) when no accepted layout matches the input.
var ErrNoMatch = errors.New("codec: no matching layout")
