package source

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// NewWriter returns a writer that encodes UTF-8 text into the named encoding.
// Runes the target cannot represent are dropped.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, transform.Chain(runes.Remove(unencodable(enc)), enc.NewEncoder())), nil
}

func unencodable(enc encoding.Encoding) runes.Set {
	if cm, ok := enc.(*charmap.Charmap); ok {
		return runes.Predicate(func(r rune) bool {
			_, ok := cm.EncodeRune(r)
			return !ok
		})
	}
	if enc == unicode.UTF8 {
		return runes.Predicate(func(r rune) bool { return r == utf8.RuneError })
	}
	e := enc.NewEncoder()
	return runes.Predicate(func(r rune) bool {
		_, err := e.String(string(r))
		return err != nil
	})
}
