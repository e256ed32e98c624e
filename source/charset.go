package source

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownEncoding is returned by Lookup for names no index recognises.
var ErrUnknownEncoding = errors.New("source: unknown encoding")

// Lookup resolves an encoding name. IANA names and aliases are accepted, as
// are the WHATWG labels browsers use ("latin1", "utf8", "windows-1252").
func Lookup(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch strings.NewReplacer("-", "", "_", "").Replace(n) {
	case "latin1", "iso88591", "l1":
		// The WHATWG index maps latin1 to windows-1252; SGF files mean the real thing.
		return charmap.ISO8859_1, nil
	case "utf8":
		return unicode.UTF8, nil
	}
	if e, err := ianaindex.IANA.Encoding(n); err == nil && e != nil {
		return e, nil
	}
	if e, err := htmlindex.Get(n); err == nil && e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// CanonicalName returns the IANA name of e, or fallback when it has none.
func CanonicalName(e encoding.Encoding, fallback string) string {
	if n, err := ianaindex.IANA.Name(e); err == nil && n != "" {
		return n
	}
	return fallback
}
