package sgfdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/sgfdata/metadata"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, msg string, kv ...any) Issue
}

// Root returns the empty path "/".
func Root() PathRef { return &pathRef{parts: nil} }

// SectionPath returns /sections/<i>.
func SectionPath(i int) PathRef { return Root().Field("sections").Index(i) }

// FieldPath returns /sections/<i>/<block>/<key> for header-level findings or
// /sections/<i>/<block>/<row>/<key> when row is non-negative.
func FieldPath(section int, kind metadata.BlockKind, row int, key string) PathRef {
	p := SectionPath(section).Field(kind.String())
	if row >= 0 {
		p = p.Index(row)
	}
	return p.Field(key)
}

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: m}
}
