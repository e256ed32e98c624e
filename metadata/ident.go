package metadata

import (
	"strings"

	"github.com/gosimple/slug"
)

// flagUnit is the unit string the tables use for boolean 0/1 channels.
const flagUnit = "0=off 1=on"

// Slugify turns a display name into an identifier: lower case ASCII, words
// joined by underscores.
func Slugify(name string) string {
	s := slug.Make(name)
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Trim(s, "_")
}

// makeFieldIdents assigns Ident to every definition. Names shared by fields
// with more than one distinct unit get the unit appended before slugifying;
// any identifier that still collides gets the code appended.
func makeFieldIdents(defs []FieldDef) {
	units := make(map[string]map[string]struct{})
	for _, d := range defs {
		u, ok := units[d.Name]
		if !ok {
			u = make(map[string]struct{})
			units[d.Name] = u
		}
		u[d.Unit] = struct{}{}
	}

	for i := range defs {
		name := defs[i].Name
		if name == "" {
			name = defs[i].Code
		}
		if len(units[defs[i].Name]) > 1 {
			unit := defs[i].Unit
			if unit == flagUnit {
				unit = "flag"
			}
			if unit != "" {
				name = name + "-" + unit
			}
		}
		defs[i].Ident = Slugify(name)
		if defs[i].Ident == "" {
			defs[i].Ident = defs[i].Code
		}
	}

	seen := make(map[string]int, len(defs))
	for _, d := range defs {
		seen[d.Ident]++
	}
	for i := range defs {
		if seen[defs[i].Ident] > 1 {
			defs[i].Ident = defs[i].Ident + "_" + Slugify(defs[i].Code)
		}
	}
}

func makeLabelIdents(labels []Label) {
	for i := range labels {
		name := labels[i].Name
		if name == "" {
			name = labels[i].Code
		}
		labels[i].Ident = Slugify(name)
		if labels[i].Ident == "" {
			labels[i].Ident = labels[i].Code
		}
	}
}
