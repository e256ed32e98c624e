package metadata

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var defaultTables embed.FS

// Table file names expected by Load.
var (
	FieldTableFiles = map[BlockKind]string{
		Main:   "main.yaml",
		Data:   "data.yaml",
		Method: "method.yaml",
	}
	LabelTableFiles = map[LabelKind]string{
		Methods:   "methods.yaml",
		Comments:  "comments.yaml",
		DataFlags: "data-flags.yaml",
	}
)

// LoadDefault builds a Registry from the tables embedded in the module.
func LoadDefault() (*Registry, error) {
	sub, err := fs.Sub(defaultTables, "tables")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads the six tables from fsys and builds a Registry. Missing label
// tables are treated as empty; missing field tables are an error.
func Load(fsys fs.FS) (*Registry, error) {
	t, err := ReadTables(fsys)
	if err != nil {
		return nil, err
	}
	return New(t)
}

// ReadTables decodes the YAML tables in fsys without building a Registry.
func ReadTables(fsys fs.FS) (Tables, error) {
	t := Tables{
		Fields: make(map[BlockKind][]FieldDef, len(FieldTableFiles)),
		Labels: make(map[LabelKind][]Label, len(LabelTableFiles)),
	}
	for kind, name := range FieldTableFiles {
		var defs []FieldDef
		if err := readYAML(fsys, name, &defs); err != nil {
			return Tables{}, err
		}
		t.Fields[kind] = defs
	}
	for kind, name := range LabelTableFiles {
		var labels []Label
		if err := readYAML(fsys, name, &labels); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Tables{}, err
		}
		t.Labels[kind] = labels
	}
	return t, nil
}

func readYAML(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("metadata: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("metadata: parse %s: %w", name, err)
	}
	return nil
}
