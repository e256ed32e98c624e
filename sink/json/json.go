// Package json writes datasets as JSON documents, either nested by section
// or as the three flattened tables.
package json

import (
	"io"

	gojson "github.com/goccy/go-json"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/sink/table"
)

// Options control Write.
type Options struct {
	// Indent pretty-prints with the given indent when non-empty.
	Indent string
	// Tables writes {"main":…,"method":…,"data":…} flattened tables instead
	// of nested sections.
	Tables bool
}

type sectionDoc struct {
	Main   []*sgf.Record `json:"main"`
	Method []*sgf.Record `json:"method,omitempty"`
	Data   []*sgf.Record `json:"data,omitempty"`
}

type datasetDoc struct {
	Sections []sectionDoc `json:"sections"`
}

type columnDoc struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type tableDoc struct {
	Columns []columnDoc   `json:"columns"`
	Rows    [][]sgf.Value `json:"rows"`
}

type tablesDoc struct {
	Main   tableDoc `json:"main"`
	Method tableDoc `json:"method"`
	Data   tableDoc `json:"data"`
}

// Write encodes d to w followed by a newline.
func Write(w io.Writer, d *sgf.Dataset, opt Options) error {
	var doc any
	if opt.Tables {
		set, err := table.Flatten(d)
		if err != nil {
			return err
		}
		doc = tablesDoc{Main: toTableDoc(set.Main), Method: toTableDoc(set.Method), Data: toTableDoc(set.Data)}
	} else {
		doc = toDatasetDoc(d)
	}
	enc := gojson.NewEncoder(w)
	if opt.Indent != "" {
		enc.SetIndent("", opt.Indent)
	}
	return enc.Encode(doc)
}

// Marshal returns the nested document for d.
func Marshal(d *sgf.Dataset) ([]byte, error) {
	return gojson.Marshal(toDatasetDoc(d))
}

func toDatasetDoc(d *sgf.Dataset) datasetDoc {
	doc := datasetDoc{Sections: make([]sectionDoc, 0, d.Len())}
	for _, s := range d.Sections {
		sd := sectionDoc{Main: []*sgf.Record{}}
		if s.Main != nil {
			sd.Main = append(sd.Main, s.Main.Records...)
		}
		if s.Method != nil {
			sd.Method = s.Method.Records
		}
		if s.Data != nil {
			sd.Data = s.Data.Records
		}
		doc.Sections = append(doc.Sections, sd)
	}
	return doc
}

func toTableDoc(t *table.Table) tableDoc {
	out := tableDoc{Columns: make([]columnDoc, len(t.Columns)), Rows: make([][]sgf.Value, len(t.Rows))}
	for i, c := range t.Columns {
		out.Columns[i] = columnDoc{Name: c.Name, Type: c.Type.String()}
	}
	copy(out.Rows, t.Rows)
	return out
}
