// Package sqlite stores flattened datasets in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/sink/table"
)

// Dialect is the SQLite spelling. Dates are stored as ISO 8601 text.
var Dialect = table.Dialect{
	Name: "sqlite",
	Types: map[table.ColumnType]string{
		table.TypeText:      "TEXT",
		table.TypeInteger:   "INTEGER",
		table.TypeFloat:     "REAL",
		table.TypeDate:      "TEXT",
		table.TypeTimestamp: "TEXT",
	},
	Placeholder: func(int) string { return "?" },
	Arg: func(v sgf.Value) any {
		if t, ok := v.Time(); ok {
			if v.Kind() == sgf.KindDate {
				return t.Format(time.DateOnly)
			}
			return t.UTC().Format("2006-01-02T15:04:05.000Z")
		}
		return table.GenericArg(v)
	},
}

// Open opens (creating when needed) the database at path.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "sgfdata.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// Write flattens d and stores the main, method and data tables.
func Write(ctx context.Context, db *sql.DB, d *sgf.Dataset, opt table.WriteOptions) error {
	set, err := table.Flatten(d)
	if err != nil {
		return err
	}
	return table.Write(ctx, db, Dialect, set, opt)
}

// WriteFile opens path, writes d and closes the database.
func WriteFile(ctx context.Context, path string, d *sgf.Dataset, opt table.WriteOptions) (retErr error) {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	return Write(ctx, db, d, opt)
}
