package table

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sgf "github.com/reoring/sgfdata"
)

// Dialect describes how a SQL database spells identifiers, placeholders and
// column types.
type Dialect struct {
	Name        string
	Types       map[ColumnType]string
	Placeholder func(n int) string // n is 1-based
	// Arg converts a non-empty cell into a driver argument.
	Arg func(v sgf.Value) any
}

// Quote quotes an identifier.
func (d Dialect) Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTable returns the DDL for t under prefix+t.Name.
func (d Dialect) CreateTable(prefix string, t *Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", d.Quote(prefix+t.Name))
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", d.Quote(c.Name), d.Types[c.Type])
	}
	b.WriteString(")")
	return b.String()
}

// DropTable returns the statement that removes prefix+t.Name.
func (d Dialect) DropTable(prefix string, t *Table) string {
	return "DROP TABLE IF EXISTS " + d.Quote(prefix+t.Name)
}

// Insert returns a parameterized single-row INSERT for t.
func (d Dialect) Insert(prefix string, t *Table) string {
	cols := make([]string, len(t.Columns))
	ph := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.Quote(c.Name)
		ph[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(prefix+t.Name), strings.Join(cols, ", "), strings.Join(ph, ", "))
}

// Args converts a row into driver arguments; empty cells become NULL.
func (d Dialect) Args(row []sgf.Value) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if v.IsEmpty() {
			continue
		}
		out[i] = d.Arg(v)
	}
	return out
}

// GenericArg maps integers, floats and times to their Go types and
// everything else to its string form.
func GenericArg(v sgf.Value) any {
	switch v.Kind() {
	case sgf.KindInteger:
		i, _ := v.Int()
		return i
	case sgf.KindFloat:
		f, _ := v.Float()
		return f
	case sgf.KindDate, sgf.KindDateTime:
		t, _ := v.Time()
		return t
	}
	return v.String()
}

// WriteOptions control Write.
type WriteOptions struct {
	// Prefix is prepended to every table name.
	Prefix string
	// Replace drops existing tables first. Without it rows are appended,
	// which requires the existing columns to be a superset of the new ones.
	Replace bool
}

// Write stores the set in db inside one transaction.
func Write(ctx context.Context, db *sql.DB, d Dialect, set *Set, opt WriteOptions) (retErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", d.Name, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, t := range set.Tables() {
		if t == nil || len(t.Rows) == 0 {
			continue
		}
		if opt.Replace {
			if _, err := tx.ExecContext(ctx, d.DropTable(opt.Prefix, t)); err != nil {
				return fmt.Errorf("%s: drop %s: %w", d.Name, t.Name, err)
			}
		}
		if _, err := tx.ExecContext(ctx, d.CreateTable(opt.Prefix, t)); err != nil {
			return fmt.Errorf("%s: create %s: %w", d.Name, t.Name, err)
		}
		stmt, err := tx.PrepareContext(ctx, d.Insert(opt.Prefix, t))
		if err != nil {
			return fmt.Errorf("%s: prepare %s: %w", d.Name, t.Name, err)
		}
		for i, row := range t.Rows {
			if _, err := stmt.ExecContext(ctx, d.Args(row)...); err != nil {
				_ = stmt.Close()
				return fmt.Errorf("%s: insert %s row %d: %w", d.Name, t.Name, i, err)
			}
		}
		if err := stmt.Close(); err != nil {
			return fmt.Errorf("%s: close %s: %w", d.Name, t.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", d.Name, err)
	}
	return nil
}
