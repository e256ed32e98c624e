// Package postgres stores flattened datasets in PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/sink/table"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/sgfdata?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Dialect is the PostgreSQL spelling.
var Dialect = table.Dialect{
	Name: "postgres",
	Types: map[table.ColumnType]string{
		table.TypeText:      "TEXT",
		table.TypeInteger:   "BIGINT",
		table.TypeFloat:     "DOUBLE PRECISION",
		table.TypeDate:      "DATE",
		table.TypeTimestamp: "TIMESTAMPTZ",
	},
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Arg:         table.GenericArg,
}

// Open connects to dsn (falling back to a local default) and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
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
