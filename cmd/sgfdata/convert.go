package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/internal/blob"
	sgfjson "github.com/reoring/sgfdata/sink/json"
	"github.com/reoring/sgfdata/sink/postgres"
	"github.com/reoring/sgfdata/sink/sqlite"
	"github.com/reoring/sgfdata/sink/table"
)

// Output formats.
const (
	formatSGF        = "sgf"
	formatJSON       = "json"
	formatJSONTables = "json-tables"
	formatSQLite     = "sqlite"
	formatPostgres   = "postgres"
)

// outputFlags controls how datasets are written.
type outputFlags struct {
	to             string
	inputEncoding  string
	outputEncoding string
	crlf           bool
	indent         string
	tablePrefix    string
	replace        bool
	strict         bool
}

func (o *outputFlags) bind(f *pflag.FlagSet) {
	f.StringVar(&o.to, "to", "", "output format: sgf, json, json-tables, sqlite or postgres (default from the output name)")
	f.StringVar(&o.inputEncoding, "input-encoding", "", "input character set (default: config, else detected)")
	f.StringVar(&o.outputEncoding, "output-encoding", "", "SGF output character set (default: config, else latin-1)")
	f.BoolVar(&o.crlf, "crlf", false, "write CRLF line endings")
	f.StringVar(&o.indent, "indent", "", "indent JSON output with this string")
	f.StringVar(&o.tablePrefix, "table-prefix", "", "prefix for SQL table names")
	f.BoolVar(&o.replace, "replace", false, "drop existing SQL tables before writing")
	f.BoolVar(&o.strict, "strict", false, "exit with an error when validation reports findings")
}

func (o outputFlags) format(out string) string {
	if o.to != "" {
		return o.to
	}
	if strings.HasPrefix(out, "postgres://") || strings.HasPrefix(out, "postgresql://") {
		return formatPostgres
	}
	switch strings.ToLower(path.Ext(out)) {
	case ".json":
		return formatJSON
	case ".db", ".sqlite", ".sqlite3":
		return formatSQLite
	}
	return formatSGF
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		pf pipelineFlags
		of outputFlags
	)
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert one SGF file",
		Long: "Decode an SGF file, apply the selected transforms and write it in the chosen\n" +
			"format. <in> and <out> accept paths, s3:// and mem:// locations or \"-\".\n" +
			"For postgres output <out> is the connection string.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args[0], args[1], pf, of)
		},
	}
	pf.bind(cmd.Flags())
	of.bind(cmd.Flags())
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, in, out string, pf pipelineFlags, of outputFlags) error {
	ctx := cmd.Context()
	a.applyEncodings(of)
	pl, err := a.buildPipeline(pf)
	if err != nil {
		return err
	}
	data, err := a.readInput(ctx, cmd, in)
	if err != nil {
		return err
	}
	d, findings, err := a.process(ctx, pl, data)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	a.report(cmd.ErrOrStderr(), in, findings)

	switch f := of.format(out); f {
	case formatSQLite:
		if err := a.writeSQLite(ctx, out, d, of); err != nil {
			return err
		}
	case formatPostgres:
		db, err := postgres.Open(ctx, out)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Write(ctx, db, d, table.WriteOptions{Prefix: of.tablePrefix, Replace: of.replace}); err != nil {
			return err
		}
	default:
		b, err := a.render(ctx, f, d, of)
		if err != nil {
			return err
		}
		if err := a.writeOutput(ctx, cmd, out, b); err != nil {
			return err
		}
	}
	a.log.Info("converted", "in", in, "out", out, "sections", len(d.Sections), "findings", len(findings))
	if of.strict && len(findings) > 0 {
		return fmt.Errorf("%s: %d validation findings", in, len(findings))
	}
	return nil
}

func (a *app) applyEncodings(of outputFlags) {
	if of.inputEncoding != "" {
		a.cfg.InputEncoding = of.inputEncoding
	}
	if of.outputEncoding != "" {
		a.cfg.OutputEncoding = of.outputEncoding
	}
}

// process decodes data and runs the pipeline. The returned findings hold
// the decoder warnings followed by the validation issues.
func (a *app) process(ctx context.Context, pl *pipeline, data []byte) (*sgf.Dataset, sgf.Issues, error) {
	dm, err := a.decode(ctx, data)
	if err != nil {
		return nil, nil, err
	}
	d, iss, err := pl.apply(ctx, dm.Dataset)
	if err != nil {
		a.metrics.Issues(issuesOf(err))
		return nil, nil, err
	}
	a.metrics.Issues(iss)
	return d, append(dm.Warnings, iss...), nil
}

// render produces the bytes of a stream format.
func (a *app) render(ctx context.Context, format string, d *sgf.Dataset, of outputFlags) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case formatSGF:
		err := sgf.Encode(ctx, a.reg, &buf, d, sgf.EncodeOpt{
			Encoding: a.cfg.OutputEncoding,
			CRLF:     of.crlf,
			Logger:   a.log,
		})
		if err != nil {
			return nil, err
		}
	case formatJSON, formatJSONTables:
		if err := sgfjson.Write(&buf, d, sgfjson.Options{Indent: of.indent, Tables: format == formatJSONTables}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return buf.Bytes(), nil
}

func (a *app) writeSQLite(ctx context.Context, out string, d *sgf.Dataset, of outputFlags) error {
	if out == stdio {
		return fmt.Errorf("sqlite output needs a file path")
	}
	loc, err := blob.ParseURI(out)
	if err != nil {
		return err
	}
	if loc.Driver != blob.DriverFilesystem || loc.IsDir() {
		return fmt.Errorf("sqlite output needs a file path, got %s", out)
	}
	return sqlite.WriteFile(ctx, loc.String(), d, table.WriteOptions{Prefix: of.tablePrefix, Replace: of.replace})
}

// report prints findings in the configured language, one per line.
func (a *app) report(w io.Writer, name string, findings sgf.Issues) {
	for _, it := range findings {
		fmt.Fprintf(w, "%s: %s: %s\n", name, it.Path, it.Localized())
	}
}
