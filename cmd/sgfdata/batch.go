package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/internal/blob"
)

// batchResult is the outcome for one input file.
type batchResult struct {
	in, out  string
	findings sgf.Issues
	err      error
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		pf       pipelineFlags
		of       outputFlags
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "batch <in-dir> <out-dir>",
		Short: "Convert every .sgf file below a directory or prefix",
		Long: "Convert every .sgf file found below <in-dir> in parallel and write the\n" +
			"results below <out-dir> with the same relative names. Only the sgf, json\n" +
			"and json-tables formats are supported. Files that fail are reported and\n" +
			"the command exits with an error after all files were tried.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("parallel") {
				a.cfg.Parallelism = parallel
			}
			return a.runBatch(cmd, args[0], args[1], pf, of)
		},
	}
	pf.bind(cmd.Flags())
	of.bind(cmd.Flags())
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "files converted at once (default: config, else CPU count)")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, in, out string, pf pipelineFlags, of outputFlags) error {
	ctx := cmd.Context()
	if a.cfg.Parallelism < 1 {
		return fmt.Errorf("parallel must be positive, got %d", a.cfg.Parallelism)
	}
	format := of.to
	if format == "" {
		format = formatSGF
	}
	ext := ".sgf"
	switch format {
	case formatSGF:
	case formatJSON, formatJSONTables:
		ext = ".json"
	default:
		return fmt.Errorf("batch supports sgf, json and json-tables output, got %q", format)
	}
	a.applyEncodings(of)
	pl, err := a.buildPipeline(pf)
	if err != nil {
		return err
	}

	src, srcLoc, err := a.openDir(ctx, in)
	if err != nil {
		return err
	}
	dst, dstLoc, err := a.openDir(ctx, out)
	if err != nil {
		return err
	}
	infos, err := src.List(ctx, srcLoc.Key)
	if err != nil {
		return fmt.Errorf("list %s: %w", srcLoc, err)
	}
	var keys []string
	for _, info := range infos {
		if strings.EqualFold(path.Ext(info.Key), ".sgf") {
			keys = append(keys, info.Key)
		}
	}
	if len(keys) == 0 {
		a.log.Warn("no sgf files found", "in", srcLoc.String())
		return nil
	}

	results := make([]batchResult, len(keys))
	convert := func(ctx context.Context, i int, key string) {
		rel := strings.TrimPrefix(key, srcLoc.Key)
		r := batchResult{in: key, out: dstLoc.Key + swapExt(rel, ext)}
		defer func() { results[i] = r }()

		rc, err := src.Get(ctx, key)
		if err != nil {
			r.err = err
			return
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			r.err = err
			return
		}
		d, findings, err := a.process(ctx, pl, data)
		if err != nil {
			r.err = err
			return
		}
		r.findings = findings
		b, err := a.render(ctx, format, d, of)
		if err != nil {
			r.err = err
			return
		}
		r.err = dst.Put(ctx, r.out, bytes.NewReader(b))
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Parallelism)
	for i, key := range keys {
		g.Go(func() error {
			convert(gCtx, i, key)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	var failed, findings int
	for _, r := range results {
		a.report(cmd.ErrOrStderr(), r.in, r.findings)
		if r.err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.in, r.err)
			continue
		}
		findings += len(r.findings)
		a.log.Debug("converted", "in", r.in, "out", r.out, "findings", len(r.findings))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "converted %d of %d files (%d findings)\n", len(keys)-failed, len(keys), findings)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(keys))
	}
	if of.strict && findings > 0 {
		return fmt.Errorf("%d validation findings", findings)
	}
	return nil
}

// openDir opens a location that addresses a directory or key prefix. The
// returned location's Key is empty or ends in "/".
func (a *app) openDir(ctx context.Context, uri string) (blob.Store, blob.Location, error) {
	loc, err := blob.ParseURI(uri)
	if err != nil {
		return nil, blob.Location{}, err
	}
	if loc.Driver == blob.DriverFilesystem && loc.Key != "" {
		// A path that does not exist yet is taken as a directory to create.
		loc = blob.Location{Driver: blob.DriverFilesystem, Root: loc.String()}
	}
	if loc.Key != "" && !strings.HasSuffix(loc.Key, "/") {
		loc.Key += "/"
	}
	store, err := blob.Open(ctx, loc, a.blobs)
	if err != nil {
		return nil, blob.Location{}, err
	}
	return store, loc, nil
}
