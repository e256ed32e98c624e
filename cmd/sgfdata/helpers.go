package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/internal/blob"
)

const stdio = "-"

// readInput returns the whole content of the input location.
func (a *app) readInput(ctx context.Context, cmd *cobra.Command, uri string) ([]byte, error) {
	if uri == stdio {
		return io.ReadAll(cmd.InOrStdin())
	}
	loc, err := blob.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if loc.IsDir() {
		return nil, fmt.Errorf("%s is a directory", uri)
	}
	store, err := blob.Open(ctx, loc, a.blobs)
	if err != nil {
		return nil, err
	}
	rc, err := store.Get(ctx, loc.Key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// writeOutput stores data at the output location.
func (a *app) writeOutput(ctx context.Context, cmd *cobra.Command, uri string, data []byte) error {
	if uri == stdio {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	loc, err := blob.ParseURI(uri)
	if err != nil {
		return err
	}
	if loc.IsDir() {
		return fmt.Errorf("%s is a directory", uri)
	}
	store, err := blob.Open(ctx, loc, a.blobs)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, loc.Key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", loc, err)
	}
	return nil
}

// decode runs the decoder with the configured encoding and metrics
// observer. Coercion warnings are counted but not returned as errors.
func (a *app) decode(ctx context.Context, data []byte) (sgf.Decoded, error) {
	dec := sgf.NewDecoder(a.reg, sgf.DecodeOpt{
		Encoding: a.cfg.InputEncoding,
		Logger:   a.log,
		Observer: a.metrics,
	})
	start := time.Now()
	dm, err := dec.DecodeWithMeta(ctx, bytes.NewReader(data))
	a.metrics.File(time.Since(start), err)
	if err != nil {
		iss := issuesOf(err)
		a.metrics.Issues(iss)
		if len(iss) > 0 && iss[0].Code == sgf.CodeUnknownEncoding {
			return sgf.Decoded{}, fmt.Errorf("%s: %w", iss[0].Localized(), err)
		}
		return sgf.Decoded{}, err
	}
	a.metrics.Issues(dm.Warnings)
	return dm, nil
}

// issuesOf returns the issues carried by err, if any.
func issuesOf(err error) sgf.Issues {
	var se *sgf.SyntaxError
	if errors.As(err, &se) {
		return sgf.Issues{se.Issue()}
	}
	if iss, ok := sgf.AsIssues(err); ok {
		return iss
	}
	return nil
}

// swapExt replaces the extension of key.
func swapExt(key, ext string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ext
}
