package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/rules"
)

// inspectReport is the --json output of inspect.
type inspectReport struct {
	Encoding   string        `json:"encoding"`
	Projection int           `json:"projection,omitempty"`
	Summary    sgf.Summary   `json:"summary"`
	Findings   []findingJSON `json:"findings"`
}

type findingJSON struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var flags struct {
		validate      bool
		json          bool
		inputEncoding string
	}
	cmd := &cobra.Command{
		Use:   "inspect <in>",
		Short: "Summarize an SGF file and list decoding warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if flags.inputEncoding != "" {
				a.cfg.InputEncoding = flags.inputEncoding
			}
			data, err := a.readInput(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			dm, err := a.decode(ctx, data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			d, findings := dm.Dataset, dm.Warnings
			if flags.validate {
				var iss sgf.Issues
				d, iss, err = rules.New(rules.Options{
					DatasetRules: []rules.DatasetRule{rules.UniqueInvestigationPoints()},
					Logger:       a.log,
				}).Validate(ctx, d)
				if err != nil {
					return err
				}
				a.metrics.Issues(iss)
				findings = append(findings, iss...)
			}
			rep := inspectReport{Encoding: dm.Encoding, Summary: d.Summary()}
			if p, ok := d.Projection(); ok {
				rep.Projection = p
			}
			rep.Findings = make([]findingJSON, 0, len(findings))
			for _, it := range findings {
				rep.Findings = append(rep.Findings, findingJSON{Path: it.Path, Code: it.Code, Message: it.Localized(), Line: it.Line})
			}
			if flags.json {
				enc := gojson.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&flags.validate, "validate", false, "also run the depth consistency rules")
	f.BoolVar(&flags.json, "json", false, "print the report as JSON")
	f.StringVar(&flags.inputEncoding, "input-encoding", "", "input character set (default: config, else detected)")
	return cmd
}

func printReport(out io.Writer, rep inspectReport) {
	s := rep.Summary
	fmt.Fprintf(out, "Encoding:    %s\n", rep.Encoding)
	fmt.Fprintf(out, "Sections:    %d\n", s.Sections)
	fmt.Fprintf(out, "Data rows:   %d\n", s.DataRows)
	fmt.Fprintf(out, "Method rows: %d\n", s.MethodRows)
	fmt.Fprintf(out, "Max depth:   %g\n", s.MaxDepth)
	if rep.Projection != 0 {
		fmt.Fprintf(out, "Projection:  EPSG:%d\n", rep.Projection)
	}
	if len(s.Methods) > 0 {
		fmt.Fprintf(out, "Methods:\n")
		for _, m := range slices.Sorted(maps.Keys(s.Methods)) {
			fmt.Fprintf(out, "  %s: %d\n", m, s.Methods[m])
		}
	}
	if len(s.Projections) > 0 {
		fmt.Fprintf(out, "Projections:\n")
		for _, p := range slices.Sorted(maps.Keys(s.Projections)) {
			fmt.Fprintf(out, "  EPSG:%d: %d\n", p, s.Projections[p])
		}
	}
	if s.Extent != nil {
		fmt.Fprintf(out, "Extent:      %g %g .. %g %g\n", s.Extent.MinX, s.Extent.MinY, s.Extent.MaxX, s.Extent.MaxY)
	}
	if s.WithErrors > 0 {
		fmt.Fprintf(out, "With errors: %d\n", s.WithErrors)
	}
	if len(rep.Findings) > 0 {
		fmt.Fprintf(out, "Findings: (%d)\n", len(rep.Findings))
		for _, f := range rep.Findings {
			fmt.Fprintf(out, "  %s [%s] %s\n", f.Path, f.Code, f.Message)
		}
	}
}
