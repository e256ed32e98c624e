package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reoring/sgfdata/metadata"
)

func newTablesCmd(a *app) *cobra.Command {
	var flags struct {
		block  string
		labels string
	}
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the field codes or value labels of the metadata registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if flags.labels != "" {
				kind, err := parseLabelKind(flags.labels)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Code\tIdent\tName\n")
				for _, l := range a.reg.Labels(kind) {
					fmt.Fprintf(w, "%s\t%s\t%s\n", l.Code, l.Ident, l.Name)
				}
				return w.Flush()
			}
			kind, err := metadata.ParseBlockKind(flags.block)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Code\tIdent\tType\tUnit\tNormalization\n")
			for _, f := range a.reg.Fields(kind) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.Code, f.Ident, f.Type, f.Unit, f.Normalization)
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.block, "block", "main", "block whose fields are listed: main, method or data")
	f.StringVar(&flags.labels, "labels", "", "list a label table instead: methods, comments or data-flags")
	return cmd
}

func parseLabelKind(s string) (metadata.LabelKind, error) {
	for _, k := range []metadata.LabelKind{metadata.Methods, metadata.Comments, metadata.DataFlags} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown label table %q", s)
}
