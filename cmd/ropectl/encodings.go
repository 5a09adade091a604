package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

func newEncodingsCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encodings",
		Short: "List registered encodings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tASCII\tMIN\tMAX")
			for _, enc := range encoding.Default.Encodings() {
				fmt.Fprintf(tw, "%s\t%t\t%d\t%d\n", enc.Name(), enc.ASCIICompatible(), enc.MinLength(), enc.MaxLength())
			}
			return tw.Flush()
		},
	}
}
