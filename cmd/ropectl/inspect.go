package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/dshills/ropecore/internal/engine/rope"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		encName string
		dump    bool
		preview int
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Build a rope from a file and report its shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := a.encoding(encName)
			if err != nil {
				return err
			}
			hasher, seed, err := a.hasher()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening input")
			}
			defer f.Close()

			start := time.Now()
			r, err := rope.FromReader(f, enc, a.builderOptions()...)
			if err != nil {
				return errors.Wrapf(err, "reading %s", args[0])
			}
			a.log.Info().
				Str("file", args[0]).
				Int("bytes", r.ByteLength()).
				Dur("elapsed", time.Since(start)).
				Msg("rope built")

			out := cmd.OutOrStdout()
			if err := printStats(out, r); err != nil {
				return err
			}
			fmt.Fprintf(out, "characters:  %d\n", r.CharacterLength())
			fmt.Fprintf(out, "code range:  %s\n", rope.CodeRangeOf(r))
			fmt.Fprintf(out, "hash:        %016x (%s)\n", hasher.Hash(r, seed, 0, r.ByteLength()), hasher.Algorithm())

			if dump {
				return rope.Dump(out, r, preview)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&encName, "encoding", "e", "", "encoding of the input (default from config)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the tree")
	cmd.Flags().IntVar(&preview, "preview", 16, "bytes of leaf content shown by --dump")
	return cmd
}

func printStats(w io.Writer, r rope.Rope) error {
	s := rope.Inspect(r)
	_, err := fmt.Fprintf(w,
		"encoding:    %s\nbytes:       %d (%s)\ndepth:       %d\nbalanced:    %t\nnodes:       %d\nleaves:      %d\n",
		s.Encoding, s.ByteLength, units.BytesSize(float64(s.ByteLength)), s.Depth, s.Balanced, s.Nodes, s.Leaves)
	return err
}
