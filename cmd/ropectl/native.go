package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/dshills/ropecore/internal/engine/encoding"
	"github.com/dshills/ropecore/internal/engine/native"
	"github.com/dshills/ropecore/internal/engine/rope"
)

func newNativeCmd(a *app) *cobra.Command {
	var (
		offset int
		value  string
	)

	cmd := &cobra.Command{
		Use:   "native TEXT",
		Short: "Copy TEXT into foreign memory, write to it and show that the rope observes the write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := []byte(args[0])
			if limit := a.cfg.Native().MaxAllocation; int64(len(text)+1) > limit {
				return errors.Wrapf(native.ErrInvalidSize, "%s exceeds the %s allocation limit",
					units.BytesSize(float64(len(text)+1)), units.BytesSize(float64(limit)))
			}
			if offset < 0 || offset >= len(text) {
				return errors.Newf("offset %d outside text of %d bytes", offset, len(text))
			}
			if len(value) != 1 {
				return errors.Newf("--byte must be a single byte, got %q", value)
			}
			enc, err := a.encoding("")
			if err != nil {
				return err
			}
			hasher, seed, err := a.hasher()
			if err != nil {
				return err
			}

			cr, chars := enc.Scan(text)
			n, err := rope.NewNative(a.release, text, enc, chars, cr)
			if err != nil {
				return err
			}
			a.log.Debug().
				Str("ptr", n.Pointer().ID().String()).
				Int("size", n.Pointer().Size()).
				Msg("native rope allocated")

			snapshot := n.ToLeaf()
			out := cmd.OutOrStdout()
			show := func(label string, r rope.Rope) {
				fmt.Fprintf(out, "%-9s %q hash=%016x code range=%s\n",
					label, rope.String(r), hasher.Hash(r, seed, 0, r.ByteLength()), rope.CodeRangeOf(r))
			}

			show("before:", n)
			n.Pointer().SetByte(offset, value[0])
			show("after:", n)
			show("snapshot:", snapshot)

			if rope.CodeRangeOf(n) == encoding.Broken && cr != encoding.Broken {
				a.log.Warn().Int("offset", offset).Msg("write left the native content broken")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset to overwrite")
	cmd.Flags().StringVar(&value, "byte", "*", "replacement byte")
	return cmd
}
