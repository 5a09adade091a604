package main

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/ropecore/internal/engine/encoding"
	"github.com/dshills/ropecore/internal/engine/rope"
)

func newAppendCmd(a *app) *cobra.Command {
	var literal string

	cmd := &cobra.Command{
		Use:   "append N",
		Short: "Append a literal N times and compare tree depth with and without rebalancing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return errors.Newf("invalid count %q", args[0])
			}
			enc, err := a.encoding("")
			if err != nil {
				return err
			}
			cache, err := rope.NewCache(a.cfg.Rope().CacheSize)
			if err != nil {
				return err
			}

			// Plain concatenation: each append adds a level.
			var chain rope.Rope = rope.Empty(enc)
			for i := 0; i < n; i++ {
				leaf := cache.Get([]byte(literal), enc, encoding.Unknown)
				if chain, err = rope.Append(chain, leaf); err != nil {
					return err
				}
			}
			before := chain.Depth()
			balanced := rope.Rebalance(chain, a.cfg.Rope().ChunkSize)

			// Builder: rebalances whenever the depth limit is crossed.
			b := rope.NewBuilder(enc, a.builderOptions()...)
			for i := 0; i < n; i++ {
				if err := b.Append(cache.Get([]byte(literal), enc, encoding.Unknown)); err != nil {
					return err
				}
			}
			rebalances := b.Rebalances()
			built, err := b.Build()
			if err != nil {
				return err
			}
			if !rope.Equal(built, balanced) {
				return errors.AssertionFailedf("builder and rebalanced chain differ")
			}

			stats := cache.Stats()
			a.log.Debug().Int64("hits", stats.Hits).Int64("misses", stats.Misses).Msg("literal cache")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "appends:              %d\n", n)
			fmt.Fprintf(out, "bytes:                %d\n", chain.ByteLength())
			fmt.Fprintf(out, "depth before:         %d (balanced %t)\n", before, rope.IsBalanced(before, chain.ByteLength()))
			fmt.Fprintf(out, "depth after:          %d (balanced %t)\n", balanced.Depth(), rope.IsBalanced(balanced.Depth(), balanced.ByteLength()))
			fmt.Fprintf(out, "builder depth:        %d\n", built.Depth())
			fmt.Fprintf(out, "builder rebalances:   %d\n", rebalances)
			return nil
		},
	}

	cmd.Flags().StringVar(&literal, "literal", "x", "literal appended on each iteration")
	return cmd
}
