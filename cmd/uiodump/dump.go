package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/arloliu/uio/internal/dump"
	"github.com/arloliu/uio/rio"
)

func newDumpCmd(s *settings) *cobra.Command {
	var (
		src    source
		offset string
		length string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print a canonical hex dump of a file region",
		Example: `  uiodump dump data.bin --offset 1KiB --length 256
  uiodump dump data.bin --span 0:16 --span 4KiB:16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			off, err := humanize.ParseBytes(offset)
			if err != nil {
				return fmt.Errorf("parse offset: %w", err)
			}
			n, err := humanize.ParseBytes(length)
			if err != nil {
				return fmt.Errorf("parse length: %w", err)
			}

			w, err := s.openIO(args[0], &src)
			if err != nil {
				return err
			}
			defer closeIO(s.logger, w)

			ch, err := rio.NewSeekableChannel(w, int64(off), int64(n))
			if err != nil {
				return err
			}
			defer ch.Close()

			dumped, err := dump.Region(cmd.OutOrStdout(), ch, int64(off), width)
			if err != nil {
				return err
			}
			s.logger.Info().Str("dumped", humanize.IBytes(uint64(dumped))).Msg("dump done")

			return nil
		},
	}

	flags := cmd.Flags()
	src.addFlags(flags)
	flags.StringVar(&offset, "offset", "0", "start offset, e.g. 512 or 4KiB")
	flags.StringVar(&length, "length", "0", "bytes to dump, 0 dumps to the end")
	flags.IntVar(&width, "width", dump.DefaultWidth, "bytes per line")

	return cmd
}
