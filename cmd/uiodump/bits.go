package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/arloliu/uio/bitio"
	"github.com/arloliu/uio/internal/dump"
)

func newBitsCmd(s *settings) *cobra.Command {
	var (
		src    source
		widths []int
		offset string
		count  int
	)

	cmd := &cobra.Command{
		Use:   "bits FILE",
		Short: "Extract MSB-first bit fields",
		Long: "Extract records of MSB-first bit fields. Each record reads one field per\n" +
			"entry of --widths, and every field is at most " + strconv.Itoa(bitio.MaxBits) + " bits wide.",
		Example: `  uiodump bits data.bin --widths 3,5,8 --count 4`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, n := range widths {
				if n < 0 || n > bitio.MaxBits {
					return fmt.Errorf("field width %d out of range [0, %d]", n, bitio.MaxBits)
				}
			}
			off, err := humanize.ParseBytes(offset)
			if err != nil {
				return fmt.Errorf("parse offset: %w", err)
			}

			w, err := s.openIO(args[0], &src)
			if err != nil {
				return err
			}
			defer closeIO(s.logger, w)

			if _, err := w.Seek(int64(off), io.SeekStart); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := bitio.NewReader(w)
			p := dump.NewPrinter(out)
			fields := make([]string, len(widths))
			for i := range count {
				bitPos := r.BitPosition()
				for j, n := range widths {
					v, err := r.Get(n)
					if err != nil {
						if errors.Is(err, io.EOF) {
							s.logger.Info().Int("records", i).Msg("end of source")
							return p.Err()
						}

						return err
					}
					fields[j] = strconv.FormatUint(uint64(v), 10)
				}

				p.Hex32(uint32(int64(off)*8 + bitPos))
				_, _ = io.WriteString(out, "  "+strings.Join(fields, " "))
				p.Newline()
			}

			return p.Err()
		},
	}

	flags := cmd.Flags()
	src.addFlags(flags)
	flags.IntSliceVar(&widths, "widths", []int{8}, "field widths in bits, comma separated")
	flags.StringVar(&offset, "offset", "0", "start byte offset")
	flags.IntVarP(&count, "count", "n", 1, "number of records")

	return cmd
}
