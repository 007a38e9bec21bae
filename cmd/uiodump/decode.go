package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/arloliu/uio/internal/dump"
	"github.com/arloliu/uio/rio"
)

var decodeTypes = []string{"u8", "i8", "u16", "i16", "char", "u32", "i32", "u64", "i64", "f32", "f64", "bool", "utf", "line"}

func newDecodeCmd(s *settings) *cobra.Command {
	var (
		src    source
		typ    string
		offset string
		count  int
		hex    bool
	)

	cmd := &cobra.Command{
		Use:   "decode FILE",
		Short: "Decode consecutive typed values",
		Long: "Decode consecutive typed values starting at an offset, in the byte order\n" +
			"given by --order. Supported types: " + strings.Join(decodeTypes, ", ") + ".",
		Example: `  uiodump decode data.bin --type u32 --count 4 --order le
  uiodump decode data.bin --type utf --offset 0x10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(decodeTypes, typ) {
				return fmt.Errorf("unknown type %q", typ)
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
			p := dump.NewPrinter(out)
			for i := range count {
				pos, err := w.FilePointer()
				if err != nil {
					return err
				}

				v, err := decodeValue(w, typ)
				if err != nil {
					if errors.Is(err, io.EOF) && i > 0 {
						s.logger.Warn().Int("decoded", i).Msg("end of source")
						break
					}

					return fmt.Errorf("decode %s at %d: %w", typ, pos, err)
				}

				p.Hex32(uint32(pos))
				_, _ = io.WriteString(out, "  ")
				printValue(p, out, v, hex)
				p.Newline()
			}

			return p.Err()
		},
	}

	flags := cmd.Flags()
	src.addFlags(flags)
	flags.StringVarP(&typ, "type", "t", "u8", "value type")
	flags.StringVar(&offset, "offset", "0", "start offset")
	flags.IntVarP(&count, "count", "n", 1, "number of values")
	flags.BoolVar(&hex, "hex", false, "print integers as zero-padded hex")

	return cmd
}

func decodeValue(in rio.Input, typ string) (any, error) {
	switch typ {
	case "u8":
		return in.ReadUint8()
	case "i8":
		return in.ReadInt8()
	case "u16":
		return in.ReadUint16()
	case "i16":
		return in.ReadInt16()
	case "char":
		return in.ReadChar()
	case "u32":
		return in.ReadUint32()
	case "i32":
		return in.ReadInt32()
	case "u64":
		return in.ReadUint64()
	case "i64":
		return in.ReadInt64()
	case "f32":
		return in.ReadFloat32()
	case "f64":
		return in.ReadFloat64()
	case "bool":
		return in.ReadBool()
	case "utf":
		return in.ReadUTF()
	case "line":
		return in.ReadLine()
	}

	return nil, fmt.Errorf("unknown type %q", typ)
}

func printValue(p *dump.Printer, out io.Writer, v any, hex bool) {
	if hex {
		switch x := v.(type) {
		case uint8:
			p.Hex8(x)
			return
		case int8:
			p.Hex8(uint8(x))
			return
		case uint16:
			p.Hex16(x)
			return
		case int16:
			p.Hex16(uint16(x))
			return
		case uint32:
			p.Hex32(x)
			return
		case int32:
			p.Hex32(uint32(x))
			return
		case uint64:
			p.Hex64(x)
			return
		case int64:
			p.Hex64(uint64(x))
			return
		}
	}

	if p.Err() != nil {
		return
	}
	switch x := v.(type) {
	case string:
		_, _ = fmt.Fprintf(out, "%q", x)
	default:
		_, _ = fmt.Fprint(out, x)
	}
}
