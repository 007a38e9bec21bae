package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arloliu/uio/content"
	"github.com/arloliu/uio/endian"
)

const envPrefix = "UIODUMP"

// settings are the global options shared by every subcommand. They come
// from flags, UIODUMP_* environment variables or a config file, in that
// order of precedence.
type settings struct {
	v      *viper.Viper
	logger zerolog.Logger
	opts   content.Option
}

func newRootCmd() *cobra.Command {
	s := &settings{v: viper.New()}

	root := &cobra.Command{
		Use:           "uiodump",
		Short:         "Inspect files through paged random-access windows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.String("page-size", "4KiB", "page cache page size")
	flags.Int("max-pages", content.DefaultMaxPages, "maximum resident pages")
	flags.String("order", "be", "default byte order (be, le, native)")

	s.v.SetEnvPrefix(envPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	s.v.AutomaticEnv()
	_ = s.v.BindPFlags(flags)

	root.AddCommand(
		newDumpCmd(s),
		newDecodeCmd(s),
		newSumCmd(s),
		newBitsCmd(s),
	)

	return root
}

func (s *settings) load(cmd *cobra.Command) error {
	if file := s.v.GetString("config"); file != "" {
		s.v.SetConfigFile(file)
		if err := s.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(s.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	s.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Str("cmd", cmd.Name()).Logger()

	pageSize, err := humanize.ParseBytes(s.v.GetString("page-size"))
	if err != nil {
		return fmt.Errorf("parse page size: %w", err)
	}

	order, err := endian.Parse(s.v.GetString("order"))
	if err != nil {
		return err
	}

	s.opts = content.Options(
		content.WithLogger(s.logger),
		content.WithPageSize(int(pageSize)),
		content.WithMaxPages(s.v.GetInt("max-pages")),
		content.WithByteOrder(order),
	)

	s.logger.Debug().
		Str("page_size", humanize.IBytes(pageSize)).
		Int("max_pages", s.v.GetInt("max-pages")).
		Stringer("order", order).
		Msg("settings loaded")

	return nil
}

// source selects how a file is opened.
type source struct {
	mmap  bool
	spans []string
}

func (src *source) addFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&src.mmap, "mmap", false, "memory-map the file (read-only)")
	flags.StringArrayVar(&src.spans, "span", nil, "restrict to OFFSET:LENGTH of the file, repeatable, e.g. 4KiB:512")
}

// openContent opens name as a Content according to src.
func (s *settings) openContent(name string, src *source) (content.Content, error) {
	if len(src.spans) > 0 {
		if src.mmap {
			return nil, errors.New("--mmap and --span are mutually exclusive")
		}
		spans, err := parseSpans(src.spans)
		if err != nil {
			return nil, err
		}

		return content.OpenSpannedFile(name, spans, s.opts)
	}

	if src.mmap {
		return content.OpenMappedFile(name, s.opts)
	}

	return content.OpenFile(name, false, s.opts)
}

// openIO opens name as a paged window.
func (s *settings) openIO(name string, src *source) (*content.IO, error) {
	c, err := s.openContent(name, src)
	if err != nil {
		return nil, err
	}

	w, err := content.NewIO(c, s.opts)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return w, nil
}

func parseSpans(args []string) ([]content.Span, error) {
	spans := make([]content.Span, 0, len(args))
	for _, arg := range args {
		off, length, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("span %q: want OFFSET:LENGTH", arg)
		}
		o, err := humanize.ParseBytes(off)
		if err != nil {
			return nil, fmt.Errorf("span %q: %w", arg, err)
		}
		l, err := humanize.ParseBytes(length)
		if err != nil {
			return nil, fmt.Errorf("span %q: %w", arg, err)
		}
		spans = append(spans, content.Span{Offset: int64(o), Length: int64(l)})
	}

	return spans, nil
}

func closeIO(logger zerolog.Logger, w *content.IO) {
	logger.Debug().Ints("resident", w.Cache().Resident()).Msg("closing")
	_ = w.Close()
}
