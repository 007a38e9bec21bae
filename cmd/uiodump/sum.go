package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/arloliu/uio/content"
)

func newSumCmd(s *settings) *cobra.Command {
	var src source

	cmd := &cobra.Command{
		Use:   "sum FILE...",
		Short: "Print the xxHash64 and size of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := s.sum(cmd, name, &src); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}

			return nil
		},
	}
	src.addFlags(cmd.Flags())

	return cmd
}

func (s *settings) sum(cmd *cobra.Command, name string, src *source) error {
	c, err := s.openContent(name, src)
	if err != nil {
		return err
	}
	defer c.Close()

	size, err := c.Length()
	if err != nil {
		return err
	}
	h, err := content.Sum64(c)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%016x  %s  %s\n", h, humanize.IBytes(uint64(size)), name)

	return err
}
