// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"os"

	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "genesis",
		Short: "Writes a genesis for a new reflection token",
		RunE:  genesisFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func genesisFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	b, err := config.Genesis.Bytes()
	if err != nil {
		return err
	}
	if config.Output == "" {
		_, err = c.OutOrStdout().Write(append(b, '\n'))
		return err
	}
	return os.WriteFile(config.Output, b, 0o644)
}
