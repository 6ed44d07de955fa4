// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulate

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"

	"github.com/luxfi/reflectvm"
	"github.com/luxfi/reflectvm/cmd/reflectvm/script"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "simulate",
		Short: "Replays a transaction script against an in-memory chain",
		RunE:  simulateFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func simulateFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	_, genesisBytes, err := script.LoadGenesis(config.GenesisPath)
	if err != nil {
		return err
	}
	configBytes, err := script.LoadConfig(config.ConfigPath)
	if err != nil {
		return err
	}

	ctx := c.Context()
	vm := reflectvm.New(log.NewLogger("reflectvm"), metric.NewRegistry())
	if err := vm.Initialize(ctx, memdb.New(), genesisBytes, configBytes); err != nil {
		return err
	}
	defer vm.Shutdown(ctx)

	if config.BlocksPath == "" {
		return nil
	}
	blocks, err := script.LoadBlocks(config.BlocksPath)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return script.Replay(ctx, vm, blocks, vm.Config.BlockInterval, func(result *reflectvm.BlockResult) error {
		if config.Verbose {
			return encoder.Encode(result)
		}
		_, err := fmt.Fprintf(out, "block %d: %d accepted, %d failed\n", result.Height, result.Accepted, result.Failed)
		for i, tx := range result.Results {
			if tx.Error != "" {
				fmt.Fprintf(out, "  tx %d (%s): %s\n", i, tx.Kind, tx.Error)
			}
		}
		return err
	})
}
