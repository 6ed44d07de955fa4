// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package script loads chain inputs from disk and replays transaction
// scripts against a VM.
package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/luxfi/reflectvm"
)

var errEmptyBlock = errors.New("empty block")

// LoadConfig reads the VM config at path through viper and re-encodes it as
// JSON. The format follows the file extension. An empty path yields nil,
// which selects the defaults.
func LoadConfig(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return json.Marshal(v.AllSettings())
}

// LoadGenesis reads and verifies the genesis at path.
func LoadGenesis(path string) (*reflectvm.Genesis, []byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := reflectvm.ParseGenesis(b)
	if err != nil {
		return nil, nil, err
	}
	return g, b, nil
}

// LoadBlocks reads a JSON array of blocks, each an array of transactions.
func LoadBlocks(path string) ([][][]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var blocks [][]json.RawMessage
	if err := json.Unmarshal(b, &blocks); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	out := make([][][]byte, len(blocks))
	for i, block := range blocks {
		if len(block) == 0 {
			return nil, fmt.Errorf("%w at index %d", errEmptyBlock, i)
		}
		txs := make([][]byte, len(block))
		for j, tx := range block {
			txs[j] = tx
		}
		out[i] = txs
	}
	return out, nil
}

// Replay processes blocks on top of the VM's last block, spacing block
// timestamps by interval. f receives every block result.
func Replay(
	ctx context.Context,
	vm *reflectvm.VM,
	blocks [][][]byte,
	interval time.Duration,
	f func(*reflectvm.BlockResult) error,
) error {
	height := vm.GetBlockHeight()
	timestamp := vm.GetLastBlockTime()
	for _, txs := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		height++
		timestamp = timestamp.Add(interval)
		result, err := vm.ProcessBlock(ctx, height, timestamp, txs)
		if err != nil {
			return err
		}
		if err := f(result); err != nil {
			return err
		}
	}
	return nil
}
