// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulate

import (
	"errors"

	"github.com/spf13/pflag"
)

const (
	GenesisKey = "genesis"
	ConfigKey  = "config"
	BlocksKey  = "blocks"
	VerboseKey = "verbose"
)

var errMissingGenesis = errors.New("--genesis is required")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(GenesisKey, "", "Genesis file (required)")
	flags.String(ConfigKey, "", "VM config file")
	flags.String(BlocksKey, "", "JSON file holding an array of blocks, each an array of transactions")
	flags.Bool(VerboseKey, false, "Print full receipts")
}

type Config struct {
	GenesisPath string
	ConfigPath  string
	BlocksPath  string
	Verbose     bool
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	genesisPath, err := flags.GetString(GenesisKey)
	if err != nil {
		return nil, err
	}
	if genesisPath == "" {
		return nil, errMissingGenesis
	}
	configPath, err := flags.GetString(ConfigKey)
	if err != nil {
		return nil, err
	}
	blocksPath, err := flags.GetString(BlocksKey)
	if err != nil {
		return nil, err
	}
	verbose, err := flags.GetBool(VerboseKey)
	if err != nil {
		return nil, err
	}
	return &Config{
		GenesisPath: genesisPath,
		ConfigPath:  configPath,
		BlocksPath:  blocksPath,
		Verbose:     verbose,
	}, nil
}
