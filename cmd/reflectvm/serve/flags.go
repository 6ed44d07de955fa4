// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"errors"

	"github.com/spf13/pflag"
)

const (
	GenesisKey  = "genesis"
	ConfigKey   = "config"
	BlocksKey   = "blocks"
	HTTPHostKey = "http-host"
	HTTPPortKey = "http-port"
)

var errMissingGenesis = errors.New("--genesis is required")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(GenesisKey, "", "Genesis file (required)")
	flags.String(ConfigKey, "", "VM config file")
	flags.String(BlocksKey, "", "Transaction script replayed before serving")
	flags.String(HTTPHostKey, "127.0.0.1", "Address of the HTTP server")
	flags.Uint16(HTTPPortKey, 9650, "Port of the HTTP server")
}

type Config struct {
	GenesisPath string
	ConfigPath  string
	BlocksPath  string
	HTTPHost    string
	HTTPPort    uint16
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
	host, err := flags.GetString(HTTPHostKey)
	if err != nil {
		return nil, err
	}
	port, err := flags.GetUint16(HTTPPortKey)
	if err != nil {
		return nil, err
	}
	return &Config{
		GenesisPath: genesisPath,
		ConfigPath:  configPath,
		BlocksPath:  blocksPath,
		HTTPHost:    host,
		HTTPPort:    port,
	}, nil
}
