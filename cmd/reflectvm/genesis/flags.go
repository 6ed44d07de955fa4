// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/luxfi/reflectvm"
)

const (
	TimestampKey     = "timestamp"
	OwnerKey         = "owner"
	SelfKey          = "self"
	PairKey          = "pair"
	TreasuryKey      = "treasury"
	RouterKey        = "router"
	WrappedNativeKey = "wrapped-native"
	AllocationsKey   = "allocations"
	SeedTokensKey    = "seed-tokens"
	SeedNativeKey    = "seed-native"
	OutputKey        = "output"
)

var errInvalidAllocation = errors.New("invalid allocation")

func AddFlags(flags *pflag.FlagSet) {
	flags.Int64(TimestampKey, time.Now().Unix(), "Genesis timestamp in unix seconds")
	flags.String(OwnerKey, "", "Address receiving the supply and administering the token (required)")
	flags.String(SelfKey, "", "Token account collecting liquidity fees (required)")
	flags.String(PairKey, "", "Pool pair address (required)")
	flags.String(TreasuryKey, "", "Recipient of pool shares, defaults to the owner")
	flags.String(RouterKey, "", "Router address; the built-in pool is disabled when empty")
	flags.String(WrappedNativeKey, "", "Wrapped native currency address, required with a router")
	flags.StringSlice(AllocationsKey, nil, "Genesis allocations as address:tokens")
	flags.Uint64(SeedTokensKey, 0, "Whole tokens the owner deposits into the pool")
	flags.String(SeedNativeKey, "", "Native base units the owner deposits into the pool")
	flags.String(OutputKey, "", "File to write the genesis to, stdout when empty")
}

type Config struct {
	Genesis *reflectvm.Genesis
	Output  string
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	g := &reflectvm.Genesis{}
	var err error
	g.Timestamp, err = flags.GetInt64(TimestampKey)
	if err != nil {
		return nil, err
	}

	addresses := []struct {
		key string
		dst *ids.ShortID
	}{
		{OwnerKey, &g.Owner},
		{SelfKey, &g.Self},
		{PairKey, &g.Pair},
		{TreasuryKey, &g.Treasury},
		{RouterKey, &g.Router},
		{WrappedNativeKey, &g.WrappedNative},
	}
	for _, a := range addresses {
		if *a.dst, err = getAddress(flags, a.key); err != nil {
			return nil, err
		}
	}

	allocations, err := flags.GetStringSlice(AllocationsKey)
	if err != nil {
		return nil, err
	}
	for _, s := range allocations {
		allocation, err := parseAllocation(s)
		if err != nil {
			return nil, err
		}
		g.Allocations = append(g.Allocations, allocation)
	}

	seedTokens, err := flags.GetUint64(SeedTokensKey)
	if err != nil {
		return nil, err
	}
	seedNative, err := flags.GetString(SeedNativeKey)
	if err != nil {
		return nil, err
	}
	if seedTokens != 0 || seedNative != "" {
		native, err := uint256.FromDecimal(seedNative)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", SeedNativeKey, err)
		}
		g.Liquidity = &reflectvm.SeedLiquidity{
			Tokens: seedTokens,
			Native: native,
		}
	}

	output, err := flags.GetString(OutputKey)
	if err != nil {
		return nil, err
	}
	return &Config{
		Genesis: g,
		Output:  output,
	}, g.Verify()
}

func getAddress(flags *pflag.FlagSet, key string) (ids.ShortID, error) {
	s, err := flags.GetString(key)
	if err != nil || s == "" {
		return ids.ShortEmpty, err
	}
	a, err := ids.ShortFromString(s)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("invalid %s: %w", key, err)
	}
	return a, nil
}

func parseAllocation(s string) (reflectvm.Allocation, error) {
	address, balance, ok := strings.Cut(s, ":")
	if !ok {
		return reflectvm.Allocation{}, fmt.Errorf("%w: %q", errInvalidAllocation, s)
	}
	a, err := ids.ShortFromString(address)
	if err != nil {
		return reflectvm.Allocation{}, fmt.Errorf("%w: %w", errInvalidAllocation, err)
	}
	tokens, err := strconv.ParseUint(balance, 10, 64)
	if err != nil {
		return reflectvm.Allocation{}, fmt.Errorf("%w: %w", errInvalidAllocation, err)
	}
	return reflectvm.Allocation{Address: a, Balance: tokens}, nil
}
