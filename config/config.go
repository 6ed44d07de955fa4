// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for the reflection VM.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/utils/units"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config contains configuration parameters for the reflection VM.
type Config struct {
	// Token metadata
	Name   string `json:"name"`
	Symbol string `json:"symbol"`

	// TotalSupply is the fixed real supply in whole tokens.
	TotalSupply uint64 `json:"totalSupply"`

	// MaxTxBps is the per-transfer cap in basis points of the total supply.
	MaxTxBps uint64 `json:"maxTxBps"`
	// AccumulationThreshold is the liquidity balance, in whole tokens, that
	// triggers conversion.
	AccumulationThreshold uint64 `json:"accumulationThreshold"`
	// SwapAndEvolveEnabled toggles liquidity automation.
	SwapAndEvolveEnabled bool `json:"swapAndEvolveEnabled"`
	// BlockBlacklisted rejects transfers touching blacklisted accounts.
	BlockBlacklisted bool `json:"blockBlacklisted"`

	// Tiers are the initial fee tiers. Index 0 is the default tier.
	Tiers []fees.Tier `json:"tiers"`

	// RouterFeeBps is the trading fee of the built-in pool.
	RouterFeeBps uint16 `json:"routerFeeBps"`

	// Block configuration
	BlockInterval  time.Duration `json:"blockInterval"`
	MaxTxsPerBlock uint32        `json:"maxTxsPerBlock"`
}

// DefaultConfig returns the default configuration for the reflection VM.
func DefaultConfig() Config {
	return Config{
		Name:   "Reflection Token",
		Symbol: "RFT",

		TotalSupply: 1_000_000_000_000, // 1e12 tokens

		MaxTxBps:              50,          // 0.5% of supply
		AccumulationThreshold: 500_000_000, // 5e8 tokens
		SwapAndEvolveEnabled:  true,
		BlockBlacklisted:      false,

		Tiers: fees.DefaultTiers(),

		RouterFeeBps: 30, // 0.3%

		BlockInterval:  time.Second,
		MaxTxsPerBlock: 10_000,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.TotalSupply == 0:
		return fmt.Errorf("%w: totalSupply must be positive", ErrInvalidConfig)
	case c.MaxTxBps > fees.Denominator:
		return fmt.Errorf("%w: maxTxBps %d exceeds %d", ErrInvalidConfig, c.MaxTxBps, fees.Denominator)
	case c.AccumulationThreshold > c.TotalSupply:
		return fmt.Errorf("%w: accumulationThreshold exceeds totalSupply", ErrInvalidConfig)
	case c.RouterFeeBps >= fees.Denominator:
		return fmt.Errorf("%w: routerFeeBps %d", ErrInvalidConfig, c.RouterFeeBps)
	case c.MaxTxsPerBlock == 0:
		return fmt.Errorf("%w: maxTxsPerBlock must be positive", ErrInvalidConfig)
	}
	if _, err := fees.NewRegistry(c.Tiers); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Parse decodes b over the defaults and validates the result. Empty input
// yields the defaults.
func Parse(b []byte) (Config, error) {
	c := DefaultConfig()
	if len(b) > 0 {
		if err := json.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return c, c.Validate()
}

// TotalSupplyUnits returns the total supply in base units.
func (c Config) TotalSupplyUnits() *uint256.Int {
	return units.Tokens(c.TotalSupply)
}

// MaxTransferAmount returns MaxTxBps of the total supply in base units.
func (c Config) MaxTransferAmount() *uint256.Int {
	return MaxTransferAmount(c.TotalSupplyUnits(), c.MaxTxBps)
}

// AccumulationThresholdUnits returns the threshold in base units.
func (c Config) AccumulationThresholdUnits() *uint256.Int {
	return units.Tokens(c.AccumulationThreshold)
}

// MaxTransferAmount returns bps basis points of total.
func MaxTransferAmount(total *uint256.Int, bps uint64) *uint256.Int {
	z, _ := new(uint256.Int).MulDivOverflow(total, uint256.NewInt(bps), uint256.NewInt(fees.Denominator))
	return z
}
