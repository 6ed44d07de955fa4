// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package units

import "github.com/holiman/uint256"

// Decimals is the number of decimal places of the real unit.
const Decimals = 9

// Denominations of value
const (
	NanoToken  uint64 = 1                 // Base unit (9 decimals)
	MicroToken uint64 = 1000 * NanoToken  // 0.000001 token
	MilliToken uint64 = 1000 * MicroToken // 0.001 token
	Token      uint64 = 1000 * MilliToken // 1 token = 10^9 base units
	KiloToken  uint64 = 1000 * Token      // 1,000 tokens
	MegaToken  uint64 = 1000 * KiloToken  // 1,000,000 tokens
	GigaToken  uint64 = 1000 * MegaToken  // 1,000,000,000 tokens
)

// Tokens returns n whole tokens expressed in base units. Whole-token supplies
// above ~1.8e10 overflow uint64 once scaled, so the result is a uint256.
func Tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(Token))
}
