// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// Settings are the limits and toggles consulted on every transfer.
type Settings struct {
	// Self is the ledger's own holding account, where liquidity fees
	// accumulate.
	Self ids.ShortID `json:"self"`
	// Pair is the pool-pair address. Transfers it originates never trigger
	// liquidity conversion.
	Pair ids.ShortID `json:"pair"`
	// MaxTransferAmount caps transfers between non fee-excluded parties.
	MaxTransferAmount *uint256.Int `json:"maxTransferAmount"`
	// SwapAndEvolveEnabled toggles liquidity automation.
	SwapAndEvolveEnabled bool `json:"swapAndEvolveEnabled"`
	// AccumulationThreshold is the balance of Self that triggers conversion.
	AccumulationThreshold *uint256.Int `json:"accumulationThreshold"`
	// BlockBlacklisted rejects transfers touching a blacklisted account.
	BlockBlacklisted bool `json:"blockBlacklisted"`
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := *s
	c.MaxTransferAmount = new(uint256.Int).Set(s.MaxTransferAmount)
	c.AccumulationThreshold = new(uint256.Int).Set(s.AccumulationThreshold)
	return &c
}
