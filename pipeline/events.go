// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/ledger"
)

// NoTier is the tier index recorded for fee-exempt transfers.
const NoTier = -1

// TransferEvent is emitted once per successful transfer with the amount the
// recipient received.
type TransferEvent struct {
	From   ids.ShortID  `json:"from"`
	To     ids.ShortID  `json:"to"`
	Amount *uint256.Int `json:"amount"`
}

// FeeEvent is emitted for each non-zero fee component routed. To is empty for
// the tax, which is credited to no one.
type FeeEvent struct {
	Component fees.Component `json:"component"`
	From      ids.ShortID    `json:"from"`
	To        ids.ShortID    `json:"to"`
	Amount    *uint256.Int   `json:"amount"`
}

// Observer receives the events of committed transfers.
type Observer interface {
	Transferred(TransferEvent)
	FeeRouted(FeeEvent)
}

// Receipt describes a completed transfer.
type Receipt struct {
	From   ids.ShortID  `json:"from"`
	To     ids.ShortID  `json:"to"`
	Amount *uint256.Int `json:"amount"`
	// Tier is the resolved tier index, or NoTier when fees were skipped.
	Tier           int             `json:"tier"`
	FeeExempt      bool            `json:"feeExempt"`
	Reentrant      bool            `json:"reentrant"`
	Rate           ledger.Rate     `json:"rate"`
	Fees           *fees.Breakdown `json:"fees"`
	TransferAmount *uint256.Int    `json:"transferAmount"`
	// Converted reports whether liquidity conversion ran.
	Converted bool       `json:"converted"`
	Events    []FeeEvent `json:"events"`
}
