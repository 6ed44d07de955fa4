// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package liquidity

import (
	"context"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// Router is the external AMM collaborator. Both entry points pull the token
// side from the ledger's own account and may call back into the transfer
// pipeline before returning.
type Router interface {
	// Address identifies the router.
	Address() ids.ShortID
	// WrappedNative is the token standing in for the native currency in swap
	// paths.
	WrappedNative() ids.ShortID
	// SwapExactTokensForNative sells amountIn tokens along path and sends the
	// native proceeds to to.
	SwapExactTokensForNative(
		ctx context.Context,
		amountIn *uint256.Int,
		amountOutMin *uint256.Int,
		path []ids.ShortID,
		to ids.ShortID,
		deadline time.Time,
	) (*uint256.Int, error)
	// AddLiquidityNative deposits tokens with nativeValue of native currency
	// and mints pool shares to to.
	AddLiquidityNative(
		ctx context.Context,
		token ids.ShortID,
		amountTokenDesired *uint256.Int,
		amountTokenMin *uint256.Int,
		amountNativeMin *uint256.Int,
		nativeValue *uint256.Int,
		to ids.ShortID,
		deadline time.Time,
	) (*Deposit, error)
}

// Deposit is the outcome of AddLiquidityNative.
type Deposit struct {
	AmountToken  *uint256.Int `json:"amountToken"`
	AmountNative *uint256.Int `json:"amountNative"`
	Liquidity    *uint256.Int `json:"liquidity"`
}
