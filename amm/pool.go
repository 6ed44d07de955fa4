// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// Pool is a constant-product token/native reserve pair.
type Pool struct {
	ReserveToken  *uint256.Int `json:"reserveToken"`
	ReserveNative *uint256.Int `json:"reserveNative"`
	TotalSupply   *uint256.Int `json:"totalSupply"` // Total LP shares
	FeeBps        uint16       `json:"feeBps"`      // Trading fee in basis points

	// Statistics
	VolumeToken *uint256.Int `json:"volumeToken"`
	TxCount     uint64       `json:"txCount"`
}

func newPool(feeBps uint16) *Pool {
	return &Pool{
		ReserveToken:  new(uint256.Int),
		ReserveNative: new(uint256.Int),
		TotalSupply:   new(uint256.Int),
		FeeBps:        feeBps,
		VolumeToken:   new(uint256.Int),
	}
}

func (p *Pool) clone() *Pool {
	return &Pool{
		ReserveToken:  new(uint256.Int).Set(p.ReserveToken),
		ReserveNative: new(uint256.Int).Set(p.ReserveNative),
		TotalSupply:   new(uint256.Int).Set(p.TotalSupply),
		FeeBps:        p.FeeBps,
		VolumeToken:   new(uint256.Int).Set(p.VolumeToken),
		TxCount:       p.TxCount,
	}
}

// Position is the LP share balance of one holder.
type Position struct {
	Owner     ids.ShortID  `json:"owner"`
	Liquidity *uint256.Int `json:"liquidity"`
}

// getAmountOut implements the x * y = k formula with the pool fee taken from
// the input:
// amountOut = (reserveOut * amountInWithFee) / (reserveIn * 10000 + amountInWithFee)
func getAmountOut(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint16) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, ErrInvalidAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	amountInWithFee := new(uint256.Int).Mul(amountIn, uint256.NewInt(uint64(10_000-feeBps)))
	numerator := new(uint256.Int).Mul(reserveOut, amountInWithFee)
	denominator := new(uint256.Int).Mul(reserveIn, uint256.NewInt(10_000))
	denominator.Add(denominator, amountInWithFee)
	amountOut := new(uint256.Int).Div(numerator, denominator)
	if amountOut.IsZero() || !amountOut.Lt(reserveOut) {
		return nil, ErrInsufficientLiquidity
	}
	return amountOut, nil
}

// quote returns the amount of the other asset matching amountA at the
// current reserve ratio.
func quote(amountA, reserveA, reserveB *uint256.Int) *uint256.Int {
	z, _ := new(uint256.Int).MulDivOverflow(amountA, reserveB, reserveA)
	return z
}

// mintLiquidity returns the shares minted for a deposit. The first deposit
// mints the geometric mean; later ones the smaller of the two ratios.
func (p *Pool) mintLiquidity(amountToken, amountNative *uint256.Int) *uint256.Int {
	if p.TotalSupply.IsZero() {
		product := new(uint256.Int).Mul(amountToken, amountNative)
		return product.Sqrt(product)
	}
	liquidityToken, _ := new(uint256.Int).MulDivOverflow(amountToken, p.TotalSupply, p.ReserveToken)
	liquidityNative, _ := new(uint256.Int).MulDivOverflow(amountNative, p.TotalSupply, p.ReserveNative)
	if liquidityToken.Lt(liquidityNative) {
		return liquidityToken
	}
	return liquidityNative
}
