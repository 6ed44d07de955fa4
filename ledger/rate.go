// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Rate is the scaled-per-real conversion ratio Num/Den. It is kept as a
// fraction so conversions truncate exactly once.
type Rate struct {
	Num *uint256.Int `json:"num"`
	Den *uint256.Int `json:"den"`
}

// ToScaled converts real units into scaled units, truncating.
func (r Rate) ToScaled(real *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulDivOverflow(real, r.Num, r.Den)
	if overflow {
		return nil, fmt.Errorf("%w: %s real units at rate %s", ErrOverflow, real.Dec(), r)
	}
	return z, nil
}

// ToReal converts scaled units into real units, truncating.
func (r Rate) ToReal(scaled *uint256.Int) *uint256.Int {
	// Num >= Den for every reachable rate so the quotient fits.
	z, _ := new(uint256.Int).MulDivOverflow(scaled, r.Den, r.Num)
	return z
}

// Amount expresses real units in both units at this rate.
func (r Rate) Amount(real *uint256.Int) (Amount, error) {
	scaled, err := r.ToScaled(real)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Real: new(uint256.Int).Set(real), Scaled: scaled}, nil
}

// Cmp compares r with o, returning -1, 0 or +1.
func (r Rate) Cmp(o Rate) int {
	// r.Num/r.Den vs o.Num/o.Den without division.
	lLow, lHigh := mul512(r.Num, o.Den)
	rLow, rHigh := mul512(o.Num, r.Den)
	if c := lHigh.Cmp(rHigh); c != 0 {
		return c
	}
	return lLow.Cmp(rLow)
}

func (r Rate) String() string {
	return r.Num.Dec() + "/" + r.Den.Dec()
}

// mul512 returns the low and high 256-bit words of x*y.
func mul512(x, y *uint256.Int) (*uint256.Int, *uint256.Int) {
	low, _ := new(uint256.Int).MulOverflow(x, y)
	return low, mulHigh(x, y)
}

// mulHigh returns floor(x*y / 2^256).
func mulHigh(x, y *uint256.Int) *uint256.Int {
	// Split into 128-bit halves: x = xh*2^128 + xl, y = yh*2^128 + yl.
	mask := new(uint256.Int).SetAllOne()
	mask.Rsh(mask, 128)
	xh := new(uint256.Int).Rsh(x, 128)
	xl := new(uint256.Int).And(x, mask)
	yh := new(uint256.Int).Rsh(y, 128)
	yl := new(uint256.Int).And(y, mask)

	hh := new(uint256.Int).Mul(xh, yh)
	hl := new(uint256.Int).Mul(xh, yl)
	lh := new(uint256.Int).Mul(xl, yh)
	ll := new(uint256.Int).Mul(xl, yl)

	// mid = hl + lh + (ll >> 128), may carry into bit 256.
	mid, carry1 := new(uint256.Int).AddOverflow(hl, lh)
	mid, carry2 := mid.AddOverflow(mid, new(uint256.Int).Rsh(ll, 128))

	high := hh.Add(hh, new(uint256.Int).Rsh(mid, 128))
	if carry1 {
		high.Add(high, new(uint256.Int).Lsh(uint256.NewInt(1), 128))
	}
	if carry2 {
		high.Add(high, new(uint256.Int).Lsh(uint256.NewInt(1), 128))
	}
	return high
}
