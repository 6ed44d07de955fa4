// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

const (
	// Denominator is the basis-point denominator of every fee rate.
	Denominator = 10_000
	// MaxFee is the ceiling on the sum of a tier's five rates.
	MaxFee = 1_000
)

var denominator = uint256.NewInt(Denominator)

// Component identifies one of the five fee rates of a tier.
type Component uint8

const (
	EcoSystem Component = iota
	Liquidity
	Tax
	Owner
	Burn

	numComponents = 5
)

// Components lists every fee component in routing order.
var Components = [numComponents]Component{EcoSystem, Liquidity, Tax, Owner, Burn}

func (c Component) String() string {
	switch c {
	case EcoSystem:
		return "ecosystem"
	case Liquidity:
		return "liquidity"
	case Tax:
		return "tax"
	case Owner:
		return "owner"
	case Burn:
		return "burn"
	default:
		return "unknown"
	}
}

// Valid reports whether c names a known component.
func (c Component) Valid() bool {
	return c < numComponents
}

// Role identifies one of the two payout addresses of a tier.
type Role uint8

const (
	EcoSystemPayout Role = iota
	OwnerPayout
)

func (r Role) String() string {
	switch r {
	case EcoSystemPayout:
		return "ecosystem"
	case OwnerPayout:
		return "owner"
	default:
		return "unknown"
	}
}

// Tier is a bundle of five fee rates, in basis points, plus the addresses
// that receive the ecosystem and owner shares.
type Tier struct {
	EcoSystemFee uint16 `json:"ecoSystemFee"`
	LiquidityFee uint16 `json:"liquidityFee"`
	TaxFee       uint16 `json:"taxFee"`
	OwnerFee     uint16 `json:"ownerFee"`
	BurnFee      uint16 `json:"burnFee"`

	EcoSystem ids.ShortID `json:"ecoSystem"`
	Owner     ids.ShortID `json:"owner"`
}

// Fee returns the rate of component c.
func (t Tier) Fee(c Component) uint16 {
	switch c {
	case EcoSystem:
		return t.EcoSystemFee
	case Liquidity:
		return t.LiquidityFee
	case Tax:
		return t.TaxFee
	case Owner:
		return t.OwnerFee
	case Burn:
		return t.BurnFee
	default:
		return 0
	}
}

// WithFee returns a copy of t with component c set to v.
func (t Tier) WithFee(c Component, v uint16) Tier {
	switch c {
	case EcoSystem:
		t.EcoSystemFee = v
	case Liquidity:
		t.LiquidityFee = v
	case Tax:
		t.TaxFee = v
	case Owner:
		t.OwnerFee = v
	case Burn:
		t.BurnFee = v
	}
	return t
}

// Payout returns the payout address of role r.
func (t Tier) Payout(r Role) ids.ShortID {
	if r == OwnerPayout {
		return t.Owner
	}
	return t.EcoSystem
}

// Sum returns the sum of the five rates.
func (t Tier) Sum() uint64 {
	var sum uint64
	for _, c := range Components {
		sum += uint64(t.Fee(c))
	}
	return sum
}

// Verify checks the tier against MaxFee.
func (t Tier) Verify() error {
	if sum := t.Sum(); sum > MaxFee {
		return fmt.Errorf("%w: %d > %d", ErrFeeLimitExceeded, sum, MaxFee)
	}
	return nil
}

// Breakdown is the split of one transfer amount into its fee components and
// the remainder delivered to the recipient. All values are real units.
type Breakdown struct {
	Amount         *uint256.Int
	Fees           [numComponents]*uint256.Int
	TransferAmount *uint256.Int
}

// Fee returns the amount charged for component c.
func (b *Breakdown) Fee(c Component) *uint256.Int {
	return b.Fees[c]
}

// Total returns the sum of every fee component.
func (b *Breakdown) Total() *uint256.Int {
	total := new(uint256.Int)
	for _, fee := range b.Fees {
		total.Add(total, fee)
	}
	return total
}

// Split divides amount according to the tier's rates. Every component is
// amount*rate/Denominator truncated, so rounding always favors the sender.
func (t Tier) Split(amount *uint256.Int) *Breakdown {
	b := &Breakdown{Amount: new(uint256.Int).Set(amount)}
	total := new(uint256.Int)
	for _, c := range Components {
		fee := new(uint256.Int)
		if rate := t.Fee(c); rate != 0 {
			// rate <= MaxFee < Denominator so the quotient never exceeds amount.
			fee.MulDivOverflow(amount, uint256.NewInt(uint64(rate)), denominator)
		}
		b.Fees[c] = fee
		total.Add(total, fee)
	}
	b.TransferAmount = new(uint256.Int).Sub(amount, total)
	return b
}

// NoFees returns the breakdown of a fee-exempt transfer.
func NoFees(amount *uint256.Int) *Breakdown {
	return Tier{}.Split(amount)
}
