// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// Kind is the balance representation of an account.
type Kind uint8

const (
	// Included accounts hold a scaled balance whose real value is derived
	// from the current rate, so they accrue reward.
	Included Kind = iota
	// Excluded accounts hold a literal real balance frozen against rate
	// changes.
	Excluded
)

func (k Kind) String() string {
	switch k {
	case Included:
		return "included"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Account is the balance record of one address. Exactly one of Scaled and
// Real is canonical, selected by Kind; the other is always zero.
type Account struct {
	Address ids.ShortID  `json:"address"`
	Kind    Kind         `json:"kind"`
	Scaled  *uint256.Int `json:"scaled"`
	Real    *uint256.Int `json:"real"`
}

func newAccount(a ids.ShortID) *Account {
	return &Account{
		Address: a,
		Kind:    Included,
		Scaled:  new(uint256.Int),
		Real:    new(uint256.Int),
	}
}

func (a *Account) clone() *Account {
	return &Account{
		Address: a.Address,
		Kind:    a.Kind,
		Scaled:  new(uint256.Int).Set(a.Scaled),
		Real:    new(uint256.Int).Set(a.Real),
	}
}

// IsEmpty reports whether the account holds nothing in either unit.
func (a *Account) IsEmpty() bool {
	return a.Scaled.IsZero() && a.Real.IsZero()
}

// Amount is one value expressed in both units at a single rate. The balance
// engine applies whichever half matches the target account's Kind.
type Amount struct {
	Real   *uint256.Int
	Scaled *uint256.Int
}

// Zero returns a zero amount.
func Zero() Amount {
	return Amount{Real: new(uint256.Int), Scaled: new(uint256.Int)}
}

// IsZero reports whether both halves are zero.
func (a Amount) IsZero() bool {
	return a.Real.IsZero() && a.Scaled.IsZero()
}
