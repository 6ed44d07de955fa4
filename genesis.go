// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflectvm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/addr"
	"github.com/luxfi/reflectvm/token"
)

var errInvalidGenesis = errors.New("invalid genesis")

// Allocation funds an address at genesis with whole tokens taken from the
// owner's initial balance.
type Allocation struct {
	Address ids.ShortID `json:"address"`
	Balance uint64      `json:"balance"`
}

// SeedLiquidity is deposited by the owner into the pool at genesis.
type SeedLiquidity struct {
	// Tokens is the token side in whole tokens.
	Tokens uint64 `json:"tokens"`
	// Native is the native side in base units.
	Native *uint256.Int `json:"native"`
}

// Genesis describes the initial state of the chain.
type Genesis struct {
	Timestamp int64 `json:"timestamp"`

	token.Params

	// Router and WrappedNative identify the built-in pool. The pool is
	// disabled when Router is empty.
	Router        ids.ShortID `json:"router"`
	WrappedNative ids.ShortID `json:"wrappedNative"`

	Allocations []Allocation   `json:"allocations"`
	Liquidity   *SeedLiquidity `json:"liquidity,omitempty"`
}

// HasPool reports whether the genesis configures the built-in pool.
func (g *Genesis) HasPool() bool {
	return !addr.IsZero(g.Router)
}

// Verify checks the addresses the chain cannot run without.
func (g *Genesis) Verify() error {
	required := []struct {
		name string
		addr ids.ShortID
	}{
		{"owner", g.Owner},
		{"self", g.Self},
		{"pair", g.Pair},
	}
	for _, r := range required {
		if addr.IsZero(r.addr) {
			return fmt.Errorf("%w: %s: %w", errInvalidGenesis, r.name, addr.ErrZeroAddress)
		}
	}
	if g.HasPool() && addr.IsZero(g.WrappedNative) {
		return fmt.Errorf("%w: wrappedNative: %w", errInvalidGenesis, addr.ErrZeroAddress)
	}
	if g.Liquidity != nil && !g.HasPool() {
		return fmt.Errorf("%w: liquidity requires a router", errInvalidGenesis)
	}
	for _, a := range g.Allocations {
		if addr.IsZero(a.Address) {
			return fmt.Errorf("%w: allocation: %w", errInvalidGenesis, addr.ErrZeroAddress)
		}
	}
	return nil
}

// Bytes returns the JSON encoding of g.
func (g *Genesis) Bytes() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// ParseGenesis decodes and verifies genesis bytes.
func ParseGenesis(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(b, g); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidGenesis, err)
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}
