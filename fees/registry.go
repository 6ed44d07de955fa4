// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fees implements the append-only registry of fee tiers.
package fees

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/addr"
)

// DefaultTierIndex is the tier applied when neither party is whitelisted.
const DefaultTierIndex = 0

var (
	ErrInvalidTierIndex = errors.New("invalid tier index")
	ErrFeeLimitExceeded = errors.New("fees exceeded max limitation")
	ErrInvalidComponent = errors.New("invalid fee component")
	ErrInvalidRole      = errors.New("invalid payout role")
)

// DefaultTiers returns the tiers the ledger is created with.
func DefaultTiers() []Tier {
	return []Tier{
		{LiquidityFee: 500, TaxFee: 500},
		{EcoSystemFee: 50, LiquidityFee: 50, TaxFee: 100},
		{EcoSystemFee: 50, LiquidityFee: 50, TaxFee: 100, OwnerFee: 100},
		{EcoSystemFee: 100, LiquidityFee: 125, TaxFee: 125, OwnerFee: 150},
	}
}

// Registry is the ordered list of fee tiers. Tiers are appended and updated
// in place, never removed or reordered. Authorization is enforced by the
// caller; the registry only validates domain constraints.
type Registry struct {
	tiers []Tier
}

// NewRegistry returns a registry holding the provided tiers. Every tier must
// satisfy the MaxFee invariant and at least the default tier must exist.
func NewRegistry(tiers []Tier) (*Registry, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: registry requires a default tier", ErrInvalidTierIndex)
	}
	r := &Registry{tiers: make([]Tier, 0, len(tiers))}
	for i, t := range tiers {
		if err := t.Verify(); err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		r.tiers = append(r.tiers, t)
	}
	return r, nil
}

// Len returns the number of tiers.
func (r *Registry) Len() int {
	return len(r.tiers)
}

// CheckIndex returns ErrInvalidTierIndex if i does not name a tier.
func (r *Registry) CheckIndex(i int) error {
	if i < 0 || i >= len(r.tiers) {
		return fmt.Errorf("%w: %d (tiers: %d)", ErrInvalidTierIndex, i, len(r.tiers))
	}
	return nil
}

// Tier returns a copy of tier i.
func (r *Registry) Tier(i int) (Tier, error) {
	if err := r.CheckIndex(i); err != nil {
		return Tier{}, err
	}
	return r.tiers[i], nil
}

// Default returns tier 0.
func (r *Registry) Default() Tier {
	return r.tiers[DefaultTierIndex]
}

// Tiers returns a copy of every tier in index order.
func (r *Registry) Tiers() []Tier {
	out := make([]Tier, len(r.tiers))
	copy(out, r.tiers)
	return out
}

// AddTier appends a tier and returns its index.
func (r *Registry) AddTier(t Tier) (int, error) {
	if err := t.Verify(); err != nil {
		return 0, err
	}
	r.tiers = append(r.tiers, t)
	return len(r.tiers) - 1, nil
}

// SetFee replaces one component of tier i. The limit is checked against the
// tier's current other four components.
func (r *Registry) SetFee(i int, c Component, v uint16) error {
	if err := r.CheckIndex(i); err != nil {
		return err
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidComponent, c)
	}
	updated := r.tiers[i].WithFee(c, v)
	if err := updated.Verify(); err != nil {
		return fmt.Errorf("tier %d %s fee: %w", i, c, err)
	}
	r.tiers[i] = updated
	return nil
}

// SetPayout replaces one payout address of tier i.
func (r *Registry) SetPayout(i int, role Role, a ids.ShortID) error {
	if err := r.CheckIndex(i); err != nil {
		return err
	}
	if err := addr.Verify(a); err != nil {
		return err
	}
	switch role {
	case EcoSystemPayout:
		r.tiers[i].EcoSystem = a
	case OwnerPayout:
		r.tiers[i].Owner = a
	default:
		return fmt.Errorf("%w: %d", ErrInvalidRole, role)
	}
	return nil
}

// Reset rewrites the leading tiers with the defaults. Tiers appended beyond
// the default set are kept so that whitelist assignments stay valid.
func (r *Registry) Reset() {
	r.ResetTo(DefaultTiers())
}

// ResetTo rewrites the leading tiers with tiers, keeping any beyond them.
func (r *Registry) ResetTo(tiers []Tier) {
	for i, t := range tiers {
		if i < len(r.tiers) {
			r.tiers[i] = t
			continue
		}
		r.tiers = append(r.tiers, t)
	}
}
