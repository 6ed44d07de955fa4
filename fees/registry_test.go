// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/reflectvm/addr"
)

func newDefaultRegistry(t *testing.T) *Registry {
	r, err := NewRegistry(DefaultTiers())
	require.NoError(t, err)
	return r
}

func TestDefaultTiers(t *testing.T) {
	require := require.New(t)

	r := newDefaultRegistry(t)
	require.Equal(4, r.Len())

	expected := []Tier{
		{LiquidityFee: 500, TaxFee: 500},
		{EcoSystemFee: 50, LiquidityFee: 50, TaxFee: 100},
		{EcoSystemFee: 50, LiquidityFee: 50, TaxFee: 100, OwnerFee: 100},
		{EcoSystemFee: 100, LiquidityFee: 125, TaxFee: 125, OwnerFee: 150},
	}
	for i, want := range expected {
		got, err := r.Tier(i)
		require.NoError(err)
		require.Equal(want, got)
		require.Equal(ids.ShortEmpty, got.EcoSystem)
		require.Equal(ids.ShortEmpty, got.Owner)
	}
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	require := require.New(t)

	_, err := NewRegistry(nil)
	require.ErrorIs(err, ErrInvalidTierIndex)

	_, err = NewRegistry([]Tier{{TaxFee: MaxFee + 1}})
	require.ErrorIs(err, ErrFeeLimitExceeded)
}

func TestSetFeeLimit(t *testing.T) {
	for _, c := range Components {
		t.Run(c.String(), func(t *testing.T) {
			require := require.New(t)

			r := newDefaultRegistry(t)
			tier, err := r.Tier(1)
			require.NoError(err)

			// Highest value that keeps tier 1 at MaxFee.
			limit := uint16(MaxFee - tier.Sum() + uint64(tier.Fee(c)))

			err = r.SetFee(1, c, limit+1)
			require.ErrorIs(err, ErrFeeLimitExceeded)
			unchanged, err := r.Tier(1)
			require.NoError(err)
			require.Equal(tier, unchanged)

			require.NoError(r.SetFee(1, c, limit))
			updated, err := r.Tier(1)
			require.NoError(err)
			require.Equal(limit, updated.Fee(c))
			require.Equal(uint64(MaxFee), updated.Sum())
		})
	}
}

func TestSetEcoSystemFeeBoundary(t *testing.T) {
	require := require.New(t)

	r := newDefaultRegistry(t)
	require.ErrorIs(r.SetFee(1, EcoSystem, 851), ErrFeeLimitExceeded)
	require.NoError(r.SetFee(1, EcoSystem, 850))
}

func TestSetFeeInvalidIndex(t *testing.T) {
	require := require.New(t)

	r := newDefaultRegistry(t)
	require.ErrorIs(r.SetFee(r.Len(), Tax, 1), ErrInvalidTierIndex)
	require.ErrorIs(r.SetFee(-1, Tax, 1), ErrInvalidTierIndex)
	require.ErrorIs(r.SetFee(0, Component(9), 1), ErrInvalidComponent)
}

func TestSetPayout(t *testing.T) {
	require := require.New(t)

	r := newDefaultRegistry(t)
	eco := ids.GenerateTestShortID()
	owner := ids.GenerateTestShortID()

	require.ErrorIs(r.SetPayout(r.Len(), EcoSystemPayout, eco), ErrInvalidTierIndex)
	require.ErrorIs(r.SetPayout(1, EcoSystemPayout, addr.Zero), addr.ErrZeroAddress)

	require.NoError(r.SetPayout(1, EcoSystemPayout, eco))
	require.NoError(r.SetPayout(2, OwnerPayout, owner))

	tier1, err := r.Tier(1)
	require.NoError(err)
	require.Equal(eco, tier1.EcoSystem)
	tier2, err := r.Tier(2)
	require.NoError(err)
	require.Equal(owner, tier2.Owner)
	require.Equal(owner, tier2.Payout(OwnerPayout))
}

func TestAddTier(t *testing.T) {
	require := require.New(t)

	r := newDefaultRegistry(t)
	tier := Tier{
		EcoSystemFee: 200,
		LiquidityFee: 200,
		TaxFee:       200,
		OwnerFee:     200,
		BurnFee:      200,
		EcoSystem:    ids.GenerateTestShortID(),
		Owner:        ids.GenerateTestShortID(),
	}
	index, err := r.AddTier(tier)
	require.NoError(err)
	require.Equal(4, index)
	require.Equal(5, r.Len())

	got, err := r.Tier(index)
	require.NoError(err)
	require.Equal(tier, got)

	tier.BurnFee = 201
	_, err = r.AddTier(tier)
	require.ErrorIs(err, ErrFeeLimitExceeded)
	require.Equal(5, r.Len())
}

func TestReset(t *testing.T) {
	require := require.New(t)

	r := newDefaultRegistry(t)
	require.NoError(r.SetFee(0, Tax, 10))
	require.NoError(r.SetPayout(0, OwnerPayout, ids.GenerateTestShortID()))
	extra := Tier{TaxFee: 1}
	_, err := r.AddTier(extra)
	require.NoError(err)

	r.Reset()
	require.Equal(5, r.Len())
	require.Equal(DefaultTiers()[0], r.Default())
	got, err := r.Tier(4)
	require.NoError(err)
	require.Equal(extra, got)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		tier     Tier
		amount   uint64
		fees     [numComponents]uint64
		transfer uint64
	}{
		{
			name:     "default tier",
			tier:     DefaultTiers()[0],
			amount:   1_000_000,
			fees:     [numComponents]uint64{0, 50_000, 50_000, 0, 0},
			transfer: 900_000,
		},
		{
			name:     "truncation favors sender",
			tier:     DefaultTiers()[3],
			amount:   99,
			fees:     [numComponents]uint64{0, 1, 1, 1, 0},
			transfer: 96,
		},
		{
			name:     "dust pays nothing",
			tier:     DefaultTiers()[1],
			amount:   19,
			transfer: 19,
		},
		{
			name:     "no fees",
			tier:     Tier{},
			amount:   12345,
			transfer: 12345,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			b := test.tier.Split(uint256.NewInt(test.amount))
			for _, c := range Components {
				require.Equal(test.fees[c], b.Fee(c).Uint64(), c.String())
			}
			require.Equal(test.transfer, b.TransferAmount.Uint64())

			sum := new(uint256.Int).Add(b.TransferAmount, b.Total())
			require.Equal(test.amount, sum.Uint64())
		})
	}
}
