// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/reflectvm/acl"
	"github.com/luxfi/reflectvm/addr"
	"github.com/luxfi/reflectvm/utils/units"
)

var totalSupply = units.Tokens(1_000_000_000_000)

func newTestLedger(t *testing.T) (*Ledger, ids.ShortID) {
	holder := ids.GenerateTestShortID()
	l, err := New(totalSupply, holder, acl.New())
	require.NoError(t, err)
	return l, holder
}

// move debits real units from one account and credits real-tax to another,
// burning tax as reflection.
func move(t *testing.T, l *Ledger, from, to ids.ShortID, real, tax *uint256.Int) {
	require := require.New(t)

	rate := l.Rate()
	amount, err := rate.Amount(real)
	require.NoError(err)
	taxed, err := rate.Amount(tax)
	require.NoError(err)
	net := Amount{
		Real:   new(uint256.Int).Sub(amount.Real, taxed.Real),
		Scaled: new(uint256.Int).Sub(amount.Scaled, taxed.Scaled),
	}
	require.NoError(l.Debit(from, amount))
	require.NoError(l.Credit(to, net))
	require.NoError(l.ApplyTax(taxed.Scaled))
}

// requireConserved checks that the sum of all balances equals T up to one unit
// of truncation per included account.
func requireConserved(t *testing.T, l *Ledger) {
	require := require.New(t)

	var (
		sum      = new(uint256.Int)
		included uint64
	)
	for _, acct := range l.Accounts() {
		sum.Add(sum, l.BalanceOf(acct.Address))
		if acct.Kind == Included {
			included++
		}
	}
	require.False(sum.Gt(l.TotalRealSupply()), "sum %s exceeds supply", sum.Dec())
	dust := new(uint256.Int).Sub(l.TotalRealSupply(), sum)
	require.True(dust.Lt(uint256.NewInt(included+1)), "dust %s", dust.Dec())
	require.NoError(l.Audit())
}

func TestNew(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	require.Equal(totalSupply, l.BalanceOf(holder))
	require.Equal(totalSupply, l.TotalRealSupply())

	scale := new(uint256.Int).SetAllOne()
	scale.Div(scale, totalSupply)
	require.Equal(new(uint256.Int).Mul(scale, totalSupply), l.TotalScaledSupply())

	rate := l.Rate()
	require.Equal(l.TotalScaledSupply(), rate.Num)
	require.Equal(totalSupply, rate.Den)

	require.True(l.IsExcluded(addr.Burn))
	require.True(l.BalanceOf(addr.Burn).IsZero())
	require.True(l.BalanceOf(ids.GenerateTestShortID()).IsZero())
	require.NoError(l.Audit())
}

func TestNewInvalid(t *testing.T) {
	require := require.New(t)

	_, err := New(new(uint256.Int), ids.GenerateTestShortID(), acl.New())
	require.ErrorIs(err, ErrInvalidSupply)

	_, err = New(totalSupply, addr.Zero, acl.New())
	require.ErrorIs(err, addr.ErrZeroAddress)

	_, err = New(totalSupply, addr.Burn, acl.New())
	require.ErrorIs(err, ErrInvalidSupply)
}

func TestWrongRepresentation(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	one := uint256.NewInt(1)

	require.ErrorIs(l.CreditReal(holder, one), ErrWrongRepresentation)
	require.ErrorIs(l.DebitReal(holder, one), ErrWrongRepresentation)
	require.ErrorIs(l.CreditScaled(addr.Burn, one), ErrWrongRepresentation)
	require.ErrorIs(l.DebitScaled(addr.Burn, one), ErrWrongRepresentation)
}

func TestInsufficientBalance(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	stranger := ids.GenerateTestShortID()

	require.ErrorIs(l.DebitScaled(stranger, uint256.NewInt(1)), ErrInsufficientBalance)
	require.NoError(l.DebitScaled(stranger, new(uint256.Int)))

	all, err := l.Rate().Amount(l.BalanceOf(holder))
	require.NoError(err)
	all.Scaled.AddUint64(all.Scaled, 1)
	require.ErrorIs(l.Debit(holder, all), ErrInsufficientBalance)
}

func TestFullBalanceAlwaysSpendable(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	other := ids.GenerateTestShortID()
	move(t, l, holder, other, units.Tokens(12_345), units.Tokens(617))

	balance := l.BalanceOf(other)
	amount, err := l.Rate().Amount(balance)
	require.NoError(err)
	require.NoError(l.Debit(other, amount))
	require.NoError(l.Credit(holder, amount))
	requireConserved(t, l)
}

func TestTaxRewardsIncludedHolders(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	carol := ids.GenerateTestShortID()

	move(t, l, holder, alice, units.Tokens(1_000_000), new(uint256.Int))
	move(t, l, holder, bob, units.Tokens(1_000_000), new(uint256.Int))
	move(t, l, holder, carol, units.Tokens(1_000_000), new(uint256.Int))
	require.NoError(l.ExcludeFromReward(carol))
	requireConserved(t, l)

	aliceBefore := l.BalanceOf(alice)
	carolBefore := l.BalanceOf(carol)
	scaledBefore := l.TotalScaledSupply()
	rateBefore := l.Rate()

	dave := ids.GenerateTestShortID()
	tax := units.Tokens(50_000)
	move(t, l, carol, dave, units.Tokens(1_000_000), tax)

	// Equal scaled holdings stay equal and both accrue.
	require.Equal(l.BalanceOf(alice), l.BalanceOf(bob))
	require.True(l.BalanceOf(alice).Gt(aliceBefore))

	// The excluded sender lost exactly the amount sent.
	require.Equal(
		new(uint256.Int).Sub(carolBefore, units.Tokens(1_000_000)),
		l.BalanceOf(carol),
	)

	// R shrank by exactly the scaled tax.
	scaledTax, err := rateBefore.ToScaled(tax)
	require.NoError(err)
	require.Equal(new(uint256.Int).Sub(scaledBefore, scaledTax), l.TotalScaledSupply())

	require.Equal(-1, l.Rate().Cmp(rateBefore))
	requireConserved(t, l)
}

func TestExcludedHoldersDoNotAccrue(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	frozen := ids.GenerateTestShortID()
	move(t, l, holder, frozen, units.Tokens(500), new(uint256.Int))
	require.NoError(l.ExcludeFromReward(frozen))

	before := l.BalanceOf(frozen)
	for i := 0; i < 10; i++ {
		move(t, l, holder, ids.GenerateTestShortID(), units.Tokens(10_000), units.Tokens(500))
	}
	require.Equal(before, l.BalanceOf(frozen))
	requireConserved(t, l)
}

func TestRateNeverIncreases(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	accounts := []ids.ShortID{holder}
	for i := 0; i < 5; i++ {
		accounts = append(accounts, ids.GenerateTestShortID())
	}

	prev := l.Rate()
	for i := 0; i < 20; i++ {
		from := accounts[i%len(accounts)]
		to := accounts[(i+1)%len(accounts)]
		amount := new(uint256.Int).Div(l.BalanceOf(from), uint256.NewInt(3))
		tax := new(uint256.Int).Div(amount, uint256.NewInt(20))
		move(t, l, from, to, amount, tax)

		if i == 7 {
			require.NoError(l.ExcludeFromReward(accounts[2]))
		}
		if i == 13 {
			require.NoError(l.IncludeInReward(accounts[2]))
		}

		rate := l.Rate()
		require.LessOrEqual(rate.Cmp(prev), 0)
		prev = rate
		requireConserved(t, l)
	}
}

func TestExcludeIncludeTransitions(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	acct := ids.GenerateTestShortID()
	move(t, l, holder, acct, units.Tokens(777), new(uint256.Int))
	before := l.BalanceOf(acct)

	require.NoError(l.ExcludeFromReward(acct))
	require.ErrorIs(l.ExcludeFromReward(acct), ErrAlreadyExcluded)
	require.True(l.IsExcluded(acct))
	require.Equal(before, l.BalanceOf(acct))

	record, ok := l.Account(acct)
	require.True(ok)
	require.Equal(Excluded, record.Kind)
	require.True(record.Scaled.IsZero())

	require.NoError(l.IncludeInReward(acct))
	require.ErrorIs(l.IncludeInReward(acct), ErrAlreadyIncluded)
	require.False(l.IsExcluded(acct))

	// A round trip may lose at most one unit to truncation.
	after := l.BalanceOf(acct)
	require.False(after.Gt(before))
	require.True(new(uint256.Int).Sub(before, after).Lt(uint256.NewInt(2)))

	// Never-seen accounts can be excluded too.
	require.NoError(l.ExcludeFromReward(ids.GenerateTestShortID()))
	requireConserved(t, l)
}

func TestBurnSinkPermanentlyExcluded(t *testing.T) {
	require := require.New(t)

	l, _ := newTestLedger(t)
	require.ErrorIs(l.IncludeInReward(addr.Burn), ErrPermanentlyExcluded)
	require.ErrorIs(l.ExcludeFromReward(addr.Burn), ErrAlreadyExcluded)
	require.ErrorIs(l.ExcludeFromReward(addr.Zero), addr.ErrZeroAddress)
}

func TestRevertToSnapshot(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	alice := ids.GenerateTestShortID()
	move(t, l, holder, alice, units.Tokens(1_000), new(uint256.Int))
	l.Commit()

	globals := l.Globals()
	accounts := l.Accounts()

	var external int
	snap := l.Snapshot()
	move(t, l, alice, ids.GenerateTestShortID(), units.Tokens(100), units.Tokens(5))
	require.NoError(l.ExcludeFromReward(alice))
	external++
	l.Record(func() { external-- })

	nested := l.Snapshot()
	move(t, l, holder, ids.GenerateTestShortID(), units.Tokens(10), units.Tokens(1))
	l.RevertToSnapshot(nested)
	require.True(l.IsExcluded(alice))

	l.RevertToSnapshot(snap)
	require.Zero(external)
	require.Equal(globals, l.Globals())
	require.Equal(accounts, l.Accounts())
	require.False(l.IsExcluded(alice))
	require.NoError(l.Audit())
}

func TestRestore(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	alice := ids.GenerateTestShortID()
	move(t, l, holder, alice, units.Tokens(1_000), units.Tokens(50))
	require.NoError(l.ExcludeFromReward(alice))

	lists := acl.New()
	restored, err := Restore(l.Globals(), l.Accounts(), lists)
	require.NoError(err)
	require.True(lists.IsExcludedFromReward(alice))
	require.True(lists.IsExcludedFromReward(addr.Burn))
	require.Equal(l.BalanceOf(holder), restored.BalanceOf(holder))
	require.Equal(l.BalanceOf(alice), restored.BalanceOf(alice))

	corrupt := l.Globals()
	corrupt.IncludedScaled.AddUint64(corrupt.IncludedScaled, 1)
	_, err = Restore(corrupt, l.Accounts(), acl.New())
	require.ErrorIs(err, ErrCorrupted)
}

func TestRateFallback(t *testing.T) {
	require := require.New(t)

	l, holder := newTestLedger(t)
	require.NoError(l.ExcludeFromReward(holder))

	// Nothing circulates among included accounts.
	rate := l.Rate()
	require.Equal(l.TotalScaledSupply(), rate.Num)
	require.Equal(l.TotalRealSupply(), rate.Den)
}
