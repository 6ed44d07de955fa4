// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements the dual-unit balance engine. Included accounts
// hold scaled balances whose real value is scaled / rate, so shrinking the
// scaled supply credits every included holder at once. Excluded accounts hold
// real balances directly.
package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/acl"
	"github.com/luxfi/reflectvm/addr"
)

var (
	ErrAlreadyExcluded     = errors.New("account is already excluded")
	ErrAlreadyIncluded     = errors.New("account is already included")
	ErrPermanentlyExcluded = errors.New("account is permanently excluded")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWrongRepresentation = errors.New("wrong balance representation")
	ErrInvalidSupply       = errors.New("invalid supply")
	ErrOverflow            = errors.New("conversion overflow")
	ErrCorrupted           = errors.New("ledger aggregates corrupted")
)

// Globals are the supply aggregates of the ledger.
type Globals struct {
	// TotalReal is the fixed real supply T.
	TotalReal *uint256.Int `json:"totalReal"`
	// TotalScaled is R. It only decreases, by the scaled value of each tax.
	TotalScaled *uint256.Int `json:"totalScaled"`
	// IncludedScaled is the sum of included scaled balances.
	IncludedScaled *uint256.Int `json:"includedScaled"`
	// ExcludedReal is the sum of excluded real balances.
	ExcludedReal *uint256.Int `json:"excludedReal"`
}

func (g Globals) clone() Globals {
	return Globals{
		TotalReal:      new(uint256.Int).Set(g.TotalReal),
		TotalScaled:    new(uint256.Int).Set(g.TotalScaled),
		IncludedScaled: new(uint256.Int).Set(g.IncludedScaled),
		ExcludedReal:   new(uint256.Int).Set(g.ExcludedReal),
	}
}

// Ledger is the balance engine. It is not safe for concurrent use.
type Ledger struct {
	lists    *acl.Lists
	globals  Globals
	accounts map[ids.ShortID]*Account
	journal  journal
}

// New creates a ledger of totalReal units owned by holder. The burn sink is
// excluded from reward from the start.
func New(totalReal *uint256.Int, holder ids.ShortID, lists *acl.Lists) (*Ledger, error) {
	if totalReal == nil || totalReal.IsZero() {
		return nil, fmt.Errorf("%w: total supply must be positive", ErrInvalidSupply)
	}
	if err := addr.Verify(holder); err != nil {
		return nil, err
	}
	if holder == addr.Burn {
		return nil, fmt.Errorf("%w: burn sink cannot hold the initial supply", ErrInvalidSupply)
	}

	// SCALE = floor((2^256-1) / T), the largest multiple that fits.
	scale := new(uint256.Int).SetAllOne()
	scale.Div(scale, totalReal)
	totalScaled := new(uint256.Int).Mul(scale, totalReal)

	l := &Ledger{
		lists: lists,
		globals: Globals{
			TotalReal:      new(uint256.Int).Set(totalReal),
			TotalScaled:    totalScaled,
			IncludedScaled: new(uint256.Int).Set(totalScaled),
			ExcludedReal:   new(uint256.Int),
		},
		accounts: make(map[ids.ShortID]*Account),
	}
	h := newAccount(holder)
	h.Scaled.Set(totalScaled)
	l.accounts[holder] = h

	burn := newAccount(addr.Burn)
	burn.Kind = Excluded
	l.accounts[addr.Burn] = burn
	lists.MarkRewardExcluded(addr.Burn, true)
	return l, nil
}

// Restore rebuilds a ledger from persisted globals and accounts. Reward
// exclusion in lists is rewritten to match the account kinds.
func Restore(g Globals, accounts []*Account, lists *acl.Lists) (*Ledger, error) {
	l := &Ledger{
		lists:    lists,
		globals:  g.clone(),
		accounts: make(map[ids.ShortID]*Account, len(accounts)),
	}
	for _, a := range accounts {
		l.accounts[a.Address] = a.clone()
		lists.MarkRewardExcluded(a.Address, a.Kind == Excluded)
	}
	if err := l.Audit(); err != nil {
		return nil, err
	}
	return l, nil
}

// Globals returns a copy of the supply aggregates.
func (l *Ledger) Globals() Globals {
	return l.globals.clone()
}

// TotalRealSupply returns T.
func (l *Ledger) TotalRealSupply() *uint256.Int {
	return new(uint256.Int).Set(l.globals.TotalReal)
}

// TotalScaledSupply returns R.
func (l *Ledger) TotalScaledSupply() *uint256.Int {
	return new(uint256.Int).Set(l.globals.TotalScaled)
}

// Rate returns the current scaled-per-real rate over the circulating supply.
// It falls back to R/T when no real supply circulates among included
// accounts or when the circulating scaled supply has dropped below one unit
// of the base rate.
func (l *Ledger) Rate() Rate {
	g := l.globals
	base := Rate{
		Num: new(uint256.Int).Set(g.TotalScaled),
		Den: new(uint256.Int).Set(g.TotalReal),
	}
	circulating, underflow := new(uint256.Int).SubOverflow(g.TotalReal, g.ExcludedReal)
	if underflow || circulating.IsZero() {
		return base
	}
	floor := new(uint256.Int).Div(g.TotalScaled, g.TotalReal)
	if g.IncludedScaled.Lt(floor) {
		return base
	}
	return Rate{
		Num: new(uint256.Int).Set(g.IncludedScaled),
		Den: circulating,
	}
}

// ToScaled converts real units to scaled units at the current rate.
func (l *Ledger) ToScaled(real *uint256.Int) (*uint256.Int, error) {
	return l.Rate().ToScaled(real)
}

// ToReal converts scaled units to real units at the current rate.
func (l *Ledger) ToReal(scaled *uint256.Int) *uint256.Int {
	return l.Rate().ToReal(scaled)
}

// IsExcluded reports whether a holds a real balance.
func (l *Ledger) IsExcluded(a ids.ShortID) bool {
	acct, ok := l.accounts[a]
	return ok && acct.Kind == Excluded
}

// BalanceOf returns the real balance of a. Unknown accounts hold zero.
func (l *Ledger) BalanceOf(a ids.ShortID) *uint256.Int {
	return l.balanceAt(a, l.Rate())
}

func (l *Ledger) balanceAt(a ids.ShortID, rate Rate) *uint256.Int {
	acct, ok := l.accounts[a]
	if !ok {
		return new(uint256.Int)
	}
	if acct.Kind == Excluded {
		return new(uint256.Int).Set(acct.Real)
	}
	return rate.ToReal(acct.Scaled)
}

// Account returns a copy of the record of a, if it exists.
func (l *Ledger) Account(a ids.ShortID) (*Account, bool) {
	acct, ok := l.accounts[a]
	if !ok {
		return nil, false
	}
	return acct.clone(), true
}

// Accounts returns copies of all records ordered by address.
func (l *Ledger) Accounts() []*Account {
	out := make([]*Account, 0, len(l.accounts))
	for _, acct := range l.accounts {
		out = append(out, acct.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out
}

// Credit adds value to a in whichever unit a holds.
func (l *Ledger) Credit(a ids.ShortID, v Amount) error {
	if l.IsExcluded(a) {
		return l.CreditReal(a, v.Real)
	}
	return l.CreditScaled(a, v.Scaled)
}

// Debit removes value from a in whichever unit a holds.
func (l *Ledger) Debit(a ids.ShortID, v Amount) error {
	if l.IsExcluded(a) {
		return l.DebitReal(a, v.Real)
	}
	return l.DebitScaled(a, v.Scaled)
}

// CreditScaled adds scaled units to the included account a.
func (l *Ledger) CreditScaled(a ids.ShortID, amount *uint256.Int) error {
	acct := l.touch(a)
	if acct.Kind != Included {
		return fmt.Errorf("%w: %s holds real units", ErrWrongRepresentation, a)
	}
	l.saveAccount(acct)
	l.saveGlobals()
	acct.Scaled.Add(acct.Scaled, amount)
	l.globals.IncludedScaled.Add(l.globals.IncludedScaled, amount)
	return nil
}

// DebitScaled removes scaled units from the included account a.
func (l *Ledger) DebitScaled(a ids.ShortID, amount *uint256.Int) error {
	acct, ok := l.accounts[a]
	if !ok {
		if amount.IsZero() {
			return nil
		}
		return fmt.Errorf("%w: %s has no balance", ErrInsufficientBalance, a)
	}
	if acct.Kind != Included {
		return fmt.Errorf("%w: %s holds real units", ErrWrongRepresentation, a)
	}
	if acct.Scaled.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s scaled, needs %s",
			ErrInsufficientBalance, a, acct.Scaled.Dec(), amount.Dec())
	}
	l.saveAccount(acct)
	l.saveGlobals()
	acct.Scaled.Sub(acct.Scaled, amount)
	l.globals.IncludedScaled.Sub(l.globals.IncludedScaled, amount)
	return nil
}

// CreditReal adds real units to the excluded account a.
func (l *Ledger) CreditReal(a ids.ShortID, amount *uint256.Int) error {
	acct, ok := l.accounts[a]
	if !ok || acct.Kind != Excluded {
		return fmt.Errorf("%w: %s holds scaled units", ErrWrongRepresentation, a)
	}
	l.saveAccount(acct)
	l.saveGlobals()
	acct.Real.Add(acct.Real, amount)
	l.globals.ExcludedReal.Add(l.globals.ExcludedReal, amount)
	return nil
}

// DebitReal removes real units from the excluded account a.
func (l *Ledger) DebitReal(a ids.ShortID, amount *uint256.Int) error {
	acct, ok := l.accounts[a]
	if !ok || acct.Kind != Excluded {
		return fmt.Errorf("%w: %s holds scaled units", ErrWrongRepresentation, a)
	}
	if acct.Real.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s",
			ErrInsufficientBalance, a, acct.Real.Dec(), amount.Dec())
	}
	l.saveAccount(acct)
	l.saveGlobals()
	acct.Real.Sub(acct.Real, amount)
	l.globals.ExcludedReal.Sub(l.globals.ExcludedReal, amount)
	return nil
}

// ApplyTax shrinks R by the scaled value of a tax that was debited from the
// sender and credited to no one.
func (l *Ledger) ApplyTax(scaled *uint256.Int) error {
	if l.globals.TotalScaled.Lt(scaled) {
		return fmt.Errorf("%w: tax %s exceeds scaled supply %s",
			ErrInvalidSupply, scaled.Dec(), l.globals.TotalScaled.Dec())
	}
	l.saveGlobals()
	l.globals.TotalScaled.Sub(l.globals.TotalScaled, scaled)
	return nil
}

// ExcludeFromReward freezes a's balance at its current real value.
func (l *Ledger) ExcludeFromReward(a ids.ShortID) error {
	if err := addr.Verify(a); err != nil {
		return err
	}
	if l.lists.IsExcludedFromReward(a) {
		return fmt.Errorf("%w: %s", ErrAlreadyExcluded, a)
	}
	acct := l.touch(a)
	real := l.Rate().ToReal(acct.Scaled)

	l.saveAccount(acct)
	l.saveGlobals()
	l.globals.IncludedScaled.Sub(l.globals.IncludedScaled, acct.Scaled)
	l.globals.ExcludedReal.Add(l.globals.ExcludedReal, real)
	acct.Kind = Excluded
	acct.Real = real
	acct.Scaled = new(uint256.Int)
	l.markExcluded(a, true)
	return nil
}

// IncludeInReward converts a's frozen real balance back into scaled units at
// the current rate.
func (l *Ledger) IncludeInReward(a ids.ShortID) error {
	if err := addr.Verify(a); err != nil {
		return err
	}
	if a == addr.Burn {
		return fmt.Errorf("%w: %s", ErrPermanentlyExcluded, a)
	}
	if !l.lists.IsExcludedFromReward(a) {
		return fmt.Errorf("%w: %s", ErrAlreadyIncluded, a)
	}
	acct := l.touch(a)
	scaled, err := l.Rate().ToScaled(acct.Real)
	if err != nil {
		return err
	}

	l.saveAccount(acct)
	l.saveGlobals()
	l.globals.ExcludedReal.Sub(l.globals.ExcludedReal, acct.Real)
	l.globals.IncludedScaled.Add(l.globals.IncludedScaled, scaled)
	acct.Kind = Included
	acct.Scaled = scaled
	acct.Real = new(uint256.Int)
	l.markExcluded(a, false)
	return nil
}

// Snapshot returns an identifier for the current journal position.
func (l *Ledger) Snapshot() int {
	return l.journal.length()
}

// RevertToSnapshot undoes every mutation recorded after id.
func (l *Ledger) RevertToSnapshot(id int) {
	l.journal.revert(id)
}

// Record registers an undo for a mutation made outside the ledger, so that it
// is reverted together with the ledger's own changes.
func (l *Ledger) Record(undo func()) {
	l.journal.append(undo)
}

// Commit discards the undo log.
func (l *Ledger) Commit() {
	l.journal.reset()
}

// Audit verifies that the aggregates match the account records.
func (l *Ledger) Audit() error {
	var (
		scaled = new(uint256.Int)
		real   = new(uint256.Int)
	)
	for _, acct := range l.accounts {
		switch acct.Kind {
		case Included:
			if !acct.Real.IsZero() {
				return fmt.Errorf("%w: included %s holds real units", ErrCorrupted, acct.Address)
			}
			scaled.Add(scaled, acct.Scaled)
		case Excluded:
			if !acct.Scaled.IsZero() {
				return fmt.Errorf("%w: excluded %s holds scaled units", ErrCorrupted, acct.Address)
			}
			real.Add(real, acct.Real)
		}
	}
	if !scaled.Eq(l.globals.IncludedScaled) {
		return fmt.Errorf("%w: included scaled %s, accounts sum %s",
			ErrCorrupted, l.globals.IncludedScaled.Dec(), scaled.Dec())
	}
	if !real.Eq(l.globals.ExcludedReal) {
		return fmt.Errorf("%w: excluded real %s, accounts sum %s",
			ErrCorrupted, l.globals.ExcludedReal.Dec(), real.Dec())
	}
	if l.globals.ExcludedReal.Gt(l.globals.TotalReal) {
		return fmt.Errorf("%w: excluded real exceeds total supply", ErrCorrupted)
	}
	return nil
}

// touch returns the record of a, creating an included one if absent.
func (l *Ledger) touch(a ids.ShortID) *Account {
	if acct, ok := l.accounts[a]; ok {
		return acct
	}
	acct := newAccount(a)
	l.accounts[a] = acct
	l.journal.append(func() {
		delete(l.accounts, a)
	})
	return acct
}

func (l *Ledger) saveAccount(acct *Account) {
	prev := acct.clone()
	l.journal.append(func() {
		acct.Kind = prev.Kind
		acct.Scaled = prev.Scaled
		acct.Real = prev.Real
	})
}

func (l *Ledger) saveGlobals() {
	prev := l.globals.clone()
	l.journal.append(func() {
		l.globals = prev
	})
}

func (l *Ledger) markExcluded(a ids.ShortID, excluded bool) {
	l.lists.MarkRewardExcluded(a, excluded)
	l.journal.append(func() {
		l.lists.MarkRewardExcluded(a, !excluded)
	})
}
