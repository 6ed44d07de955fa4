// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pipeline executes transfers: validation, limit checks, tier
// resolution, fee splitting, balance movement, fee routing and the liquidity
// automation trigger. A transfer either applies completely or not at all.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/reflectvm/acl"
	"github.com/luxfi/reflectvm/addr"
	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/ledger"
)

var (
	ErrInvalidAmount         = errors.New("transfer amount must be greater than zero")
	ErrTransferLimitExceeded = errors.New("transfer amount exceeds the maxTxAmount")
)

// Converter turns accumulated liquidity fees into pooled liquidity.
type Converter interface {
	// InProgress reports whether a conversion is running. Transfers arriving
	// while it is skip limits, fees and the trigger.
	InProgress() bool
	// Convert runs one conversion of amount tokens held by the ledger's own
	// account.
	Convert(ctx context.Context, amount *uint256.Int) error
}

// event is a pending observation, delivered only once the outermost transfer
// succeeds.
type event struct {
	transfer *TransferEvent
	fee      *FeeEvent
}

// Pipeline is not safe for concurrent use; callers serialize transfers.
type Pipeline struct {
	log       log.Logger
	ledger    *ledger.Ledger
	registry  *fees.Registry
	lists     *acl.Lists
	settings  *Settings
	converter Converter
	observers []Observer

	depth   int
	pending []event
}

// New returns a pipeline over the given components. settings is shared with
// the caller, which may update it between transfers.
func New(
	logger log.Logger,
	l *ledger.Ledger,
	registry *fees.Registry,
	lists *acl.Lists,
	settings *Settings,
) *Pipeline {
	return &Pipeline{
		log:      logger,
		ledger:   l,
		registry: registry,
		lists:    lists,
		settings: settings,
	}
}

// SetConverter installs the liquidity converter. Without one, the trigger
// never fires.
func (p *Pipeline) SetConverter(c Converter) {
	p.converter = c
}

// AddObserver registers o for events of committed transfers.
func (p *Pipeline) AddObserver(o Observer) {
	p.observers = append(p.observers, o)
}

// InLiquidityOperation reports whether a liquidity conversion is running.
func (p *Pipeline) InLiquidityOperation() bool {
	return p.converter != nil && p.converter.InProgress()
}

// Transfer moves amount real units from sender to recipient. On any error the
// ledger, and everything recorded in its journal, is left as it was.
func (p *Pipeline) Transfer(ctx context.Context, from, to ids.ShortID, amount *uint256.Int) (*Receipt, error) {
	if err := addr.Verify(from); err != nil {
		return nil, fmt.Errorf("%w: sender", err)
	}
	if err := addr.Verify(to); err != nil {
		return nil, fmt.Errorf("%w: recipient", err)
	}
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	var (
		snap = p.ledger.Snapshot()
		mark = len(p.pending)
	)
	p.depth++
	receipt, err := p.transfer(ctx, from, to, amount)
	p.depth--
	if err != nil {
		p.ledger.RevertToSnapshot(snap)
		p.pending = p.pending[:mark]
		return nil, err
	}
	if p.depth == 0 {
		p.ledger.Commit()
		p.flush()
	}
	return receipt, nil
}

func (p *Pipeline) transfer(ctx context.Context, from, to ids.ShortID, amount *uint256.Int) (*Receipt, error) {
	s := p.settings
	if s.BlockBlacklisted {
		for _, a := range [2]ids.ShortID{from, to} {
			if p.lists.IsBlacklisted(a) {
				return nil, fmt.Errorf("%w: %s", acl.ErrAccountBlacklisted, a)
			}
		}
	}

	var (
		reentrant = p.InLiquidityOperation()
		feeExempt = p.lists.IsExcludedFromFee(from) || p.lists.IsExcludedFromFee(to)
	)
	if !reentrant && !feeExempt && amount.Gt(s.MaxTransferAmount) {
		return nil, fmt.Errorf("%w: %s > %s", ErrTransferLimitExceeded, amount.Dec(), s.MaxTransferAmount.Dec())
	}

	receipt := &Receipt{
		From:      from,
		To:        to,
		Amount:    new(uint256.Int).Set(amount),
		Tier:      NoTier,
		FeeExempt: feeExempt,
		Reentrant: reentrant,
	}
	var tier fees.Tier
	if reentrant || feeExempt {
		receipt.Fees = fees.NoFees(amount)
	} else {
		receipt.Tier = p.resolveTier(from, to)
		t, err := p.registry.Tier(receipt.Tier)
		if err != nil {
			return nil, err
		}
		tier = t
		receipt.Fees = tier.Split(amount)
	}
	receipt.TransferAmount = new(uint256.Int).Set(receipt.Fees.TransferAmount)

	// Every component of one transfer converts at the same rate.
	rate := p.ledger.Rate()
	receipt.Rate = rate
	total, err := rate.Amount(amount)
	if err != nil {
		return nil, err
	}
	var feeAmounts [len(fees.Components)]ledger.Amount
	delivered := ledger.Amount{
		Real:   receipt.Fees.TransferAmount,
		Scaled: new(uint256.Int).Set(total.Scaled),
	}
	for _, c := range fees.Components {
		v, err := rate.Amount(receipt.Fees.Fee(c))
		if err != nil {
			return nil, err
		}
		feeAmounts[c] = v
		delivered.Scaled.Sub(delivered.Scaled, v.Scaled)
	}

	if err := p.ledger.Debit(from, total); err != nil {
		return nil, err
	}
	if err := p.ledger.Credit(to, delivered); err != nil {
		return nil, err
	}
	p.emit(event{transfer: &TransferEvent{
		From:   from,
		To:     to,
		Amount: receipt.TransferAmount,
	}})

	for _, c := range fees.Components {
		v := feeAmounts[c]
		if v.Real.IsZero() {
			continue
		}
		dest, err := p.routeFee(c, tier, v)
		if err != nil {
			return nil, err
		}
		ev := FeeEvent{
			Component: c,
			From:      from,
			To:        dest,
			Amount:    v.Real,
		}
		receipt.Events = append(receipt.Events, ev)
		p.emit(event{fee: &ev})
	}

	if !reentrant && p.shouldConvert(from) {
		balance := p.ledger.BalanceOf(s.Self)
		if balance.Gt(s.MaxTransferAmount) {
			balance = new(uint256.Int).Set(s.MaxTransferAmount)
		}
		p.log.Debug("liquidity threshold reached",
			log.Stringer("self", s.Self),
			log.String("amount", balance.Dec()),
		)
		if err := p.converter.Convert(ctx, balance); err != nil {
			return nil, err
		}
		receipt.Converted = true
	}
	return receipt, nil
}

// resolveTier returns the whitelist tier of the sender, else of the
// recipient, else the default tier.
func (p *Pipeline) resolveTier(from, to ids.ShortID) int {
	if i, ok := p.lists.WhitelistTier(from); ok {
		return i
	}
	if i, ok := p.lists.WhitelistTier(to); ok {
		return i
	}
	return fees.DefaultTierIndex
}

// routeFee credits one fee component and returns where it went.
func (p *Pipeline) routeFee(c fees.Component, tier fees.Tier, v ledger.Amount) (ids.ShortID, error) {
	var dest ids.ShortID
	switch c {
	case fees.Tax:
		return ids.ShortEmpty, p.ledger.ApplyTax(v.Scaled)
	case fees.Burn:
		dest = addr.Burn
	case fees.Liquidity:
		dest = p.settings.Self
	case fees.EcoSystem:
		dest = tier.Payout(fees.EcoSystemPayout)
	case fees.Owner:
		dest = tier.Payout(fees.OwnerPayout)
	default:
		return ids.ShortEmpty, fmt.Errorf("%w: %d", fees.ErrInvalidComponent, c)
	}
	// Unset payout addresses send their share to the sink.
	if addr.IsZero(dest) {
		dest = addr.Burn
	}
	return dest, p.ledger.Credit(dest, v)
}

func (p *Pipeline) shouldConvert(from ids.ShortID) bool {
	s := p.settings
	if p.converter == nil || !s.SwapAndEvolveEnabled || from == s.Pair {
		return false
	}
	if p.converter.InProgress() {
		return false
	}
	return !p.ledger.BalanceOf(s.Self).Lt(s.AccumulationThreshold)
}

func (p *Pipeline) emit(e event) {
	p.pending = append(p.pending, e)
}

func (p *Pipeline) flush() {
	events := p.pending
	p.pending = nil
	for _, e := range events {
		for _, o := range p.observers {
			switch {
			case e.transfer != nil:
				o.Transferred(*e.transfer)
			case e.fee != nil:
				o.FeeRouted(*e.fee)
			}
		}
	}
}
