// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token is the public and administrative surface of the reflection
// ledger. It wires the balance engine, fee registry, access lists, transfer
// pipeline and liquidity controller together.
//
// A Token is not safe for concurrent use. It is re-entered by the liquidity
// router during conversion, so it holds no lock of its own; the VM serializes
// access.
package token

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/reflectvm/acl"
	"github.com/luxfi/reflectvm/addr"
	"github.com/luxfi/reflectvm/config"
	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/ledger"
	"github.com/luxfi/reflectvm/liquidity"
	"github.com/luxfi/reflectvm/ownable"
	"github.com/luxfi/reflectvm/pipeline"
	"github.com/luxfi/reflectvm/utils/timer/mockable"
	"github.com/luxfi/reflectvm/utils/units"
)

// Params are the identities a token is created with.
type Params struct {
	// Owner receives the whole supply and administers the token.
	Owner ids.ShortID `json:"owner"`
	// Self is the token's own account, where liquidity fees accumulate.
	Self ids.ShortID `json:"self"`
	// Pair is the pool-pair address.
	Pair ids.ShortID `json:"pair"`
	// Treasury receives pool shares. Defaults to Owner.
	Treasury ids.ShortID `json:"treasury"`
}

// Token is the reflection ledger.
type Token struct {
	log        log.Logger
	config     config.Config
	owner      *ownable.Ownable
	lists      *acl.Lists
	registry   *fees.Registry
	ledger     *ledger.Ledger
	settings   *pipeline.Settings
	pipeline   *pipeline.Pipeline
	controller *liquidity.Controller
}

// New creates a token with its whole supply held by params.Owner. The owner
// and the token's own account are excluded from fees and the burn sink from
// reward.
func New(logger log.Logger, cfg config.Config, params Params, clock *mockable.Clock) (*Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, a := range []ids.ShortID{params.Self, params.Pair} {
		if err := addr.Verify(a); err != nil {
			return nil, err
		}
	}
	if addr.IsZero(params.Treasury) {
		params.Treasury = params.Owner
	}

	owner, err := ownable.New(params.Owner)
	if err != nil {
		return nil, err
	}
	registry, err := fees.NewRegistry(cfg.Tiers)
	if err != nil {
		return nil, err
	}
	lists := acl.New()
	l, err := ledger.New(cfg.TotalSupplyUnits(), params.Owner, lists)
	if err != nil {
		return nil, err
	}
	lists.ExcludeFromFee(params.Owner)
	lists.ExcludeFromFee(params.Self)

	settings := &pipeline.Settings{
		Self:                  params.Self,
		Pair:                  params.Pair,
		MaxTransferAmount:     cfg.MaxTransferAmount(),
		SwapAndEvolveEnabled:  cfg.SwapAndEvolveEnabled,
		AccumulationThreshold: cfg.AccumulationThresholdUnits(),
		BlockBlacklisted:      cfg.BlockBlacklisted,
	}
	return assemble(logger, cfg, owner, lists, registry, l, settings, params.Treasury, clock), nil
}

func assemble(
	logger log.Logger,
	cfg config.Config,
	owner *ownable.Ownable,
	lists *acl.Lists,
	registry *fees.Registry,
	l *ledger.Ledger,
	settings *pipeline.Settings,
	treasury ids.ShortID,
	clock *mockable.Clock,
) *Token {
	p := pipeline.New(logger, l, registry, lists, settings)
	controller := liquidity.New(logger, l, settings, clock, treasury)
	p.SetConverter(controller)
	return &Token{
		log:        logger,
		config:     cfg,
		owner:      owner,
		lists:      lists,
		registry:   registry,
		ledger:     l,
		settings:   settings,
		pipeline:   p,
		controller: controller,
	}
}

// AddObserver registers o for transfer and fee events.
func (t *Token) AddObserver(o pipeline.Observer) {
	t.pipeline.AddObserver(o)
}

// AddLiquidityObserver registers o for conversion events.
func (t *Token) AddLiquidityObserver(o liquidity.Observer) {
	t.controller.AddObserver(o)
}

// Transfer moves amount from from to to through the pipeline. On error no
// state changes.
func (t *Token) Transfer(ctx context.Context, from, to ids.ShortID, amount *uint256.Int) (*pipeline.Receipt, error) {
	return t.pipeline.Transfer(ctx, from, to, amount)
}

// Record registers an undo for state kept outside the token, such as a
// router's pool, so that it reverts together with a failed transfer.
func (t *Token) Record(undo func()) {
	t.ledger.Record(undo)
}

func (t *Token) Name() string {
	return t.config.Name
}

func (t *Token) Symbol() string {
	return t.config.Symbol
}

func (t *Token) Decimals() uint8 {
	return units.Decimals
}

// TotalSupply returns the fixed real supply.
func (t *Token) TotalSupply() *uint256.Int {
	return t.ledger.TotalRealSupply()
}

// TotalScaledSupply returns the scaled supply.
func (t *Token) TotalScaledSupply() *uint256.Int {
	return t.ledger.TotalScaledSupply()
}

// Rate returns the current conversion rate.
func (t *Token) Rate() ledger.Rate {
	return t.ledger.Rate()
}

// BalanceOf returns the real balance of a.
func (t *Token) BalanceOf(a ids.ShortID) *uint256.Int {
	return t.ledger.BalanceOf(a)
}

func (t *Token) IsExcludedFromReward(a ids.ShortID) bool {
	return t.lists.IsExcludedFromReward(a)
}

func (t *Token) IsExcludedFromFee(a ids.ShortID) bool {
	return t.lists.IsExcludedFromFee(a)
}

func (t *Token) IsBlacklisted(a ids.ShortID) bool {
	return t.lists.IsBlacklisted(a)
}

// WhitelistTier returns the tier assigned to a, if any.
func (t *Token) WhitelistTier(a ids.ShortID) (int, bool) {
	return t.lists.WhitelistTier(a)
}

// Members returns the members of one access list.
func (t *Token) Members(list acl.List) []ids.ShortID {
	return t.lists.Members(list)
}

// Tier returns tier i.
func (t *Token) Tier(i int) (fees.Tier, error) {
	return t.registry.Tier(i)
}

// Tiers returns every tier.
func (t *Token) Tiers() []fees.Tier {
	return t.registry.Tiers()
}

// Settings returns a copy of the limits and toggles.
func (t *Token) Settings() *pipeline.Settings {
	return t.settings.Clone()
}

// Owner returns the administrator.
func (t *Token) Owner() ids.ShortID {
	return t.owner.Owner()
}

// Treasury returns the recipient of pool shares.
func (t *Token) Treasury() ids.ShortID {
	return t.controller.Treasury()
}

// Router returns the configured router, if any.
func (t *Token) Router() liquidity.Router {
	return t.controller.Router()
}

// InLiquidityOperation reports whether a conversion is running.
func (t *Token) InLiquidityOperation() bool {
	return t.controller.InProgress()
}

// NativeBalance returns the native currency held from conversions.
func (t *Token) NativeBalance() *uint256.Int {
	return t.controller.NativeBalance()
}

// Audit verifies the ledger aggregates.
func (t *Token) Audit() error {
	if err := t.ledger.Audit(); err != nil {
		return fmt.Errorf("token %s: %w", t.config.Symbol, err)
	}
	return nil
}
