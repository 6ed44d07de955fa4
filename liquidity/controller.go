// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package liquidity converts accumulated liquidity fees into pooled liquidity
// through an external router.
package liquidity

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/reflectvm/addr"
	"github.com/luxfi/reflectvm/ledger"
	"github.com/luxfi/reflectvm/pipeline"
	"github.com/luxfi/reflectvm/utils/timer/mockable"
)

var (
	ErrConversionFailed     = errors.New("liquidity conversion failed")
	ErrConversionInProgress = errors.New("liquidity conversion already in progress")
	ErrNoRouter             = errors.New("no router configured")

	_ pipeline.Converter = (*Controller)(nil)
)

// State of the controller.
type State uint8

const (
	Idle State = iota
	Converting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Converting:
		return "converting"
	default:
		return "unknown"
	}
}

// SwapAndEvolve is emitted after every successful conversion.
type SwapAndEvolve struct {
	TokensSwapped       *uint256.Int `json:"tokensSwapped"`
	NativeReceived      *uint256.Int `json:"nativeReceived"`
	TokensIntoLiquidity *uint256.Int `json:"tokensIntoLiquidity"`
	Liquidity           *uint256.Int `json:"liquidity"`
}

// Observer receives conversion events.
type Observer interface {
	SwapAndEvolved(SwapAndEvolve)
}

// Controller runs the Idle -> Converting -> Idle state machine. While
// Converting, transfers re-entering the pipeline skip limits, fees and the
// trigger.
type Controller struct {
	log       log.Logger
	ledger    *ledger.Ledger
	settings  *pipeline.Settings
	clock     *mockable.Clock
	router    Router
	treasury  ids.ShortID
	state     State
	native    *uint256.Int
	observers []Observer
}

// New returns an idle controller. Pool shares are minted to treasury.
func New(
	logger log.Logger,
	l *ledger.Ledger,
	settings *pipeline.Settings,
	clock *mockable.Clock,
	treasury ids.ShortID,
) *Controller {
	return &Controller{
		log:      logger,
		ledger:   l,
		settings: settings,
		clock:    clock,
		treasury: treasury,
		native:   new(uint256.Int),
	}
}

// InProgress implements pipeline.Converter.
func (c *Controller) InProgress() bool {
	return c.state == Converting
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Router returns the configured router, if any.
func (c *Controller) Router() Router {
	return c.router
}

// SetRouter replaces the router.
func (c *Controller) SetRouter(r Router) {
	c.router = r
}

// Treasury returns the recipient of pool shares.
func (c *Controller) Treasury() ids.ShortID {
	return c.treasury
}

// SetTreasury replaces the recipient of pool shares.
func (c *Controller) SetTreasury(a ids.ShortID) error {
	if err := addr.Verify(a); err != nil {
		return err
	}
	c.treasury = a
	return nil
}

// NativeBalance is the native currency left over from conversions.
func (c *Controller) NativeBalance() *uint256.Int {
	return new(uint256.Int).Set(c.native)
}

// SetNativeBalance restores a persisted native balance.
func (c *Controller) SetNativeBalance(v *uint256.Int) {
	c.native = new(uint256.Int).Set(v)
}

// AddObserver registers o for conversion events.
func (c *Controller) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Convert swaps half of amount for native currency and pairs the other half
// with the proceeds. The guard is released on every return path. Router
// failures are returned so the enclosing transfer rolls back.
func (c *Controller) Convert(ctx context.Context, amount *uint256.Int) error {
	if c.state == Converting {
		return ErrConversionInProgress
	}
	if c.router == nil {
		return fmt.Errorf("%w: %w", ErrConversionFailed, ErrNoRouter)
	}

	c.state = Converting
	defer func() {
		c.state = Idle
	}()

	var (
		self      = c.settings.Self
		half      = new(uint256.Int).Rsh(amount, 1)
		otherHalf = new(uint256.Int).Sub(amount, half)
		zero      = new(uint256.Int)
		deadline  = c.clock.Time()
	)
	c.log.Debug("converting accumulated liquidity fees",
		log.String("amount", amount.Dec()),
		log.Stringer("router", c.router.Address()),
	)

	received, err := c.router.SwapExactTokensForNative(
		ctx,
		half,
		zero,
		[]ids.ShortID{self, c.router.WrappedNative()},
		self,
		deadline,
	)
	if err != nil {
		return fmt.Errorf("%w: swap %s tokens: %w", ErrConversionFailed, half.Dec(), err)
	}
	c.creditNative(received)

	deposit, err := c.router.AddLiquidityNative(
		ctx,
		self,
		otherHalf,
		zero,
		zero,
		received,
		c.treasury,
		deadline,
	)
	if err != nil {
		return fmt.Errorf("%w: add liquidity: %w", ErrConversionFailed, err)
	}
	if err := c.debitNative(deposit.AmountNative); err != nil {
		return err
	}

	ev := SwapAndEvolve{
		TokensSwapped:       half,
		NativeReceived:      received,
		TokensIntoLiquidity: deposit.AmountToken,
		Liquidity:           deposit.Liquidity,
	}
	c.log.Info("swap and evolve",
		log.String("tokensSwapped", half.Dec()),
		log.String("nativeReceived", received.Dec()),
		log.String("tokensIntoLiquidity", deposit.AmountToken.Dec()),
		log.String("liquidity", deposit.Liquidity.Dec()),
	)
	for _, o := range c.observers {
		o.SwapAndEvolved(ev)
	}
	return nil
}

// creditNative and debitNative journal through the ledger so that a failed
// transfer also reverts the native balance.
func (c *Controller) creditNative(v *uint256.Int) {
	prev := new(uint256.Int).Set(c.native)
	c.ledger.Record(func() {
		c.native = prev
	})
	c.native = new(uint256.Int).Add(c.native, v)
}

func (c *Controller) debitNative(v *uint256.Int) error {
	if c.native.Lt(v) {
		return fmt.Errorf("%w: router consumed %s native, holding %s",
			ErrConversionFailed, v.Dec(), c.native.Dec())
	}
	prev := new(uint256.Int).Set(c.native)
	c.ledger.Record(func() {
		c.native = prev
	})
	c.native = new(uint256.Int).Sub(c.native, v)
	return nil
}
