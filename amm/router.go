// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package amm is a minimal constant-product router with a single token/native
// pair. It serves as the liquidity collaborator of the simulator and of
// integration tests.
package amm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/reflectvm/addr"
	"github.com/luxfi/reflectvm/liquidity"
	"github.com/luxfi/reflectvm/pipeline"
	"github.com/luxfi/reflectvm/utils/timer/mockable"
)

var (
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrSlippageExceeded      = errors.New("slippage exceeded")
	ErrZeroLiquidity         = errors.New("zero liquidity not allowed")
	ErrInvalidPath           = errors.New("invalid path")
	ErrExpired               = errors.New("deadline expired")
	ErrNotBound              = errors.New("router not bound to a token")

	_ liquidity.Router = (*Router)(nil)
)

// DefaultFeeBps is the trading fee of the pool.
const DefaultFeeBps = 30

// Token is the ledger the router trades against.
type Token interface {
	Transfer(ctx context.Context, from, to ids.ShortID, amount *uint256.Int) (*pipeline.Receipt, error)
	BalanceOf(a ids.ShortID) *uint256.Int
}

// Journal records undo operations so that router state reverts together with
// a failed transfer.
type Journal interface {
	Record(undo func())
}

// Config identifies the router and its pair.
type Config struct {
	Address       ids.ShortID `json:"address"`
	WrappedNative ids.ShortID `json:"wrappedNative"`
	Pair          ids.ShortID `json:"pair"`
	FeeBps        uint16      `json:"feeBps"`
}

// Router implements liquidity.Router over one pool.
type Router struct {
	log     log.Logger
	config  Config
	clock   *mockable.Clock
	journal Journal

	token Token
	// caller is the account both entry points pull tokens from.
	caller ids.ShortID

	pool      *Pool
	positions map[ids.ShortID]*uint256.Int
}

// New returns an empty router.
func New(logger log.Logger, config Config, clock *mockable.Clock) (*Router, error) {
	for _, a := range []ids.ShortID{config.Address, config.WrappedNative, config.Pair} {
		if err := addr.Verify(a); err != nil {
			return nil, err
		}
	}
	if config.FeeBps >= 10_000 {
		return nil, fmt.Errorf("%w: fee %d bps", ErrInvalidAmount, config.FeeBps)
	}
	return &Router{
		log:       logger,
		config:    config,
		clock:     clock,
		pool:      newPool(config.FeeBps),
		positions: make(map[ids.ShortID]*uint256.Int),
	}, nil
}

// Bind connects the router to the token it trades and the account it pulls
// from. j receives undo records for every pool mutation.
func (r *Router) Bind(token Token, caller ids.ShortID, j Journal) {
	r.token = token
	r.caller = caller
	r.journal = j
}

// Address implements liquidity.Router.
func (r *Router) Address() ids.ShortID {
	return r.config.Address
}

// WrappedNative implements liquidity.Router.
func (r *Router) WrappedNative() ids.ShortID {
	return r.config.WrappedNative
}

// Pair returns the pool-pair address holding the token reserve.
func (r *Router) Pair() ids.ShortID {
	return r.config.Pair
}

// Pool returns a copy of the pool.
func (r *Router) Pool() *Pool {
	return r.pool.clone()
}

// LiquidityOf returns the LP shares held by a.
func (r *Router) LiquidityOf(a ids.ShortID) *uint256.Int {
	if v, ok := r.positions[a]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

// Positions returns every LP position in ascending owner order.
func (r *Router) Positions() []Position {
	out := make([]Position, 0, len(r.positions))
	for owner, v := range r.positions {
		out = append(out, Position{Owner: owner, Liquidity: new(uint256.Int).Set(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Owner[:], out[j].Owner[:]) < 0
	})
	return out
}

// Restore replaces the pool and positions with persisted copies.
func (r *Router) Restore(pool *Pool, positions []Position) {
	r.pool = pool.clone()
	r.pool.FeeBps = r.config.FeeBps
	r.positions = make(map[ids.ShortID]*uint256.Int, len(positions))
	for _, p := range positions {
		r.positions[p.Owner] = new(uint256.Int).Set(p.Liquidity)
	}
}

// GetQuote returns the native amount a swap of amountIn tokens would yield.
func (r *Router) GetQuote(amountIn *uint256.Int) (*uint256.Int, error) {
	return getAmountOut(amountIn, r.pool.ReserveToken, r.pool.ReserveNative, r.pool.FeeBps)
}

// SwapExactTokensForNative implements liquidity.Router.
func (r *Router) SwapExactTokensForNative(
	ctx context.Context,
	amountIn *uint256.Int,
	amountOutMin *uint256.Int,
	path []ids.ShortID,
	to ids.ShortID,
	deadline time.Time,
) (*uint256.Int, error) {
	if err := r.check(deadline); err != nil {
		return nil, err
	}
	if len(path) != 2 || path[0] != r.caller || path[1] != r.config.WrappedNative {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	if err := addr.Verify(to); err != nil {
		return nil, err
	}

	received, err := r.pull(ctx, r.caller, amountIn)
	if err != nil {
		return nil, err
	}
	amountOut, err := getAmountOut(received, r.pool.ReserveToken, r.pool.ReserveNative, r.pool.FeeBps)
	if err != nil {
		return nil, err
	}
	if amountOut.Lt(amountOutMin) {
		return nil, fmt.Errorf("%w: %s < %s", ErrSlippageExceeded, amountOut.Dec(), amountOutMin.Dec())
	}

	r.save()
	r.pool.ReserveToken.Add(r.pool.ReserveToken, received)
	r.pool.ReserveNative.Sub(r.pool.ReserveNative, amountOut)
	r.pool.VolumeToken.Add(r.pool.VolumeToken, received)
	r.pool.TxCount++

	r.log.Debug("swapped tokens for native",
		log.String("amountIn", received.Dec()),
		log.String("amountOut", amountOut.Dec()),
		log.Stringer("to", to),
	)
	return amountOut, nil
}

// AddLiquidityNative implements liquidity.Router, pulling tokens from the
// bound caller.
func (r *Router) AddLiquidityNative(
	ctx context.Context,
	token ids.ShortID,
	amountTokenDesired *uint256.Int,
	amountTokenMin *uint256.Int,
	amountNativeMin *uint256.Int,
	nativeValue *uint256.Int,
	to ids.ShortID,
	deadline time.Time,
) (*liquidity.Deposit, error) {
	if token != r.caller {
		return nil, fmt.Errorf("%w: unknown token %s", ErrInvalidPath, token)
	}
	return r.Provide(ctx, r.caller, amountTokenDesired, amountTokenMin, amountNativeMin, nativeValue, to, deadline)
}

// Provide deposits tokens pulled from from together with nativeValue native
// currency and mints the shares to to. Native currency beyond the amount the
// reserve ratio requires is not consumed.
func (r *Router) Provide(
	ctx context.Context,
	from ids.ShortID,
	amountTokenDesired *uint256.Int,
	amountTokenMin *uint256.Int,
	amountNativeMin *uint256.Int,
	nativeValue *uint256.Int,
	to ids.ShortID,
	deadline time.Time,
) (*liquidity.Deposit, error) {
	if err := r.check(deadline); err != nil {
		return nil, err
	}
	if err := addr.Verify(to); err != nil {
		return nil, err
	}
	if amountTokenDesired.IsZero() || nativeValue.IsZero() {
		return nil, ErrInvalidAmount
	}

	amountToken, amountNative, err := r.optimalAmounts(amountTokenDesired, nativeValue, amountTokenMin, amountNativeMin)
	if err != nil {
		return nil, err
	}
	// Reject dust before any tokens move.
	if r.pool.mintLiquidity(amountToken, amountNative).IsZero() {
		return nil, ErrZeroLiquidity
	}
	received, err := r.pull(ctx, from, amountToken)
	if err != nil {
		return nil, err
	}
	minted := r.pool.mintLiquidity(received, amountNative)
	if minted.IsZero() {
		return nil, ErrZeroLiquidity
	}

	r.save()
	r.pool.ReserveToken.Add(r.pool.ReserveToken, received)
	r.pool.ReserveNative.Add(r.pool.ReserveNative, amountNative)
	r.pool.TotalSupply.Add(r.pool.TotalSupply, minted)
	position := r.LiquidityOf(to)
	r.positions[to] = position.Add(position, minted)

	r.log.Debug("added liquidity",
		log.String("amountToken", received.Dec()),
		log.String("amountNative", amountNative.Dec()),
		log.String("liquidity", minted.Dec()),
		log.Stringer("to", to),
	)
	return &liquidity.Deposit{
		AmountToken:  received,
		AmountNative: amountNative,
		Liquidity:    minted,
	}, nil
}

func (r *Router) optimalAmounts(tokenDesired, nativeDesired, tokenMin, nativeMin *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if r.pool.ReserveToken.IsZero() && r.pool.ReserveNative.IsZero() {
		return tokenDesired, nativeDesired, nil
	}
	nativeOptimal := quote(tokenDesired, r.pool.ReserveToken, r.pool.ReserveNative)
	if !nativeOptimal.Gt(nativeDesired) {
		if nativeOptimal.Lt(nativeMin) {
			return nil, nil, fmt.Errorf("%w: native %s < %s", ErrSlippageExceeded, nativeOptimal.Dec(), nativeMin.Dec())
		}
		return tokenDesired, nativeOptimal, nil
	}
	tokenOptimal := quote(nativeDesired, r.pool.ReserveNative, r.pool.ReserveToken)
	if tokenOptimal.Lt(tokenMin) {
		return nil, nil, fmt.Errorf("%w: token %s < %s", ErrSlippageExceeded, tokenOptimal.Dec(), tokenMin.Dec())
	}
	return tokenOptimal, nativeDesired, nil
}

// pull transfers amount tokens from from to the pair and returns what the
// pair actually received.
func (r *Router) pull(ctx context.Context, from ids.ShortID, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	before := r.token.BalanceOf(r.config.Pair)
	if _, err := r.token.Transfer(ctx, from, r.config.Pair, amount); err != nil {
		return nil, err
	}
	after := r.token.BalanceOf(r.config.Pair)
	return new(uint256.Int).Sub(after, before), nil
}

func (r *Router) check(deadline time.Time) error {
	if r.token == nil {
		return ErrNotBound
	}
	if now := r.clock.Time(); deadline.Before(now) {
		return fmt.Errorf("%w: %s before %s", ErrExpired, deadline, now)
	}
	return nil
}

// save journals the pool and positions before a mutation.
func (r *Router) save() {
	if r.journal == nil {
		return
	}
	pool := r.pool.clone()
	positions := make(map[ids.ShortID]*uint256.Int, len(r.positions))
	for k, v := range r.positions {
		positions[k] = new(uint256.Int).Set(v)
	}
	r.journal.Record(func() {
		r.pool = pool
		r.positions = positions
	})
}
