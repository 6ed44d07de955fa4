// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api provides the read-only JSON-RPC service of the reflection VM.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/acl"
	"github.com/luxfi/reflectvm/amm"
	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/ledger"
	"github.com/luxfi/reflectvm/pipeline"
	"github.com/luxfi/reflectvm/utils/json"
)

var (
	ErrNotInitialized = errors.New("VM not initialized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoPool         = errors.New("no pool configured")
)

// Reader is the query surface of the token.
type Reader interface {
	Name() string
	Symbol() string
	Decimals() uint8
	TotalSupply() *uint256.Int
	TotalScaledSupply() *uint256.Int
	Rate() ledger.Rate
	BalanceOf(ids.ShortID) *uint256.Int
	IsExcludedFromReward(ids.ShortID) bool
	IsExcludedFromFee(ids.ShortID) bool
	IsBlacklisted(ids.ShortID) bool
	WhitelistTier(ids.ShortID) (int, bool)
	Members(acl.List) []ids.ShortID
	Tier(int) (fees.Tier, error)
	Tiers() []fees.Tier
	Settings() *pipeline.Settings
	Owner() ids.ShortID
	Treasury() ids.ShortID
	InLiquidityOperation() bool
	NativeBalance() *uint256.Int
}

// PoolReader is the query surface of the liquidity pool.
type PoolReader interface {
	Address() ids.ShortID
	Pair() ids.ShortID
	Pool() *amm.Pool
	LiquidityOf(ids.ShortID) *uint256.Int
	GetQuote(amountIn *uint256.Int) (*uint256.Int, error)
}

// VM interface for the API service. View and ViewPool run f while the VM
// holds its read lock.
type VM interface {
	IsBootstrapped() bool
	GetBlockHeight() uint64
	View(f func(Reader) error) error
	ViewPool(f func(PoolReader) error) error
}

// Service provides the RPC API.
type Service struct {
	vm VM
}

// NewService creates a new API service.
func NewService(vm VM) *Service {
	return &Service{vm: vm}
}

type PingArgs struct{}

type PingReply struct {
	Success bool `json:"success"`
}

func (s *Service) Ping(_ *http.Request, _ *PingArgs, reply *PingReply) error {
	reply.Success = true
	return nil
}

type StatusArgs struct{}

type StatusReply struct {
	Bootstrapped bool        `json:"bootstrapped"`
	Height       json.Uint64 `json:"height"`
}

func (s *Service) Status(_ *http.Request, _ *StatusArgs, reply *StatusReply) error {
	reply.Bootstrapped = s.vm.IsBootstrapped()
	reply.Height = json.Uint64(s.vm.GetBlockHeight())
	return nil
}

type GetTokenInfoArgs struct{}

type GetTokenInfoReply struct {
	Name              string       `json:"name"`
	Symbol            string       `json:"symbol"`
	Decimals          json.Uint32  `json:"decimals"`
	TotalSupply       *uint256.Int `json:"totalSupply"`
	TotalScaledSupply *uint256.Int `json:"totalScaledSupply"`
	Rate              string       `json:"rate"`
	Owner             ids.ShortID  `json:"owner"`
	Treasury          ids.ShortID  `json:"treasury"`
}

// GetTokenInfo returns the token metadata and supply figures.
func (s *Service) GetTokenInfo(_ *http.Request, _ *GetTokenInfoArgs, reply *GetTokenInfoReply) error {
	return s.vm.View(func(r Reader) error {
		reply.Name = r.Name()
		reply.Symbol = r.Symbol()
		reply.Decimals = json.Uint32(r.Decimals())
		reply.TotalSupply = r.TotalSupply()
		reply.TotalScaledSupply = r.TotalScaledSupply()
		reply.Rate = r.Rate().String()
		reply.Owner = r.Owner()
		reply.Treasury = r.Treasury()
		return nil
	})
}

type AddressArgs struct {
	Address ids.ShortID `json:"address"`
}

type BalanceReply struct {
	Balance *uint256.Int `json:"balance"`
}

// BalanceOf returns the real balance of an address.
func (s *Service) BalanceOf(_ *http.Request, args *AddressArgs, reply *BalanceReply) error {
	return s.vm.View(func(r Reader) error {
		reply.Balance = r.BalanceOf(args.Address)
		return nil
	})
}

type GetAccountReply struct {
	Balance            *uint256.Int `json:"balance"`
	ExcludedFromReward bool         `json:"excludedFromReward"`
	ExcludedFromFee    bool         `json:"excludedFromFee"`
	Blacklisted        bool         `json:"blacklisted"`
	WhitelistTier      *int         `json:"whitelistTier,omitempty"`
}

// GetAccount returns the balance and list memberships of an address.
func (s *Service) GetAccount(_ *http.Request, args *AddressArgs, reply *GetAccountReply) error {
	return s.vm.View(func(r Reader) error {
		reply.Balance = r.BalanceOf(args.Address)
		reply.ExcludedFromReward = r.IsExcludedFromReward(args.Address)
		reply.ExcludedFromFee = r.IsExcludedFromFee(args.Address)
		reply.Blacklisted = r.IsBlacklisted(args.Address)
		if tier, ok := r.WhitelistTier(args.Address); ok {
			reply.WhitelistTier = &tier
		}
		return nil
	})
}

type GetTierArgs struct {
	Index int `json:"index"`
}

type GetTierReply struct {
	Tier fees.Tier `json:"tier"`
}

func (s *Service) GetTier(_ *http.Request, args *GetTierArgs, reply *GetTierReply) error {
	return s.vm.View(func(r Reader) error {
		tier, err := r.Tier(args.Index)
		if err != nil {
			return err
		}
		reply.Tier = tier
		return nil
	})
}

type GetTiersArgs struct{}

type GetTiersReply struct {
	Tiers []fees.Tier `json:"tiers"`
}

func (s *Service) GetTiers(_ *http.Request, _ *GetTiersArgs, reply *GetTiersReply) error {
	return s.vm.View(func(r Reader) error {
		reply.Tiers = r.Tiers()
		return nil
	})
}

type GetSettingsArgs struct{}

type GetSettingsReply struct {
	Settings             *pipeline.Settings `json:"settings"`
	InLiquidityOperation bool               `json:"inLiquidityOperation"`
	NativeBalance        *uint256.Int       `json:"nativeBalance"`
}

// GetSettings returns the limits, toggles and liquidity state.
func (s *Service) GetSettings(_ *http.Request, _ *GetSettingsArgs, reply *GetSettingsReply) error {
	return s.vm.View(func(r Reader) error {
		reply.Settings = r.Settings()
		reply.InLiquidityOperation = r.InLiquidityOperation()
		reply.NativeBalance = r.NativeBalance()
		return nil
	})
}

type GetListMembersArgs struct {
	// List is one of reward_excluded, fee_excluded, blacklisted, whitelisted.
	List string `json:"list"`
}

type GetListMembersReply struct {
	Addresses []ids.ShortID `json:"addresses"`
}

func (s *Service) GetListMembers(_ *http.Request, args *GetListMembersArgs, reply *GetListMembersReply) error {
	list, err := parseList(args.List)
	if err != nil {
		return err
	}
	return s.vm.View(func(r Reader) error {
		reply.Addresses = r.Members(list)
		return nil
	})
}

func parseList(name string) (acl.List, error) {
	for _, l := range []acl.List{acl.RewardExcluded, acl.FeeExcluded, acl.Blacklisted, acl.Whitelisted} {
		if l.String() == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown list %q", ErrInvalidRequest, name)
}

type GetPoolArgs struct{}

type GetPoolReply struct {
	Router ids.ShortID `json:"router"`
	Pair   ids.ShortID `json:"pair"`
	Pool   *amm.Pool   `json:"pool"`
}

func (s *Service) GetPool(_ *http.Request, _ *GetPoolArgs, reply *GetPoolReply) error {
	return s.vm.ViewPool(func(p PoolReader) error {
		reply.Router = p.Address()
		reply.Pair = p.Pair()
		reply.Pool = p.Pool()
		return nil
	})
}

type GetQuoteArgs struct {
	AmountIn *uint256.Int `json:"amountIn"`
}

type GetQuoteReply struct {
	AmountOut *uint256.Int `json:"amountOut"`
}

// GetQuote returns the native currency a swap of AmountIn tokens would yield.
func (s *Service) GetQuote(_ *http.Request, args *GetQuoteArgs, reply *GetQuoteReply) error {
	if args.AmountIn == nil {
		return fmt.Errorf("%w: amountIn is required", ErrInvalidRequest)
	}
	return s.vm.ViewPool(func(p PoolReader) error {
		out, err := p.GetQuote(args.AmountIn)
		if err != nil {
			return err
		}
		reply.AmountOut = out
		return nil
	})
}

type GetLiquidityReply struct {
	Liquidity *uint256.Int `json:"liquidity"`
}

// GetLiquidity returns the pool shares held by an address.
func (s *Service) GetLiquidity(_ *http.Request, args *AddressArgs, reply *GetLiquidityReply) error {
	return s.vm.ViewPool(func(p PoolReader) error {
		reply.Liquidity = p.LiquidityOf(args.Address)
		return nil
	})
}
