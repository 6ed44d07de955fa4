// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflectvm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/pipeline"
)

var (
	errUnknownTxKind = errors.New("unknown tx kind")
	errMissingField  = errors.New("missing field")
	errNoPool        = errors.New("no pool configured")
)

// TxKind names the operation a transaction performs.
type TxKind string

const (
	Transfer TxKind = "transfer"
	// AddLiquidity provides tokens and Native to the pool. The simulated
	// pool takes Native at face value: callers have no native balance to
	// debit.
	AddLiquidity              TxKind = "addLiquidity"
	ExcludeFromReward         TxKind = "excludeFromReward"
	IncludeInReward           TxKind = "includeInReward"
	ExcludeFromFee            TxKind = "excludeFromFee"
	IncludeInFee              TxKind = "includeInFee"
	WhitelistAddress          TxKind = "whitelistAddress"
	ExcludeWhitelistedAddress TxKind = "excludeWhitelistedAddress"
	AddToBlacklist            TxKind = "addToBlacklist"
	RemoveFromBlacklist       TxKind = "removeFromBlacklist"
	SetEcoSystemFeePercent    TxKind = "setEcoSystemFeePercent"
	SetLiquidityFeePercent    TxKind = "setLiquidityFeePercent"
	SetTaxFeePercent          TxKind = "setTaxFeePercent"
	SetOwnerFeePercent        TxKind = "setOwnerFeePercent"
	SetBurnFeePercent         TxKind = "setBurnFeePercent"
	SetEcoSystemFeeAddress    TxKind = "setEcoSystemFeeAddress"
	SetOwnerFeeAddress        TxKind = "setOwnerFeeAddress"
	AddTier                   TxKind = "addTier"
	SetMaxTxPercent           TxKind = "setMaxTxPercent"
	SetSwapAndEvolveEnabled   TxKind = "setSwapAndEvolveEnabled"
	SetAccumulationThreshold  TxKind = "setAccumulationThreshold"
	SetBlockBlacklisted       TxKind = "setBlockBlacklisted"
	SetTreasury               TxKind = "setTreasury"
	SetDefaultSettings        TxKind = "setDefaultSettings"
	TransferOwnership         TxKind = "transferOwnership"
)

// Tx is one operation issued by Caller. Only the fields its kind reads are
// set.
type Tx struct {
	Kind   TxKind      `json:"kind"`
	Caller ids.ShortID `json:"caller"`

	// To is the recipient of a transfer, or the account an administrative
	// operation targets.
	To     ids.ShortID  `json:"to,omitempty"`
	Amount *uint256.Int `json:"amount,omitempty"`
	// Native is the native value deposited by addLiquidity.
	Native  *uint256.Int `json:"native,omitempty"`
	Tier    int          `json:"tier,omitempty"`
	Bps     uint64       `json:"bps,omitempty"`
	Enabled bool         `json:"enabled,omitempty"`
	Fees    *fees.Tier   `json:"fees,omitempty"`
}

// TxResult is the outcome of one transaction in a block.
type TxResult struct {
	Kind    TxKind            `json:"kind"`
	Caller  ids.ShortID       `json:"caller"`
	Error   string            `json:"error,omitempty"`
	Receipt *pipeline.Receipt `json:"receipt,omitempty"`
}

// ParseTx decodes a transaction.
func ParseTx(b []byte) (*Tx, error) {
	tx := &Tx{}
	if err := json.Unmarshal(b, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Bytes returns the JSON encoding of tx.
func (tx *Tx) Bytes() ([]byte, error) {
	return json.Marshal(tx)
}

func (tx *Tx) amount() (*uint256.Int, error) {
	if tx.Amount == nil {
		return nil, fmt.Errorf("%w: amount", errMissingField)
	}
	return tx.Amount, nil
}

func (tx *Tx) bps16() (uint16, error) {
	if tx.Bps > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d bps", fees.ErrFeeLimitExceeded, tx.Bps)
	}
	return uint16(tx.Bps), nil
}

// execute applies tx to the VM's token. Each operation either succeeds or
// leaves the token unchanged.
func (vm *VM) execute(ctx context.Context, tx *Tx, result *TxResult) error {
	tk := vm.token
	switch tx.Kind {
	case Transfer:
		amount, err := tx.amount()
		if err != nil {
			return err
		}
		receipt, err := tk.Transfer(ctx, tx.Caller, tx.To, amount)
		if err != nil {
			return err
		}
		result.Receipt = receipt
		return nil
	case AddLiquidity:
		if vm.router == nil {
			return errNoPool
		}
		amount, err := tx.amount()
		if err != nil {
			return err
		}
		if tx.Native == nil {
			return fmt.Errorf("%w: native", errMissingField)
		}
		_, err = vm.router.Provide(ctx, tx.Caller, amount, new(uint256.Int), new(uint256.Int), tx.Native, tx.Caller, vm.clock.Time())
		return err
	case ExcludeFromReward:
		return tk.ExcludeFromReward(tx.Caller, tx.To)
	case IncludeInReward:
		return tk.IncludeInReward(tx.Caller, tx.To)
	case ExcludeFromFee:
		return tk.ExcludeFromFee(tx.Caller, tx.To)
	case IncludeInFee:
		return tk.IncludeInFee(tx.Caller, tx.To)
	case WhitelistAddress:
		return tk.WhitelistAddress(tx.Caller, tx.To, tx.Tier)
	case ExcludeWhitelistedAddress:
		return tk.ExcludeWhitelistedAddress(tx.Caller, tx.To)
	case AddToBlacklist:
		return tk.AddToBlacklist(tx.Caller, tx.To)
	case RemoveFromBlacklist:
		return tk.RemoveFromBlacklist(tx.Caller, tx.To)
	case SetEcoSystemFeePercent, SetLiquidityFeePercent, SetTaxFeePercent, SetOwnerFeePercent, SetBurnFeePercent:
		bps, err := tx.bps16()
		if err != nil {
			return err
		}
		switch tx.Kind {
		case SetEcoSystemFeePercent:
			return tk.SetEcoSystemFeePercent(tx.Caller, tx.Tier, bps)
		case SetLiquidityFeePercent:
			return tk.SetLiquidityFeePercent(tx.Caller, tx.Tier, bps)
		case SetTaxFeePercent:
			return tk.SetTaxFeePercent(tx.Caller, tx.Tier, bps)
		case SetOwnerFeePercent:
			return tk.SetOwnerFeePercent(tx.Caller, tx.Tier, bps)
		default:
			return tk.SetBurnFeePercent(tx.Caller, tx.Tier, bps)
		}
	case SetEcoSystemFeeAddress:
		return tk.SetEcoSystemFeeAddress(tx.Caller, tx.Tier, tx.To)
	case SetOwnerFeeAddress:
		return tk.SetOwnerFeeAddress(tx.Caller, tx.Tier, tx.To)
	case AddTier:
		if tx.Fees == nil {
			return fmt.Errorf("%w: fees", errMissingField)
		}
		_, err := tk.AddTier(tx.Caller, *tx.Fees)
		return err
	case SetMaxTxPercent:
		return tk.SetMaxTxPercent(tx.Caller, tx.Bps)
	case SetSwapAndEvolveEnabled:
		return tk.SetSwapAndEvolveEnabled(tx.Caller, tx.Enabled)
	case SetAccumulationThreshold:
		amount, err := tx.amount()
		if err != nil {
			return err
		}
		return tk.SetAccumulationThreshold(tx.Caller, amount)
	case SetBlockBlacklisted:
		return tk.SetBlockBlacklisted(tx.Caller, tx.Enabled)
	case SetTreasury:
		return tk.SetTreasury(tx.Caller, tx.To)
	case SetDefaultSettings:
		return tk.SetDefaultSettings(tx.Caller)
	case TransferOwnership:
		return tk.TransferOwnership(tx.Caller, tx.To)
	default:
		return fmt.Errorf("%w: %q", errUnknownTxKind, tx.Kind)
	}
}
