// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/reflectvm/addr"
	"github.com/luxfi/reflectvm/config"
	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/liquidity"
)

var (
	ErrInvalidPercent = errors.New("invalid percent")
	ErrNilRouter      = errors.New("router must be set")
)

// Every administrative operation takes the caller's identity first and fails
// with ownable.ErrUnauthorized unless it is the owner. Validation happens
// before any mutation.

func (t *Token) ExcludeFromReward(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	if err := t.ledger.ExcludeFromReward(a); err != nil {
		return err
	}
	t.ledger.Commit()
	t.log.Info("excluded from reward", log.Stringer("account", a))
	return nil
}

func (t *Token) IncludeInReward(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	if err := t.ledger.IncludeInReward(a); err != nil {
		return err
	}
	t.ledger.Commit()
	t.log.Info("included in reward", log.Stringer("account", a))
	return nil
}

func (t *Token) ExcludeFromFee(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.lists.ExcludeFromFee(a)
	return nil
}

func (t *Token) IncludeInFee(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.lists.IncludeInFee(a)
	return nil
}

// WhitelistAddress assigns tier to a.
func (t *Token) WhitelistAddress(caller, a ids.ShortID, tier int) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	if err := t.registry.CheckIndex(tier); err != nil {
		return err
	}
	return t.lists.Whitelist(a, tier)
}

// ExcludeWhitelistedAddress clears a's tier assignment.
func (t *Token) ExcludeWhitelistedAddress(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	return t.lists.RemoveWhitelist(a)
}

func (t *Token) AddToBlacklist(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.lists.Blacklist(a)
	return nil
}

func (t *Token) RemoveFromBlacklist(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.lists.Unblacklist(a)
	return nil
}

func (t *Token) SetEcoSystemFeePercent(caller ids.ShortID, tier int, bps uint16) error {
	return t.setFee(caller, tier, fees.EcoSystem, bps)
}

func (t *Token) SetLiquidityFeePercent(caller ids.ShortID, tier int, bps uint16) error {
	return t.setFee(caller, tier, fees.Liquidity, bps)
}

func (t *Token) SetTaxFeePercent(caller ids.ShortID, tier int, bps uint16) error {
	return t.setFee(caller, tier, fees.Tax, bps)
}

func (t *Token) SetOwnerFeePercent(caller ids.ShortID, tier int, bps uint16) error {
	return t.setFee(caller, tier, fees.Owner, bps)
}

func (t *Token) SetBurnFeePercent(caller ids.ShortID, tier int, bps uint16) error {
	return t.setFee(caller, tier, fees.Burn, bps)
}

func (t *Token) setFee(caller ids.ShortID, tier int, c fees.Component, bps uint16) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	if err := t.registry.SetFee(tier, c, bps); err != nil {
		return err
	}
	t.log.Info("fee updated",
		log.Int("tier", tier),
		log.Stringer("component", c),
		log.Uint64("bps", uint64(bps)),
	)
	return nil
}

func (t *Token) SetEcoSystemFeeAddress(caller ids.ShortID, tier int, a ids.ShortID) error {
	return t.setPayout(caller, tier, fees.EcoSystemPayout, a)
}

func (t *Token) SetOwnerFeeAddress(caller ids.ShortID, tier int, a ids.ShortID) error {
	return t.setPayout(caller, tier, fees.OwnerPayout, a)
}

func (t *Token) setPayout(caller ids.ShortID, tier int, role fees.Role, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	return t.registry.SetPayout(tier, role, a)
}

// AddTier appends a tier and returns its index.
func (t *Token) AddTier(caller ids.ShortID, tier fees.Tier) (int, error) {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return 0, err
	}
	i, err := t.registry.AddTier(tier)
	if err != nil {
		return 0, err
	}
	t.log.Info("tier added", log.Int("index", i))
	return i, nil
}

// SetMaxTxPercent caps transfers at bps basis points of the total supply.
func (t *Token) SetMaxTxPercent(caller ids.ShortID, bps uint64) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	if bps > fees.Denominator {
		return fmt.Errorf("%w: %d bps exceeds %d", ErrInvalidPercent, bps, fees.Denominator)
	}
	t.settings.MaxTransferAmount = config.MaxTransferAmount(t.ledger.TotalRealSupply(), bps)
	return nil
}

func (t *Token) SetSwapAndEvolveEnabled(caller ids.ShortID, enabled bool) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.settings.SwapAndEvolveEnabled = enabled
	t.log.Info("swap and evolve toggled", log.Bool("enabled", enabled))
	return nil
}

// SetAccumulationThreshold sets the real balance of the token's own account
// that triggers conversion.
func (t *Token) SetAccumulationThreshold(caller ids.ShortID, amount *uint256.Int) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.settings.AccumulationThreshold = new(uint256.Int).Set(amount)
	return nil
}

// SetBlockBlacklisted toggles rejection of transfers touching blacklisted
// accounts.
func (t *Token) SetBlockBlacklisted(caller ids.ShortID, enabled bool) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.settings.BlockBlacklisted = enabled
	return nil
}

// UpdateRouterAndPair replaces the liquidity collaborator.
func (t *Token) UpdateRouterAndPair(caller ids.ShortID, router liquidity.Router, pair ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	if router == nil {
		return ErrNilRouter
	}
	if err := addr.Verify(pair); err != nil {
		return err
	}
	t.controller.SetRouter(router)
	t.settings.Pair = pair
	t.log.Info("router updated",
		log.Stringer("router", router.Address()),
		log.Stringer("pair", pair),
	)
	return nil
}

// SetTreasury sets the recipient of pool shares.
func (t *Token) SetTreasury(caller, a ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	return t.controller.SetTreasury(a)
}

// SetDefaultSettings restores the tiers, limits and toggles the token was
// configured with. Tiers appended after creation are kept.
func (t *Token) SetDefaultSettings(caller ids.ShortID) error {
	if err := t.owner.OnlyOwner(caller); err != nil {
		return err
	}
	t.registry.ResetTo(t.config.Tiers)
	t.settings.MaxTransferAmount = t.config.MaxTransferAmount()
	t.settings.SwapAndEvolveEnabled = t.config.SwapAndEvolveEnabled
	t.settings.AccumulationThreshold = t.config.AccumulationThresholdUnits()
	t.settings.BlockBlacklisted = t.config.BlockBlacklisted
	t.log.Info("default settings restored")
	return nil
}

// TransferOwnership hands administration to next.
func (t *Token) TransferOwnership(caller, next ids.ShortID) error {
	if err := t.owner.TransferOwnership(caller, next); err != nil {
		return err
	}
	t.log.Info("ownership transferred",
		log.Stringer("from", caller),
		log.Stringer("to", next),
	)
	return nil
}
