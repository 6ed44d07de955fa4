// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package acl tracks the per-account membership lists that modulate the
// transfer pipeline: reward exclusion, fee exclusion, blacklist and
// whitelist-with-tier.
package acl

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/addr"
)

var (
	ErrAccountBlacklisted = errors.New("selected account is in blacklist")
	ErrNotWhitelisted     = errors.New("account is not in whitelist")
)

// List names one of the membership sets.
type List uint8

const (
	RewardExcluded List = iota
	FeeExcluded
	Blacklisted
	Whitelisted
)

func (l List) String() string {
	switch l {
	case RewardExcluded:
		return "reward_excluded"
	case FeeExcluded:
		return "fee_excluded"
	case Blacklisted:
		return "blacklisted"
	case Whitelisted:
		return "whitelisted"
	default:
		return "unknown"
	}
}

// Lists holds the four independent membership sets. Reward exclusion is
// written only by the balance engine, which keeps it in lockstep with the
// account representation.
type Lists struct {
	rewardExcluded map[ids.ShortID]struct{}
	feeExcluded    map[ids.ShortID]struct{}
	blacklisted    map[ids.ShortID]struct{}
	whitelist      map[ids.ShortID]int
}

// New returns empty lists.
func New() *Lists {
	return &Lists{
		rewardExcluded: make(map[ids.ShortID]struct{}),
		feeExcluded:    make(map[ids.ShortID]struct{}),
		blacklisted:    make(map[ids.ShortID]struct{}),
		whitelist:      make(map[ids.ShortID]int),
	}
}

// IsExcludedFromReward reports whether a is excluded from reward accrual.
func (l *Lists) IsExcludedFromReward(a ids.ShortID) bool {
	_, ok := l.rewardExcluded[a]
	return ok
}

// MarkRewardExcluded records a's reward-exclusion membership.
func (l *Lists) MarkRewardExcluded(a ids.ShortID, excluded bool) {
	if excluded {
		l.rewardExcluded[a] = struct{}{}
		return
	}
	delete(l.rewardExcluded, a)
}

// IsExcludedFromFee reports whether a neither pays nor causes fees.
func (l *Lists) IsExcludedFromFee(a ids.ShortID) bool {
	_, ok := l.feeExcluded[a]
	return ok
}

// ExcludeFromFee adds a to the fee-exclusion set.
func (l *Lists) ExcludeFromFee(a ids.ShortID) {
	l.feeExcluded[a] = struct{}{}
}

// IncludeInFee removes a from the fee-exclusion set.
func (l *Lists) IncludeInFee(a ids.ShortID) {
	delete(l.feeExcluded, a)
}

// IsBlacklisted reports whether a is blacklisted.
func (l *Lists) IsBlacklisted(a ids.ShortID) bool {
	_, ok := l.blacklisted[a]
	return ok
}

// Blacklist adds a to the blacklist.
func (l *Lists) Blacklist(a ids.ShortID) {
	l.blacklisted[a] = struct{}{}
}

// Unblacklist removes a from the blacklist.
func (l *Lists) Unblacklist(a ids.ShortID) {
	delete(l.blacklisted, a)
}

// Whitelist assigns tier to a. The tier index range is validated by the
// caller against the fee registry.
func (l *Lists) Whitelist(a ids.ShortID, tier int) error {
	if err := addr.Verify(a); err != nil {
		return err
	}
	if l.IsBlacklisted(a) {
		return fmt.Errorf("%w: %s", ErrAccountBlacklisted, a)
	}
	l.whitelist[a] = tier
	return nil
}

// RemoveWhitelist clears a's tier assignment.
func (l *Lists) RemoveWhitelist(a ids.ShortID) error {
	if err := addr.Verify(a); err != nil {
		return err
	}
	if _, ok := l.whitelist[a]; !ok {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, a)
	}
	delete(l.whitelist, a)
	return nil
}

// IsWhitelisted reports whether a has an assigned tier.
func (l *Lists) IsWhitelisted(a ids.ShortID) bool {
	_, ok := l.whitelist[a]
	return ok
}

// WhitelistTier returns a's assigned tier, if any.
func (l *Lists) WhitelistTier(a ids.ShortID) (int, bool) {
	tier, ok := l.whitelist[a]
	return tier, ok
}

// Members returns the members of list in ascending address order.
func (l *Lists) Members(list List) []ids.ShortID {
	var set map[ids.ShortID]struct{}
	switch list {
	case RewardExcluded:
		set = l.rewardExcluded
	case FeeExcluded:
		set = l.feeExcluded
	case Blacklisted:
		set = l.blacklisted
	case Whitelisted:
		members := make([]ids.ShortID, 0, len(l.whitelist))
		for a := range l.whitelist {
			members = append(members, a)
		}
		return sortAddrs(members)
	default:
		return nil
	}
	members := make([]ids.ShortID, 0, len(set))
	for a := range set {
		members = append(members, a)
	}
	return sortAddrs(members)
}

func sortAddrs(s []ids.ShortID) []ids.ShortID {
	sort.Slice(s, func(i, j int) bool {
		return bytes.Compare(s[i][:], s[j][:]) < 0
	})
	return s
}
