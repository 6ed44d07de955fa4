// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/reflectvm/acl"
	"github.com/luxfi/reflectvm/config"
	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/ledger"
	"github.com/luxfi/reflectvm/ownable"
	"github.com/luxfi/reflectvm/pipeline"
	"github.com/luxfi/reflectvm/utils/timer/mockable"
)

// WhitelistEntry is one whitelist assignment.
type WhitelistEntry struct {
	Address ids.ShortID `json:"address"`
	Tier    int         `json:"tier"`
}

// Snapshot is the durable state of a token. The router is not part of it;
// callers reattach one after Restore.
type Snapshot struct {
	Owner       ids.ShortID       `json:"owner"`
	Treasury    ids.ShortID       `json:"treasury"`
	Settings    pipeline.Settings `json:"settings"`
	Tiers       []fees.Tier       `json:"tiers"`
	Globals     ledger.Globals    `json:"globals"`
	Accounts    []*ledger.Account `json:"accounts"`
	FeeExcluded []ids.ShortID     `json:"feeExcluded"`
	Blacklisted []ids.ShortID     `json:"blacklisted"`
	Whitelist   []WhitelistEntry  `json:"whitelist"`
	Native      *uint256.Int      `json:"native"`
}

// Snapshot captures the durable state.
func (t *Token) Snapshot() *Snapshot {
	s := &Snapshot{
		Owner:       t.owner.Owner(),
		Treasury:    t.controller.Treasury(),
		Settings:    *t.settings.Clone(),
		Tiers:       t.registry.Tiers(),
		Globals:     t.ledger.Globals(),
		Accounts:    t.ledger.Accounts(),
		FeeExcluded: t.lists.Members(acl.FeeExcluded),
		Blacklisted: t.lists.Members(acl.Blacklisted),
		Native:      t.controller.NativeBalance(),
	}
	for _, a := range t.lists.Members(acl.Whitelisted) {
		tier, _ := t.lists.WhitelistTier(a)
		s.Whitelist = append(s.Whitelist, WhitelistEntry{Address: a, Tier: tier})
	}
	return s
}

// Restore rebuilds a token from a snapshot.
func Restore(logger log.Logger, cfg config.Config, s *Snapshot, clock *mockable.Clock) (*Token, error) {
	owner, err := ownable.New(s.Owner)
	if err != nil {
		return nil, err
	}
	registry, err := fees.NewRegistry(s.Tiers)
	if err != nil {
		return nil, err
	}
	lists := acl.New()
	l, err := ledger.Restore(s.Globals, s.Accounts, lists)
	if err != nil {
		return nil, err
	}
	for _, a := range s.FeeExcluded {
		lists.ExcludeFromFee(a)
	}
	// Accounts blacklisted after being whitelisted keep their tier.
	for _, e := range s.Whitelist {
		if err := registry.CheckIndex(e.Tier); err != nil {
			return nil, err
		}
		if err := lists.Whitelist(e.Address, e.Tier); err != nil {
			return nil, err
		}
	}
	for _, a := range s.Blacklisted {
		lists.Blacklist(a)
	}

	t := assemble(logger, cfg, owner, lists, registry, l, s.Settings.Clone(), s.Treasury, clock)
	if s.Native != nil {
		t.controller.SetNativeBalance(s.Native)
	}
	return t, nil
}
