// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists the reflection ledger.
//
// Each entity is stored under its own key so that an account lookup does not
// decode the whole ledger:
//
//	global                  ledger aggregates
//	meta                    owner, treasury, settings, native balance
//	tier:<index>            fee tier
//	account:<address>       account record
//	list:<list><address>    access list membership
//	pool                    liquidity pool and positions
//	lastBlock               height and timestamp of the last block
package state

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/cache"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/acl"
	"github.com/luxfi/reflectvm/amm"
	"github.com/luxfi/reflectvm/fees"
	"github.com/luxfi/reflectvm/ledger"
	"github.com/luxfi/reflectvm/pipeline"
	"github.com/luxfi/reflectvm/token"
)

const (
	accountCacheSize = 4096
	shortIDLen       = 20
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNotInitialized  = errors.New("state not initialized")
	ErrStateCorrupted  = errors.New("state corrupted")

	keyGlobal    = []byte("global")
	keyMeta      = []byte("meta")
	keyPool      = []byte("pool")
	keyLastBlock = []byte("lastBlock")

	prefixTier    = []byte("tier:")
	prefixAccount = []byte("account:")
	prefixList    = []byte("list:")
)

type meta struct {
	Owner    ids.ShortID       `json:"owner"`
	Treasury ids.ShortID       `json:"treasury"`
	Settings pipeline.Settings `json:"settings"`
	Native   *uint256.Int      `json:"native"`
}

type pool struct {
	Pool      *amm.Pool      `json:"pool"`
	Positions []amm.Position `json:"positions"`
}

// State reads and writes token snapshots.
type State struct {
	db       database.Database
	accounts *cache.LRU[ids.ShortID, *ledger.Account]
}

// New returns a state backed by db.
func New(db database.Database) *State {
	return &State{
		db:       db,
		accounts: &cache.LRU[ids.ShortID, *ledger.Account]{Size: accountCacheSize},
	}
}

// IsInitialized reports whether a snapshot has been saved.
func (s *State) IsInitialized() (bool, error) {
	return s.db.Has(keyGlobal)
}

// Save writes snap in one batch. Access list entries that are no longer
// present are deleted; accounts and tiers are never removed.
func (s *State) Save(snap *token.Snapshot) error {
	batch := s.db.NewBatch()

	if err := putJSON(batch, keyGlobal, snap.Globals); err != nil {
		return err
	}
	if err := putJSON(batch, keyMeta, meta{
		Owner:    snap.Owner,
		Treasury: snap.Treasury,
		Settings: snap.Settings,
		Native:   snap.Native,
	}); err != nil {
		return err
	}
	for i, tier := range snap.Tiers {
		if err := putJSON(batch, tierKey(i), tier); err != nil {
			return err
		}
	}
	for _, acct := range snap.Accounts {
		if err := putJSON(batch, accountKey(acct.Address), acct); err != nil {
			return err
		}
	}

	members := make(map[string][]byte)
	for _, a := range snap.FeeExcluded {
		members[string(listKey(acl.FeeExcluded, a))] = []byte{1}
	}
	for _, a := range snap.Blacklisted {
		members[string(listKey(acl.Blacklisted, a))] = []byte{1}
	}
	for _, e := range snap.Whitelist {
		members[string(listKey(acl.Whitelisted, e.Address))] = binary.BigEndian.AppendUint32(nil, uint32(e.Tier))
	}
	stale, err := s.staleListKeys(members)
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := batch.Delete(k); err != nil {
			return err
		}
	}
	for k, v := range members {
		if err := batch.Put([]byte(k), v); err != nil {
			return err
		}
	}

	if err := batch.Write(); err != nil {
		return err
	}
	for _, acct := range snap.Accounts {
		s.accounts.Put(acct.Address, acct)
	}
	return nil
}

func (s *State) staleListKeys(keep map[string][]byte) ([][]byte, error) {
	it := s.db.NewIteratorWithPrefix(prefixList)
	defer it.Release()

	var stale [][]byte
	for it.Next() {
		if _, ok := keep[string(it.Key())]; !ok {
			stale = append(stale, append([]byte(nil), it.Key()...))
		}
	}
	return stale, it.Error()
}

// Load reads the saved snapshot.
func (s *State) Load() (*token.Snapshot, error) {
	snap := &token.Snapshot{}
	if err := s.getJSON(keyGlobal, &snap.Globals); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	var m meta
	if err := s.getJSON(keyMeta, &m); err != nil {
		return nil, fmt.Errorf("%w: meta: %w", ErrStateCorrupted, err)
	}
	snap.Owner = m.Owner
	snap.Treasury = m.Treasury
	snap.Settings = m.Settings
	snap.Native = m.Native

	tiers, err := s.loadTiers()
	if err != nil {
		return nil, err
	}
	snap.Tiers = tiers

	accounts, err := s.loadAccounts()
	if err != nil {
		return nil, err
	}
	snap.Accounts = accounts

	if err := s.loadLists(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *State) loadTiers() ([]fees.Tier, error) {
	it := s.db.NewIteratorWithPrefix(prefixTier)
	defer it.Release()

	var tiers []fees.Tier
	for it.Next() {
		index := binary.BigEndian.Uint32(it.Key()[len(prefixTier):])
		if int(index) != len(tiers) {
			return nil, fmt.Errorf("%w: tier %d out of sequence", ErrStateCorrupted, index)
		}
		var tier fees.Tier
		if err := json.Unmarshal(it.Value(), &tier); err != nil {
			return nil, fmt.Errorf("%w: tier %d: %w", ErrStateCorrupted, index, err)
		}
		tiers = append(tiers, tier)
	}
	return tiers, it.Error()
}

func (s *State) loadAccounts() ([]*ledger.Account, error) {
	it := s.db.NewIteratorWithPrefix(prefixAccount)
	defer it.Release()

	var accounts []*ledger.Account
	for it.Next() {
		acct := &ledger.Account{}
		if err := json.Unmarshal(it.Value(), acct); err != nil {
			return nil, fmt.Errorf("%w: account: %w", ErrStateCorrupted, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, it.Error()
}

func (s *State) loadLists(snap *token.Snapshot) error {
	it := s.db.NewIteratorWithPrefix(prefixList)
	defer it.Release()

	for it.Next() {
		key := it.Key()[len(prefixList):]
		if len(key) != 1+shortIDLen {
			return fmt.Errorf("%w: list key length %d", ErrStateCorrupted, len(key))
		}
		a, err := ids.ToShortID(key[1:])
		if err != nil {
			return err
		}
		switch acl.List(key[0]) {
		case acl.FeeExcluded:
			snap.FeeExcluded = append(snap.FeeExcluded, a)
		case acl.Blacklisted:
			snap.Blacklisted = append(snap.Blacklisted, a)
		case acl.Whitelisted:
			v := it.Value()
			if len(v) != 4 {
				return fmt.Errorf("%w: whitelist tier of %s", ErrStateCorrupted, a)
			}
			snap.Whitelist = append(snap.Whitelist, token.WhitelistEntry{
				Address: a,
				Tier:    int(binary.BigEndian.Uint32(v)),
			})
		default:
			return fmt.Errorf("%w: unknown list %d", ErrStateCorrupted, key[0])
		}
	}
	return it.Error()
}

// GetAccount returns the saved record of a.
func (s *State) GetAccount(a ids.ShortID) (*ledger.Account, error) {
	if acct, ok := s.accounts.Get(a); ok {
		return acct, nil
	}
	acct := &ledger.Account{}
	if err := s.getJSON(accountKey(a), acct); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	s.accounts.Put(a, acct)
	return acct, nil
}

// SavePool writes the pool and its positions.
func (s *State) SavePool(p *amm.Pool, positions []amm.Position) error {
	return putJSON(s.db, keyPool, pool{Pool: p, Positions: positions})
}

// LoadPool reads the pool. ok is false if none was saved.
func (s *State) LoadPool() (p *amm.Pool, positions []amm.Position, ok bool, err error) {
	var v pool
	switch err := s.getJSON(keyPool, &v); {
	case errors.Is(err, database.ErrNotFound):
		return nil, nil, false, nil
	case err != nil:
		return nil, nil, false, fmt.Errorf("%w: pool: %w", ErrStateCorrupted, err)
	}
	return v.Pool, v.Positions, true, nil
}

// SetLastBlock records the last processed block.
func (s *State) SetLastBlock(height uint64, timestamp time.Time) error {
	data := make([]byte, 16)
	binary.BigEndian.PutUint64(data[:8], height)
	binary.BigEndian.PutUint64(data[8:], uint64(timestamp.Unix()))
	return s.db.Put(keyLastBlock, data)
}

// GetLastBlock returns the last processed block, or zero values before the
// first one.
func (s *State) GetLastBlock() (uint64, time.Time, error) {
	data, err := s.db.Get(keyLastBlock)
	if errors.Is(err, database.ErrNotFound) {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(data) != 16 {
		return 0, time.Time{}, fmt.Errorf("%w: last block length %d", ErrStateCorrupted, len(data))
	}
	height := binary.BigEndian.Uint64(data[:8])
	timestamp := time.Unix(int64(binary.BigEndian.Uint64(data[8:])), 0)
	return height, timestamp, nil
}

func (s *State) getJSON(key []byte, v any) error {
	data, err := s.db.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func putJSON(w database.KeyValueWriter, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func tierKey(i int) []byte {
	return binary.BigEndian.AppendUint32(append([]byte(nil), prefixTier...), uint32(i))
}

func accountKey(a ids.ShortID) []byte {
	return append(append([]byte(nil), prefixAccount...), a[:]...)
}

func listKey(list acl.List, a ids.ShortID) []byte {
	key := append(append([]byte(nil), prefixList...), byte(list))
	return append(key, a[:]...)
}
