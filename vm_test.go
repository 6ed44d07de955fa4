// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflectvm

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/luxfi/reflectvm/api"
	"github.com/luxfi/reflectvm/config"
	"github.com/luxfi/reflectvm/ownable"
	"github.com/luxfi/reflectvm/utils/units"
)

const genesisTimestamp = 1_700_000_000

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testAccounts struct {
	alice ids.ShortID
	bob   ids.ShortID
}

func newTestGenesis(withPool bool) (*Genesis, testAccounts) {
	accounts := testAccounts{
		alice: ids.GenerateTestShortID(),
		bob:   ids.GenerateTestShortID(),
	}
	g := &Genesis{
		Timestamp: genesisTimestamp,
		Allocations: []Allocation{
			{Address: accounts.alice, Balance: 1_000_000},
		},
	}
	g.Owner = ids.GenerateTestShortID()
	g.Self = ids.GenerateTestShortID()
	g.Pair = ids.GenerateTestShortID()
	if withPool {
		g.Router = ids.GenerateTestShortID()
		g.WrappedNative = ids.GenerateTestShortID()
		g.Liquidity = &SeedLiquidity{
			Tokens: 1_000_000,
			Native: uint256.NewInt(1_000_000_000_000_000),
		}
	}
	return g, accounts
}

func newTestVM(t *testing.T, db database.Database, g *Genesis, configBytes []byte) *VM {
	t.Helper()

	genesisBytes, err := g.Bytes()
	require.NoError(t, err)

	vm := New(log.NewNoOpLogger(), metric.NewRegistry())
	require.NoError(t, vm.Initialize(context.Background(), db, genesisBytes, configBytes))
	return vm
}

func mustTx(t *testing.T, tx *Tx) []byte {
	t.Helper()
	b, err := tx.Bytes()
	require.NoError(t, err)
	return b
}

func blockTime(height uint64) time.Time {
	return time.Unix(genesisTimestamp+int64(height), 0)
}

func TestInitializeGenesis(t *testing.T) {
	require := require.New(t)

	g, accounts := newTestGenesis(true)
	vm := newTestVM(t, memdb.New(), g, nil)

	require.Zero(vm.GetBlockHeight())
	require.Equal(time.Unix(genesisTimestamp, 0), vm.GetLastBlockTime())
	require.False(vm.IsBootstrapped())

	balance, err := vm.BalanceOf(accounts.alice)
	require.NoError(err)
	require.Equal(units.Tokens(1_000_000).Dec(), balance)

	require.NoError(vm.ViewPool(func(p api.PoolReader) error {
		require.Equal(g.Router, p.Address())
		require.Equal(g.Pair, p.Pair())
		require.Equal(units.Tokens(1_000_000), p.Pool().ReserveToken)
		require.Equal(g.Liquidity.Native, p.Pool().ReserveNative)
		require.False(p.LiquidityOf(g.Owner).IsZero())
		return nil
	}))

	require.NoError(vm.SetState(context.Background(), NormalOp))
	require.True(vm.IsBootstrapped())
	require.ErrorIs(vm.SetState(context.Background(), Unknown), errUnknownState)

	details, err := vm.HealthCheck(context.Background())
	require.NoError(err)
	require.Equal(true, details.(map[string]interface{})["pool"])

	require.NoError(vm.Shutdown(context.Background()))
}

func TestInitializeWithoutPool(t *testing.T) {
	require := require.New(t)

	g, _ := newTestGenesis(false)
	vm := newTestVM(t, memdb.New(), g, nil)

	require.ErrorIs(vm.ViewPool(func(api.PoolReader) error { return nil }), api.ErrNoPool)
	require.NoError(vm.Shutdown(context.Background()))
}

func TestInitializeInvalid(t *testing.T) {
	tests := []struct {
		name        string
		genesis     func() []byte
		config      []byte
		expectedErr error
	}{
		{
			name:        "missing genesis",
			genesis:     func() []byte { return nil },
			expectedErr: errMissingGenesis,
		},
		{
			name:        "malformed genesis",
			genesis:     func() []byte { return []byte("{") },
			expectedErr: errInvalidGenesis,
		},
		{
			name: "allocation exceeds supply",
			genesis: func() []byte {
				g, _ := newTestGenesis(false)
				g.Allocations[0].Balance = 2_000_000_000_000
				b, _ := g.Bytes()
				return b
			},
			expectedErr: errGenesisAllocates,
		},
		{
			name: "invalid config",
			genesis: func() []byte {
				g, _ := newTestGenesis(false)
				b, _ := g.Bytes()
				return b
			},
			config:      []byte(`{"maxTxsPerBlock":0}`),
			expectedErr: config.ErrInvalidConfig,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			vm := New(log.NewNoOpLogger(), metric.NewRegistry())
			err := vm.Initialize(context.Background(), memdb.New(), test.genesis(), test.config)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestProcessBlock(t *testing.T) {
	require := require.New(t)

	g, accounts := newTestGenesis(true)
	vm := newTestVM(t, memdb.New(), g, nil)
	stranger := ids.GenerateTestShortID()

	txs := [][]byte{
		mustTx(t, &Tx{Kind: Transfer, Caller: accounts.alice, To: accounts.bob, Amount: units.Tokens(10_000)}),
		mustTx(t, &Tx{Kind: Transfer, Caller: accounts.bob, To: accounts.alice, Amount: units.Tokens(1_000_000)}),
		[]byte("not a tx"),
		mustTx(t, &Tx{Kind: SetMaxTxPercent, Caller: stranger, Bps: 100}),
		mustTx(t, &Tx{Kind: SetBlockBlacklisted, Caller: g.Owner, Enabled: true}),
	}
	result, err := vm.ProcessBlock(context.Background(), 1, blockTime(1), txs)
	require.NoError(err)
	require.Equal(uint64(1), result.Height)
	require.Equal(2, result.Accepted)
	require.Equal(3, result.Failed)
	require.Len(result.Results, 5)

	transfer := result.Results[0]
	require.Empty(transfer.Error)
	require.NotNil(transfer.Receipt)
	require.Equal(units.Tokens(9_000), transfer.Receipt.TransferAmount)

	require.NotEmpty(result.Results[1].Error)
	require.Equal(TxKind(""), result.Results[2].Kind)
	require.NotEmpty(result.Results[2].Error)
	require.Contains(result.Results[3].Error, ownable.ErrUnauthorized.Error())
	require.Empty(result.Results[4].Error)

	require.Equal(uint64(1), vm.GetBlockHeight())
	require.Equal(blockTime(1), vm.GetLastBlockTime())
	require.NoError(vm.View(func(r api.Reader) error {
		require.True(r.Settings().BlockBlacklisted)
		require.GreaterOrEqual(r.BalanceOf(accounts.bob).Cmp(units.Tokens(9_000)), 0)
		return nil
	}))

	_, err = vm.ProcessBlock(context.Background(), 1, blockTime(2), nil)
	require.ErrorIs(err, errInvalidHeight)

	require.NoError(vm.Shutdown(context.Background()))
	_, err = vm.ProcessBlock(context.Background(), 2, blockTime(2), nil)
	require.ErrorIs(err, errShutdown)
}

func TestProcessBlockTooManyTxs(t *testing.T) {
	require := require.New(t)

	g, accounts := newTestGenesis(false)
	vm := newTestVM(t, memdb.New(), g, []byte(`{"maxTxsPerBlock":1}`))

	tx := mustTx(t, &Tx{Kind: Transfer, Caller: accounts.alice, To: accounts.bob, Amount: units.Tokens(1)})
	_, err := vm.ProcessBlock(context.Background(), 1, blockTime(1), [][]byte{tx, tx})
	require.ErrorIs(err, errTooManyTxs)
	require.Zero(vm.GetBlockHeight())

	require.NoError(vm.Shutdown(context.Background()))
}

func TestAddLiquidityTx(t *testing.T) {
	require := require.New(t)

	g, accounts := newTestGenesis(true)
	vm := newTestVM(t, memdb.New(), g, nil)

	txs := [][]byte{
		mustTx(t, &Tx{
			Kind:   AddLiquidity,
			Caller: accounts.alice,
			Amount: units.Tokens(1_000),
			Native: uint256.NewInt(1_000_000_000_000),
		}),
		mustTx(t, &Tx{Kind: AddLiquidity, Caller: accounts.alice, Amount: units.Tokens(1_000)}),
	}
	result, err := vm.ProcessBlock(context.Background(), 1, blockTime(1), txs)
	require.NoError(err)
	require.Equal(1, result.Accepted)
	require.Contains(result.Results[1].Error, errMissingField.Error())

	require.NoError(vm.ViewPool(func(p api.PoolReader) error {
		require.False(p.LiquidityOf(accounts.alice).IsZero())
		return nil
	}))
	require.NoError(vm.Shutdown(context.Background()))
}

func TestRestartFromDatabase(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	g, accounts := newTestGenesis(true)
	vm := newTestVM(t, db, g, nil)

	txs := [][]byte{
		mustTx(t, &Tx{Kind: Transfer, Caller: accounts.alice, To: accounts.bob, Amount: units.Tokens(10_000)}),
		mustTx(t, &Tx{Kind: WhitelistAddress, Caller: g.Owner, To: accounts.bob, Tier: 2}),
		mustTx(t, &Tx{Kind: TransferOwnership, Caller: g.Owner, To: accounts.alice}),
	}
	_, err := vm.ProcessBlock(context.Background(), 1, blockTime(1), txs)
	require.NoError(err)

	restarted := newTestVM(t, db, g, nil)
	require.Equal(uint64(1), restarted.GetBlockHeight())
	require.Equal(blockTime(1), restarted.GetLastBlockTime())

	for _, a := range []ids.ShortID{accounts.alice, accounts.bob, g.Owner, g.Self, g.Pair} {
		expected, err := vm.BalanceOf(a)
		require.NoError(err)
		actual, err := restarted.BalanceOf(a)
		require.NoError(err)
		require.Equal(expected, actual)
	}
	require.NoError(restarted.View(func(r api.Reader) error {
		require.Equal(accounts.alice, r.Owner())
		tier, ok := r.WhitelistTier(accounts.bob)
		require.True(ok)
		require.Equal(2, tier)
		return nil
	}))

	var pool, restoredPool string
	require.NoError(vm.ViewPool(func(p api.PoolReader) error {
		pool = p.Pool().ReserveToken.Dec()
		return nil
	}))
	require.NoError(restarted.ViewPool(func(p api.PoolReader) error {
		restoredPool = p.Pool().ReserveToken.Dec()
		require.False(p.LiquidityOf(g.Owner).IsZero())
		return nil
	}))
	require.Equal(pool, restoredPool)

	_, err = restarted.ProcessBlock(context.Background(), 2, blockTime(2), nil)
	require.NoError(err)

	require.NoError(restarted.Shutdown(context.Background()))
	require.NoError(vm.Shutdown(context.Background()))
}

func TestHandlers(t *testing.T) {
	require := require.New(t)

	g, accounts := newTestGenesis(true)
	vm := newTestVM(t, memdb.New(), g, nil)
	require.NoError(vm.SetState(context.Background(), NormalOp))

	handlers, err := vm.CreateHandlers(context.Background())
	require.NoError(err)
	server := httptest.NewServer(handlers[""])
	defer server.Close()

	call := func(method string, args, reply interface{}) error {
		body, err := json2.EncodeClientRequest(ServiceName+"."+method, args)
		require.NoError(err)
		resp, err := server.Client().Post(server.URL, "application/json", bytes.NewReader(body))
		require.NoError(err)
		defer resp.Body.Close()
		return json2.DecodeClientResponse(resp.Body, reply)
	}

	status := api.StatusReply{}
	require.NoError(call("Status", &api.StatusArgs{}, &status))
	require.True(status.Bootstrapped)
	require.Zero(status.Height)

	balance := api.BalanceReply{}
	require.NoError(call("BalanceOf", &api.AddressArgs{Address: accounts.alice}, &balance))
	require.Equal(units.Tokens(1_000_000), balance.Balance)

	info := api.GetTokenInfoReply{}
	require.NoError(call("GetTokenInfo", &api.GetTokenInfoArgs{}, &info))
	require.Equal(vm.Config.Symbol, info.Symbol)
	require.Equal(g.Owner, info.Owner)

	pool := api.GetPoolReply{}
	require.NoError(call("GetPool", &api.GetPoolArgs{}, &pool))
	require.Equal(g.Router, pool.Router)
	require.Equal(units.Tokens(1_000_000), pool.Pool.ReserveToken)

	members := api.GetListMembersReply{}
	require.Error(call("GetListMembers", &api.GetListMembersArgs{List: "nope"}, &members))

	require.NoError(vm.Shutdown(context.Background()))
}

func TestFactory(t *testing.T) {
	require := require.New(t)

	vm, err := NewFactory(nil).New(log.NewNoOpLogger())
	require.NoError(err)

	g, _ := newTestGenesis(false)
	genesisBytes, err := g.Bytes()
	require.NoError(err)
	require.NoError(vm.Initialize(context.Background(), memdb.New(), genesisBytes, nil))

	version, err := vm.Version(context.Background())
	require.NoError(err)
	require.Equal(Version, version)
	require.NoError(vm.Shutdown(context.Background()))
}

func TestFactorySharesRegisterer(t *testing.T) {
	require := require.New(t)

	g, _ := newTestGenesis(false)
	genesisBytes, err := g.Bytes()
	require.NoError(err)

	registry := metric.NewRegistry()
	f := NewFactory(registry)
	vm, err := f.New(log.NewNoOpLogger())
	require.NoError(err)
	require.NoError(vm.Initialize(context.Background(), memdb.New(), genesisBytes, nil))
	defer func() {
		require.NoError(vm.Shutdown(context.Background()))
	}()

	families, err := registry.Gather()
	require.NoError(err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.Name)
	}
	require.Contains(names, metricsNamespace+"_height")

	// A second VM on the same registerer collides with the first.
	other, err := f.New(log.NewNoOpLogger())
	require.NoError(err)
	require.Error(other.Initialize(context.Background(), memdb.New(), genesisBytes, nil))
}
