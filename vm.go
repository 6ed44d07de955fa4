// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reflectvm is a virtual machine hosting a reflection token: a
// fee-on-transfer ledger that redistributes part of every transfer to its
// holders and converts accumulated liquidity fees into pool shares.
package reflectvm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/rs/cors"

	"github.com/luxfi/reflectvm/amm"
	"github.com/luxfi/reflectvm/api"
	"github.com/luxfi/reflectvm/config"
	"github.com/luxfi/reflectvm/metrics"
	"github.com/luxfi/reflectvm/state"
	"github.com/luxfi/reflectvm/token"
	"github.com/luxfi/reflectvm/utils/timer/mockable"
	"github.com/luxfi/reflectvm/utils/units"
)

const (
	Version     = "1.0.0"
	ServiceName = "reflect"

	metricsNamespace = "reflectvm"
)

var (
	errUnknownState     = errors.New("unknown state")
	errNotInitialized   = errors.New("VM not initialized")
	errShutdown         = errors.New("VM is shutting down")
	errInvalidHeight    = errors.New("invalid block height")
	errTooManyTxs       = errors.New("too many transactions")
	errMissingGenesis   = errors.New("missing genesis")
	errGenesisAllocates = errors.New("genesis allocation failed")

	_ api.VM = (*VM)(nil)
)

// BlockResult is the outcome of processing one block.
type BlockResult struct {
	Height    uint64     `json:"height"`
	Timestamp time.Time  `json:"timestamp"`
	Accepted  int        `json:"accepted"`
	Failed    int        `json:"failed"`
	Results   []TxResult `json:"results"`
}

// VM hosts one reflection token and its pool. All state transitions happen
// inside ProcessBlock; the lock serializes blocks against API reads.
type VM struct {
	config.Config

	log  log.Logger
	lock sync.RWMutex

	baseDB database.Database
	db     *versiondb.Database
	state  *state.State

	// Block timestamps drive router deadlines.
	clock mockable.Clock

	registerer metric.Registerer
	metrics    *metrics.Metrics

	genesis *Genesis
	token   *token.Token
	router  *amm.Router

	height        uint64
	lastBlockTime time.Time

	lifecycle     State
	isInitialized bool
	shutdown      bool
}

// New returns an uninitialized VM.
func New(logger log.Logger, registerer metric.Registerer) *VM {
	return &VM{
		log:        logger,
		registerer: registerer,
	}
}

// Initialize opens the state in db. On first start the genesis is applied
// and committed; afterwards the saved state is restored.
func (vm *VM) Initialize(
	ctx context.Context,
	db database.Database,
	genesisBytes []byte,
	configBytes []byte,
) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	cfg, err := config.Parse(configBytes)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	vm.Config = cfg

	if len(genesisBytes) == 0 {
		return errMissingGenesis
	}
	g, err := ParseGenesis(genesisBytes)
	if err != nil {
		return fmt.Errorf("failed to parse genesis: %w", err)
	}
	vm.genesis = g

	vm.baseDB = db
	vm.db = versiondb.New(db)
	vm.state = state.New(vm.db)

	if vm.registerer == nil {
		vm.registerer = metric.NewRegistry()
	}
	vm.metrics, err = metrics.New(metricsNamespace, vm.registerer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	initialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		err = vm.restore()
	} else {
		err = vm.applyGenesis(ctx)
	}
	if err != nil {
		vm.db.Abort()
		return err
	}
	vm.token.AddObserver(vm.metrics)
	vm.token.AddLiquidityObserver(vm.metrics)

	vm.isInitialized = true
	vm.log.Info("reflection VM initialized",
		log.String("symbol", vm.Config.Symbol),
		log.Uint64("height", vm.height),
		log.Bool("pool", vm.router != nil),
	)
	return nil
}

func (vm *VM) applyGenesis(ctx context.Context) error {
	g := vm.genesis
	vm.clock.Freeze(time.Unix(g.Timestamp, 0))
	vm.lastBlockTime = vm.clock.Time()

	tk, err := token.New(vm.log, vm.Config, g.Params, &vm.clock)
	if err != nil {
		return err
	}
	vm.token = tk
	for _, a := range g.Allocations {
		if _, err := tk.Transfer(ctx, g.Owner, a.Address, units.Tokens(a.Balance)); err != nil {
			return fmt.Errorf("%w: %s: %w", errGenesisAllocates, a.Address, err)
		}
	}

	if g.HasPool() {
		if err := vm.attachRouter(); err != nil {
			return err
		}
		if l := g.Liquidity; l != nil {
			_, err := vm.router.Provide(ctx, g.Owner, units.Tokens(l.Tokens), units.Tokens(0), units.Tokens(0), l.Native, g.Owner, vm.clock.Time())
			if err != nil {
				return fmt.Errorf("failed to seed liquidity: %w", err)
			}
		}
	}
	return vm.commit()
}

func (vm *VM) restore() error {
	snap, err := vm.state.Load()
	if err != nil {
		return err
	}
	height, timestamp, err := vm.state.GetLastBlock()
	if err != nil {
		return err
	}
	vm.height = height
	vm.lastBlockTime = timestamp
	vm.clock.Freeze(timestamp)

	vm.token, err = token.Restore(vm.log, vm.Config, snap, &vm.clock)
	if err != nil {
		return err
	}
	if !vm.genesis.HasPool() {
		return nil
	}
	if err := vm.attachRouter(); err != nil {
		return err
	}
	pool, positions, ok, err := vm.state.LoadPool()
	if err != nil {
		return err
	}
	if ok {
		vm.router.Restore(pool, positions)
	}
	return nil
}

// attachRouter creates the built-in pool and makes it the token's liquidity
// router.
func (vm *VM) attachRouter() error {
	g := vm.genesis
	router, err := amm.New(vm.log, amm.Config{
		Address:       g.Router,
		WrappedNative: g.WrappedNative,
		Pair:          g.Pair,
		FeeBps:        vm.Config.RouterFeeBps,
	}, &vm.clock)
	if err != nil {
		return err
	}
	router.Bind(vm.token, g.Self, vm.token)
	if err := vm.token.UpdateRouterAndPair(vm.token.Owner(), router, g.Pair); err != nil {
		return err
	}
	vm.router = router
	return nil
}

// commit persists the token, pool and block height.
func (vm *VM) commit() error {
	if err := vm.token.Audit(); err != nil {
		return err
	}
	if err := vm.state.Save(vm.token.Snapshot()); err != nil {
		return err
	}
	if vm.router != nil {
		if err := vm.state.SavePool(vm.router.Pool(), vm.router.Positions()); err != nil {
			return err
		}
	}
	if err := vm.state.SetLastBlock(vm.height, vm.lastBlockTime); err != nil {
		return err
	}
	return vm.db.Commit()
}

// SetState transitions the VM between bootstrapping and normal operation.
func (vm *VM) SetState(_ context.Context, s State) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	switch s {
	case Bootstrapping, NormalOp:
		vm.log.Info("reflection VM changing state", log.Stringer("state", s))
		vm.lifecycle = s
		return nil
	default:
		return fmt.Errorf("%w: %d", errUnknownState, s)
	}
}

// ProcessBlock executes txs in order at blockTime. A failing transaction is
// recorded in the result and leaves no trace in state; it does not fail the
// block.
func (vm *VM) ProcessBlock(ctx context.Context, height uint64, blockTime time.Time, txs [][]byte) (*BlockResult, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	switch {
	case vm.shutdown:
		return nil, errShutdown
	case !vm.isInitialized:
		return nil, errNotInitialized
	case height != vm.height+1:
		return nil, fmt.Errorf("%w: got %d, expected %d", errInvalidHeight, height, vm.height+1)
	case len(txs) > int(vm.Config.MaxTxsPerBlock):
		return nil, fmt.Errorf("%w: %d > %d", errTooManyTxs, len(txs), vm.Config.MaxTxsPerBlock)
	}

	vm.clock.Freeze(blockTime)
	result := &BlockResult{
		Height:    height,
		Timestamp: blockTime,
		Results:   make([]TxResult, 0, len(txs)),
	}
	for i, b := range txs {
		txResult := TxResult{}
		err := vm.processTx(ctx, b, &txResult)
		vm.metrics.MarkTx(string(txResult.Kind), err)
		if err != nil {
			vm.log.Warn("transaction failed",
				log.Int("index", i),
				log.String("kind", string(txResult.Kind)),
				log.Err(err),
			)
			txResult.Error = err.Error()
			result.Failed++
		} else {
			result.Accepted++
		}
		result.Results = append(result.Results, txResult)
	}

	prevHeight, prevTime := vm.height, vm.lastBlockTime
	vm.height = height
	vm.lastBlockTime = blockTime
	if err := vm.commit(); err != nil {
		vm.db.Abort()
		vm.height, vm.lastBlockTime = prevHeight, prevTime
		return nil, fmt.Errorf("failed to commit block %d: %w", height, err)
	}
	vm.metrics.MarkBlock(height)

	vm.log.Debug("block processed",
		log.Uint64("height", height),
		log.Int("accepted", result.Accepted),
		log.Int("failed", result.Failed),
	)
	return result, nil
}

func (vm *VM) processTx(ctx context.Context, b []byte, result *TxResult) error {
	tx, err := ParseTx(b)
	if err != nil {
		return err
	}
	result.Kind = tx.Kind
	result.Caller = tx.Caller
	return vm.execute(ctx, tx, result)
}

// Shutdown closes the database.
func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	vm.log.Info("shutting down reflection VM")
	vm.shutdown = true
	if vm.db != nil {
		if err := vm.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

func (*VM) Version(context.Context) (string, error) {
	return Version, nil
}

// CreateHandlers returns the JSON-RPC handler of the token service.
func (vm *VM) CreateHandlers(context.Context) (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	server.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(api.NewService(vm), ServiceName); err != nil {
		return nil, fmt.Errorf("failed to register %s service: %w", ServiceName, err)
	}
	return map[string]http.Handler{
		"": cors.AllowAll().Handler(server),
	}, nil
}

// HealthCheck reports lifecycle state and verifies the ledger aggregates.
func (vm *VM) HealthCheck(context.Context) (interface{}, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	details := map[string]interface{}{
		"initialized": vm.isInitialized,
		"state":       vm.lifecycle.String(),
		"height":      vm.height,
		"pool":        vm.router != nil,
	}
	if !vm.isInitialized {
		return details, errNotInitialized
	}
	if err := vm.token.Audit(); err != nil {
		return details, err
	}
	return details, nil
}

// IsBootstrapped reports whether the VM is in normal operation.
func (vm *VM) IsBootstrapped() bool {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.lifecycle == NormalOp
}

// GetBlockHeight returns the height of the last processed block.
func (vm *VM) GetBlockHeight() uint64 {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.height
}

// GetLastBlockTime returns the timestamp of the last processed block.
func (vm *VM) GetLastBlockTime() time.Time {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.lastBlockTime
}

// View runs f against the token under the read lock.
func (vm *VM) View(f func(api.Reader) error) error {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.token == nil {
		return api.ErrNotInitialized
	}
	return f(vm.token)
}

// ViewPool runs f against the pool under the read lock.
func (vm *VM) ViewPool(f func(api.PoolReader) error) error {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.router == nil {
		return api.ErrNoPool
	}
	return f(vm.router)
}

// BalanceOf returns the real balance of a.
func (vm *VM) BalanceOf(a ids.ShortID) (string, error) {
	var balance string
	err := vm.View(func(r api.Reader) error {
		balance = r.BalanceOf(a).Dec()
		return nil
	})
	return balance, err
}
