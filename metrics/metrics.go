// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exports ledger activity.
package metrics

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/metric"

	"github.com/luxfi/reflectvm/liquidity"
	"github.com/luxfi/reflectvm/pipeline"
	"github.com/luxfi/reflectvm/utils/units"
	"github.com/luxfi/reflectvm/utils/wrappers"
)

const (
	componentLabel = "component"
	kindLabel      = "kind"
	statusLabel    = "status"

	statusAccepted = "accepted"
	statusFailed   = "failed"

	namespaceSeparator = "_"
)

var (
	_ pipeline.Observer  = (*Metrics)(nil)
	_ liquidity.Observer = (*Metrics)(nil)

	tokenUnit = new(big.Float).SetUint64(units.Token)
)

// Metrics observes transfers, fees, conversions and blocks.
type Metrics struct {
	transfers      metric.Counter
	transferVolume metric.Counter
	fees           metric.CounterVec
	conversions    metric.Counter
	swapped        metric.Counter
	liquidity      metric.Counter
	txs            metric.CounterVec
	blocks         metric.Counter
	height         metric.Gauge
}

// New registers the collectors with registerer. Every metric name is prefixed
// with namespace.
func New(namespace string, registerer metric.Registerer) (*Metrics, error) {
	name := func(n string) string {
		if namespace == "" {
			return n
		}
		return namespace + namespaceSeparator + n
	}

	m := &Metrics{
		transfers: metric.NewCounter(metric.CounterOpts{
			Name: name("transfers"),
			Help: "number of committed transfers",
		}),
		transferVolume: metric.NewCounter(metric.CounterOpts{
			Name: name("transfer_volume"),
			Help: "whole tokens delivered to recipients",
		}),
		fees: metric.NewCounterVec(
			metric.CounterOpts{
				Name: name("fees"),
				Help: "whole tokens routed per fee component",
			},
			[]string{componentLabel},
		),
		conversions: metric.NewCounter(metric.CounterOpts{
			Name: name("conversions"),
			Help: "number of completed liquidity conversions",
		}),
		swapped: metric.NewCounter(metric.CounterOpts{
			Name: name("conversion_tokens_swapped"),
			Help: "whole tokens sold for native currency by conversions",
		}),
		liquidity: metric.NewCounter(metric.CounterOpts{
			Name: name("conversion_liquidity"),
			Help: "pool shares minted by conversions",
		}),
		txs: metric.NewCounterVec(
			metric.CounterOpts{
				Name: name("txs"),
				Help: "number of processed transactions",
			},
			[]string{kindLabel, statusLabel},
		),
		blocks: metric.NewCounter(metric.CounterOpts{
			Name: name("blocks"),
			Help: "number of processed blocks",
		}),
		height: metric.NewGauge(metric.GaugeOpts{
			Name: name("height"),
			Help: "height of the last processed block",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.transfers)),
		registerer.Register(metric.AsCollector(m.transferVolume)),
		registerer.Register(metric.AsCollector(m.fees)),
		registerer.Register(metric.AsCollector(m.conversions)),
		registerer.Register(metric.AsCollector(m.swapped)),
		registerer.Register(metric.AsCollector(m.liquidity)),
		registerer.Register(metric.AsCollector(m.txs)),
		registerer.Register(metric.AsCollector(m.blocks)),
		registerer.Register(metric.AsCollector(m.height)),
	)
	return m, errs.Err()
}

func (m *Metrics) Transferred(e pipeline.TransferEvent) {
	m.transfers.Inc()
	m.transferVolume.Add(tokens(e.Amount))
}

func (m *Metrics) FeeRouted(e pipeline.FeeEvent) {
	m.fees.With(metric.Labels{
		componentLabel: e.Component.String(),
	}).Add(tokens(e.Amount))
}

func (m *Metrics) SwapAndEvolved(e liquidity.SwapAndEvolve) {
	m.conversions.Inc()
	m.swapped.Add(tokens(e.TokensSwapped))
	f, _ := new(big.Float).SetInt(e.Liquidity.ToBig()).Float64()
	m.liquidity.Add(f)
}

// MarkTx counts a processed transaction of kind.
func (m *Metrics) MarkTx(kind string, err error) {
	status := statusAccepted
	if err != nil {
		status = statusFailed
	}
	m.txs.With(metric.Labels{
		kindLabel:   kind,
		statusLabel: status,
	}).Inc()
}

// MarkBlock records a processed block.
func (m *Metrics) MarkBlock(height uint64) {
	m.blocks.Inc()
	m.height.Set(float64(height))
}

func tokens(v *uint256.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v.ToBig()), tokenUnit).Float64()
	return f
}
