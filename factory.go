// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflectvm

import (
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

// Factory creates new VM instances.
type Factory interface {
	New(log.Logger) (*VM, error)
}

var _ Factory = (*factory)(nil)

type factory struct {
	registerer metric.Registerer
}

// NewFactory returns a Factory whose VMs register their metrics with
// registerer. A nil registerer gives each VM its own registry.
func NewFactory(registerer metric.Registerer) Factory {
	return &factory{registerer: registerer}
}

func (f *factory) New(logger log.Logger) (*VM, error) {
	return New(logger, f.registerer), nil
}
