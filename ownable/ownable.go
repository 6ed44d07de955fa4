// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ownable gates administrative operations behind a single owner.
package ownable

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/reflectvm/addr"
)

var ErrUnauthorized = errors.New("caller is not the owner")

// Ownable holds the owner identity. Callers pass their identity explicitly to
// every gated operation.
type Ownable struct {
	owner ids.ShortID
}

// New returns a gate owned by owner.
func New(owner ids.ShortID) (*Ownable, error) {
	if err := addr.Verify(owner); err != nil {
		return nil, err
	}
	return &Ownable{owner: owner}, nil
}

// Owner returns the current owner.
func (o *Ownable) Owner() ids.ShortID {
	return o.owner
}

// OnlyOwner fails unless caller is the owner.
func (o *Ownable) OnlyOwner(caller ids.ShortID) error {
	if caller != o.owner {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return nil
}

// TransferOwnership hands the gate to next.
func (o *Ownable) TransferOwnership(caller, next ids.ShortID) error {
	if err := o.OnlyOwner(caller); err != nil {
		return err
	}
	if err := addr.Verify(next); err != nil {
		return err
	}
	o.owner = next
	return nil
}
