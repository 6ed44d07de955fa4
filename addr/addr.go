// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package addr defines the well-known addresses of the reflection ledger.
package addr

import (
	"errors"

	"github.com/luxfi/ids"
)

var (
	ErrZeroAddress = errors.New("address zero is not allowed")

	// Zero is the null address. It can never hold a balance, be whitelisted
	// or be configured as a payout address.
	Zero = ids.ShortEmpty

	// Burn is the sink that receives burn fees. It is permanently excluded
	// from reward and has no egress path.
	Burn = ids.ShortID{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xde, 0xad,
	}
)

// IsZero reports whether a is the null address.
func IsZero(a ids.ShortID) bool {
	return a == Zero
}

// Verify returns ErrZeroAddress if a is the null address.
func Verify(a ids.ShortID) error {
	if IsZero(a) {
		return ErrZeroAddress
	}
	return nil
}
