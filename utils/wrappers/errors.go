// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import "errors"

// Errs accumulates the failures of a series of independent operations, such
// as registering a set of collectors.
type Errs struct {
	errs []error
}

// Add records every non-nil error.
func (e *Errs) Add(errs ...error) {
	for _, err := range errs {
		if err != nil {
			e.errs = append(e.errs, err)
		}
	}
}

// Errored reports whether any error was recorded.
func (e *Errs) Errored() bool {
	return len(e.errs) != 0
}

// Err joins the recorded errors, or returns nil.
func (e *Errs) Err() error {
	return errors.Join(e.errs...)
}
