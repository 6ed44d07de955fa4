// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

// journal is an undo log. Every mutation of the ledger, and every external
// mutation registered through Record, appends the closure that reverses it.
type journal struct {
	entries []func()
}

func (j *journal) append(undo func()) {
	j.entries = append(j.entries, undo)
}

func (j *journal) length() int {
	return len(j.entries)
}

// revert undoes entries down to, but not including, index id. Identifiers
// taken before the last reset revert nothing.
func (j *journal) revert(id int) {
	if id > len(j.entries) {
		return
	}
	for i := len(j.entries) - 1; i >= id; i-- {
		j.entries[i]()
	}
	j.entries = j.entries[:id]
}

func (j *journal) reset() {
	j.entries = j.entries[:0]
}
