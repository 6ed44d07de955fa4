// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides integer types that marshal as quoted decimal strings,
// so that JSON clients without 64-bit integers read them exactly.
package json

import "strconv"

const Null = "null"

// Uint32 is a uint32 marshaled as a string.
type Uint32 uint32

func (u Uint32) MarshalJSON() ([]byte, error) {
	return quote(uint64(u)), nil
}

func (u *Uint32) UnmarshalJSON(b []byte) error {
	str, ok := unquote(b)
	if !ok {
		return nil
	}
	val, err := strconv.ParseUint(str, 10, 32)
	*u = Uint32(val)
	return err
}

// Uint64 is a uint64 marshaled as a string.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return quote(uint64(u)), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	str, ok := unquote(b)
	if !ok {
		return nil
	}
	val, err := strconv.ParseUint(str, 10, 64)
	*u = Uint64(val)
	return err
}

func quote(v uint64) []byte {
	b := make([]byte, 0, 22)
	b = append(b, '"')
	b = strconv.AppendUint(b, v, 10)
	return append(b, '"')
}

// unquote strips surrounding quotes. It reports false for null, which leaves
// the destination unchanged.
func unquote(b []byte) (string, bool) {
	str := string(b)
	if str == Null {
		return "", false
	}
	if n := len(str); n >= 2 && str[0] == '"' && str[n-1] == '"' {
		str = str[1 : n-1]
	}
	return str, true
}
