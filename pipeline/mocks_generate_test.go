// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=${GOPACKAGE}mock -destination=${GOPACKAGE}mock/converter.go -mock_names=Converter=Converter . Converter
