// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package liquidity

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=routermock -destination=routermock/router.go -mock_names=Router=Router . Router
