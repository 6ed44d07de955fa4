// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luxfi/reflectvm/cmd/reflectvm/genesis"
	"github.com/luxfi/reflectvm/cmd/reflectvm/serve"
	"github.com/luxfi/reflectvm/cmd/reflectvm/simulate"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	cmd := &cobra.Command{
		Use:   "reflectvm",
		Short: "Reflection token VM tooling",
	}
	cmd.AddCommand(
		genesis.Command(),
		simulate.Command(),
		serve.Command(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
