// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"

	"github.com/luxfi/reflectvm"
	"github.com/luxfi/reflectvm/cmd/reflectvm/script"
)

const (
	apiPath         = "/ext/" + reflectvm.ServiceName
	healthPath      = "/ext/health"
	metricsPath     = "/ext/metrics"
	shutdownTimeout = 5 * time.Second
)

var dbPrefix = []byte("reflectvm")

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves the token API over an in-memory chain",
		RunE:  serveFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func serveFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	_, genesisBytes, err := script.LoadGenesis(config.GenesisPath)
	if err != nil {
		return err
	}
	configBytes, err := script.LoadConfig(config.ConfigPath)
	if err != nil {
		return err
	}

	ctx := c.Context()
	logger := log.NewLogger("reflectvm")
	registry := metric.NewRegistry()
	vm := reflectvm.New(logger, registry)
	db := prefixdb.New(dbPrefix, memdb.New())
	if err := vm.Initialize(ctx, db, genesisBytes, configBytes); err != nil {
		return err
	}
	defer vm.Shutdown(context.Background())

	if config.BlocksPath != "" {
		blocks, err := script.LoadBlocks(config.BlocksPath)
		if err != nil {
			return err
		}
		err = script.Replay(ctx, vm, blocks, vm.Config.BlockInterval, func(result *reflectvm.BlockResult) error {
			logger.Info("replayed block",
				log.Uint64("height", result.Height),
				log.Int("accepted", result.Accepted),
				log.Int("failed", result.Failed),
			)
			return nil
		})
		if err != nil {
			return err
		}
	}
	if err := vm.SetState(ctx, reflectvm.NormalOp); err != nil {
		return err
	}

	handler, err := newRouter(ctx, vm, registry)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              net.JoinHostPort(config.HTTPHost, strconv.Itoa(int(config.HTTPPort))),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("serving API", log.String("address", server.Addr))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newRouter(ctx context.Context, vm *reflectvm.VM, gatherer metric.Gatherer) (*mux.Router, error) {
	handlers, err := vm.CreateHandlers(ctx)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	for path, handler := range handlers {
		router.Handle(apiPath+path, handler)
	}
	router.Handle(metricsPath, metricsHandler(gatherer)).Methods(http.MethodGet)
	router.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		if _, err := vm.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return router, nil
}
