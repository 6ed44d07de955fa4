// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/reflectvm"
)

func TestRouter(t *testing.T) {
	require := require.New(t)

	g := &reflectvm.Genesis{Timestamp: 1_700_000_000}
	g.Owner = ids.GenerateTestShortID()
	g.Self = ids.GenerateTestShortID()
	g.Pair = ids.GenerateTestShortID()
	genesisBytes, err := g.Bytes()
	require.NoError(err)

	registry := metric.NewRegistry()
	vm := reflectvm.New(log.NewNoOpLogger(), registry)
	require.NoError(vm.Initialize(context.Background(), memdb.New(), genesisBytes, nil))
	defer func() {
		require.NoError(vm.Shutdown(context.Background()))
	}()

	router, err := newRouter(context.Background(), vm, registry)
	require.NoError(err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, healthPath, nil))
	require.Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, metricsPath, nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), "reflectvm_")

	body := `{"jsonrpc":"2.0","id":1,"method":"reflect.Ping","params":{}}`
	req := httptest.NewRequest(http.MethodPost, apiPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `"success":true`)
}

func TestMetricsHandler(t *testing.T) {
	require := require.New(t)

	registry := metric.NewRegistry()
	requests := metric.NewCounterVec(
		metric.CounterOpts{
			Name: "requests",
			Help: "number of requests",
		},
		[]string{"method"},
	)
	require.NoError(registry.Register(metric.AsCollector(requests)))
	requests.With(metric.Labels{"method": "transfer"}).Add(3)

	rec := httptest.NewRecorder()
	metricsHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, metricsPath, nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Equal(textContentType, rec.Header().Get("Content-Type"))
	require.Contains(rec.Body.String(), `requests{method="transfer"} 3`)
}
