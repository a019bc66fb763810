package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/canopy-network/accountsx/app/query/types"
	"github.com/canopy-network/accountsx/pkg/db"
	"github.com/canopy-network/accountsx/pkg/db/models/indexer"
	"github.com/canopy-network/accountsx/pkg/db/postgres/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// mockNetworkStore is a mock implementation of db.NetworkStore for testing
type mockNetworkStore struct {
	name      string
	queryFunc func(ctx context.Context, topLevelAccount string) ([]indexer.AccountRecord, error)
}

func (m *mockNetworkStore) NetworkName() string { return m.name }

func (m *mockNetworkStore) QueryAccounts(ctx context.Context, topLevelAccount string) ([]indexer.AccountRecord, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, topLevelAccount)
	}
	return []indexer.AccountRecord{}, nil
}

func (m *mockNetworkStore) Close() error { return nil }

// setupTestController creates a test controller over the given stores
func setupTestController(t *testing.T, stores ...db.NetworkStore) (*Controller, http.Handler) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	networks, err := db.NewNetworksDBFromStores(logger, stores...)
	require.NoError(t, err)

	c := NewController(&types.App{Logger: logger, Networks: networks})
	router, err := c.NewRouter()
	require.NoError(t, err)
	return c, router
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHandleRoot(t *testing.T) {
	_, router := setupTestController(t, &mockNetworkStore{name: "testnet"})

	rr := get(t, router, "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello world!", rr.Body.String())
}

func TestHandleHealth(t *testing.T) {
	_, router := setupTestController(t, &mockNetworkStore{name: "testnet"})

	rr := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"healthy": true}`, rr.Body.String())
}

func TestHandleQuery(t *testing.T) {
	receipt := "8cpD9mVd7vPzvCcGJq1Y2dMtbjhHS3tXtAfd1dyWB3hS"
	height := indexer.Int128FromInt64(118329504)

	var gotAccount string
	testnet := &mockNetworkStore{
		name: "testnet",
		queryFunc: func(ctx context.Context, topLevelAccount string) ([]indexer.AccountRecord, error) {
			gotAccount = topLevelAccount
			return []indexer.AccountRecord{
				{AccountID: "z.alice.testnet", CreatedByReceiptID: &receipt, LastUpdateBlockHeight: &height},
				{AccountID: "a.alice.testnet", DeletedByReceiptID: &receipt},
			}, nil
		},
	}
	_, router := setupTestController(t, testnet, &mockNetworkStore{name: "mainnet"})

	rr := get(t, router, "/query/testnet/alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "alice", gotAccount)

	assert.JSONEq(t, `[
		{"account_id": "z.alice.testnet", "created_by_receipt_id": "`+receipt+`", "deleted_by_receipt_id": null, "last_update_block_height": 118329504},
		{"account_id": "a.alice.testnet", "created_by_receipt_id": null, "deleted_by_receipt_id": "`+receipt+`", "last_update_block_height": null}
	]`, rr.Body.String())

	var back []indexer.AccountRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &back))
	require.Len(t, back, 2)
	assert.Equal(t, height, *back[0].LastUpdateBlockHeight)
}

func TestHandleQueryEmpty(t *testing.T) {
	_, router := setupTestController(t, &mockNetworkStore{name: "mainnet"})

	rr := get(t, router, "/query/mainnet/nobody")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestHandleQueryUnknownNetwork(t *testing.T) {
	called := false
	store := &mockNetworkStore{name: "testnet", queryFunc: func(context.Context, string) ([]indexer.AccountRecord, error) {
		called = true
		return nil, nil
	}}
	_, router := setupTestController(t, store, &mockNetworkStore{name: "mainnet"})

	rr := get(t, router, "/query/unknown/alice")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, `"unknown"`)
	assert.Contains(t, body, "[mainnet testnet]")
	assert.False(t, called)
}

func TestHandleQueryBackendError(t *testing.T) {
	store := &mockNetworkStore{name: "testnet", queryFunc: func(context.Context, string) ([]indexer.AccountRecord, error) {
		return nil, &network.QueryError{
			Network:    "testnet",
			Diagnostic: "canceling statement due to statement timeout",
			Err:        errors.New("canceling statement due to statement timeout"),
		}
	}}
	_, router := setupTestController(t, store)

	rr := get(t, router, "/query/testnet/alice")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "query failed on testnet: canceling statement due to statement timeout", rr.Body.String())
}

func TestHandleQueryNetworksDoNotBlockEachOther(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	testnet := &mockNetworkStore{name: "testnet", queryFunc: func(ctx context.Context, _ string) ([]indexer.AccountRecord, error) {
		close(entered)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return []indexer.AccountRecord{}, nil
	}}
	_, router := setupTestController(t, testnet, &mockNetworkStore{name: "mainnet"})

	srv := httptest.NewServer(router)
	defer srv.Close()

	slow := make(chan int, 1)
	go func() {
		resp, err := http.Get(srv.URL + "/query/testnet/alice")
		if err != nil {
			slow <- 0
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		slow <- resp.StatusCode
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("testnet query never started")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(srv.URL + "/query/mainnet/alice")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	close(release)
	assert.Equal(t, http.StatusOK, <-slow)
}

func TestUnknownRoute(t *testing.T) {
	_, router := setupTestController(t, &mockNetworkStore{name: "testnet"})

	assert.Equal(t, http.StatusNotFound, get(t, router, "/query/testnet").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/query/testnet/alice/extra").Code)
}

func TestMetricsRoute(t *testing.T) {
	_, router := setupTestController(t, &mockNetworkStore{name: "testnet"})

	_ = get(t, router, "/query/testnet/alice")
	rr := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `accountsx_db_account_queries_total{network="testnet",outcome="ok"}`)
}

func TestWithCORS(t *testing.T) {
	h := WithCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/query/testnet/alice", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestWithRequestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	networks, err := db.NewNetworksDBFromStores(zap.New(core), &mockNetworkStore{name: "testnet"})
	require.NoError(t, err)
	c := NewController(&types.App{Logger: zap.New(core), Networks: networks})
	router, err := c.NewRouter()
	require.NoError(t, err)

	h := c.WithRequestLog(router)
	_ = get(t, h, "/query/nowhere/alice")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET /query/nowhere/alice HTTP/1.1", fields["request"])
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])
	assert.Contains(t, fields, "duration_ms")
}
