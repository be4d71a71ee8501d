package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-stake-provider/stakeClient/db"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/provider"
	"github.com/pushchain/push-stake-provider/stakeClient/store"
	"github.com/pushchain/push-stake-provider/stakeClient/updatable"
	"github.com/pushchain/push-stake-provider/stakeClient/validators"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Address(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Balance(ctx context.Context) (math.Int, error) {
	args := m.Called(ctx)
	return args.Get(0).(math.Int), args.Error(1)
}

func (m *mockProvider) StakedAmount(ctx context.Context) (math.Int, error) {
	args := m.Called(ctx)
	return args.Get(0).(math.Int), args.Error(1)
}

func (m *mockProvider) StakingRewards(ctx context.Context) (math.LegacyDec, error) {
	args := m.Called(ctx)
	return args.Get(0).(math.LegacyDec), args.Error(1)
}

func (m *mockProvider) PendingUnbonds(ctx context.Context) (*provider.PendingUnbonds, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*provider.PendingUnbonds)
	return u, args.Error(1)
}

func (m *mockProvider) Validators(ctx context.Context) ([]validators.Validator, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]validators.Validator)
	return v, args.Error(1)
}

func (m *mockProvider) BestValidator(ctx context.Context) (*validators.Validator, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*validators.Validator)
	return v, args.Error(1)
}

func (m *mockProvider) GetStakedToValidator(ctx context.Context, id string) (math.Int, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(math.Int), args.Error(1)
}

func (m *mockProvider) Rate(ctx context.Context) (math.LegacyDec, error) {
	args := m.Called(ctx)
	return args.Get(0).(math.LegacyDec), args.Error(1)
}

func newTestServer(t *testing.T, p CoinProvider, opts Options) http.Handler {
	t.Helper()
	opts.Provider = p
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	return NewServer(zerolog.New(zerolog.NewTestWriter(t)), 0, opts).Handler()
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]any
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHandleHealth(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	server := &Server{
		logger: logger,
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestReadEndpoints(t *testing.T) {
	p := &mockProvider{}
	p.On("Address", mock.Anything).Return("cosmos1abc", nil)
	p.On("Balance", mock.Anything).Return(math.NewInt(1500), nil)
	p.On("StakedAmount", mock.Anything).Return(math.NewInt(700), nil)
	p.On("StakingRewards", mock.Anything).Return(math.LegacyMustNewDecFromStr("1.25"), nil)
	p.On("PendingUnbonds", mock.Anything).Return(&provider.PendingUnbonds{Total: math.NewInt(3)}, nil)
	p.On("Validators", mock.Anything).Return([]validators.Validator{{ID: "val1", APR: 8}}, nil)
	p.On("BestValidator", mock.Anything).Return(&validators.Validator{ID: "val1", APR: 8}, nil)
	p.On("GetStakedToValidator", mock.Anything, "val1").Return(math.NewInt(700), nil)
	p.On("Rate", mock.Anything).Return(math.LegacyMustNewDecFromStr("9.5"), nil)

	h := newTestServer(t, p, Options{})

	tests := []struct {
		path  string
		check func(t *testing.T, data any)
	}{
		{"/api/v1/address", func(t *testing.T, data any) {
			assert.Equal(t, "cosmos1abc", data.(map[string]any)["address"])
		}},
		{"/api/v1/balance", func(t *testing.T, data any) {
			assert.Equal(t, "1500", data.(map[string]any)["amount"])
		}},
		{"/api/v1/staked", func(t *testing.T, data any) {
			assert.Equal(t, "700", data.(map[string]any)["amount"])
		}},
		{"/api/v1/rewards", func(t *testing.T, data any) {
			assert.Equal(t, "1.250000000000000000", data.(map[string]any)["amount"])
		}},
		{"/api/v1/unbonds", func(t *testing.T, data any) {
			assert.NotNil(t, data)
		}},
		{"/api/v1/validators", func(t *testing.T, data any) {
			assert.Len(t, data, 1)
		}},
		{"/api/v1/validators/best", func(t *testing.T, data any) {
			assert.Equal(t, "val1", data.(map[string]any)["id"])
		}},
		{"/api/v1/validators/val1/staked", func(t *testing.T, data any) {
			assert.Equal(t, "val1", data.(map[string]any)["validator_id"])
			assert.Equal(t, "700", data.(map[string]any)["amount"])
		}},
		{"/api/v1/rate", func(t *testing.T, data any) {
			assert.Equal(t, "9.500000000000000000", data.(map[string]any)["rate"])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, body := get(t, h, tt.path)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			tt.check(t, body["data"])
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"not found", errors.NewNotFoundError("Balance", "no uatom balance"), http.StatusNotFound, "NOT_FOUND", false},
		{"rpc", errors.NewRPCError("GetBalances", "failed on all 2 endpoints", nil), http.StatusBadGateway, "RPC", true},
		{"network", errors.NewNetworkError("GetRate", "connection refused", nil), http.StatusBadGateway, "NETWORK", true},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{}
			p.On("Balance", mock.Anything).Return(math.Int{}, tt.err)
			h := newTestServer(t, p, Options{})

			w, body := get(t, h, "/api/v1/balance")
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, body["error"])
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			}
			if tt.retryable {
				assert.Equal(t, true, body["retryable"])
			} else {
				assert.NotContains(t, body, "retryable")
			}
		})
	}
}

func TestCachedAmounts(t *testing.T) {
	p := &mockProvider{}
	p.On("StakedAmount", mock.Anything).Return(math.NewInt(42), nil).Once()

	staked := updatable.New[math.Int]("staked", p.StakedAmount, time.Minute, zerolog.Nop())
	h := newTestServer(t, p, Options{Staked: staked})

	// Not loaded yet: falls through to a live query.
	w, body := get(t, h, "/api/v1/staked")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", body["data"].(map[string]any)["amount"])

	p.On("StakedAmount", mock.Anything).Return(math.NewInt(99), nil).Once()
	_, err := staked.Refresh(context.Background())
	require.NoError(t, err)

	w, body = get(t, h, "/api/v1/staked")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "99", body["data"].(map[string]any)["amount"])

	// Served from the cache; no further upstream calls.
	w, _ = get(t, h, "/api/v1/staked")
	require.Equal(t, http.StatusOK, w.Code)
	p.AssertNumberOfCalls(t, "StakedAmount", 2)
}

func TestTransactionEndpoints(t *testing.T) {
	database, err := db.OpenInMemoryDB(true)
	require.NoError(t, err)
	defer database.Close()
	journal := database.Journal()

	for i, hash := range []string{"AAA", "BBB", "CCC"} {
		require.NoError(t, journal.RecordBroadcast(&store.StakeTransaction{
			TxHash: hash, Kind: "stake", Amount: fmt.Sprint(i + 1), Denom: "uatom",
		}))
	}
	require.NoError(t, journal.MarkConfirmed("BBB", 10, 0, ""))

	h := newTestServer(t, &mockProvider{}, Options{Journal: journal})

	w, body := get(t, h, "/api/v1/transactions")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 3)

	w, body = get(t, h, "/api/v1/transactions?status=confirmed")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, body = get(t, h, "/api/v1/transactions?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 2)

	w, _ = get(t, h, "/api/v1/transactions?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, h, "/api/v1/transactions?status=lost")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = get(t, h, "/api/v1/transactions/BBB")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", body["data"].(map[string]any)["Status"])

	w, body = get(t, h, "/api/v1/transactions/ZZZ")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestTransactionEndpoints_NoJournal(t *testing.T) {
	h := newTestServer(t, &mockProvider{}, Options{})

	w, _ := get(t, h, "/api/v1/transactions")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
