package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/repository/slots"
	"github.com/mamadbah2/milkcenter/internal/server/handlers"
	"github.com/mamadbah2/milkcenter/internal/service/export"
	"github.com/mamadbah2/milkcenter/internal/service/procurement"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	ledger := procurement.Open(context.Background(), slots.NewMemoryMedium(), logger, clock)
	handler := handlers.NewLedgerHandler(ledger, export.NewService(ledger, logger), logger)
	return New(handler, nil, logger)
}

func do(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestEngine(t), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","hydrated":true}`, rec.Body.String())
}

func TestFarmerRoutes(t *testing.T) {
	engine := newTestEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/farmers", map[string]any{"name": "Lakshmi", "village": "Hassan", "ratePerLiter": 34})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Farmer
	decode(t, rec, &created)
	assert.True(t, created.IsActive)
	assert.NotEmpty(t, created.ID)

	rec = do(t, engine, http.MethodPost, "/api/farmers", map[string]any{"name": "No Village"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/farmers?q=hassan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Farmers []models.Farmer `json:"farmers"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Farmers, 1)
	assert.Equal(t, created.ID, list.Farmers[0].ID)

	rec = do(t, engine, http.MethodPatch, "/api/farmers/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled models.Farmer
	decode(t, rec, &toggled)
	assert.False(t, toggled.IsActive)

	rec = do(t, engine, http.MethodPatch, "/api/farmers/missing/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectionRoutes(t *testing.T) {
	engine := newTestEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/collections", map[string]any{
		"farmerId": "farmer-03", "shift": "Evening", "quantityLiters": 10, "fatPercentage": 4, "snfPercentage": 8.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry models.CollectionEntry
	decode(t, rec, &entry)
	assert.Equal(t, 352.0, entry.Amount)
	assert.Equal(t, "2024-05-01", entry.Date)

	rec = do(t, engine, http.MethodPost, "/api/collections", map[string]any{"quantityLiters": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/collections", map[string]any{"farmerId": "farmer-01", "shift": "night"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/collections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Date        string `json:"date"`
		Collections []struct {
			ID         string `json:"id"`
			FarmerName string `json:"farmerName"`
		} `json:"collections"`
		Summary models.EntrySummary `json:"summary"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "2024-05-01", body.Date)
	require.Len(t, body.Collections, 3)
	assert.Equal(t, "Mahesh Patil", body.Collections[0].FarmerName)
	assert.Equal(t, 3, body.Summary.Entries)
	assert.Equal(t, 62.0, body.Summary.Liters)

	rec = do(t, engine, http.MethodGet, "/api/collections?date=01-05-2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentAndBalanceRoutes(t *testing.T) {
	engine := newTestEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/payments", map[string]any{"farmerId": "farmer-03", "amount": 56, "method": "Cheque"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/payments", map[string]any{"farmerId": "farmer-03"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payments struct {
		Payments []struct {
			Method     models.PaymentMethod `json:"method"`
			FarmerName string               `json:"farmerName"`
		} `json:"payments"`
	}
	decode(t, rec, &payments)
	require.Len(t, payments.Payments, 3)
	assert.Equal(t, models.PaymentCheque, payments.Payments[0].Method)
	assert.Equal(t, "Mahesh Patil", payments.Payments[0].FarmerName)

	rec = do(t, engine, http.MethodGet, "/api/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances struct {
		Balances        []models.FarmerBalance `json:"balances"`
		OutstandingDues float64                `json:"outstandingDues"`
	}
	decode(t, rec, &balances)
	require.Len(t, balances.Balances, 3)
	assert.Equal(t, 1000.0, balances.Balances[0].Balance)
	assert.Equal(t, 1000.0, balances.OutstandingDues)
}

func TestDashboardAndTopRoutes(t *testing.T) {
	engine := newTestEngine(t)

	rec := do(t, engine, http.MethodGet, "/api/dashboard?date=2024-04-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		Totals     models.DashboardTotals `json:"totals"`
		TopFarmers []models.FarmerVolume  `json:"topFarmers"`
	}
	decode(t, rec, &dash)
	assert.Equal(t, 30.0, dash.Totals.Daily.TotalLiters)
	assert.Equal(t, 82.0, dash.Totals.OverallLiters)
	assert.Len(t, dash.TopFarmers, 3)

	rec = do(t, engine, http.MethodGet, "/api/top-farmers?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top struct {
		TopFarmers []models.FarmerVolume `json:"topFarmers"`
	}
	decode(t, rec, &top)
	require.Len(t, top.TopFarmers, 1)
	assert.Equal(t, "farmer-03", top.TopFarmers[0].Farmer.ID)

	rec = do(t, engine, http.MethodGet, "/api/top-farmers?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetAndExportRoutes(t *testing.T) {
	engine := newTestEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/farmers", map[string]any{"name": "Temp", "village": "X"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/farmers", nil)
	var list struct {
		Farmers []models.Farmer `json:"farmers"`
	}
	decode(t, rec, &list)
	assert.Len(t, list.Farmers, 3)

	rec = do(t, engine, http.MethodGet, "/api/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "milk-ledger-2024-05-01.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestWebhookRoutesDisabledWithoutMessaging(t *testing.T) {
	rec := do(t, newTestEngine(t), http.MethodGet, "/webhook", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
