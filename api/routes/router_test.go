package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/comptoir-backend/api/middleware"
	"github.com/angelmondragon/comptoir-backend/internal/app"
	"github.com/angelmondragon/comptoir-backend/internal/reports"
	"github.com/angelmondragon/comptoir-backend/pkg/config"
	"github.com/angelmondragon/comptoir-backend/pkg/db"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/comptoir-backend/pkg/redis"
	"github.com/angelmondragon/comptoir-backend/pkg/store/storetest"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type harness struct {
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		App:          config.AppConfig{Env: "test", Timezone: "UTC"},
		Access:       config.AccessConfig{PatronCode: "123456", Gerante1Code: "111111", Gerante2Code: "222222"},
		Catalog:      config.CatalogConfig{LowStockThreshold: 10},
		CORS:         config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		FeatureFlags: config.FeatureFlagsConfig{Idempotency: true},
		Eventing:     config.EventingConfig{IdempotencyTTL: time.Hour},
	}
}

func newHarness(t *testing.T, pingers map[string]db.Pinger) *harness {
	t.Helper()
	cfg := testConfig()
	s := storetest.NewStore(t)
	reg := prometheus.NewRegistry()
	now := func() time.Time { return time.Date(2026, 5, 2, 19, 0, 0, 0, time.UTC) }

	services, err := app.NewServices(app.Params{Config: cfg, Store: s, Registerer: reg, Now: now})
	require.NoError(t, err)
	redisClient, _ := pkgredis.NewInMemory()

	handler := NewRouter(cfg, logger.Nop(), Dependencies{
		Pingers:     pingers,
		Feed:        s.Feed(),
		Idempotency: redisClient,
		Gatherer:    reg,
		Access:      services.Access,
		Settings:    services.Settings,
		Catalog:     services.Catalog,
		Orders:      services.Orders,
		Ledger:      services.Ledger,
		Employees:   services.Employees,
		Activity:    services.Activity,
		Dashboard:   services.Dashboard,
		Reports:     services.Reports,
	})
	return &harness{handler: handler}
}

func (h *harness) do(t *testing.T, method, path, actor string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(middleware.ActorHeader, actor)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Error.Code, envelope.Error.Message
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, map[string]db.Pinger{"store": stubPinger{}})

	rec := h.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Comptoir-Env"))

	rec = h.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeData(t, rec)["status"])
}

func TestReadinessReportsFailingDependency(t *testing.T) {
	h := newHarness(t, map[string]db.Pinger{"store": stubPinger{}, "redis": stubPinger{err: errors.New("connection refused")}})

	rec := h.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/v1/auth/actors", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gerante1")

	rec = h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"actorId": "patron", "code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, msg := decodeError(t, rec)
	assert.Equal(t, "Code incorrect", msg)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"actorId": "patron", "code": "123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/navigation", "patron", map[string]string{"section": "Stock"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/logout", "patron", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestActorHeaderIsRequired(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/v1/tables", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/tables", "nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderAndPaymentFlow(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/articles", "gerante1", map[string]any{
		"name": "Régab", "category": "Boissons", "priceBar": 1000, "priceSnackbar": 1200, "stock": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	articleID := decodeData(t, rec)["id"].(string)

	rec = h.do(t, http.MethodPost, "/api/v1/tables", "gerante1", map[string]string{"name": "Table 1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tableID := decodeData(t, rec)["id"].(string)

	rec = h.do(t, http.MethodPost, "/api/v1/tables/"+tableID+"/lines", "gerante1", map[string]any{"articleId": articleID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2000, decodeData(t, rec)["total"])

	rec = h.do(t, http.MethodPost, "/api/v1/tables/"+tableID+"/pay", "gerante1", nil, middleware.IdempotencyHeader, "pay-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	replay := h.do(t, http.MethodPost, "/api/v1/tables/"+tableID+"/pay", "gerante1", nil, middleware.IdempotencyHeader, "pay-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(middleware.ReplayHeader))

	rec = h.do(t, http.MethodPost, "/api/v1/tables/"+tableID+"/pay", "gerante1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/payments?period=today", "gerante1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeData(t, rec)
	assert.EqualValues(t, 1, summary["count"])
	assert.EqualValues(t, 2000, summary["total"])

	rec = h.do(t, http.MethodGet, "/api/v1/payments?period=month", "gerante1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/dashboard", "gerante1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestEmployeeRoleGuards(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/employees", "patron", map[string]string{"name": "Awa", "code": "654321"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	employeeID := decodeData(t, rec)["id"].(string)

	rec = h.do(t, http.MethodGet, "/api/v1/tables", employeeID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/payments", employeeID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/articles", employeeID, map[string]any{"name": "Coca", "priceBar": 500})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/employees/"+employeeID+"/activity", "patron", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPatronOnlyRoutes(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/v1/reports/stock", "gerante1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/reports/stock", "patron", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.ContentType, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename=\"stock_02-05-2026.xls\""))

	rec = h.do(t, http.MethodPut, "/api/v1/settings/access-codes/gerante1", "patron", map[string]string{"code": "333333"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"actorId": "gerante1", "code": "333333"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/v1/settings/access-codes/chef", "patron", map[string]string{"code": "333333"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModeSwitch(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPut, "/api/v1/mode", "patron", map[string]string{"mode": "snackbar"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/v1/mode", "patron", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "snackbar", decodeData(t, rec)["mode"])

	rec = h.do(t, http.MethodPut, "/api/v1/mode", "patron", map[string]string{"mode": "club"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
