package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/backstage/services/picking/config"
	"example.com/backstage/services/picking/internal/api/handlers"
	"example.com/backstage/services/picking/internal/cache"
	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/services"
	"example.com/backstage/services/picking/internal/testutil"
	"example.com/backstage/services/picking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Identity{UID: "alice", Name: "Alice", Role: domain.RoleEstoquista}
	admin = domain.Identity{UID: "root", Name: "Admin", Role: domain.RoleAdmin}
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	clock   *testutil.FakeClock
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	clock := testutil.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	m := metrics.NewMetrics()
	tracer := tracing.Noop()

	users, err := services.NewUserService(db, cache.Disabled(), m, clock, "America/Maceio")
	require.NoError(t, err)
	seals := services.NewSealRegistry(db)
	rules := services.NewRulesService(db, cache.Disabled())
	pub := services.NoopPublisher()

	svc := Services{
		Lots:         services.NewLotService(db, seals, rules, users, pub, m, tracer, clock),
		SingleOrders: services.NewSingleOrderService(db, seals, rules, users, pub, m, tracer, clock),
		Users:        users,
		Rules:        rules,
		Tasks:        services.NewTaskService(db, users, m, clock),
		Projections:  services.NewProjectionService(db, nil, m, 0),
		Seals:        seals,
	}

	cfg := config.Config{
		Environment:    "test",
		MetricsEnabled: true,
		Server:         config.ServerConfig{Address: ":0", CorsEnabled: true, CorsOrigins: []string{"*"}},
	}
	server := NewServer(cfg, svc, m, tracer)
	return &testServer{t: t, handler: server.Handler(), clock: clock, metrics: m}
}

func (s *testServer) do(method, path string, as *domain.Identity, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set(HeaderUserID, as.UID)
		req.Header.Set(HeaderUserName, as.Name)
		req.Header.Set(HeaderUserRole, string(as.Role))
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func lotBody(lotCode string, orderCodes ...string) map[string]interface{} {
	orders := make([]map[string]interface{}, 0, len(orderCodes))
	for _, code := range orderCodes {
		orders = append(orders, map[string]interface{}{"orderCode": code, "cycle": "C1", "items": 3})
	}
	return map[string]interface{}{"lotCode": lotCode, "workMode": "GERAL", "orders": orders}
}

func TestRequiresIdentity(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/lots", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body handlers.ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestLotFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/lots", &alice, lotBody("12345678", "100000001", "100000002"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, step := range []string{"start", "close", "start-scanning"} {
		s.clock.Advance(5 * time.Minute)
		rec = s.do(http.MethodPost, "/api/v1/lots/12345678/"+step, &alice, nil)
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", step, rec.Body.String())
	}

	var seal services.SealResult
	rec = s.do(http.MethodPost, "/api/v1/lots/12345678/orders/100000001/seal", &alice, sealBody("0000000001"))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &seal)
	assert.True(t, seal.Success)

	rec = s.do(http.MethodPost, "/api/v1/lots/12345678/orders/100000002/seal", &alice, sealBody("0000000001"))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &seal)
	assert.False(t, seal.Success)
	assert.Equal(t, domain.KindConflict, seal.Kind)

	rec = s.do(http.MethodPost, "/api/v1/lots/12345678/complete", &alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/lots/12345678/orders/100000002/seal", &alice, sealBody("0000000002"))
	decode(t, rec, &seal)
	require.True(t, seal.Success)

	var sealed struct {
		AllSealed bool `json:"allSealed"`
	}
	decode(t, s.do(http.MethodGet, "/api/v1/lots/12345678/all-sealed", &alice, nil), &sealed)
	assert.True(t, sealed.AllSealed)

	rec = s.do(http.MethodPost, "/api/v1/lots/12345678/complete", &alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result services.CompletionResult
	decode(t, rec, &result)
	// 50 base + 2 orders * 10 + 6 items * 2, well below the speed target
	assert.Equal(t, 82, result.XP.Total)
	assert.Equal(t, domain.LotDone, result.Lot.Status)

	rec = s.do(http.MethodPost, "/api/v1/lots/12345678/complete", &alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var owner struct {
		OrderCode string `json:"orderCode"`
	}
	decode(t, s.do(http.MethodGet, "/api/v1/seals/0000000002", &alice, nil), &owner)
	assert.Equal(t, "100000002", owner.OrderCode)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/seals/0000000099", &alice, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/api/v1/activity", &admin, nil).Code)

	var profile services.Profile
	decode(t, s.do(http.MethodGet, "/api/v1/users/me", &alice, nil), &profile)
	assert.Equal(t, int64(82), profile.XPTotal)
	assert.Equal(t, 1, profile.Streak)
}

func sealBody(code string) map[string]string {
	return map[string]string{"sealedCode": code}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/lots", &alice, lotBody("12345678", "100000001")).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown lot", http.MethodGet, "/api/v1/lots/87654321", nil, http.StatusNotFound, "NOT_FOUND"},
		{"duplicate lot", http.MethodPost, "/api/v1/lots", lotBody("12345678", "100000009"), http.StatusConflict, "CONFLICT"},
		{"order reused", http.MethodPost, "/api/v1/lots", lotBody("22345678", "100000001"), http.StatusConflict, "CONFLICT"},
		{"bad lot code", http.MethodPost, "/api/v1/lots", lotBody("12", "100000005"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrong state", http.MethodPost, "/api/v1/lots/12345678/close", nil, http.StatusUnprocessableEntity, "INVALID_STATE"},
		{"bad status filter", http.MethodGet, "/api/v1/lots?status=LOST", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad limit", http.MethodGet, "/api/v1/leaderboard?limit=x", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed body", http.MethodPost, "/api/v1/single-orders", "not an object", http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, &alice, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body handlers.ErrorResponse
			decode(t, rec, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)

	rules := map[string]interface{}{
		"xpBasePerLot": 10, "xpPerOrder": 1, "xpPerItem": 1,
		"speedTargetItemsPerMin": 5, "bonus10Threshold": 1.0, "bonus20Threshold": 1.2,
	}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/v1/rules", &alice, rules).Code)

	rec := s.do(http.MethodPut, "/api/v1/rules", &admin, rules)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var current map[string]interface{}
	decode(t, s.do(http.MethodGet, "/api/v1/rules", &alice, nil), &current)
	assert.EqualValues(t, 10, current["xpBasePerLot"])

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/task-types", &alice, map[string]interface{}{"name": "Restock", "xp": 5}).Code)
	rec = s.do(http.MethodPost, "/api/v1/task-types", &admin, map[string]interface{}{"name": "Restock", "xp": 5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var taskType struct {
		ID string `json:"id"`
	}
	decode(t, rec, &taskType)

	rec = s.do(http.MethodPost, "/api/v1/task-logs", &alice, map[string]interface{}{"taskTypeId": taskType.ID, "quantity": 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var profile services.Profile
	decode(t, s.do(http.MethodGet, "/api/v1/users/alice", &admin, nil), &profile)
	assert.Equal(t, int64(20), profile.XPTotal)

	adminLot := map[string]interface{}{
		"lotCode": "33345678", "workMode": "GERAL",
		"orders":     []map[string]interface{}{{"orderCode": "300000001", "items": 1}},
		"assignment": map[string]interface{}{"type": "ASSIGNED_GENERAL", "general": map[string]string{"uid": "alice", "name": "Alice"}},
	}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/admin/lots", &alice, adminLot).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/lots/33345678", &alice, nil).Code)
}

func TestSingleOrderOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/single-orders", &alice, map[string]interface{}{"orderCode": "500000001", "items": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		ID string `json:"id"`
	}
	decode(t, rec, &order)
	require.NotEmpty(t, order.ID)

	for _, step := range []string{"start-separation", "end-separation", "start-scanning"} {
		s.clock.Advance(time.Minute)
		rec = s.do(http.MethodPost, "/api/v1/single-orders/"+order.ID+"/"+step, &alice, nil)
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", step, rec.Body.String())
	}

	var seal services.SealResult
	decode(t, s.do(http.MethodPost, "/api/v1/single-orders/"+order.ID+"/seal", &alice, sealBody("0000000042")), &seal)
	assert.True(t, seal.Success, seal.Error)

	var mine []map[string]interface{}
	decode(t, s.do(http.MethodGet, "/api/v1/single-orders", &alice, nil), &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "DONE", mine[0]["status"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.metrics.SetHealth("database", true)

	rec := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(http.MethodGet, "/api/v1/lots", &alice, nil)
	rec = s.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var all struct {
		Timers map[string]metrics.TimerMetric `json:"timers"`
	}
	decode(t, rec, &all)
	assert.GreaterOrEqual(t, all.Timers[metrics.TimerHTTPRequest].Count, int64(2))

	s.metrics.SetHealth("redis", false)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/health", nil, nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/lots", nil)
	req.Header.Set("Origin", "https://picking.example.com")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
