package router

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"baluarte/api"
	"baluarte/config"
	"baluarte/logger"
	"baluarte/middleware"
	"baluarte/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{}

func (stubGateway) CreatePreference(ctx context.Context, pref service.PreferenceRequest) (*service.Preference, error) {
	return &service.Preference{ID: "pref-1"}, nil
}

func (stubGateway) GetPayment(ctx context.Context, paymentID string) (*service.Payment, error) {
	return &service.Payment{Status: service.PaymentPending}, nil
}

func setupTestRouter(t *testing.T, attempts int) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		JWT:       config.JWTConfig{Secret: "router-secret", ExpireTime: time.Hour},
		RateLimit: config.RateLimitConfig{LoginAttempts: attempts, LoginWindowSeconds: 60},
	}
	middleware.InitJWT(cfg)

	log := logger.Silent()
	upgrades := service.NewUpgradeService(stubGateway{}, nil, service.PlanCharge{}, log)
	payments := api.NewPaymentHandler(cfg.MercadoPago, stubGateway{}, upgrades, nil, log)
	return SetupRouter(cfg, log, payments)
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_PublicRoutes(t *testing.T) {
	r := setupTestRouter(t, 10)

	w := serve(r, "GET", "/", "")
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "API de Baluarte en ejecución...", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = serve(r, "GET", "/health", "")
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, "POST", "/api/mercadopago/webhook?topic=merchant_order&id=1", "")
	assert.Equal(t, 200, w.Code)
}

func TestSetupRouter_NotFound(t *testing.T) {
	r := setupTestRouter(t, 10)

	w := serve(r, "GET", "/api/nada", "")

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(404), resp["code"])
	assert.Equal(t, "No encontrado - /api/nada", resp["message"])
}

func TestSetupRouter_ProtectedRoutesNeedToken(t *testing.T) {
	r := setupTestRouter(t, 10)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/users/profile"},
		{"GET", "/api/users/plan"},
		{"GET", "/api/categories"},
		{"POST", "/api/transactions"},
		{"GET", "/api/transactions/export"},
		{"GET", "/api/dashboard"},
		{"POST", "/api/mercadopago/create-preference"},
	} {
		w := serve(r, route.method, route.path, "")
		assert.Equal(t, 401, w.Code, route.path)
	}
}

func TestSetupRouter_CORSPreflight(t *testing.T) {
	r := setupTestRouter(t, 10)

	w := serve(r, "OPTIONS", "/api/categories", "")

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRouter_AuthRateLimited(t *testing.T) {
	r := setupTestRouter(t, 2)

	// invalid bodies never reach the database but still count
	for i := 0; i < 2; i++ {
		w := serve(r, "POST", "/api/auth/login", `{}`)
		assert.Equal(t, 400, w.Code)
	}

	w := serve(r, "POST", "/api/auth/login", `{}`)
	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}
