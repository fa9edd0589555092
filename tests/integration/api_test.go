package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "gold-trading-gateway/internal/adapter/http/handler"
	redisStorage "gold-trading-gateway/internal/adapter/storage/redis"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/internal/service"
	"gold-trading-gateway/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack over in-memory stores and
// miniredis. This exercises the real HTTP layer, middleware, handlers,
// services, and the Redis ticker cache end-to-end.

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	tickerCache := redisStorage.NewTickerCache(rdb)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	userRepo := newInMemoryUserRepo()
	walletRepo := newInMemoryWalletRepo()
	orderRepo := newInMemoryOrderRepo()
	txRepo := newInMemoryTransactionRepo()
	snapshotRepo := newInMemorySnapshotRepo()
	settingsRepo := newInMemorySettingsRepo()
	transactor := newInMemoryTransactor()
	locks := service.NewUserLocks()
	log := logger.New("error", false)

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	pricingSvc := service.NewPricingService(
		snapshotRepo, settingsRepo,
		&fixedSpotSource{price: decimal.NewFromInt(100)},
		tickerCache,
		decimal.NewFromInt(1),
		log,
	)
	tradingSvc := service.NewTradingService(walletRepo, orderRepo, txRepo, settingsRepo, pricingSvc, transactor, locks, log)
	fundsSvc := service.NewFundsService(walletRepo, txRepo, transactor, locks, log)
	adminSvc := service.NewAdminService(settingsRepo, orderRepo, log)
	reportingSvc := service.NewReportingService(txRepo, orderRepo, snapshotRepo)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PricingSvc:     pricingSvc,
		TradingSvc:     tradingSvc,
		FundsSvc:       fundsSvc,
		AdminSvc:       adminSvc,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		UserRepo:       userRepo,
		AdminUsers:     []string{"admin1"},
		HealthCheckers: []ports.HealthChecker{redisHealth},
		Logger:         log,
	})

	return &testApp{server: httptest.NewServer(router), redis: mr}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

func (a *testApp) post(t *testing.T, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	return a.do(t, http.MethodPost, path, token, body)
}

func (a *testApp) get(t *testing.T, path, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	return a.do(t, http.MethodGet, path, token, nil)
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

// registerAndLogin creates a fresh user and returns its bearer token.
func (a *testApp) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "password123"}

	resp, _ := a.post(t, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := a.post(t, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["data"].(map[string]interface{})["token"].(string)
}

func TestAPI_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.get(t, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestAPI_RegisterLoginTradeFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "trader1")

	// Deposit cash
	resp, body := app.post(t, "/api/v1/wallets/deposit", token, map[string]string{"amount": "1000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	balances := data["newBalances"].(map[string]interface{})
	assert.Equal(t, "1000", balances["sar"])

	// Current quote: spot 100 with default settings gives buy 102
	resp, body = app.get(t, "/api/v1/prices/current", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := body["data"].(map[string]interface{})
	assert.Equal(t, "102", quote["buyPrice"])

	// Buy 2 g at 102 = 204
	resp, body = app.post(t, "/api/v1/trades", token, map[string]interface{}{
		"side": "BUY", "goldAmount": "2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	trade := body["data"].(map[string]interface{})
	order := trade["order"].(map[string]interface{})
	assert.Equal(t, "EXECUTED", order["status"])
	assert.Equal(t, "204", order["totalSAR"])
	assert.Equal(t, quote["snapshotId"], order["snapshotId"])

	// Balance reflects the trade
	resp, body = app.get(t, "/api/v1/wallets/balance", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	wallet := body["data"].(map[string]interface{})
	assert.Equal(t, "2", wallet["goldBalance"])
	assert.Equal(t, "796", wallet["sarBalance"])

	// Statement shows deposit then buy, newest first
	resp, body = app.get(t, "/api/v1/wallets/transactions", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "BUY", items[0].(map[string]interface{})["type"])
	assert.Equal(t, "DEPOSIT", items[1].(map[string]interface{})["type"])
}

func TestAPI_TradeRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.post(t, "/api/v1/trades", "", map[string]interface{}{
		"side": "BUY", "goldAmount": "1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_003", body["error_code"])
}

func TestAPI_InsufficientFundsSurfacesCode(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "broke")

	resp, body := app.post(t, "/api/v1/trades", token, map[string]interface{}{
		"side": "BUY", "goldAmount": "1",
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "TRD_002", body["error_code"])
}

func TestAPI_SpotTicker(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.get(t, "/api/v1/prices/spot", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tick := body["data"].(map[string]interface{})
	assert.Equal(t, "100", tick["spotPrice"])

	// Served from cache on the second call, same payload either way.
	resp, body2 := app.get(t, "/api/v1/prices/spot", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tick["spotPrice"], body2["data"].(map[string]interface{})["spotPrice"])
}

func TestAPI_PriceHistorySeeded(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Any pricing call seeds/creates snapshots; history must be non-empty.
	resp, _ := app.get(t, "/api/v1/prices/current", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := app.get(t, "/api/v1/prices/history?limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := body["data"].([]interface{})
	assert.NotEmpty(t, history)
}

func TestAPI_AdminSettingsPatch(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "admin1")

	resp, body := app.do(t, http.MethodPatch, "/api/v1/admin/settings", token,
		map[string]interface{}{"spread": "0.04"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	settings := body["data"].(map[string]interface{})
	assert.Equal(t, "0.04", settings["spread"])

	// Unknown fields are rejected outright.
	resp, body = app.do(t, http.MethodPatch, "/api/v1/admin/settings", token,
		map[string]interface{}{"conversionRate": "4"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "TRD_000", body["error_code"])

	// Inverted bounds are rejected as a unit.
	resp, body = app.do(t, http.MethodPatch, "/api/v1/admin/settings", token,
		map[string]interface{}{"minTradeAmount": "20", "maxTradeAmount": "10"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "TRD_000", body["error_code"])
}

func TestAPI_AdminEndpointsRejectNonAdmin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "trader9")

	resp, body := app.get(t, "/api/v1/admin/settings", token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTH_004", body["error_code"])

	resp, body = app.do(t, http.MethodPatch, "/api/v1/admin/settings", token,
		map[string]interface{}{"spread": "0.5"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTH_004", body["error_code"])
}

func TestAPI_RequestIDPropagates(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, err := http.NewRequest(http.MethodGet, app.server.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "corr-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "corr-123", resp.Header.Get("X-Request-ID"))
}

func TestAPI_DuplicateRegistrationConflicts(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	creds := map[string]string{"username": "dupe", "password": "password123"}
	resp, _ := app.post(t, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := app.post(t, "/api/v1/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "AUTH_002", body["error_code"])
}

func TestAPI_ConcurrentDepositsSerialize(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "parallel")

	const n = 8
	errc := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			body := bytes.NewBufferString(`{"amount":"10"}`)
			req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/wallets/deposit", body)
			if err != nil {
				errc <- err
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				errc <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				errc <- fmt.Errorf("deposit status %d", resp.StatusCode)
				return
			}
			errc <- nil
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errc)
	}

	resp, body := app.get(t, "/api/v1/wallets/balance", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	wallet := body["data"].(map[string]interface{})
	assert.Equal(t, "80", wallet["sarBalance"])
}
