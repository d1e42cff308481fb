package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	mockcore "github.com/amirhossein-jamali/pos-checkout/mocks/port/core"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func cashierEcho(c *gin.Context) {
	cashier := middleware.CashierFromContext(c)
	c.JSON(http.StatusOK, gin.H{"id": cashier.ID, "name": cashier.Name, "email": cashier.Email})
}

func TestCashierAuth_Token(t *testing.T) {
	cfg := middleware.AuthConfig{Enabled: true, Secret: "test-secret", Issuer: "pos"}
	now := time.Now()

	valid, err := middleware.SignCashierToken(cfg, &entity.User{ID: 12, Name: "Ana", Email: "ana@example.com"}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	require.NoError(t, err)

	expired, err := middleware.SignCashierToken(cfg, &entity.User{ID: 12}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	})
	require.NoError(t, err)

	foreign, err := middleware.SignCashierToken(middleware.AuthConfig{Secret: "other", Issuer: "pos"}, &entity.User{ID: 12}, jwt.RegisteredClaims{})
	require.NoError(t, err)

	wrongIssuer, err := middleware.SignCashierToken(middleware.AuthConfig{Secret: "test-secret", Issuer: "elsewhere"}, &entity.User{ID: 12}, jwt.RegisteredClaims{})
	require.NoError(t, err)

	testCases := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{name: "valid token", authorization: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "missing header", authorization: "", expectedStatus: http.StatusUnauthorized},
		{name: "not a bearer token", authorization: "Basic abc", expectedStatus: http.StatusUnauthorized},
		{name: "expired token", authorization: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "signed with another secret", authorization: "Bearer " + foreign, expectedStatus: http.StatusUnauthorized},
		{name: "issued elsewhere", authorization: "Bearer " + wrongIssuer, expectedStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/me", middleware.CashierAuth(cfg, logger.NewNoopLogger()), cashierEcho)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			w := serve(router, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"id":12,"name":"Ana","email":"ana@example.com"}`, w.Body.String())
				return
			}
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, domainerr.CodeUnauthorized, resp.Code)
		})
	}
}

func TestCashierAuth_Header(t *testing.T) {
	testCases := []struct {
		name           string
		header         string
		expectedStatus int
		expectedID     float64
	}{
		{name: "explicit cashier", header: "5", expectedStatus: http.StatusOK, expectedID: 5},
		{name: "default cashier", header: "", expectedStatus: http.StatusOK, expectedID: 1},
		{name: "non-numeric cashier", header: "abc", expectedStatus: http.StatusUnauthorized},
		{name: "zero cashier", header: "0", expectedStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/me", middleware.CashierAuth(middleware.AuthConfig{}, logger.NewNoopLogger()), cashierEcho)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(middleware.CashierIDHeader, tc.header)
			}
			w := serve(router, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tc.expectedID, body["id"])
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	clock := timeadapter.NewManualTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:      rate.Limit(1),
		Burst:     2,
		ExpiresIn: time.Minute,
	}, clock)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, limiter.Allow("10.0.0.2"), "clients have separate buckets")

	clock.Advance(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"), "one token refilled")
	assert.False(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	clock := timeadapter.NewManualTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: rate.Limit(1), Burst: 1}, clock)

	router := gin.New()
	router.POST("/checkout", limiter.Middleware(logger.NewNoopLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := serve(router, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	second := serve(router, httptest.NewRequest(http.MethodPost, "/checkout", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, domainerr.CodeTooManyRequests, resp.Code)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(middleware.CORS("https://dashboard.example.com/"))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		w := serve(router, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestErrorHandler(t *testing.T) {
	router := gin.New()
	router.Use(middleware.ErrorHandler(logger.NewNoopLogger()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	router.GET("/locked", func(c *gin.Context) { _ = c.Error(domainerr.ErrTransactionLocked) })
	router.GET("/written", func(c *gin.Context) {
		_ = c.Error(domainerr.ErrItemNotFound)
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})

	t.Run("panic renders 500", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, domainerr.CodeInternalServer, resp.Code)
	})

	t.Run("attached error is rendered", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/locked", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, domainerr.CodeTransactionLocked, resp.Code)
	})

	t.Run("written response is left alone", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/written", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, middleware.GetRequestID(c)) })

	generated := serve(router, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, generated.Body.String())
	assert.Equal(t, generated.Body.String(), generated.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	propagated := serve(router, req)
	assert.Equal(t, "req-123", propagated.Body.String())
}

func TestMetrics(t *testing.T) {
	clock := timeadapter.NewManualTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	metrics := mockcore.NewMockMetrics(t)
	metrics.On("RecordHTTPRequest", "/items/:id", "200", 25*time.Millisecond).Once()
	metrics.On("RecordHTTPRequest", "unmatched", "404", time.Duration(0)).Once()

	router := gin.New()
	router.Use(middleware.Metrics(metrics, clock))
	router.GET("/items/:id", func(c *gin.Context) {
		clock.Advance(25 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	metrics.AssertNumberOfCalls(t, "RecordHTTPRequest", 2)
	metrics.AssertCalled(t, "RecordHTTPRequest", "/items/:id", "200", mock.AnythingOfType("time.Duration"))
}

func TestLogger(t *testing.T) {
	clock := timeadapter.NewManualTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := mockcore.NewMockLogger(t)
	log.On("Info", "Request processed", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["status"] == http.StatusOK &&
			fields["route"] == "/items/:id" &&
			fields["user_id"] == uint64(9) &&
			fields["latency_ms"] == int64(40)
	})).Once()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log, clock))
	router.GET("/items/:id", middleware.CashierAuth(middleware.AuthConfig{}, logger.NewNoopLogger()), func(c *gin.Context) {
		clock.Advance(40 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(middleware.CashierIDHeader, "9")
	serve(router, req)
}
