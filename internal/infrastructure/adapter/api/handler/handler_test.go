package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	port "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/checkout"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	mockusecase "github.com/amirhossein-jamali/pos-checkout/mocks/port/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger.NewNoopLogger()))
	return router
}

func cashierGroup(router *gin.Engine) *gin.RouterGroup {
	group := router.Group("/api/pos")
	group.Use(middleware.CashierAuth(middleware.AuthConfig{DefaultCashierID: 7}, logger.NewNoopLogger()))
	return group
}

func doRequest(router *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleTransaction(status entity.TransactionStatus) *entity.Transaction {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return &entity.Transaction{
		ID:                 42,
		UserID:             7,
		Subtotal:           decimal.RequireFromString("198.00"),
		Tax:                decimal.Zero,
		Discount:           decimal.Zero,
		Total:              decimal.RequireFromString("198.00"),
		PaymentMethod:      entity.PaymentMethodGateway,
		PaymentProvider:    entity.ProviderMaya,
		Status:             status,
		ReceiptNumber:      "RCPT-20260301093000-00000042",
		ProviderCheckoutID: "chk_1",
		ProviderReference:  "RRN-20260301093000-abcdef12",
		CreatedAt:          created,
		UpdatedAt:          created,
		Lines: []entity.TransactionLine{{
			ItemID:   1,
			ItemName: "Burger",
			SKU:      "FF-BURGER",
			Quantity: 2,
			Price:    decimal.RequireFromString("99.00"),
			Subtotal: decimal.RequireFromString("198.00"),
		}},
	}
}

func TestCheckoutHandler_Checkout(t *testing.T) {
	checkoutBody := []byte(`{"items":[{"id":1,"quantity":2}],"payment_method":"cash","notes":"table 4"}`)

	testCases := []struct {
		name           string
		body           []byte
		mockSetup      func(m *mockusecase.MockCheckoutUseCase)
		expectedStatus int
		assertBody     func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "cash sale returns the receipt",
			body: checkoutBody,
			mockSetup: func(m *mockusecase.MockCheckoutUseCase) {
				m.On("Checkout", mock.Anything, mock.MatchedBy(func(req port.CheckoutRequest) bool {
					return req.Cashier.ID == 7 &&
						req.PaymentMethod == "cash" &&
						req.Notes == "table 4" &&
						len(req.Lines) == 1 && req.Lines[0] == entity.CartLine{ItemID: 1, Quantity: 2}
				})).Return(&port.CheckoutResult{
					Transaction: sampleTransaction(entity.StatusCompleted),
					Receipt:     &entity.ReceiptPayload{ID: 42, ReceiptNumber: "RCPT-20260301093000-00000042", Total: 198},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			assertBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.CashCheckoutResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "Cash payment processed successfully.", resp.Message)
				require.NotNil(t, resp.Receipt)
				assert.Equal(t, "RCPT-20260301093000-00000042", resp.Receipt.ReceiptNumber)
				assert.Equal(t, 198.0, resp.Receipt.Total)
			},
		},
		{
			name: "gateway sale returns the redirect",
			body: []byte(`{"items":[{"id":1,"quantity":2}],"payment_method":"gateway"}`),
			mockSetup: func(m *mockusecase.MockCheckoutUseCase) {
				m.On("Checkout", mock.Anything, mock.Anything).Return(&port.CheckoutResult{
					Transaction: sampleTransaction(entity.StatusPending),
					RedirectURL: "https://pay.example.com/chk_1",
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			assertBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.GatewayCheckoutResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "pending", resp.Status)
				assert.Equal(t, uint64(42), resp.TransactionID)
				assert.Equal(t, "RCPT-20260301093000-00000042", resp.ReceiptNumber)
				assert.Equal(t, "https://pay.example.com/chk_1", resp.RedirectURL)
			},
		},
		{
			name: "insufficient stock renders field errors",
			body: checkoutBody,
			mockSetup: func(m *mockusecase.MockCheckoutUseCase) {
				m.On("Checkout", mock.Anything, mock.Anything).
					Return(nil, domainerr.NewInsufficientStockError(1, "Burger", 2, 1)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			assertBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, domainerr.CodeInsufficientStock, resp.Code)
				assert.Equal(t, "Insufficient stock for Burger.", resp.Errors["items"])
			},
		},
		{
			name: "unsupported payment method renders field errors",
			body: checkoutBody,
			mockSetup: func(m *mockusecase.MockCheckoutUseCase) {
				m.On("Checkout", mock.Anything, mock.Anything).
					Return(nil, domainerr.NewValidationError("payment_method", "Unsupported payment method.", domainerr.ErrUnsupportedPaymentMethod)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			assertBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, domainerr.CodeUnsupportedPayment, resp.Code)
				assert.Equal(t, "Unsupported payment method.", resp.Message)
				assert.Equal(t, "Unsupported payment method.", resp.Errors["payment_method"])
			},
		},
		{
			name:           "malformed body is rejected before checkout",
			body:           []byte(`{"items":`),
			mockSetup:      func(m *mockusecase.MockCheckoutUseCase) {},
			expectedStatus: http.StatusUnprocessableEntity,
			assertBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, domainerr.CodeInvalidRequest, resp.Code)
				assert.Contains(t, resp.Errors, "request")
			},
		},
		{
			name: "unexpected failure hides the cause",
			body: checkoutBody,
			mockSetup: func(m *mockusecase.MockCheckoutUseCase) {
				m.On("Checkout", mock.Anything, mock.Anything).Return(nil, errors.New("disk full")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			assertBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, domainerr.CodeInternalServer, resp.Code)
				assert.Equal(t, "Internal server error", resp.Message)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := mockusecase.NewMockCheckoutUseCase(t)
			tc.mockSetup(uc)

			router := newRouter()
			h := handler.NewCheckoutHandler(uc, nil, logger.NewNoopLogger())
			cashierGroup(router).POST("/checkout", h.Checkout)

			w := doRequest(router, http.MethodPost, "/api/pos/checkout", tc.body, nil)

			assert.Equal(t, tc.expectedStatus, w.Code)
			tc.assertBody(t, w)
		})
	}
}

func TestCheckoutHandler_IdempotencyKey(t *testing.T) {
	clock := timeadapter.NewManualTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := cache.NewMemoryIdempotencyStore(clock)
	idem := checkout.NewIdempotencyHandler(store, time.Hour, logger.NewNoopLogger())
	body := []byte(`{"items":[{"id":1,"quantity":1}],"payment_method":"cash"}`)

	t.Run("successful response is replayed", func(t *testing.T) {
		uc := mockusecase.NewMockCheckoutUseCase(t)
		uc.On("Checkout", mock.Anything, mock.Anything).Return(&port.CheckoutResult{
			Transaction: sampleTransaction(entity.StatusCompleted),
			Receipt:     &entity.ReceiptPayload{ID: 42, ReceiptNumber: "RCPT-1"},
		}, nil).Once()

		router := newRouter()
		h := handler.NewCheckoutHandler(uc, idem, logger.NewNoopLogger())
		cashierGroup(router).POST("/checkout", h.Checkout)
		headers := map[string]string{handler.IdempotencyKeyHeader: "till-1-0001"}

		first := doRequest(router, http.MethodPost, "/api/pos/checkout", body, headers)
		second := doRequest(router, http.MethodPost, "/api/pos/checkout", body, headers)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Empty(t, first.Header().Get(handler.ReplayedHeader))
		assert.Equal(t, "true", second.Header().Get(handler.ReplayedHeader))
	})

	t.Run("in-flight key is rejected", func(t *testing.T) {
		uc := mockusecase.NewMockCheckoutUseCase(t)
		reserved, err := store.Reserve(context.Background(), "7:till-1-0002", time.Hour)
		require.NoError(t, err)
		require.True(t, reserved)

		router := newRouter()
		h := handler.NewCheckoutHandler(uc, idem, logger.NewNoopLogger())
		cashierGroup(router).POST("/checkout", h.Checkout)

		w := doRequest(router, http.MethodPost, "/api/pos/checkout", body, map[string]string{handler.IdempotencyKeyHeader: "till-1-0002"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, domainerr.CodeDuplicateRequest, decodeError(t, w).Code)
	})

	t.Run("failed checkout releases the key", func(t *testing.T) {
		uc := mockusecase.NewMockCheckoutUseCase(t)
		uc.On("Checkout", mock.Anything, mock.Anything).
			Return(nil, domainerr.NewInsufficientStockError(1, "Burger", 1, 0)).Once()
		uc.On("Checkout", mock.Anything, mock.Anything).Return(&port.CheckoutResult{
			Transaction: sampleTransaction(entity.StatusCompleted),
			Receipt:     &entity.ReceiptPayload{ID: 42},
		}, nil).Once()

		router := newRouter()
		h := handler.NewCheckoutHandler(uc, idem, logger.NewNoopLogger())
		cashierGroup(router).POST("/checkout", h.Checkout)
		headers := map[string]string{handler.IdempotencyKeyHeader: "till-1-0003"}

		first := doRequest(router, http.MethodPost, "/api/pos/checkout", body, headers)
		second := doRequest(router, http.MethodPost, "/api/pos/checkout", body, headers)

		assert.Equal(t, http.StatusUnprocessableEntity, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
	})

	t.Run("same key from another cashier is a new checkout", func(t *testing.T) {
		uc := mockusecase.NewMockCheckoutUseCase(t)
		uc.On("Checkout", mock.Anything, mock.MatchedBy(func(req port.CheckoutRequest) bool {
			return req.Cashier.ID == 1
		})).Return(&port.CheckoutResult{
			Transaction: sampleTransaction(entity.StatusCompleted),
			Receipt:     &entity.ReceiptPayload{ID: 41, ReceiptNumber: "RCPT-41"},
		}, nil).Once()
		uc.On("Checkout", mock.Anything, mock.MatchedBy(func(req port.CheckoutRequest) bool {
			return req.Cashier.ID == 2
		})).Return(&port.CheckoutResult{
			Transaction: sampleTransaction(entity.StatusCompleted),
			Receipt:     &entity.ReceiptPayload{ID: 42, ReceiptNumber: "RCPT-42"},
		}, nil).Once()

		router := newRouter()
		h := handler.NewCheckoutHandler(uc, idem, logger.NewNoopLogger())
		cashierGroup(router).POST("/checkout", h.Checkout)

		first := doRequest(router, http.MethodPost, "/api/pos/checkout", body, map[string]string{
			handler.IdempotencyKeyHeader: "till-0001",
			middleware.CashierIDHeader:   "1",
		})
		second := doRequest(router, http.MethodPost, "/api/pos/checkout", body, map[string]string{
			handler.IdempotencyKeyHeader: "till-0001",
			middleware.CashierIDHeader:   "2",
		})

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Empty(t, second.Header().Get(handler.ReplayedHeader))
		assert.Contains(t, first.Body.String(), "RCPT-41")
		assert.Contains(t, second.Body.String(), "RCPT-42")
	})
}

func TestCallbackHandler_Callback(t *testing.T) {
	testCases := []struct {
		name            string
		path            string
		mockSetup       func(m *mockusecase.MockReconciliationUseCase)
		expectedResult  string
		expectedReceipt string
	}{
		{
			name: "verified success carries the receipt",
			path: "/pos/checkout/42/success",
			mockSetup: func(m *mockusecase.MockReconciliationUseCase) {
				m.On("HandleCallback", mock.Anything, uint64(42), port.CallbackSuccess).Return(&port.ReconcileOutcome{
					Transaction: sampleTransaction(entity.StatusCompleted),
					Changed:     true,
					Verified:    true,
					Source:      "reference",
				}, nil).Once()
			},
			expectedResult:  "success",
			expectedReceipt: "RCPT-20260301093000-00000042",
		},
		{
			name: "unverified success reports failure",
			path: "/pos/checkout/42/success",
			mockSetup: func(m *mockusecase.MockReconciliationUseCase) {
				m.On("HandleCallback", mock.Anything, uint64(42), port.CallbackSuccess).Return(&port.ReconcileOutcome{
					Transaction: sampleTransaction(entity.StatusFailed),
					Changed:     true,
				}, nil).Once()
			},
			expectedResult: "failed",
		},
		{
			name: "cancelled hint reports failure",
			path: "/pos/checkout/42/cancelled",
			mockSetup: func(m *mockusecase.MockReconciliationUseCase) {
				m.On("HandleCallback", mock.Anything, uint64(42), port.CallbackCancelled).Return(&port.ReconcileOutcome{
					Transaction: sampleTransaction(entity.StatusCancelled),
					Changed:     true,
				}, nil).Once()
			},
			expectedResult: "failed",
		},
		{
			name: "unknown transaction reports failure",
			path: "/pos/checkout/999/success",
			mockSetup: func(m *mockusecase.MockReconciliationUseCase) {
				m.On("HandleCallback", mock.Anything, uint64(999), port.CallbackSuccess).
					Return(nil, domainerr.ErrTransactionNotFound).Once()
			},
			expectedResult: "failed",
		},
		{
			name:           "invalid result hint is not reconciled",
			path:           "/pos/checkout/42/refunded",
			mockSetup:      func(m *mockusecase.MockReconciliationUseCase) {},
			expectedResult: "failed",
		},
		{
			name:           "non-numeric transaction is not reconciled",
			path:           "/pos/checkout/abc/success",
			mockSetup:      func(m *mockusecase.MockReconciliationUseCase) {},
			expectedResult: "failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reconciler := mockusecase.NewMockReconciliationUseCase(t)
			tc.mockSetup(reconciler)

			router := newRouter()
			h := handler.NewCallbackHandler(reconciler, "https://pos.example.com/dashboard?tab=sales", logger.NewNoopLogger())
			router.GET("/pos/checkout/:transaction/:result", h.Callback)

			w := doRequest(router, http.MethodGet, tc.path, nil, nil)

			require.Equal(t, http.StatusFound, w.Code)
			location, err := url.Parse(w.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "pos.example.com", location.Host)
			assert.Equal(t, "/dashboard", location.Path)
			assert.Equal(t, "sales", location.Query().Get("tab"))
			assert.Equal(t, tc.expectedResult, location.Query().Get("checkout_result"))
			assert.Equal(t, tc.expectedReceipt, location.Query().Get("receipt"))
			if tc.expectedReceipt == "" {
				assert.False(t, location.Query().Has("receipt"))
			}
		})
	}
}

func TestTransactionHandler(t *testing.T) {
	t.Run("get returns the transaction", func(t *testing.T) {
		uc := mockusecase.NewMockCheckoutUseCase(t)
		uc.On("GetTransaction", mock.Anything, uint64(42)).Return(sampleTransaction(entity.StatusPending), nil).Once()

		router := newRouter()
		h := handler.NewTransactionHandler(uc, mockusecase.NewMockReconciliationUseCase(t), logger.NewNoopLogger())
		cashierGroup(router).GET("/transactions/:id", h.GetTransaction)

		w := doRequest(router, http.MethodGet, "/api/pos/transactions/42", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.TransactionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "198.00", resp.Total)
		assert.Equal(t, "maya_checkout", resp.PaymentMethod)
		assert.Equal(t, "chk_1", resp.ProviderCheckoutID)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "Burger", resp.Lines[0].Name)
		assert.Equal(t, "99.00", resp.Lines[0].Price)
	})

	t.Run("missing transaction is 404", func(t *testing.T) {
		uc := mockusecase.NewMockCheckoutUseCase(t)
		uc.On("GetTransaction", mock.Anything, uint64(7)).Return(nil, domainerr.ErrTransactionNotFound).Once()

		router := newRouter()
		h := handler.NewTransactionHandler(uc, mockusecase.NewMockReconciliationUseCase(t), logger.NewNoopLogger())
		cashierGroup(router).GET("/transactions/:id", h.GetTransaction)

		w := doRequest(router, http.MethodGet, "/api/pos/transactions/7", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, domainerr.CodeTransactionNotFound, decodeError(t, w).Code)
	})

	t.Run("malformed id is 404", func(t *testing.T) {
		router := newRouter()
		h := handler.NewTransactionHandler(mockusecase.NewMockCheckoutUseCase(t), mockusecase.NewMockReconciliationUseCase(t), logger.NewNoopLogger())
		cashierGroup(router).GET("/transactions/:id", h.GetTransaction)

		w := doRequest(router, http.MethodGet, "/api/pos/transactions/-1", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reconcile polls the resolver", func(t *testing.T) {
		reconciler := mockusecase.NewMockReconciliationUseCase(t)
		reconciler.On("Poll", mock.Anything, uint64(42)).Return(&port.ReconcileOutcome{
			Transaction: sampleTransaction(entity.StatusCompleted),
			Changed:     true,
			Verified:    true,
			Source:      "checkout",
		}, nil).Once()

		router := newRouter()
		h := handler.NewTransactionHandler(mockusecase.NewMockCheckoutUseCase(t), reconciler, logger.NewNoopLogger())
		cashierGroup(router).POST("/transactions/:id/reconcile", h.Reconcile)

		w := doRequest(router, http.MethodPost, "/api/pos/transactions/42/reconcile", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ReconcileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Changed)
		assert.True(t, resp.Verified)
		assert.Equal(t, "checkout", resp.Source)
		assert.Equal(t, "completed", resp.Transaction.Status)
	})
}

func TestReceiptHandler(t *testing.T) {
	payload := &entity.ReceiptPayload{ID: 42, ReceiptNumber: "RCPT-1", Status: "completed", Total: 198}

	receipts := mockusecase.NewMockReceiptUseCase(t)
	receipts.On("GetByReceiptNumber", mock.Anything, "RCPT-1").Return(payload, nil).Once()
	receipts.On("GetByReceiptNumber", mock.Anything, "RCPT-404").Return(nil, domainerr.ErrReceiptNotFound).Once()
	receipts.On("GetByTransactionID", mock.Anything, uint64(42)).Return(payload, nil).Once()

	router := newRouter()
	h := handler.NewReceiptHandler(receipts)
	group := cashierGroup(router)
	group.GET("/receipts/:receiptNumber", h.GetByReceiptNumber)
	group.GET("/transactions/:id/receipt", h.GetByTransaction)

	found := doRequest(router, http.MethodGet, "/api/pos/receipts/RCPT-1", nil, nil)
	require.Equal(t, http.StatusOK, found.Code)
	var got entity.ReceiptPayload
	require.NoError(t, json.Unmarshal(found.Body.Bytes(), &got))
	assert.Equal(t, *payload, got)

	missing := doRequest(router, http.MethodGet, "/api/pos/receipts/RCPT-404", nil, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, domainerr.CodeReceiptNotFound, decodeError(t, missing).Code)

	byTransaction := doRequest(router, http.MethodGet, "/api/pos/transactions/42/receipt", nil, nil)
	assert.Equal(t, http.StatusOK, byTransaction.Code)
}

func TestItemHandler_GetItem(t *testing.T) {
	inventory := mockusecase.NewMockInventoryUseCase(t)
	inventory.On("GetItem", mock.Anything, uint64(1)).Return(&entity.Item{
		ID:       1,
		Name:     "Burger",
		SKU:      "FF-BURGER",
		Price:    decimal.RequireFromString("99"),
		Stock:    3,
		MinStock: 5,
		IsActive: true,
	}, nil).Once()
	inventory.On("GetItem", mock.Anything, uint64(2)).Return(nil, domainerr.ErrItemNotFound).Once()

	router := newRouter()
	h := handler.NewItemHandler(inventory)
	cashierGroup(router).GET("/items/:id", h.GetItem)

	w := doRequest(router, http.MethodGet, "/api/pos/items/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "99.00", resp.Price)
	assert.Equal(t, 3, resp.Stock)
	assert.True(t, resp.LowStock)

	missing := doRequest(router, http.MethodGet, "/api/pos/items/2", nil, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, domainerr.CodeItemNotFound, decodeError(t, missing).Code)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Health(t *testing.T) {
	testCases := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedBody   dto.HealthResponse
	}{
		{
			name:           "database reachable",
			expectedStatus: http.StatusOK,
			expectedBody:   dto.HealthResponse{Status: "ok", Database: "ok"},
		},
		{
			name:           "database down",
			pingErr:        errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   dto.HealthResponse{Status: "degraded", Database: "unreachable"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter()
			router.GET("/healthz", handler.NewHealthHandler(stubPinger{err: tc.pingErr}, logger.NewNoopLogger()).Health)

			w := doRequest(router, http.MethodGet, "/healthz", nil, nil)

			assert.Equal(t, tc.expectedStatus, w.Code)
			var resp dto.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.expectedBody, resp)
		})
	}
}
