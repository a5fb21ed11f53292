package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/discount"
	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)

func decEq(want string) interface{} {
	w := decimal.RequireFromString(want)
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(w) })
}

func newOrderHandler(orders *MockOrderService, customers *MockCustomerService) *OrderHandler {
	h := NewOrderHandler(orders, customers, discount.NewPolicy(time.UTC), zerolog.Nop())
	h.now = func() time.Time { return fixedNow }
	return h
}

func checkoutBody(customerID uuid.UUID) string {
	return fmt.Sprintf(`{
		"customerId": %q,
		"notes": "after six",
		"items": [
			{"productId": "W001", "name": "Malbec Reserva", "unitPrice": "20.00", "quantity": 2, "stockCeiling": 10},
			{"productId": "W002", "name": "Rioja Crianza", "unitPrice": "15.50", "quantity": 1, "stockCeiling": 3}
		]
	}`, customerID)
}

func TestOrderHandler_Create(t *testing.T) {
	customerID := uuid.New()
	birthday := time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC)
	otherDay := time.Date(1990, 8, 1, 0, 0, 0, 0, time.UTC)

	linesMatch := mock.MatchedBy(func(lines []cart.Line) bool {
		return len(lines) == 2 && lines[0].ProductID == "W001" && lines[0].Quantity == 2 &&
			lines[1].ProductID == "W002" && lines[1].StockCeiling == 3
	})
	notesMatch := mock.MatchedBy(func(n *string) bool { return n != nil && *n == "after six" })

	t.Run("creates pending order", func(t *testing.T) {
		orders, customers := new(MockOrderService), new(MockCustomerService)
		customers.On("GetByID", mock.Anything, customerID).
			Return(&model.Customer{ID: customerID, BirthDate: &otherDay}, nil)
		orders.On("CreateOrder", mock.Anything, customerID, linesMatch, decEq("55.50"), decEq("0"), notesMatch).
			Return(&model.Order{ID: uuid.New(), CustomerID: customerID, OrderNumber: "VT-20250510-ABCDEF",
				Status: model.OrderStatusPending, Total: decimal.RequireFromString("55.50")}, nil)

		w := httptest.NewRecorder()
		newOrderHandler(orders, customers).Create(w, httptest.NewRequest(http.MethodPost, "/api/orders",
			strings.NewReader(checkoutBody(customerID))))

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "VT-20250510-ABCDEF", body["orderNumber"])
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, "55.5", body["subtotal"])
		assert.Equal(t, false, body["birthdayDiscount"])
		orders.AssertExpectations(t)
	})

	t.Run("applies birthday discount", func(t *testing.T) {
		orders, customers := new(MockOrderService), new(MockCustomerService)
		customers.On("GetByID", mock.Anything, customerID).
			Return(&model.Customer{ID: customerID, BirthDate: &birthday}, nil)
		orders.On("CreateOrder", mock.Anything, customerID, linesMatch, decEq("47.17"), decEq("8.33"), notesMatch).
			Return(&model.Order{ID: uuid.New(), Status: model.OrderStatusPending}, nil)

		w := httptest.NewRecorder()
		newOrderHandler(orders, customers).Create(w, httptest.NewRequest(http.MethodPost, "/api/orders",
			strings.NewReader(checkoutBody(customerID))))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"birthdayDiscount":true`)
		orders.AssertExpectations(t)
	})

	tests := []struct {
		name           string
		body           string
		customerErr    error
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "invalid JSON",
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "missing customer",
			body:           `{"items":[{"productId":"W001","unitPrice":"1","quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
		{
			name:           "unknown customer",
			body:           checkoutBody(customerID),
			customerErr:    model.ErrCustomerNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeCustomerNotFound,
		},
		{
			name:           "pending order exists",
			body:           checkoutBody(customerID),
			serviceErr:     model.ErrPendingOrderExists,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodePendingOrderExists,
		},
		{
			name:           "insufficient stock",
			body:           checkoutBody(customerID),
			serviceErr:     &model.InsufficientStockError{ProductID: "W002", Requested: 1, Available: 0},
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInsufficientStock,
		},
		{
			name:           "price changed",
			body:           checkoutBody(customerID),
			serviceErr:     &model.PriceChangedError{ProductID: "W001", CartPrice: "20.00", LivePrice: "22.00"},
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodePriceChanged,
		},
		{
			name:           "empty cart",
			body:           checkoutBody(customerID),
			serviceErr:     model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyCart,
		},
		{
			name:           "order number clash",
			body:           checkoutBody(customerID),
			serviceErr:     model.ErrOrderNumberClash,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   model.ErrCodeOrderNumberConflict,
		},
		{
			name:           "rollback failed",
			body:           checkoutBody(customerID),
			serviceErr:     fmt.Errorf("%w: %w", model.ErrRollbackFailed, errBoom),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
		{
			name:           "unexpected error",
			body:           checkoutBody(customerID),
			serviceErr:     errBoom,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, customers := new(MockOrderService), new(MockCustomerService)
			if tt.customerErr != nil {
				customers.On("GetByID", mock.Anything, customerID).Return(nil, tt.customerErr)
			} else {
				customers.On("GetByID", mock.Anything, customerID).
					Return(&model.Customer{ID: customerID}, nil).Maybe()
			}
			if tt.serviceErr != nil {
				orders.On("CreateOrder", mock.Anything, customerID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			newOrderHandler(orders, customers).Create(w, httptest.NewRequest(http.MethodPost, "/api/orders",
				strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedCode, resp.Error)
			orders.AssertExpectations(t)
			if tt.serviceErr == nil {
				orders.AssertNotCalled(t, "CreateOrder")
			}
		})
	}
}

func TestOrderHandler_Create_CartCheckedBeforeCustomerLookup(t *testing.T) {
	customerID := uuid.New()

	tests := []struct {
		name         string
		items        string
		expectedCode string
	}{
		{name: "no items", items: `[]`, expectedCode: model.ErrCodeEmptyCart},
		{name: "items omitted", items: `null`, expectedCode: model.ErrCodeEmptyCart},
		{name: "zero quantity", items: `[{"productId":"W001","unitPrice":"20.00","quantity":0}]`, expectedCode: model.ErrCodeInvalidQuantity},
		{name: "negative quantity", items: `[{"productId":"W001","unitPrice":"20.00","quantity":-2}]`, expectedCode: model.ErrCodeInvalidQuantity},
		{name: "negative price", items: `[{"productId":"W001","unitPrice":"-1","quantity":1}]`, expectedCode: model.ErrCodeInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, customers := new(MockOrderService), new(MockCustomerService)
			body := fmt.Sprintf(`{"customerId":%q,"items":%s}`, customerID, tt.items)

			w := httptest.NewRecorder()
			newOrderHandler(orders, customers).Create(w, httptest.NewRequest(http.MethodPost, "/api/orders",
				strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedCode, resp.Error)
			customers.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything,
				mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderHandler_Create_StockMessage(t *testing.T) {
	customerID := uuid.New()
	orders, customers := new(MockOrderService), new(MockCustomerService)
	customers.On("GetByID", mock.Anything, customerID).Return(&model.Customer{ID: customerID}, nil)
	orders.On("CreateOrder", mock.Anything, customerID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &model.InsufficientStockError{ProductID: "W002", Requested: 5, Available: 3})

	w := httptest.NewRecorder()
	newOrderHandler(orders, customers).Create(w, httptest.NewRequest(http.MethodPost, "/api/orders",
		strings.NewReader(checkoutBody(customerID))))

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient stock for product W002: requested 5, available 3", resp.Message)
}

func TestOrderHandler_GetByID(t *testing.T) {
	orderID := uuid.New()
	details := &model.OrderDetails{
		Order: model.Order{ID: orderID, OrderNumber: "VT-20250510-ABCDEF", Status: model.OrderStatusPending},
		Lines: []model.OrderLine{{OrderID: orderID, ProductID: "W001", ProductName: "Malbec Reserva", Quantity: 2}},
	}

	tests := []struct {
		name           string
		id             string
		mockReturn     *model.OrderDetails
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "found", id: orderID.String(), mockReturn: details, expectedStatus: http.StatusOK, expectService: true},
		{name: "not found", id: orderID.String(), mockError: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "invalid id", id: "not-a-uuid", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderService)
			if tt.expectService {
				orders.On("GetOrder", mock.Anything, orderID).Return(tt.mockReturn, tt.mockError)
			}

			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.id, nil), map[string]string{"id": tt.id})
			w := httptest.NewRecorder()
			newOrderHandler(orders, new(MockCustomerService)).GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"lines":[`)
				assert.Contains(t, w.Body.String(), "VT-20250510-ABCDEF")
			}
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_ListByCustomer(t *testing.T) {
	customerID := uuid.New()
	orders := new(MockOrderService)
	orders.On("ListCustomerOrders", mock.Anything, customerID).
		Return([]model.Order{{OrderNumber: "VT-20250510-AAAAAA"}, {OrderNumber: "VT-20250509-BBBBBB"}}, nil)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": customerID.String()})
	w := httptest.NewRecorder()
	newOrderHandler(orders, new(MockCustomerService)).ListByCustomer(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestOrderHandler_Pending(t *testing.T) {
	customerID := uuid.New()

	for _, has := range []bool{true, false} {
		t.Run(fmt.Sprint(has), func(t *testing.T) {
			orders := new(MockOrderService)
			orders.On("CheckPendingOrder", mock.Anything, customerID).Return(has, nil)

			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": customerID.String()})
			w := httptest.NewRecorder()
			newOrderHandler(orders, new(MockCustomerService)).Pending(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var got model.PendingOrderResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, customerID, got.CustomerID)
			assert.Equal(t, has, got.HasPending)
		})
	}
}
