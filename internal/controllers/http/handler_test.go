package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/mocks"
	"marketplace/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type handlerFixture struct {
	orders   *mocks.MockOrderRepository
	products *mocks.MockProductRepository
	users    *mocks.MockUserRepository
	notifs   *mocks.MockNotificationRepository
	settings *mocks.MockSettingsRepository
	router   *gin.Engine
}

func newHandlerFixture() *handlerFixture {
	gin.SetMode(gin.TestMode)
	f := &handlerFixture{
		orders:   new(mocks.MockOrderRepository),
		products: new(mocks.MockProductRepository),
		users:    new(mocks.MockUserRepository),
		notifs:   new(mocks.MockNotificationRepository),
		settings: new(mocks.MockSettingsRepository),
	}
	notifier := services.NewNotificationService(f.notifs, f.users, f.products)
	settings := services.NewSettingsService(f.settings)
	engine := services.NewSettlementEngine(f.orders, f.products, notifier, nil, nil, nil)
	orders := services.NewOrderService(f.orders, f.products, f.users, settings, notifier, engine, nil)

	h := NewHandler(Services{
		Orders:        orders,
		Notifications: notifier,
		Settings:      settings,
		Reports:       services.NewReportService(f.orders, f.products, f.users),
		Catalog:       services.NewCatalogService(f.products, nil),
		Sellers:       services.NewSellerService(f.users, notifier, new(mocks.MockMailer)),
	}, nil, testSecret)
	f.router = gin.New()
	h.RegisterRoutes(f.router)
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, who *domain.Principal, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if who != nil {
		token, err := SignToken(testSecret, *who, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

var (
	customer = domain.Principal{UserID: 42, Role: domain.RoleCustomer}
	admin    = domain.Principal{UserID: 1, Role: domain.RoleAdmin}
)

func TestAuthenticate(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(t, http.MethodGet, "/orders/my", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/orders/my", nil)
	forged, err := SignToken("other-secret", customer, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+forged)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := SignToken(testSecret, customer, -time.Minute)
	require.NoError(t, err)
	_, err = parseToken(testSecret, expired)
	assert.Error(t, err)
}

func TestParseToken_RoundTrip(t *testing.T) {
	seller := domain.Principal{UserID: 7, Role: domain.RoleSeller, Approved: true}
	token, err := SignToken(testSecret, seller, time.Hour)
	require.NoError(t, err)

	got, err := parseToken(testSecret, token)

	require.NoError(t, err)
	assert.Equal(t, seller, got)
}

func TestCreateOrder_ValidationError(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(t, http.MethodPost, "/orders", &customer, CreateOrderRequest{PaymentMethod: "card"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "at least one item")
}

func TestCreateOrder(t *testing.T) {
	f := newHandlerFixture()
	f.products.On("FindByIDs", mock.Anything, []uint64{3}).Return([]domain.Product{{ID: 3, Name: "Mug", Price: 5, Stock: 10}}, nil)
	f.settings.On("Get", mock.Anything).Return(&domain.Settings{ShippingFee: 4}, nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).ID = 11
	})
	f.users.On("AdminIDs", mock.Anything).Return([]uint64{}, nil)

	w := f.do(t, http.MethodPost, "/orders", &customer, CreateOrderRequest{
		OrderItems: []OrderItemRequest{{ProductID: 3, Quantity: 2}},
		ShippingAddress: ShippingAddressRequest{
			Name: "Ada", Address: "1 Main St", City: "Springfield", Phone: "555", PostalCode: "12345",
		},
		PaymentMethod: "card",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var got domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, uint64(11), got.ID)
	assert.Equal(t, 14.0, got.TotalAmount)
}

func TestGetOrder_Forbidden(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("FindByID", mock.Anything, uint64(5)).Return(&domain.Order{ID: 5, UserID: 99}, nil)

	w := f.do(t, http.MethodGet, "/orders/5", &customer, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrder_NotFoundAndBadID(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("FindByID", mock.Anything, uint64(6)).Return(nil, nil)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/orders/6", &customer, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/orders/abc", &customer, nil).Code)
}

func TestPayOrder_OnlyOwner(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("FindByID", mock.Anything, uint64(5)).Return(&domain.Order{ID: 5, UserID: 99}, nil)

	w := f.do(t, http.MethodPut, "/orders/5/pay", &customer, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestPayOrder_ManualConfirmation(t *testing.T) {
	tests := []struct {
		name       string
		who        domain.Principal
		method     string
		wantStatus int
	}{
		{name: "owner of a cash on delivery order", who: customer, method: domain.PaymentMethodCashOnDelivery, wantStatus: http.StatusOK},
		{name: "owner of a card order", who: customer, method: "card", wantStatus: http.StatusForbidden},
		{name: "admin on a card order", who: admin, method: "card", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.orders.On("FindByID", mock.Anything, uint64(5)).Return(&domain.Order{
				ID: 5, UserID: 42, PaymentMethod: tt.method,
				PaymentStatus: domain.PaymentUnpaid, Status: domain.StatusPending,
			}, nil)
			f.orders.On("MarkPaid", mock.Anything, uint64(5)).Return(true, nil).Maybe()
			f.orders.On("ClaimSettlement", mock.Anything, uint64(5)).Return(true, nil).Maybe()
			f.users.On("FindByID", mock.Anything, uint64(42)).Return(nil, nil).Maybe()

			w := f.do(t, http.MethodPut, "/orders/5/pay", &tt.who, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
				return
			}
			var got domain.Order
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
		})
	}
}

func TestPayOrder_CancelledOrderConflicts(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("FindByID", mock.Anything, uint64(5)).Return(&domain.Order{
		ID: 5, UserID: 42, PaymentStatus: domain.PaymentUnpaid, Status: domain.StatusCancelled,
	}, nil)

	w := f.do(t, http.MethodPut, "/orders/5/pay", &admin, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestInternalErrorIsHidden(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("FindByUser", mock.Anything, uint64(42)).Return(nil, errors.New("dial tcp 10.0.0.3:3306: connection refused"))

	w := f.do(t, http.MethodGet, "/orders/my", &customer, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", errorBody(t, w))
}

func TestItemStatusRoute(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(t, http.MethodPut, "/orders/item-status", &customer, UpdateItemStatusRequest{OrderID: 1, ProductID: 2, Status: domain.StatusShipped})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestItemStatusRoute_ByItemID(t *testing.T) {
	f := newHandlerFixture()
	seller := domain.Principal{UserID: 7, Role: domain.RoleSeller, Approved: true}
	sellerID := uint64(7)
	f.orders.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Order{ID: 1, UserID: 42, Items: []domain.OrderItem{
		{ID: 10, ProductID: 2, SellerID: &sellerID, Color: "Red", Status: domain.StatusPending},
		{ID: 11, ProductID: 2, SellerID: &sellerID, Color: "Blue", Status: domain.StatusPending},
	}}, nil)
	f.products.On("FindByID", mock.Anything, uint64(2)).Return(&domain.Product{ID: 2, SellerID: &sellerID}, nil)
	f.orders.On("UpdateItemStatus", mock.Anything, uint64(11), domain.StatusShipped).Return(nil)

	w := f.do(t, http.MethodPut, "/orders/item-status", &seller, UpdateItemStatusRequest{OrderID: 1, ProductID: 2, ItemID: 11, Status: domain.StatusShipped})

	assert.Equal(t, http.StatusOK, w.Code)
	f.orders.AssertExpectations(t)
}

func TestGetStats_AdminOnly(t *testing.T) {
	f := newHandlerFixture()

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/admin/stats?type=monthly&date=2025-03", &customer, nil).Code)

	w := f.do(t, http.MethodGet, "/admin/stats?type=weekly&date=2025-03", &admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifications(t *testing.T) {
	f := newHandlerFixture()
	f.notifs.On("ListByRecipient", mock.Anything, uint64(42)).Return([]domain.Notification{{ID: 1, RecipientID: 42}}, nil)
	f.notifs.On("CountUnread", mock.Anything, uint64(42)).Return(int64(1), nil)
	f.notifs.On("MarkRead", mock.Anything, uint64(8), uint64(42)).Return(false, nil)
	f.notifs.On("MarkAllRead", mock.Anything, uint64(42)).Return(nil)

	w := f.do(t, http.MethodGet, "/notifications", &customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Notifications []domain.Notification `json:"notifications"`
		UnreadCount   int64                 `json:"unreadCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Notifications, 1)
	assert.Equal(t, int64(1), body.UnreadCount)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPut, "/notifications/8/read", &customer, nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPut, "/notifications/read-all", &customer, nil).Code)
}

func TestRegisterSeller_Conflict(t *testing.T) {
	f := newHandlerFixture()
	f.users.On("FindByEmail", mock.Anything, "bob@shop.example").Return(&domain.User{ID: 3}, nil)

	w := f.do(t, http.MethodPost, "/sellers/register", nil, RegisterSellerRequest{Name: "Bob", Email: "bob@shop.example"})

	assert.Equal(t, http.StatusConflict, w.Code)
}
