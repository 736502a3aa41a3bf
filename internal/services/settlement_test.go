package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"marketplace/internal/domain"
	"marketplace/internal/infra/workers"
	"marketplace/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func redShirt() domain.Product {
	p := domain.Product{
		ID:       1,
		Name:     "Shirt",
		Price:    20,
		SellerID: ptr(TestSellerA),
		ColorVariants: []domain.ColorVariant{
			{ID: "v-red", ColorName: "Red", Stock: domain.FlatStock{Stock: 10}},
			{ID: "v-blue", ColorName: "Blue", Stock: domain.FlatStock{Stock: 4}},
		},
	}
	p.RecomputeStock()
	return p
}

type settlementFixture struct {
	orders    *mocks.MockOrderRepository
	store     *stockStore
	notifs    *mocks.MockNotificationRepository
	users     *mocks.MockUserRepository
	cache     *mocks.MockProductCache
	publisher *mocks.MockPublisher
	engine    *SettlementEngine
	sent      *[]*domain.Notification
}

func newSettlementFixture(products ...domain.Product) *settlementFixture {
	f := &settlementFixture{
		orders:    new(mocks.MockOrderRepository),
		store:     newStockStore(products...),
		notifs:    new(mocks.MockNotificationRepository),
		users:     new(mocks.MockUserRepository),
		cache:     new(mocks.MockProductCache),
		publisher: new(mocks.MockPublisher),
	}
	f.sent = captureNotifications(f.notifs)
	f.users.On("AdminIDs", mock.Anything).Return(TestAdminIDs, nil).Maybe()
	f.cache.On("Invalidate", mock.Anything, mock.Anything).Maybe()
	f.publisher.On("Publish", mock.Anything, domain.EventStockLow, mock.Anything).Return(nil).Maybe()
	notifier := NewNotificationService(f.notifs, f.users, f.store)
	f.engine = NewSettlementEngine(f.orders, f.store, notifier, f.cache, f.publisher, workers.Inline{})
	return f
}

func TestSettlementEngine_VariantDecrement(t *testing.T) {
	f := newSettlementFixture(redShirt())
	claimOnce(f.orders, TestOrderID)

	order := &domain.Order{ID: TestOrderID, Items: []domain.OrderItem{
		{ProductID: 1, Name: "Shirt", Quantity: 3, Price: 20, Color: "Red", VariationID: "v-red"},
	}}
	res, err := f.engine.Settle(context.Background(), order)

	require.NoError(t, err)
	assert.True(t, res.Settled)
	assert.True(t, order.StockSettled)
	require.Len(t, res.Items, 1)
	assert.Equal(t, ItemSettlement{ProductID: 1, Color: "Red", Remaining: 7}, res.Items[0])

	p := f.store.get(1)
	assert.Equal(t, 7, p.ColorVariants[0].TotalStock())
	assert.Equal(t, 4, p.ColorVariants[1].TotalStock())
	assert.Equal(t, 11, p.Stock)
	assert.Equal(t, 3, p.Sold)
	assert.Empty(t, *f.sent)
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, uint64(1))
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, domain.EventStockLow, mock.Anything)
}

func TestSettlementEngine_LowStockAlertsStoreProduct(t *testing.T) {
	f := newSettlementFixture(CreateMockProduct(3, "Mug", 5, 6, nil))
	claimOnce(f.orders, TestOrderID)

	order := &domain.Order{ID: TestOrderID, Items: []domain.OrderItem{
		{ProductID: 3, Name: "Mug", Quantity: 2, Price: 5},
	}}
	res, err := f.engine.Settle(context.Background(), order)

	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].LowStock)
	assert.Equal(t, 4, f.store.get(3).Stock)

	// store product: admins only, no seller
	assert.Equal(t, map[uint64]int{100: 1, 101: 1}, recipients(*f.sent, domain.NotificationStockAlert))
	f.publisher.AssertCalled(t, "Publish", mock.Anything, domain.EventStockLow, domain.StockLowEvent{ProductID: 3, Remaining: 4})
}

func TestSettlementEngine_LowStockAlertsOwningSeller(t *testing.T) {
	f := newSettlementFixture(redShirt())
	claimOnce(f.orders, TestOrderID)

	order := &domain.Order{ID: TestOrderID, Items: []domain.OrderItem{
		{ProductID: 1, Quantity: 1, Color: "Blue"},
	}}
	_, err := f.engine.Settle(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, map[uint64]int{100: 1, 101: 1, TestSellerA: 1}, recipients(*f.sent, domain.NotificationStockAlert))
	assert.Equal(t, 3, f.store.get(1).ColorVariants[1].TotalStock())
}

func TestSettlementEngine_SettlesOnce(t *testing.T) {
	f := newSettlementFixture(CreateMockProduct(3, "Mug", 5, 50, nil))
	claimOnce(f.orders, TestOrderID)

	order := &domain.Order{ID: TestOrderID, Items: []domain.OrderItem{{ProductID: 3, Quantity: 2}}}

	var wg sync.WaitGroup
	results := make([]SettlementResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := *order
			results[i], _ = f.engine.Settle(context.Background(), &o)
		}(i)
	}
	wg.Wait()

	settled := 0
	for _, r := range results {
		if r.Settled {
			settled++
		}
	}
	assert.Equal(t, 1, settled)
	assert.Equal(t, 48, f.store.get(3).Stock)
	assert.Equal(t, 2, f.store.get(3).Sold)
}

func TestSettlementEngine_SkipsDeletedProduct(t *testing.T) {
	f := newSettlementFixture(CreateMockProduct(3, "Mug", 5, 50, nil))
	claimOnce(f.orders, TestOrderID)

	order := &domain.Order{ID: TestOrderID, Items: []domain.OrderItem{
		{ProductID: 99, Quantity: 1},
		{ProductID: 3, Quantity: 1},
	}}
	res, err := f.engine.Settle(context.Background(), order)

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].Skipped)
	assert.Equal(t, 49, f.store.get(3).Stock)
}

func TestSettlementEngine_ContinuesPastItemErrors(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	claimOnce(orders, TestOrderID)

	mug := CreateMockProduct(3, "Mug", 5, 40, nil)
	products.On("ApplySale", mock.Anything, uint64(1), mock.Anything, 1).Return(nil, domain.SaleOutcome{}, errors.New("lock wait timeout"))
	products.On("ApplySale", mock.Anything, uint64(3), mock.Anything, 1).Return(&mug, domain.SaleOutcome{Matched: true, Remaining: 40}, nil)

	engine := NewSettlementEngine(orders, products, NewNotificationService(nil, nil, products), nil, nil, nil)
	order := &domain.Order{ID: TestOrderID, Items: []domain.OrderItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 3, Quantity: 1},
	}}
	res, err := engine.Settle(context.Background(), order)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock wait timeout")
	assert.True(t, res.Settled)
	require.Len(t, res.Items, 1)
	assert.Equal(t, uint64(3), res.Items[0].ProductID)
	products.AssertExpectations(t)
}

func TestSettlementEngine_FailedItemIsNotReapplied(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	claimOnce(orders, TestOrderID)
	products.On("ApplySale", mock.Anything, uint64(1), mock.Anything, 1).Return(nil, domain.SaleOutcome{}, errors.New("lock wait timeout"))

	engine := NewSettlementEngine(orders, products, NewNotificationService(nil, nil, products), nil, nil, nil)
	order := &domain.Order{ID: TestOrderID, Items: []domain.OrderItem{{ProductID: 1, Quantity: 1}}}

	_, err := engine.Settle(context.Background(), order)
	require.Error(t, err)

	retry := &domain.Order{ID: TestOrderID, Items: order.Items}
	res, err := engine.Settle(context.Background(), retry)

	require.NoError(t, err)
	assert.False(t, res.Settled)
	products.AssertNumberOfCalls(t, "ApplySale", 1)
}
