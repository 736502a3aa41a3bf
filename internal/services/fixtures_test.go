package services

import (
	"context"
	"sync"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/mocks"

	"github.com/stretchr/testify/mock"
)

const (
	TestCustomerID = uint64(42)
	TestSellerA    = uint64(7)
	TestSellerB    = uint64(8)
	TestOrderID    = uint64(1)
)

var TestAdminIDs = []uint64{100, 101}

var (
	customer = domain.Principal{UserID: TestCustomerID, Role: domain.RoleCustomer}
	admin    = domain.Principal{UserID: 100, Role: domain.RoleAdmin}
	sellerA  = domain.Principal{UserID: TestSellerA, Role: domain.RoleSeller, Approved: true}
	sellerB  = domain.Principal{UserID: TestSellerB, Role: domain.RoleSeller, Approved: true}
)

func ptr[T any](v T) *T { return &v }

func CreateMockProduct(id uint64, name string, price float64, stock int, seller *uint64) domain.Product {
	return domain.Product{ID: id, Name: name, Price: price, Stock: stock, SellerID: seller}
}

func item(productID uint64, name string, qty int, price float64, seller *uint64) domain.OrderItem {
	return domain.OrderItem{
		ID:        productID * 10,
		OrderID:   TestOrderID,
		ProductID: productID,
		SellerID:  seller,
		Name:      name,
		Quantity:  qty,
		Price:     price,
		Status:    domain.StatusPending,
	}
}

// CreateMockOrder has two items from seller A and one store item.
func CreateMockOrder() *domain.Order {
	return &domain.Order{
		ID:     TestOrderID,
		UserID: TestCustomerID,
		Items: []domain.OrderItem{
			item(1, "Lamp", 2, 10, ptr(TestSellerA)),
			item(2, "Rug", 1, 50, ptr(TestSellerA)),
			item(3, "Mug", 3, 5, nil),
		},
		TotalAmount:   85,
		PaymentMethod: "card",
		PaymentStatus: domain.PaymentUnpaid,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
	}
}

// captureNotifications records every row passed to CreateBatch.
func captureNotifications(m *mocks.MockNotificationRepository) *[]*domain.Notification {
	var got []*domain.Notification
	m.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		got = append(got, args.Get(1).([]*domain.Notification)...)
	}).Maybe()
	return &got
}

func recipients(ns []*domain.Notification, typ domain.NotificationType) map[uint64]int {
	out := make(map[uint64]int)
	for _, n := range ns {
		if n.Type == typ {
			out[n.RecipientID]++
		}
	}
	return out
}

// stockStore keeps products in memory and settles them through the domain
// routine, standing in for the row-locked repository.
type stockStore struct {
	mocks.MockProductRepository
	mu       sync.Mutex
	products map[uint64]*domain.Product
}

func newStockStore(ps ...domain.Product) *stockStore {
	s := &stockStore{products: make(map[uint64]*domain.Product)}
	for i := range ps {
		p := ps[i]
		s.products[p.ID] = &p
	}
	return s
}

func (s *stockStore) FindByID(_ context.Context, id uint64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *stockStore) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, _ := s.FindByID(ctx, id); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stockStore) ApplySale(_ context.Context, id uint64, sel domain.VariantSelector, qty int) (*domain.Product, domain.SaleOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.SaleOutcome{}, nil
	}
	out := p.ApplySale(sel, qty)
	cp := *p
	return &cp, out, nil
}

func (s *stockStore) get(id uint64) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

// claimOnce makes ClaimSettlement behave like the compare-and-set column:
// the first claim on an order wins, every later one loses.
func claimOnce(m *mocks.MockOrderRepository, orderID uint64) {
	m.On("ClaimSettlement", mock.Anything, orderID).Return(true, nil).Once()
	m.On("ClaimSettlement", mock.Anything, orderID).Return(false, nil)
}
