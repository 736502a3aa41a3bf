package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/domain"
	"marketplace/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPeriodRange(t *testing.T) {
	tests := []struct {
		name      string
		pt        PeriodType
		value     string
		wantStart time.Time
		wantEnd   time.Time
		wantN     int
		wantErr   bool
	}{
		{name: "february leap year", pt: PeriodMonthly, value: "2024-02", wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), wantEnd: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), wantN: 29},
		{name: "thirty one days", pt: PeriodMonthly, value: "2025-12", wantStart: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), wantEnd: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), wantN: 31},
		{name: "year", pt: PeriodYearly, value: "2025", wantStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), wantEnd: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), wantN: 12},
		{name: "bad month", pt: PeriodMonthly, value: "2025-13", wantErr: true},
		{name: "year given for month", pt: PeriodMonthly, value: "2025", wantErr: true},
		{name: "unknown type", pt: "weekly", value: "2025-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, n, err := PeriodRange(tt.pt, tt.value, time.UTC)
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func reportOrder(id uint64, day int, status domain.OrderStatus, items ...domain.OrderItem) domain.Order {
	return domain.Order{
		ID:        id,
		Status:    status,
		Items:     items,
		CreatedAt: time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC),
	}
}

func newReportFixture(orders []domain.Order) (*ReportService, *mocks.MockProductRepository) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	userRepo := new(mocks.MockUserRepository)

	orderRepo.On("FindCreatedBetween", mock.Anything,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)).Return(orders, nil)
	productRepo.On("LowStock", mock.Anything, 20, 5).Return([]domain.Product{{ID: 3, Name: "Mug", Stock: 2}}, nil)
	userRepo.On("CountByRole", mock.Anything, domain.RoleCustomer).Return(int64(12), nil)
	userRepo.On("CountApprovedSellers", mock.Anything).Return(int64(3), nil)

	svc := NewReportService(orderRepo, productRepo, userRepo)
	svc.location = time.UTC
	return svc, productRepo
}

func TestReportService_BuildReport(t *testing.T) {
	orders := []domain.Order{
		reportOrder(1, 5, domain.StatusDelivered,
			item(1, "Lamp", 2, 50, ptr(TestSellerA)),
			item(3, "Mug", 1, 20, nil),
		),
		reportOrder(2, 5, domain.StatusProcessed,
			item(1, "Lamp", 1, 50, ptr(TestSellerA)),
		),
		reportOrder(3, 6, domain.StatusCancelled,
			item(3, "Mug", 9, 20, nil),
		),
	}
	svc, productRepo := newReportFixture(orders)
	productRepo.On("FindByIDs", mock.Anything, []uint64{1, 3}).Return([]domain.Product{
		{ID: 1, CategoryID: ptr(uint64(10))},
		{ID: 3},
	}, nil)
	productRepo.On("CategoryNames", mock.Anything, []uint64{10}).Return(map[uint64]string{10: "Lighting"}, nil)

	report, err := svc.BuildReport(context.Background(), PeriodMonthly, "2025-03")

	require.NoError(t, err)
	require.Len(t, report.Series, 31)
	assert.Equal(t, ReportBucket{Bucket: 5, Orders: 2, AdminRevenue: 27.5, SellerRevenue: 142.5}, report.Series[4])
	assert.Equal(t, ReportBucket{Bucket: 6}, report.Series[5])

	assert.Equal(t, ReportTotals{
		Orders:               2,
		StoreRevenue:         20,
		SellerProductRevenue: 150,
		Commission:           7.5,
		TotalAdminRevenue:    27.5,
		TotalSellerPayout:    142.5,
		GrossRevenue:         170,
	}, report.Totals)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, ProductRevenue{ProductID: 1, Name: "Lamp", Quantity: 3, Revenue: 150}, report.TopProducts[0])
	assert.Equal(t, []CategorySales{
		{Category: "Lighting", Quantity: 3, Revenue: 150},
		{Category: "Uncategorized", Quantity: 1, Revenue: 20},
	}, report.SalesByCategory)
	assert.Equal(t, []LowStockProduct{{ProductID: 3, Name: "Mug", Stock: 2}}, report.LowStock)
	assert.Equal(t, int64(12), report.TotalCustomers)
	assert.Equal(t, int64(3), report.TotalSellers)
}

func TestReportService_BuildReport_Empty(t *testing.T) {
	svc, _ := newReportFixture(nil)

	report, err := svc.BuildReport(context.Background(), PeriodMonthly, "2025-03")

	require.NoError(t, err)
	assert.Len(t, report.Series, 31)
	assert.Equal(t, ReportTotals{}, report.Totals)
	assert.Empty(t, report.TopProducts)
	assert.Empty(t, report.SalesByCategory)
}

func TestReportService_BuildReport_LoadFails(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	userRepo := new(mocks.MockUserRepository)
	orderRepo.On("FindCreatedBetween", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	productRepo.On("LowStock", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Product{}, nil).Maybe()
	userRepo.On("CountByRole", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	userRepo.On("CountApprovedSellers", mock.Anything).Return(int64(0), nil).Maybe()

	_, err := NewReportService(orderRepo, productRepo, userRepo).BuildReport(context.Background(), PeriodYearly, "2025")

	assert.EqualError(t, err, "db down")
}
