package services

import (
	"context"
	"sort"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/commission"
	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type PeriodType string

const (
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
)

const (
	reportTopProducts    = 5
	reportLowStockBelow  = 20
	reportLowStockLimit  = 5
	uncategorizedSegment = "Uncategorized"
)

type ReportBucket struct {
	Bucket        int     `json:"bucket"`
	Orders        int     `json:"orders"`
	AdminRevenue  float64 `json:"adminRevenue"`
	SellerRevenue float64 `json:"sellerRevenue"`
}

type ReportTotals struct {
	Orders               int     `json:"orders"`
	StoreRevenue         float64 `json:"storeRevenue"`
	SellerProductRevenue float64 `json:"sellerProductRevenue"`
	Commission           float64 `json:"commission"`
	TotalAdminRevenue    float64 `json:"totalAdminRevenue"`
	TotalSellerPayout    float64 `json:"totalSellerPayout"`
	GrossRevenue         float64 `json:"grossRevenue"`
}

type ProductRevenue struct {
	ProductID uint64  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type CategorySales struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type LowStockProduct struct {
	ProductID uint64 `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

type Report struct {
	PeriodType      PeriodType        `json:"periodType"`
	Period          string            `json:"period"`
	Series          []ReportBucket    `json:"series"`
	Totals          ReportTotals      `json:"totals"`
	TopProducts     []ProductRevenue  `json:"topProducts"`
	SalesByCategory []CategorySales   `json:"salesByCategory"`
	LowStock        []LowStockProduct `json:"lowStock"`
	TotalCustomers  int64             `json:"totalCustomers"`
	TotalSellers    int64             `json:"totalSellers"`
}

type ReportService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	location *time.Location
}

func NewReportService(o repository.OrderRepository, p repository.ProductRepository, u repository.UserRepository) *ReportService {
	return &ReportService{orders: o, products: p, users: u, location: time.Local}
}

// PeriodRange resolves "YYYY-MM" (monthly) or "YYYY" (yearly) to a
// half-open [start, end) range and the number of buckets in it.
func PeriodRange(pt PeriodType, value string, loc *time.Location) (time.Time, time.Time, int, error) {
	switch pt {
	case PeriodMonthly:
		start, err := time.ParseInLocation("2006-01", value, loc)
		if err != nil {
			return time.Time{}, time.Time{}, 0, apperr.Validation("monthly period must look like YYYY-MM")
		}
		end := start.AddDate(0, 1, 0)
		return start, end, end.AddDate(0, 0, -1).Day(), nil
	case PeriodYearly:
		start, err := time.ParseInLocation("2006", value, loc)
		if err != nil {
			return time.Time{}, time.Time{}, 0, apperr.Validation("yearly period must look like YYYY")
		}
		return start, start.AddDate(1, 0, 0), 12, nil
	default:
		return time.Time{}, time.Time{}, 0, apperr.Validation("period type must be monthly or yearly")
	}
}

type bucketAcc struct {
	orders int
	admin  decimal.Decimal
	seller decimal.Decimal
}

type productAcc struct {
	name    string
	qty     int
	revenue decimal.Decimal
}

func (s *ReportService) BuildReport(ctx context.Context, pt PeriodType, value string) (*Report, error) {
	start, end, n, err := PeriodRange(pt, value, s.location)
	if err != nil {
		return nil, err
	}

	var (
		orders    []domain.Order
		lowStock  []domain.Product
		customers int64
		sellers   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.orders.FindCreatedBetween(gctx, start, end)
		return err
	})
	g.Go(func() (err error) {
		lowStock, err = s.products.LowStock(gctx, reportLowStockBelow, reportLowStockLimit)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.users.CountByRole(gctx, domain.RoleCustomer)
		return err
	})
	g.Go(func() (err error) {
		sellers, err = s.users.CountApprovedSellers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	buckets := make([]bucketAcc, n)
	var storeRev, sellerRev, commissionRev, payout decimal.Decimal
	products := make(map[uint64]*productAcc)
	var productOrder []uint64
	totalOrders := 0

	for _, o := range orders {
		if o.Status == domain.StatusCancelled {
			continue
		}
		idx := bucketIndex(pt, o.CreatedAt.In(s.location))
		if idx < 0 || idx >= n {
			continue
		}
		totalOrders++
		buckets[idx].orders++
		for _, it := range o.Items {
			line := commission.LineTotal(it.Price, it.Quantity)
			share := commission.Split(line, !it.IsStoreItem())
			platform := decimal.NewFromFloat(share.Platform)
			seller := decimal.NewFromFloat(share.Seller)
			buckets[idx].admin = buckets[idx].admin.Add(platform)
			buckets[idx].seller = buckets[idx].seller.Add(seller)
			if it.IsStoreItem() {
				storeRev = storeRev.Add(platform)
			} else {
				sellerRev = sellerRev.Add(decimal.NewFromFloat(line))
				commissionRev = commissionRev.Add(platform)
				payout = payout.Add(seller)
			}

			pa, ok := products[it.ProductID]
			if !ok {
				pa = &productAcc{name: it.Name}
				products[it.ProductID] = pa
				productOrder = append(productOrder, it.ProductID)
			}
			pa.qty += it.Quantity
			pa.revenue = pa.revenue.Add(decimal.NewFromFloat(line))
		}
	}

	categories, err := s.salesByCategory(ctx, productOrder, products)
	if err != nil {
		return nil, err
	}

	report := &Report{
		PeriodType: pt,
		Period:     value,
		Series:     make([]ReportBucket, n),
		Totals: ReportTotals{
			Orders:               totalOrders,
			StoreRevenue:         storeRev.InexactFloat64(),
			SellerProductRevenue: sellerRev.InexactFloat64(),
			Commission:           commissionRev.InexactFloat64(),
			TotalAdminRevenue:    storeRev.Add(commissionRev).InexactFloat64(),
			TotalSellerPayout:    payout.InexactFloat64(),
			GrossRevenue:         storeRev.Add(sellerRev).InexactFloat64(),
		},
		TopProducts:     topProducts(productOrder, products, reportTopProducts),
		SalesByCategory: categories,
		LowStock:        make([]LowStockProduct, 0, len(lowStock)),
		TotalCustomers:  customers,
		TotalSellers:    sellers,
	}
	for i, b := range buckets {
		report.Series[i] = ReportBucket{
			Bucket:        i + 1,
			Orders:        b.orders,
			AdminRevenue:  b.admin.InexactFloat64(),
			SellerRevenue: b.seller.InexactFloat64(),
		}
	}
	for _, p := range lowStock {
		report.LowStock = append(report.LowStock, LowStockProduct{ProductID: p.ID, Name: p.Name, Stock: p.Stock})
	}
	return report, nil
}

// bucketIndex is zero-based: day-of-month minus one, or month minus one.
func bucketIndex(pt PeriodType, t time.Time) int {
	if pt == PeriodMonthly {
		return t.Day() - 1
	}
	return int(t.Month()) - 1
}

func topProducts(ids []uint64, acc map[uint64]*productAcc, limit int) []ProductRevenue {
	out := make([]ProductRevenue, 0, len(ids))
	for _, id := range ids {
		pa := acc[id]
		out = append(out, ProductRevenue{ProductID: id, Name: pa.name, Quantity: pa.qty, Revenue: pa.revenue.InexactFloat64()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *ReportService) salesByCategory(ctx context.Context, ids []uint64, acc map[uint64]*productAcc) ([]CategorySales, error) {
	out := []CategorySales{}
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	categoryOf := make(map[uint64]uint64, len(found))
	var catIDs []uint64
	for _, p := range found {
		if p.CategoryID != nil {
			categoryOf[p.ID] = *p.CategoryID
			catIDs = append(catIDs, *p.CategoryID)
		}
	}
	names, err := s.products.CategoryNames(ctx, catIDs)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	revenue := make([]decimal.Decimal, 0)
	for _, id := range ids {
		name := uncategorizedSegment
		if cid, ok := categoryOf[id]; ok {
			if n, ok := names[cid]; ok {
				name = n
			}
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategorySales{Category: name})
			revenue = append(revenue, decimal.Zero)
		}
		out[i].Quantity += acc[id].qty
		revenue[i] = revenue[i].Add(acc[id].revenue)
	}
	for i := range out {
		out[i].Revenue = revenue[i].InexactFloat64()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out, nil
}
