package services

import (
	"context"
	"errors"

	"marketplace/internal/domain"
	"marketplace/internal/infra/cache"
	rabbit "marketplace/internal/infra/rabbitmq"
	"marketplace/internal/infra/workers"
	"marketplace/internal/repository"

	"go.uber.org/zap"
)

type ItemSettlement struct {
	ProductID uint64
	Color     string
	Remaining int
	LowStock  bool
	Skipped   bool
}

type SettlementResult struct {
	// Settled is false when another caller already settled the order.
	Settled bool
	Items   []ItemSettlement
}

// SettlementEngine decrements stock for a paid order, once. The claim is
// taken before any item is applied, so an item whose sale fails is reported
// in the returned error and never re-applied by a later call.
type SettlementEngine struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	notifier  *NotificationService
	cache     cache.ProductCache
	publisher rabbit.PublisherInterface
	runner    workers.Runner
}

func NewSettlementEngine(o repository.OrderRepository, p repository.ProductRepository, n *NotificationService, c cache.ProductCache, pub rabbit.PublisherInterface, runner workers.Runner) *SettlementEngine {
	if c == nil {
		c = cache.NopProductCache{}
	}
	if runner == nil {
		runner = workers.Inline{}
	}
	return &SettlementEngine{orders: o, products: p, notifier: n, cache: c, publisher: pub, runner: runner}
}

func (e *SettlementEngine) Settle(ctx context.Context, order *domain.Order) (SettlementResult, error) {
	claimed, err := e.orders.ClaimSettlement(ctx, order.ID)
	if err != nil {
		return SettlementResult{}, err
	}
	if !claimed {
		zap.L().Info("settlement: order already settled", zap.Uint64("order_id", order.ID))
		return SettlementResult{}, nil
	}
	order.StockSettled = true

	res := SettlementResult{Settled: true}
	var errs []error
	for _, item := range order.Items {
		p, out, err := e.products.ApplySale(ctx, item.ProductID, item.Selector(), item.Quantity)
		if err != nil {
			zap.L().Error("settlement: stock update failed",
				zap.Uint64("order_id", order.ID), zap.Uint64("product_id", item.ProductID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if p == nil {
			zap.L().Warn("settlement: product no longer exists, skipping item",
				zap.Uint64("order_id", order.ID), zap.Uint64("product_id", item.ProductID))
			res.Items = append(res.Items, ItemSettlement{ProductID: item.ProductID, Skipped: true})
			continue
		}
		if !out.Matched {
			zap.L().Warn("settlement: no stock bucket matched the item selector",
				zap.Uint64("order_id", order.ID), zap.Uint64("product_id", p.ID),
				zap.String("color", item.Color), zap.String("size", item.Size), zap.String("weight", item.Weight))
		}
		e.cache.Invalidate(ctx, p.ID)

		is := ItemSettlement{ProductID: p.ID, Color: out.Color, Remaining: out.Remaining, LowStock: out.LowStock()}
		res.Items = append(res.Items, is)
		if is.LowStock {
			e.notifier.NotifyLowStock(ctx, p, out)
			publishAsync(e.runner, e.publisher, domain.EventStockLow, domain.StockLowEvent{
				ProductID: p.ID,
				Color:     out.Color,
				Remaining: out.Remaining,
			})
		}
	}
	zap.L().Info("settlement: order settled", zap.Uint64("order_id", order.ID), zap.Int("items", len(res.Items)))
	return res, errors.Join(errs...)
}
