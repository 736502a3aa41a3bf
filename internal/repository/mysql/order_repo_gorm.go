package mysql

import (
	"context"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Save inserts the order together with its items.
func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		zap.L().Error("orders: save failed", zap.Error(result.Error))
		return errors.Wrap(result.Error, "save order")
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	zap.L().Debug("orders: saved", zap.Uint64("order_id", order.ID), zap.Int("items", len(order.Items)))
	return nil
}

func (r *orderRepo) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *orderRepo) first(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	var o domain.Order
	if err := r.withItems(ctx).Where(query, args...).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find order")
	}
	return &o, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *orderRepo) FindByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	return r.first(ctx, "payment_session_id = ?", sessionID)
}

func (r *orderRepo) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	if err := scope(r.withItems(ctx)).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return out, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

func (r *orderRepo) FindBySeller(ctx context.Context, sellerID uint64) ([]domain.Order, error) {
	sub := r.db.Model(&domain.OrderItem{}).Select("order_id").Where("seller_id = ?", sellerID)
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", sub)
	})
}

func (r *orderRepo) FindWithStoreItems(ctx context.Context) ([]domain.Order, error) {
	sub := r.db.Model(&domain.OrderItem{}).Select("order_id").Where("seller_id IS NULL")
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", sub)
	})
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *orderRepo) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ? AND created_at < ? AND status <> ?", start, end, domain.StatusCancelled)
	})
}

func (r *orderRepo) SetPaymentSession(ctx context.Context, id uint64, sessionID string) error {
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).
		Update("payment_session_id", sessionID).Error
	return errors.Wrap(err, "set payment session")
}

func (r *orderRepo) MarkPaid(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status = ? AND status <> ?", id, domain.PaymentUnpaid, domain.StatusCancelled).
		Updates(map[string]any{
			"payment_status": domain.PaymentPaid,
			"status":         domain.StatusProcessed,
		})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "mark order paid")
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepo) ClaimSettlement(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND stock_settled = ?", id, false).
		Update("stock_settled", true)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "claim settlement")
	}
	return result.RowsAffected == 1, nil
}

// UpdateStatus sets the order status and cascades it to every item.
func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Order{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return err
		}
		return tx.Model(&domain.OrderItem{}).Where("order_id = ?", id).Update("status", status).Error
	})
	if err != nil {
		zap.L().Error("orders: status cascade failed", zap.Uint64("order_id", id), zap.Error(err))
	}
	return errors.Wrap(err, "update order status")
}

func (r *orderRepo) UpdateItemStatus(ctx context.Context, itemID uint64, status domain.OrderStatus) error {
	err := r.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("id = ?", itemID).
		Update("status", status).Error
	return errors.Wrap(err, "update item status")
}
