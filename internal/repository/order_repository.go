package repository

import (
	"context"
	"time"

	"marketplace/internal/domain"
)

// Find* methods return nil, nil when the record does not exist.

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	FindBySeller(ctx context.Context, sellerID uint64) ([]domain.Order, error)
	FindWithStoreItems(ctx context.Context) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.Order, error)
	SetPaymentSession(ctx context.Context, id uint64, sessionID string) error
	// MarkPaid flips payment status unpaid -> paid and status -> processed.
	// It reports false unless the order was unpaid and not cancelled.
	MarkPaid(ctx context.Context, id uint64) (bool, error)
	// ClaimSettlement flips stock_settled false -> true and reports whether
	// this caller won.
	ClaimSettlement(ctx context.Context, id uint64) (bool, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error
	UpdateItemStatus(ctx context.Context, itemID uint64, status domain.OrderStatus) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	// ApplySale takes qty out of the selected bucket under a row lock.
	ApplySale(ctx context.Context, id uint64, sel domain.VariantSelector, qty int) (*domain.Product, domain.SaleOutcome, error)
	UpdateRating(ctx context.Context, id uint64, stats domain.RatingStats) error
	LowStock(ctx context.Context, below int, limit int) ([]domain.Product, error)
	CategoryNames(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	AdminIDs(ctx context.Context) ([]uint64, error)
	Approve(ctx context.Context, id uint64, passwordHash string) error
	ListPendingSellers(ctx context.Context) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	CountApprovedSellers(ctx context.Context) (int64, error)
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, ns []*domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint64) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID uint64) (int64, error)
	// MarkRead reports false when no notification with that id belongs to
	// the recipient.
	MarkRead(ctx context.Context, id, recipientID uint64) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uint64) error
	DeleteAll(ctx context.Context, recipientID uint64) error
}

type ReviewRepository interface {
	Exists(ctx context.Context, productID, userID, orderID uint64) (bool, error)
	// Create returns an apperr conflict when the purchase was already reviewed.
	Create(ctx context.Context, r *domain.Review) error
	ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error)
	Stats(ctx context.Context, productID uint64) (domain.RatingStats, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	// Create inserts the singleton row with ID SettingsID and is a no-op
	// when it already exists.
	Create(ctx context.Context, s *domain.Settings) error
	Save(ctx context.Context, s *domain.Settings) error
}
