package services

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"go.uber.org/zap"
)

var ErrNotificationNotFound = apperr.NotFound("notification not found")

// Recipients resolves to a set of user ids. Implementations: AllAdmins,
// SpecificUser, ProductOwner.
type Recipients interface {
	resolve(ctx context.Context, s *NotificationService) ([]uint64, error)
}

type AllAdmins struct{}

type SpecificUser struct {
	UserID uint64
}

// ProductOwner resolves to the product's seller, or to nobody for store
// products.
type ProductOwner struct {
	ProductID uint64
}

func (AllAdmins) resolve(ctx context.Context, s *NotificationService) ([]uint64, error) {
	return s.users.AdminIDs(ctx)
}

func (r SpecificUser) resolve(context.Context, *NotificationService) ([]uint64, error) {
	return []uint64{r.UserID}, nil
}

func (r ProductOwner) resolve(ctx context.Context, s *NotificationService) ([]uint64, error) {
	p, err := s.products.FindByID(ctx, r.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.SellerID == nil {
		return nil, nil
	}
	return []uint64{*p.SellerID}, nil
}

type Notice struct {
	Type      domain.NotificationType
	Title     string
	Message   string
	OrderID   *uint64
	ProductID *uint64
	To        []Recipients
}

type NotificationService struct {
	repo     repository.NotificationRepository
	users    repository.UserRepository
	products repository.ProductRepository
}

func NewNotificationService(r repository.NotificationRepository, u repository.UserRepository, p repository.ProductRepository) *NotificationService {
	return &NotificationService{repo: r, users: u, products: p}
}

// Notify stores one notification per distinct recipient and returns how many
// were stored. Errors are logged and swallowed so the triggering operation is
// never affected.
func (s *NotificationService) Notify(ctx context.Context, n Notice) int {
	seen := make(map[uint64]struct{})
	var rows []*domain.Notification
	for _, to := range n.To {
		ids, err := to.resolve(ctx, s)
		if err != nil {
			zap.L().Warn("notify: recipient resolution failed", zap.String("type", string(n.Type)), zap.Error(err))
			continue
		}
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			rows = append(rows, &domain.Notification{
				RecipientID: id,
				Title:       n.Title,
				Message:     n.Message,
				Type:        n.Type,
				OrderID:     n.OrderID,
				ProductID:   n.ProductID,
			})
		}
	}
	if len(rows) == 0 {
		return 0
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		zap.L().Error("notify: insert failed", zap.String("type", string(n.Type)), zap.Int("recipients", len(rows)), zap.Error(err))
		return 0
	}
	return len(rows)
}

// NotifyOrderPlaced tells every admin about the order and sends each seller
// in it exactly one notification naming only that seller's products.
func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, order *domain.Order) int {
	orderID := order.ID
	sent := s.Notify(ctx, Notice{
		Type:    domain.NotificationOrder,
		Title:   "New order placed",
		Message: fmt.Sprintf("Order #%d was placed with %d item(s), total %.2f.", order.ID, len(order.Items), order.TotalAmount),
		OrderID: &orderID,
		To:      []Recipients{AllAdmins{}},
	})

	var sellers []uint64
	names := make(map[uint64][]string)
	for _, item := range order.Items {
		if item.SellerID == nil {
			continue
		}
		id := *item.SellerID
		if _, ok := names[id]; !ok {
			sellers = append(sellers, id)
		}
		names[id] = append(names[id], item.Name)
	}
	for _, id := range sellers {
		sent += s.Notify(ctx, Notice{
			Type:    domain.NotificationOrder,
			Title:   "New order for your products",
			Message: fmt.Sprintf("Order #%d includes your product(s): %s.", order.ID, strings.Join(names[id], ", ")),
			OrderID: &orderID,
			To:      []Recipients{SpecificUser{UserID: id}},
		})
	}
	return sent
}

func (s *NotificationService) NotifyOrderStatus(ctx context.Context, order *domain.Order) int {
	orderID := order.ID
	return s.Notify(ctx, Notice{
		Type:    domain.NotificationOrderStatus,
		Title:   "Order status updated",
		Message: fmt.Sprintf("Your order #%d is now %s.", order.ID, order.Status),
		OrderID: &orderID,
		To:      []Recipients{SpecificUser{UserID: order.UserID}},
	})
}

func (s *NotificationService) NotifyLowStock(ctx context.Context, p *domain.Product, out domain.SaleOutcome) int {
	productID := p.ID
	label := p.Name
	if out.Color != "" {
		label = fmt.Sprintf("%s (%s)", p.Name, out.Color)
	}
	if out.Bucket != "" {
		label = fmt.Sprintf("%s [%s]", label, out.Bucket)
	}
	return s.Notify(ctx, Notice{
		Type:      domain.NotificationStockAlert,
		Title:     "Low stock alert",
		Message:   fmt.Sprintf("%s is running low: %d left.", label, out.Remaining),
		ProductID: &productID,
		To:        []Recipients{AllAdmins{}, ProductOwner{ProductID: p.ID}},
	})
}

func (s *NotificationService) NotifySellerRegistered(ctx context.Context, seller *domain.User) int {
	return s.Notify(ctx, Notice{
		Type:    domain.NotificationSellerRegistration,
		Title:   "New seller registration",
		Message: fmt.Sprintf("%s (%s) registered as a seller and is awaiting approval.", seller.Name, seller.Email),
		To:      []Recipients{AllAdmins{}},
	})
}

func (s *NotificationService) List(ctx context.Context, who domain.Principal) ([]domain.Notification, int64, error) {
	list, err := s.repo.ListByRecipient(ctx, who.UserID)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.UnreadCount(ctx, who)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, who domain.Principal) (int64, error) {
	return s.repo.CountUnread(ctx, who.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, who domain.Principal, id uint64) error {
	ok, err := s.repo.MarkRead(ctx, id, who.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, who domain.Principal) error {
	return s.repo.MarkAllRead(ctx, who.UserID)
}

func (s *NotificationService) Clear(ctx context.Context, who domain.Principal) error {
	return s.repo.DeleteAll(ctx, who.UserID)
}
