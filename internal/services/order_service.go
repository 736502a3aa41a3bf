package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/commission"
	"marketplace/internal/domain"
	"marketplace/internal/infra/mailer"
	rabbit "marketplace/internal/infra/rabbitmq"
	"marketplace/internal/infra/workers"
	"marketplace/internal/repository"

	"go.uber.org/zap"
)

var ErrOrderNotFound = apperr.NotFound("order not found")

type PlaceOrderItem struct {
	ProductID   uint64
	Quantity    int
	Color       string
	ColorCode   string
	Size        string
	Weight      string
	VariationID string
}

type PlaceOrderInput struct {
	Items           []PlaceOrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// OrderView is an order as a particular caller may see it: Items may be
// filtered down to the caller's share and Subtotal covers only those items.
type OrderView struct {
	domain.Order
	Subtotal float64 `json:"subtotal"`
}

type OrderService struct {
	repo       repository.OrderRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	settings   *SettingsService
	notifier   *NotificationService
	settlement *SettlementEngine
	publisher  rabbit.PublisherInterface
	mailer     mailer.Sender
	runner     workers.Runner
}

func NewOrderService(r repository.OrderRepository, p repository.ProductRepository, u repository.UserRepository,
	settings *SettingsService, notifier *NotificationService, settlement *SettlementEngine, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		repo:       r,
		products:   p,
		users:      u,
		settings:   settings,
		notifier:   notifier,
		settlement: settlement,
		publisher:  pub,
		mailer:     mailer.LogMailer{},
		runner:     workers.Inline{},
	}
}

func (s *OrderService) SetMailer(m mailer.Sender) {
	s.mailer = m
}

func (s *OrderService) SetRunner(r workers.Runner) {
	s.runner = r
}

func validatePlaceOrder(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return apperr.Validation("order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return apperr.Validation("quantity for product %d must be greater than zero", it.ProductID)
		}
	}
	addr := in.ShippingAddress
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", addr.Name},
		{"address", addr.Address},
		{"city", addr.City},
		{"phone", addr.Phone},
		{"postalCode", addr.PostalCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("shipping address is missing: %s", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return apperr.Validation("payment method is required")
	}
	return nil
}

func (s *OrderService) PlaceOrder(ctx context.Context, who domain.Principal, in PlaceOrderInput) (*domain.Order, error) {
	if err := validatePlaceOrder(in); err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*domain.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	lineTotals := make([]float64, 0, len(in.Items))
	totalQty := 0
	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, apperr.NotFound("product %d not found", it.ProductID)
		}
		var sellerID *uint64
		if p.SellerID != nil {
			id := *p.SellerID
			sellerID = &id
		}
		items = append(items, domain.OrderItem{
			ProductID:   p.ID,
			SellerID:    sellerID,
			Name:        p.Name,
			Quantity:    it.Quantity,
			Price:       p.Price,
			Status:      domain.StatusPending,
			Color:       it.Color,
			ColorCode:   it.ColorCode,
			Size:        it.Size,
			Weight:      it.Weight,
			VariationID: it.VariationID,
		})
		lineTotals = append(lineTotals, commission.LineTotal(p.Price, it.Quantity))
		totalQty += it.Quantity
	}

	subtotal := commission.Sum(lineTotals...)
	fee, err := s.settings.ShippingFee(ctx, subtotal, totalQty)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:          who.UserID,
		Items:           items,
		TotalAmount:     commission.Sum(subtotal, fee),
		ShippingFee:     fee,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   domain.PaymentUnpaid,
		Status:          domain.StatusPending,
		CreatedAt:       time.Now(),
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.notifier.NotifyOrderPlaced(ctx, order)
	publishAsync(s.runner, s.publisher, domain.EventOrderPlaced, domain.OrderPlacedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	})

	return order, nil
}

func (s *OrderService) GetOrderById(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ConfirmPayment records payment and settles stock. Only the call that moves
// the order from unpaid to paid sends the confirmation. A retry settles an
// order whose settlement was never claimed; items that failed inside a
// claimed settlement are logged and left for manual correction.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID uint64) (*domain.Order, error) {
	order, err := s.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(order); err != nil {
		return nil, err
	}

	won, err := s.repo.MarkPaid(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case won:
		order.PaymentStatus = domain.PaymentPaid
		order.Status = domain.StatusProcessed
	case order.PaymentStatus != domain.PaymentPaid:
		// lost to a concurrent payment or cancellation
		order, err = s.GetOrderById(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if err := checkPayable(order); err != nil {
			return nil, err
		}
		if order.PaymentStatus != domain.PaymentPaid {
			return nil, apperr.Conflict("order %d can no longer be paid", orderID)
		}
	default:
		zap.L().Info("orders: payment already confirmed", zap.Uint64("order_id", orderID))
	}

	if !order.StockSettled {
		if _, err := s.settlement.Settle(ctx, order); err != nil {
			zap.L().Error("orders: settlement incomplete", zap.Uint64("order_id", orderID), zap.Error(err))
		}
	}

	if won {
		s.sendConfirmation(order)
		publishAsync(s.runner, s.publisher, domain.EventOrderPaid, domain.OrderPaidEvent{
			OrderID:     order.ID,
			TotalAmount: order.TotalAmount,
			PaidAt:      time.Now(),
		})
	}
	return order, nil
}

func checkPayable(o *domain.Order) error {
	switch {
	case o.Status == domain.StatusCancelled:
		return apperr.Conflict("order %d is cancelled", o.ID)
	case o.PaymentStatus == domain.PaymentFailed:
		return apperr.Conflict("payment for order %d failed", o.ID)
	}
	return nil
}

func (s *OrderService) sendConfirmation(order *domain.Order) {
	s.runner.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		u, err := s.users.FindByID(ctx, order.UserID)
		if err != nil || u == nil {
			zap.L().Warn("orders: confirmation email skipped, customer not found", zap.Uint64("order_id", order.ID), zap.Error(err))
			return
		}
		if err := s.mailer.Send(ctx, u.Email, fmt.Sprintf("Order #%d confirmed", order.ID), confirmationHTML(u, order)); err != nil {
			zap.L().Warn("orders: confirmation email failed", zap.Uint64("order_id", order.ID), zap.Error(err))
		}
	})
}

func confirmationHTML(u *domain.User, o *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p><p>We received your payment for order #%d.</p><ul>", u.Name, o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "<li>%s x %d: %.2f</li>", it.Name, it.Quantity, commission.LineTotal(it.Price, it.Quantity))
	}
	fmt.Fprintf(&b, "</ul><p>Shipping: %.2f<br>Total: %.2f</p>", o.ShippingFee, o.TotalAmount)
	return b.String()
}

// UpdateOrderStatus sets the order status and the status of every item.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, who domain.Principal, orderID uint64, status domain.OrderStatus) (*domain.Order, error) {
	if !who.IsAdmin() {
		return nil, apperr.Authorization("only admins can update order status")
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid status %q", status)
	}
	order, err := s.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	for i := range order.Items {
		order.Items[i].Status = status
	}

	s.notifier.NotifyOrderStatus(ctx, order)
	publishAsync(s.runner, s.publisher, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID: order.ID,
		Status:  status,
	})
	return order, nil
}

// UpdateItemStatus changes one item of a seller's own product. itemID picks a
// single line when the order holds several variants of the product; zero
// means the first line for productID. The order status is left alone.
func (s *OrderService) UpdateItemStatus(ctx context.Context, who domain.Principal, orderID, productID, itemID uint64, status domain.OrderStatus) (*OrderView, error) {
	if !who.IsApprovedSeller() {
		return nil, apperr.Authorization("only approved sellers can update item status")
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid status %q", status)
	}
	order, err := s.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := order.ItemByProduct(productID)
	if itemID != 0 {
		item = order.ItemByID(itemID)
		if item != nil && item.ProductID != productID {
			item = nil
		}
	}
	if item == nil {
		return nil, apperr.NotFound("product %d is not part of order %d", productID, orderID)
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	owns := item.OwnedBy(who.UserID)
	if p != nil {
		owns = p.OwnedBy(who.UserID)
	}
	if !owns {
		return nil, apperr.Authorization("you do not own product %d", productID)
	}

	if err := s.repo.UpdateItemStatus(ctx, item.ID, status); err != nil {
		return nil, err
	}
	item.Status = status
	return sellerView(order, who.UserID), nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, who domain.Principal) ([]domain.Order, error) {
	return s.repo.FindByUser(ctx, who.UserID)
}

func (s *OrderService) ListSellerOrders(ctx context.Context, who domain.Principal) ([]OrderView, error) {
	if !who.IsSeller() {
		return nil, apperr.Authorization("only sellers can list seller orders")
	}
	orders, err := s.repo.FindBySeller(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, *sellerView(&orders[i], who.UserID))
	}
	return out, nil
}

// ListStoreOrders returns orders that contain store products, with items
// filtered down to those products.
func (s *OrderService) ListStoreOrders(ctx context.Context, who domain.Principal) ([]OrderView, error) {
	if !who.IsAdmin() {
		return nil, apperr.Authorization("admin only")
	}
	orders, err := s.repo.FindWithStoreItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		v := filterView(&orders[i], domain.OrderItem.IsStoreItem)
		if len(v.Items) == 0 {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, who domain.Principal) ([]OrderView, error) {
	if !who.IsAdmin() {
		return nil, apperr.Authorization("admin only")
	}
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, *fullView(&orders[i]))
	}
	return out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, who domain.Principal, id uint64) (*OrderView, error) {
	order, err := s.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case who.IsAdmin(), order.UserID == who.UserID:
		return fullView(order), nil
	case who.IsSeller():
		v := sellerView(order, who.UserID)
		if len(v.Items) > 0 {
			return v, nil
		}
	}
	return nil, apperr.Authorization("you are not allowed to view this order")
}

func fullView(o *domain.Order) *OrderView {
	return filterView(o, func(domain.OrderItem) bool { return true })
}

func sellerView(o *domain.Order, sellerID uint64) *OrderView {
	return filterView(o, func(it domain.OrderItem) bool { return it.OwnedBy(sellerID) })
}

func filterView(o *domain.Order, keep func(domain.OrderItem) bool) *OrderView {
	v := &OrderView{Order: *o}
	v.Items = make([]domain.OrderItem, 0, len(o.Items))
	var lines []float64
	for _, it := range o.Items {
		if !keep(it) {
			continue
		}
		v.Items = append(v.Items, it)
		lines = append(lines, commission.LineTotal(it.Price, it.Quantity))
	}
	v.Subtotal = commission.Sum(lines...)
	return v
}
