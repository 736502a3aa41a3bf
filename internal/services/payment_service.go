package services

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/infra"
	"marketplace/internal/repository"

	"go.uber.org/zap"
)

type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type VerifyResult struct {
	PaymentStatus string        `json:"paymentStatus"`
	Order         *domain.Order `json:"order,omitempty"`
}

type PaymentService struct {
	orders  repository.OrderRepository
	gateway infra.PaymentGateway
	ledger  *OrderService
	cfg     config.PaymentConfig
}

func NewPaymentService(o repository.OrderRepository, g infra.PaymentGateway, ledger *OrderService, cfg config.PaymentConfig) *PaymentService {
	return &PaymentService{orders: o, gateway: g, ledger: ledger, cfg: cfg}
}

// CreateCheckout opens a gateway session for the caller's unpaid order using
// the prices frozen on the order.
func (s *PaymentService) CreateCheckout(ctx context.Context, who domain.Principal, orderID uint64) (*CheckoutResult, error) {
	order, err := s.ledger.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != who.UserID {
		return nil, apperr.Authorization("you can only pay for your own orders")
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return nil, apperr.Conflict("order %d is already paid", orderID)
	}

	lines := make([]infra.LineItem, 0, len(order.Items)+1)
	for _, it := range order.Items {
		lines = append(lines, infra.LineItem{Name: it.Name, UnitPrice: it.Price, Quantity: it.Quantity})
	}
	if order.ShippingFee > 0 {
		lines = append(lines, infra.LineItem{Name: "Shipping", UnitPrice: order.ShippingFee, Quantity: 1})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, infra.CheckoutRequest{
		OrderID:    order.ID,
		Currency:   s.cfg.Currency,
		LineItems:  lines,
		SuccessURL: withOrder(s.cfg.SuccessURL, order.ID),
		CancelURL:  withOrder(s.cfg.CancelURL, order.ID),
	})
	if err != nil {
		zap.L().Error("payments: create session failed", zap.Uint64("order_id", orderID), zap.Error(err))
		return nil, apperr.Upstream(err, "payment gateway unavailable")
	}
	if session == nil || session.ID == "" {
		return nil, apperr.Upstream(nil, "payment gateway returned no session")
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}
	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// VerifySession asks the gateway for the session state and confirms payment
// when it reports paid. Verifying the same session again has no further effect.
func (s *PaymentService) VerifySession(ctx context.Context, sessionID string) (*VerifyResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.Validation("sessionId is required")
	}
	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Upstream(err, "payment gateway unavailable")
	}
	if session == nil {
		return nil, apperr.NotFound("payment session not found")
	}

	order, err := s.orders.FindByPaymentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if session.PaymentStatus != infra.SessionPaid {
		return &VerifyResult{PaymentStatus: session.PaymentStatus, Order: order}, nil
	}
	order, err = s.ledger.ConfirmPayment(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{PaymentStatus: session.PaymentStatus, Order: order}, nil
}

func withOrder(url string, orderID uint64) string {
	if url == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sorderId=%d", url, sep, orderID)
}
