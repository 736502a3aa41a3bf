package infra

import "context"

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutRequest) (*CheckoutSession, error)
	// RetrieveSession returns nil, nil for an unknown session.
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

var _ PaymentGateway = (*PaymentClient)(nil)
