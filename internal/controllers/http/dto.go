package http

import "marketplace/internal/domain"

type OrderItemRequest struct {
	ProductID   uint64 `json:"product" binding:"required"`
	Quantity    int    `json:"quantity"`
	Color       string `json:"color"`
	ColorCode   string `json:"colorCode"`
	Size        string `json:"selectedSize"`
	Weight      string `json:"selectedWeight"`
	VariationID string `json:"variationId"`
}

type ShippingAddressRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postalCode"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type UpdateItemStatusRequest struct {
	OrderID   uint64             `json:"orderId" binding:"required"`
	ProductID uint64             `json:"productId" binding:"required"`
	ItemID    uint64             `json:"itemId"`
	Status    domain.OrderStatus `json:"status" binding:"required"`
}

type CheckoutRequest struct {
	OrderID uint64 `json:"orderId" binding:"required"`
}

type VerifyRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type SettingsRequest struct {
	ShippingFee           float64 `json:"shippingFee"`
	FreeShippingThreshold float64 `json:"freeShippingThreshold"`
	FeePerAdditionalItem  float64 `json:"feePerAdditionalItem"`
}

type RegisterSellerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type CreateProductRequest struct {
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Price         float64               `json:"price"`
	Image         string                `json:"image"`
	CategoryID    *uint64               `json:"categoryId"`
	Stock         int                   `json:"stock"`
	ColorVariants []domain.ColorVariant `json:"colorVariants"`
}

type CreateReviewRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	OrderID   uint64 `json:"orderId" binding:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type CreateOrderResponse struct {
	ID          uint64  `json:"id"`
	TotalAmount float64 `json:"totalAmount"`
}
