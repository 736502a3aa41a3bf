package domain

import "time"

const (
	EventOrderPlaced        = "order.placed"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
	EventStockLow           = "stock.low"
)

type OrderPlacedEvent struct {
	OrderID     uint64    `json:"orderId"`
	UserID      uint64    `json:"userId"`
	TotalAmount float64   `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderPaidEvent struct {
	OrderID     uint64    `json:"orderId"`
	TotalAmount float64   `json:"totalAmount"`
	PaidAt      time.Time `json:"paidAt"`
}

type OrderStatusChangedEvent struct {
	OrderID uint64      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}

type StockLowEvent struct {
	ProductID uint64 `json:"productId"`
	Color     string `json:"color,omitempty"`
	Remaining int    `json:"remaining"`
}
