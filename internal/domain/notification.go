package domain

import "time"

type NotificationType string

const (
	NotificationOrderStatus        NotificationType = "order_status"
	NotificationOrder              NotificationType = "order"
	NotificationPayment            NotificationType = "payment"
	NotificationGeneral            NotificationType = "general"
	NotificationStockAlert         NotificationType = "stock_alert"
	NotificationSellerRegistration NotificationType = "seller_registration"
)

type Notification struct {
	ID          uint64           `json:"id" gorm:"primaryKey;autoIncrement"`
	RecipientID uint64           `json:"recipientId" gorm:"not null;index"`
	Title       string           `json:"title" gorm:"size:255;not null"`
	Message     string           `json:"message" gorm:"type:text"`
	Type        NotificationType `json:"type" gorm:"size:32;not null;default:'general'"`
	OrderID     *uint64          `json:"orderId,omitempty"`
	ProductID   *uint64          `json:"productId,omitempty"`
	IsRead      bool             `json:"isRead" gorm:"not null;default:false;index"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"autoCreateTime"`
}
