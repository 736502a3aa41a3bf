package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusProcessed OrderStatus = "processed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

// PaymentMethodCashOnDelivery is settled at the door, not through the gateway.
const PaymentMethodCashOnDelivery = "cash_on_delivery"

type ShippingAddress struct {
	Name       string `json:"name" gorm:"size:128"`
	Address    string `json:"address" gorm:"size:255"`
	City       string `json:"city" gorm:"size:128"`
	Phone      string `json:"phone" gorm:"size:32"`
	PostalCode string `json:"postalCode" gorm:"size:16"`
}

type Order struct {
	ID               uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           uint64          `json:"userId" gorm:"not null;index"`
	Items            []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount      float64         `json:"totalAmount" gorm:"not null"`
	ShippingFee      float64         `json:"shippingFee" gorm:"not null;default:0"`
	ShippingAddress  ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod    string          `json:"paymentMethod" gorm:"size:32;not null"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus" gorm:"size:16;not null;default:'unpaid';index"`
	PaymentSessionID string          `json:"-" gorm:"size:255;index"`
	Status           OrderStatus     `json:"status" gorm:"size:16;not null;default:'pending';index"`
	StockSettled     bool            `json:"-" gorm:"not null;default:false"`
	CreatedAt        time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderItem keeps the unit price, name and owning seller as they were when the
// order was placed. None of them are re-read from the product afterwards.
type OrderItem struct {
	ID          uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     uint64      `json:"orderId" gorm:"not null;index"`
	ProductID   uint64      `json:"productId" gorm:"not null;index"`
	SellerID    *uint64     `json:"sellerId,omitempty" gorm:"index"`
	Name        string      `json:"name" gorm:"size:255"`
	Quantity    int         `json:"quantity" gorm:"not null"`
	Price       float64     `json:"price" gorm:"not null"`
	Status      OrderStatus `json:"status" gorm:"size:16;not null;default:'pending'"`
	Color       string      `json:"color,omitempty" gorm:"size:64"`
	ColorCode   string      `json:"colorCode,omitempty" gorm:"size:16"`
	Size        string      `json:"selectedSize,omitempty" gorm:"size:32"`
	Weight      string      `json:"selectedWeight,omitempty" gorm:"size:32"`
	VariationID string      `json:"variationId,omitempty" gorm:"size:64"`
}

func (i OrderItem) Selector() VariantSelector {
	return VariantSelector{
		VariationID: i.VariationID,
		Color:       i.Color,
		Size:        i.Size,
		Weight:      i.Weight,
	}
}

func (i OrderItem) IsStoreItem() bool {
	return i.SellerID == nil
}

func (i OrderItem) OwnedBy(sellerID uint64) bool {
	return i.SellerID != nil && *i.SellerID == sellerID
}

func (o *Order) ItemByProduct(productID uint64) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

func (o *Order) ItemByID(itemID uint64) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

func (o *Order) PaysOnDelivery() bool {
	return o.PaymentMethod == PaymentMethodCashOnDelivery
}

func (o *Order) HasProduct(productID uint64) bool {
	return o.ItemByProduct(productID) != nil
}
