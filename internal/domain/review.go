package domain

import "time"

type Review struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID  uint64    `json:"productId" gorm:"not null;uniqueIndex:idx_review_purchase"`
	UserID     uint64    `json:"userId" gorm:"not null;uniqueIndex:idx_review_purchase"`
	OrderID    uint64    `json:"orderId" gorm:"not null;uniqueIndex:idx_review_purchase"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"type:text"`
	IsVerified bool      `json:"isVerified" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

type RatingStats struct {
	Average float64
	Count   int
}
