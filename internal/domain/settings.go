package domain

import "time"

// SettingsID is the primary key of the only Settings row.
const SettingsID uint64 = 1

// Settings is a singleton row; the first read creates it.
type Settings struct {
	ID                    uint64    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ShippingFee           float64   `json:"shippingFee" gorm:"not null;default:0"`
	FreeShippingThreshold float64   `json:"freeShippingThreshold" gorm:"not null;default:0"`
	FeePerAdditionalItem  float64   `json:"feePerAdditionalItem" gorm:"not null;default:0"`
	UpdatedAt             time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
