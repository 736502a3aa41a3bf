package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"size:128;not null"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255"`
	Role         Role      `json:"role" gorm:"size:16;not null;default:'customer';index"`
	Approved     bool      `json:"approved" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

type Category struct {
	ID   uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:128;not null;uniqueIndex"`
}

// Principal is the already-authenticated caller of an operation.
type Principal struct {
	UserID   uint64
	Role     Role
	Approved bool
}

func (p Principal) IsAdmin() bool  { return p.Role == RoleAdmin }
func (p Principal) IsSeller() bool { return p.Role == RoleSeller }

func (p Principal) IsApprovedSeller() bool {
	return p.Role == RoleSeller && p.Approved
}
