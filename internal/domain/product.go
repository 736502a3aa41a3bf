package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// LowStockThreshold is the remaining bucket stock at or below which a
// stock_alert is raised after settlement.
const LowStockThreshold = 5

type Product struct {
	ID            uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string         `json:"name" gorm:"size:255;not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Price         float64        `json:"price" gorm:"not null"`
	Image         string         `json:"image" gorm:"size:1024"`
	CategoryID    *uint64        `json:"categoryId,omitempty" gorm:"index"`
	SellerID      *uint64        `json:"sellerId,omitempty" gorm:"index"`
	Stock         int            `json:"stock" gorm:"not null;default:0;index"`
	Sold          int            `json:"sold" gorm:"not null;default:0"`
	Rating        float64        `json:"rating" gorm:"not null;default:0"`
	NumReviews    int            `json:"numReviews" gorm:"not null;default:0"`
	ColorVariants []ColorVariant `json:"colorVariants,omitempty" gorm:"serializer:json;type:json"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (p *Product) IsStoreProduct() bool {
	return p.SellerID == nil
}

func (p *Product) OwnedBy(sellerID uint64) bool {
	return p.SellerID != nil && *p.SellerID == sellerID
}

// VariantStock is one of FlatStock, SizedStock or WeightedStock.
type VariantStock interface {
	kind() VariantKind
	total() int
}

type VariantKind string

const (
	VariantNone   VariantKind = "none"
	VariantSize   VariantKind = "size"
	VariantWeight VariantKind = "weight"
)

type FlatStock struct {
	Stock int
}

type SizeBucket struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

type SizedStock struct {
	Sizes []SizeBucket
}

type WeightBucket struct {
	Weight string `json:"weight"`
	Stock  int    `json:"stock"`
}

type WeightedStock struct {
	Weights []WeightBucket
}

func (FlatStock) kind() VariantKind     { return VariantNone }
func (SizedStock) kind() VariantKind    { return VariantSize }
func (WeightedStock) kind() VariantKind { return VariantWeight }

func (s FlatStock) total() int { return s.Stock }

func (s SizedStock) total() int {
	n := 0
	for _, b := range s.Sizes {
		n += b.Stock
	}
	return n
}

func (s WeightedStock) total() int {
	n := 0
	for _, b := range s.Weights {
		n += b.Stock
	}
	return n
}

type ColorVariant struct {
	ID        string
	ColorName string
	ColorCode string
	Stock     VariantStock
}

func (v ColorVariant) Kind() VariantKind {
	if v.Stock == nil {
		return VariantNone
	}
	return v.Stock.kind()
}

func (v ColorVariant) TotalStock() int {
	if v.Stock == nil {
		return 0
	}
	return v.Stock.total()
}

type colorVariantJSON struct {
	ID          string         `json:"id,omitempty"`
	ColorName   string         `json:"colorName"`
	ColorCode   string         `json:"colorCode,omitempty"`
	VariantType VariantKind    `json:"variantType"`
	Stock       int            `json:"stock,omitempty"`
	Sizes       []SizeBucket   `json:"sizes,omitempty"`
	Weights     []WeightBucket `json:"weights,omitempty"`
}

func (v ColorVariant) MarshalJSON() ([]byte, error) {
	out := colorVariantJSON{
		ID:          v.ID,
		ColorName:   v.ColorName,
		ColorCode:   v.ColorCode,
		VariantType: v.Kind(),
	}
	switch s := v.Stock.(type) {
	case FlatStock:
		out.Stock = s.Stock
	case SizedStock:
		out.Sizes = s.Sizes
	case WeightedStock:
		out.Weights = s.Weights
	}
	return json.Marshal(out)
}

func (v *ColorVariant) UnmarshalJSON(data []byte) error {
	var in colorVariantJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v.ID = in.ID
	v.ColorName = in.ColorName
	v.ColorCode = in.ColorCode
	switch in.VariantType {
	case VariantSize:
		v.Stock = SizedStock{Sizes: in.Sizes}
	case VariantWeight:
		v.Stock = WeightedStock{Weights: in.Weights}
	case VariantNone, "":
		v.Stock = FlatStock{Stock: in.Stock}
	default:
		return fmt.Errorf("unknown variant type %q", in.VariantType)
	}
	return nil
}

// VariantSelector identifies the stock bucket an order line draws from.
type VariantSelector struct {
	VariationID string
	Color       string
	Size        string
	Weight      string
}

// SaleOutcome reports which bucket a sale landed in and what is left of it.
type SaleOutcome struct {
	Matched   bool
	Color     string
	Bucket    string
	Remaining int
}

func (o SaleOutcome) LowStock() bool {
	return o.Remaining <= LowStockThreshold
}

// RecomputeStock makes Stock the sum of every variant bucket. Products
// without variants keep their flat stock.
func (p *Product) RecomputeStock() {
	if len(p.ColorVariants) == 0 {
		return
	}
	n := 0
	for _, v := range p.ColorVariants {
		n += v.TotalStock()
	}
	p.Stock = n
}

// HasNegativeStock reports whether any bucket holds a negative count.
func (p *Product) HasNegativeStock() bool {
	if p.Stock < 0 {
		return true
	}
	for _, v := range p.ColorVariants {
		switch s := v.Stock.(type) {
		case FlatStock:
			if s.Stock < 0 {
				return true
			}
		case SizedStock:
			for _, b := range s.Sizes {
				if b.Stock < 0 {
					return true
				}
			}
		case WeightedStock:
			for _, b := range s.Weights {
				if b.Stock < 0 {
					return true
				}
			}
		}
	}
	return false
}

// ApplySale takes qty units out of the bucket named by sel, floored at zero,
// recomputes the aggregate stock and bumps Sold. Oversell is not rejected.
func (p *Product) ApplySale(sel VariantSelector, qty int) SaleOutcome {
	defer func() { p.Sold += qty }()

	if len(p.ColorVariants) == 0 {
		p.Stock = decrement(p.Stock, qty)
		return SaleOutcome{Matched: true, Remaining: p.Stock}
	}

	idx := p.findVariant(sel)
	if idx < 0 {
		p.RecomputeStock()
		return SaleOutcome{Remaining: p.Stock}
	}

	v := &p.ColorVariants[idx]
	out := SaleOutcome{Color: v.ColorName}
	switch s := v.Stock.(type) {
	case SizedStock:
		for i := range s.Sizes {
			if s.Sizes[i].Size == sel.Size {
				s.Sizes[i].Stock = decrement(s.Sizes[i].Stock, qty)
				out.Matched, out.Bucket, out.Remaining = true, s.Sizes[i].Size, s.Sizes[i].Stock
				break
			}
		}
	case WeightedStock:
		for i := range s.Weights {
			if s.Weights[i].Weight == sel.Weight {
				s.Weights[i].Stock = decrement(s.Weights[i].Stock, qty)
				out.Matched, out.Bucket, out.Remaining = true, s.Weights[i].Weight, s.Weights[i].Stock
				break
			}
		}
	case FlatStock:
		s.Stock = decrement(s.Stock, qty)
		v.Stock = s
		out.Matched, out.Remaining = true, s.Stock
	case nil:
		v.Stock = FlatStock{}
	}

	p.RecomputeStock()
	if !out.Matched {
		out.Remaining = p.Stock
	}
	return out
}

func (p *Product) findVariant(sel VariantSelector) int {
	if sel.VariationID != "" {
		for i, v := range p.ColorVariants {
			if v.ID == sel.VariationID {
				return i
			}
		}
	}
	if sel.Color != "" {
		for i, v := range p.ColorVariants {
			if v.ColorName == sel.Color {
				return i
			}
		}
	}
	return -1
}

func decrement(stock, qty int) int {
	if stock-qty < 0 {
		return 0
	}
	return stock - qty
}
