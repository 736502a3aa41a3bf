package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucketSum(p *Product) int {
	n := 0
	for _, v := range p.ColorVariants {
		n += v.TotalStock()
	}
	return n
}

func TestProduct_ApplySale(t *testing.T) {
	tests := []struct {
		name          string
		product       func() *Product
		sel           VariantSelector
		qty           int
		wantStock     int
		wantRemaining int
		wantMatched   bool
		wantColor     string
		check         func(t *testing.T, p *Product)
	}{
		{
			name:          "flat product",
			product:       func() *Product { return &Product{Stock: 6} },
			qty:           2,
			wantStock:     4,
			wantRemaining: 4,
			wantMatched:   true,
		},
		{
			name:          "flat product oversell floors at zero",
			product:       func() *Product { return &Product{Stock: 3} },
			qty:           10,
			wantStock:     0,
			wantRemaining: 0,
			wantMatched:   true,
		},
		{
			name: "single color variant by name",
			product: func() *Product {
				return &Product{Stock: 10, ColorVariants: []ColorVariant{
					{ID: "v1", ColorName: "Red", Stock: FlatStock{Stock: 10}},
				}}
			},
			sel:           VariantSelector{Color: "Red"},
			qty:           3,
			wantStock:     7,
			wantRemaining: 7,
			wantMatched:   true,
			wantColor:     "Red",
			check: func(t *testing.T, p *Product) {
				assert.Equal(t, FlatStock{Stock: 7}, p.ColorVariants[0].Stock)
			},
		},
		{
			name: "variation id wins over color name",
			product: func() *Product {
				return &Product{ColorVariants: []ColorVariant{
					{ID: "a", ColorName: "Blue", Stock: FlatStock{Stock: 4}},
					{ID: "b", ColorName: "Blue", Stock: FlatStock{Stock: 9}},
				}}
			},
			sel:           VariantSelector{VariationID: "b", Color: "Blue"},
			qty:           1,
			wantStock:     12,
			wantRemaining: 8,
			wantMatched:   true,
			wantColor:     "Blue",
			check: func(t *testing.T, p *Product) {
				assert.Equal(t, FlatStock{Stock: 4}, p.ColorVariants[0].Stock)
				assert.Equal(t, FlatStock{Stock: 8}, p.ColorVariants[1].Stock)
			},
		},
		{
			name: "unknown variation id falls back to color",
			product: func() *Product {
				return &Product{ColorVariants: []ColorVariant{
					{ID: "a", ColorName: "Green", Stock: FlatStock{Stock: 4}},
				}}
			},
			sel:           VariantSelector{VariationID: "missing", Color: "Green"},
			qty:           1,
			wantStock:     3,
			wantRemaining: 3,
			wantMatched:   true,
			wantColor:     "Green",
		},
		{
			name: "sized variant",
			product: func() *Product {
				return &Product{ColorVariants: []ColorVariant{
					{ColorName: "Black", Stock: SizedStock{Sizes: []SizeBucket{{Size: "M", Stock: 5}, {Size: "L", Stock: 8}}}},
					{ColorName: "White", Stock: FlatStock{Stock: 2}},
				}}
			},
			sel:           VariantSelector{Color: "Black", Size: "L"},
			qty:           6,
			wantStock:     9,
			wantRemaining: 2,
			wantMatched:   true,
			wantColor:     "Black",
			check: func(t *testing.T, p *Product) {
				sizes := p.ColorVariants[0].Stock.(SizedStock).Sizes
				assert.Equal(t, 5, sizes[0].Stock)
				assert.Equal(t, 2, sizes[1].Stock)
			},
		},
		{
			name: "weighted variant oversell",
			product: func() *Product {
				return &Product{ColorVariants: []ColorVariant{
					{ColorName: "Natural", Stock: WeightedStock{Weights: []WeightBucket{{Weight: "500g", Stock: 1}, {Weight: "1kg", Stock: 7}}}},
				}}
			},
			sel:           VariantSelector{Color: "Natural", Weight: "500g"},
			qty:           4,
			wantStock:     7,
			wantRemaining: 0,
			wantMatched:   true,
			wantColor:     "Natural",
		},
		{
			name: "unmatched size leaves buckets untouched",
			product: func() *Product {
				return &Product{Stock: 13, ColorVariants: []ColorVariant{
					{ColorName: "Black", Stock: SizedStock{Sizes: []SizeBucket{{Size: "M", Stock: 5}, {Size: "L", Stock: 8}}}},
				}}
			},
			sel:           VariantSelector{Color: "Black", Size: "XXL"},
			qty:           2,
			wantStock:     13,
			wantRemaining: 13,
			wantColor:     "Black",
		},
		{
			name: "unmatched color leaves buckets untouched",
			product: func() *Product {
				return &Product{Stock: 99, ColorVariants: []ColorVariant{
					{ColorName: "Red", Stock: FlatStock{Stock: 10}},
				}}
			},
			sel:           VariantSelector{Color: "Purple"},
			qty:           2,
			wantStock:     10,
			wantRemaining: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product()
			p.Sold = 4

			out := p.ApplySale(tt.sel, tt.qty)

			assert.Equal(t, tt.wantStock, p.Stock)
			assert.Equal(t, tt.wantRemaining, out.Remaining)
			assert.Equal(t, tt.wantMatched, out.Matched)
			assert.Equal(t, tt.wantColor, out.Color)
			assert.Equal(t, 4+tt.qty, p.Sold)
			assert.False(t, p.HasNegativeStock())
			if len(p.ColorVariants) > 0 {
				assert.Equal(t, bucketSum(p), p.Stock)
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestSaleOutcome_LowStock(t *testing.T) {
	assert.True(t, SaleOutcome{Remaining: 5}.LowStock())
	assert.True(t, SaleOutcome{Remaining: 0}.LowStock())
	assert.False(t, SaleOutcome{Remaining: 6}.LowStock())
}

func TestColorVariant_JSON(t *testing.T) {
	in := []ColorVariant{
		{ID: "1", ColorName: "Red", ColorCode: "#f00", Stock: FlatStock{Stock: 3}},
		{ID: "2", ColorName: "Blue", Stock: SizedStock{Sizes: []SizeBucket{{Size: "S", Stock: 1}}}},
		{ID: "3", ColorName: "Tan", Stock: WeightedStock{Weights: []WeightBucket{{Weight: "1kg", Stock: 2}}}},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"variantType":"size"`)
	assert.Contains(t, string(data), `"variantType":"weight"`)

	var out []ColorVariant
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestColorVariant_UnmarshalUnknownType(t *testing.T) {
	var v ColorVariant
	err := json.Unmarshal([]byte(`{"colorName":"Red","variantType":"volume"}`), &v)
	assert.Error(t, err)
}

func TestProduct_RecomputeStock(t *testing.T) {
	p := &Product{Stock: 1, ColorVariants: []ColorVariant{
		{ColorName: "A", Stock: FlatStock{Stock: 2}},
		{ColorName: "B", Stock: SizedStock{Sizes: []SizeBucket{{Size: "S", Stock: 3}, {Size: "M", Stock: 4}}}},
	}}
	p.RecomputeStock()
	assert.Equal(t, 9, p.Stock)

	flat := &Product{Stock: 12}
	flat.RecomputeStock()
	assert.Equal(t, 12, flat.Stock)
}
