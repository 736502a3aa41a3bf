// Package commission splits line revenue between the platform and sellers.
package commission

import "github.com/shopspring/decimal"

// Rate is the platform's cut of seller-product revenue.
const Rate = 0.05

var rate = decimal.NewFromFloat(Rate)

type Share struct {
	Platform float64 `json:"platformShare"`
	Seller   float64 `json:"sellerShare"`
}

// Split divides lineTotal. Store products (no seller) go entirely to the
// platform. For seller products the platform share is rounded to cents and
// the seller gets the remainder, so the two shares always add up.
func Split(lineTotal float64, hasSeller bool) Share {
	if !hasSeller {
		return Share{Platform: lineTotal}
	}
	total := decimal.NewFromFloat(lineTotal)
	platform := total.Mul(rate).Round(2)
	return Share{
		Platform: platform.InexactFloat64(),
		Seller:   total.Sub(platform).InexactFloat64(),
	}
}

func LineTotal(unitPrice float64, qty int) float64 {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}

// Sum adds amounts without accumulating float error.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}
