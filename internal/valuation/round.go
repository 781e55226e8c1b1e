package valuation

import "github.com/shopspring/decimal"

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Round1 rounds to one decimal, the precision of displayed dollars.
func Round1(v float64) float64 {
	return Round(v, 1)
}
