// Package units converts emission masses between the stored kilogram values
// and the metric tons used in reports.
package units

import (
	"math"

	"github.com/shopspring/decimal"
)

var kgPerTon = decimal.NewFromInt(1000)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

// KgToTons converts kilograms of CO2eq to metric tons rounded to two decimals.
func KgToTons(kg float64) float64 {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return kg
	}
	out, _ := decimal.NewFromFloat(kg).Div(kgPerTon).Round(2).Float64()
	return out
}

// Sum adds values without accumulating binary floating point drift and
// rounds the result to two decimals.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	out, _ := total.Round(2).Float64()
	return out
}
