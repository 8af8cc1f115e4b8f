package service

import (
	"math"
	"time"
)

// BillingUnit is the charge granularity. Any positive elapsed time below one
// unit is billed as exactly one unit.
const BillingUnit = time.Hour

// BillableUnits returns the number of whole billing units between start and
// end, rounded up, never less than one.
func BillableUnits(start, end time.Time) int {
	units := int(math.Ceil(end.Sub(start).Hours()))
	if units < 1 {
		units = 1
	}
	return units
}

// ComputeCharge prices the elapsed time at the given hourly rate, rounded to
// two decimal places.
func ComputeCharge(start, end time.Time, ratePerHour float64) float64 {
	return roundCurrency(float64(BillableUnits(start, end)) * ratePerHour)
}

func roundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}
