package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeCharge(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		rate    float64
		want    float64
	}{
		{"sub-hour bills one full unit", 30 * time.Minute, 20, 20.00},
		{"ninety minutes rounds up to two units", 90 * time.Minute, 20, 40.00},
		{"exact hour is one unit", time.Hour, 20, 20.00},
		{"exact two hours is two units", 2 * time.Hour, 20, 40.00},
		{"just over two hours is three units", 2*time.Hour + time.Second, 15, 45.00},
		{"zero duration still bills one unit", 0, 12.5, 12.50},
		{"fractional rate rounds to cents", 90 * time.Minute, 19.99, 39.98},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCharge(start, start.Add(tt.elapsed), tt.rate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBillableUnitsNeverBelowOne(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, BillableUnits(start, start))
	assert.Equal(t, 1, BillableUnits(start, start.Add(time.Minute)))
	// A clock skew putting end before start must not produce a zero or
	// negative charge.
	assert.Equal(t, 1, BillableUnits(start, start.Add(-time.Hour)))
}
