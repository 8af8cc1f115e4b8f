package entities

import (
	"time"

	"parkease/internal/db"
)

// ReservationDetail is a reservation joined with its spot, lot and payment,
// as shown on history views.
type ReservationDetail struct {
	ID                   int              `json:"id"`
	SpotID               int              `json:"spot_id"`
	SpotLabel            string           `json:"spot_label"`
	LotID                int              `json:"lot_id"`
	LotName              string           `json:"lot_name"`
	UserID               int              `json:"user_id"`
	VehicleNumber        string           `json:"vehicle_number"`
	ReservationTimestamp time.Time        `json:"reservation_timestamp"`
	ParkingTimestamp     time.Time        `json:"parking_timestamp"`
	LeavingTimestamp     *time.Time       `json:"leaving_timestamp,omitempty"`
	CostPerHour          float64          `json:"cost_per_hour"`
	PaymentStatus        db.PaymentStatus `json:"payment_status"`
	Payment              *db.Payment      `json:"payment,omitempty"`
}

// SpotDetail is a spot with the reservation currently holding it, if any.
type SpotDetail struct {
	Spot          db.ParkingSpot  `json:"spot"`
	Reservation   *db.Reservation `json:"reservation,omitempty"`
	ReservedBy    string          `json:"reserved_by,omitempty"`
	VehicleNumber string          `json:"vehicle_number,omitempty"`
}

// UserOverview is a user with their active reservation, for the admin view.
type UserOverview struct {
	User        db.User            `json:"user"`
	Reservation *ReservationDetail `json:"reservation,omitempty"`
}

// ExpiredReservation is a stale pending reservation together with the
// contact details the sweeper needs to alert its owner.
type ExpiredReservation struct {
	ReservationID    int
	SpotID           int
	SpotLabel        string
	UserID           int
	Username         string
	UserEmail        string
	UserPhone        string
	VehicleNumber    string
	ParkingTimestamp time.Time
	CostPerHour      float64
}

// LotUtilization is the per-lot occupancy figure behind the admin dashboard.
type LotUtilization struct {
	LotID          int     `json:"lot_id"`
	Name           string  `json:"name"`
	TotalSpots     int     `json:"total_spots"`
	OccupiedSpots  int     `json:"occupied_spots"`
	UtilizationPct float64 `json:"utilization_pct"`
}

// OccupancySummary aggregates spot occupancy across all lots.
type OccupancySummary struct {
	Available int              `json:"available"`
	Occupied  int              `json:"occupied"`
	Lots      []LotUtilization `json:"lots"`
}
