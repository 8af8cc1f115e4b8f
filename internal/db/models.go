package db

import "time"

// SpotStatus is the closed set of states a parking spot can be in.
type SpotStatus string

const (
	SpotAvailable SpotStatus = "available"
	SpotOccupied  SpotStatus = "occupied"
)

// PaymentStatus is the closed set of settlement states for a reservation.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Payment method tags. AutoCharge is written by the expiry sweeper only.
const (
	MethodCash       = "cash"
	MethodAutoCharge = "auto-charge"
)

// Status recorded on payment rows. Payments are written once, at settlement,
// so they are always completed.
const PaymentCompleted = "completed"

type User struct {
	ID           int
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type ParkingLot struct {
	ID       int
	Name     string
	Price    float64
	Capacity int
	Address  string
	Pincode  string
	Contact  string
	IsActive bool
}

type ParkingSpot struct {
	ID        int
	LotID     int
	Label     string
	SpotIndex int
	Status    SpotStatus
	SpotType  string
}

type Reservation struct {
	ID                   int
	SpotID               int
	UserID               int
	ReservationTimestamp time.Time
	// ParkingTimestamp is when the billing clock starts. It is reset when the
	// user confirms actual occupancy.
	ParkingTimestamp time.Time
	LeavingTimestamp *time.Time
	// CostPerHour is captured from the lot at booking time and never changes,
	// even if the lot is repriced later.
	CostPerHour   float64
	VehicleNumber string
	PaymentStatus PaymentStatus
}

type Payment struct {
	ID            int
	ReservationID int
	Amount        float64
	Method        string
	Status        string
	Timestamp     time.Time
}
