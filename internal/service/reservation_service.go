package service

import (
	"log"
	"strings"
	"time"

	"parkease/internal/db"
	"parkease/internal/entities"
	apperrors "parkease/internal/errors"
)

// ParkingTimeLayout is the wire format for requested parking start times.
const ParkingTimeLayout = "2006-01-02T15:04"

// ReservationStore is the persistence surface the lifecycle manager needs.
type ReservationStore interface {
	VehicleHasPending(vehicleNumber string) (bool, error)
	Reserve(res *db.Reservation, lotID int) error
	GetReservation(id int) (*db.Reservation, error)
	ResetParkingTime(id int, ts time.Time) error
	Settle(resID, spotID int, leaving time.Time, pay *db.Payment) error
	HistoryByUser(userID int) ([]entities.ReservationDetail, error)
	HistoryByLot(lotID int) ([]entities.ReservationDetail, error)
	ActiveByUsers(userIDs []int) (map[int]entities.ReservationDetail, error)
}

// Notifier delivers best-effort notifications. Implementations must not
// block the calling request.
type Notifier interface {
	PaymentReceipt(email, username string, detail ReceiptDetail)
	AutoCloseAlert(phone, vehicleNumber string, amount float64)
}

// ReceiptDetail feeds the payment receipt email.
type ReceiptDetail struct {
	ReservationID int
	VehicleNumber string
	ParkedAt      time.Time
	LeftAt        time.Time
	Amount        float64
	Method        string
}

type ReservationService struct {
	store    ReservationStore
	lots     LotStore
	notifier Notifier
	now      func() time.Time
}

func NewReservationService(store ReservationStore, lots LotStore, notifier Notifier) *ReservationService {
	return &ReservationService{
		store:    store,
		lots:     lots,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Reserve books an available spot in the lot for the actor's vehicle. The
// lot's current price is locked into the reservation; later repricing of the
// lot never touches an open reservation.
func (s *ReservationService) Reserve(actor db.User, lotID int, vehicleNumber, parkingTime string) (*db.Reservation, error) {
	if actor.Role == db.RoleAdmin {
		return nil, apperrors.Authorization("admins cannot make reservations")
	}
	vehicle := strings.ToUpper(strings.TrimSpace(vehicleNumber))
	if vehicle == "" {
		return nil, apperrors.Validation("vehicle number is required")
	}

	lot, err := s.lots.GetLot(lotID)
	if err != nil {
		return nil, err
	}
	if !lot.IsActive {
		return nil, apperrors.Validation("parking lot is not active")
	}

	pending, err := s.store.VehicleHasPending(vehicle)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.Validation("an active reservation already exists for this vehicle")
	}

	start, err := time.ParseInLocation(ParkingTimeLayout, parkingTime, time.UTC)
	if err != nil {
		return nil, apperrors.Validation("invalid parking time, expected YYYY-MM-DDTHH:MM")
	}

	res := &db.Reservation{
		UserID:               actor.ID,
		ReservationTimestamp: s.now(),
		ParkingTimestamp:     start,
		CostPerHour:          lot.Price,
		VehicleNumber:        vehicle,
		PaymentStatus:        db.PaymentPending,
	}
	if err := s.store.Reserve(res, lotID); err != nil {
		return nil, err
	}
	return res, nil
}

// ConfirmOccupancy restarts the billing clock at the actual arrival time.
func (s *ReservationService) ConfirmOccupancy(actor db.User, reservationID int) (*db.Reservation, error) {
	res, err := s.store.GetReservation(reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.ID {
		return nil, apperrors.Authorization("reservation belongs to another user")
	}

	arrived := s.now()
	if err := s.store.ResetParkingTime(res.ID, arrived); err != nil {
		return nil, err
	}
	res.ParkingTimestamp = arrived
	return res, nil
}

// Release settles the reservation: charges the elapsed time at the locked-in
// rate, records the payment and frees the spot.
func (s *ReservationService) Release(actor db.User, reservationID int) (*db.Payment, error) {
	res, err := s.store.GetReservation(reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.ID {
		return nil, apperrors.Authorization("reservation belongs to another user")
	}
	if res.PaymentStatus != db.PaymentPending {
		return nil, apperrors.AlreadySettled("reservation has already been paid")
	}

	leaving := s.now()
	pay := &db.Payment{
		ReservationID: res.ID,
		Amount:        ComputeCharge(res.ParkingTimestamp, leaving, res.CostPerHour),
		Method:        db.MethodCash,
		Status:        db.PaymentCompleted,
		Timestamp:     leaving,
	}
	if err := s.store.Settle(res.ID, res.SpotID, leaving, pay); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PaymentReceipt(actor.Email, actor.Username, ReceiptDetail{
			ReservationID: res.ID,
			VehicleNumber: res.VehicleNumber,
			ParkedAt:      res.ParkingTimestamp,
			LeftAt:        leaving,
			Amount:        pay.Amount,
			Method:        pay.Method,
		})
	}
	log.Printf("Reservation %d released, charged %.2f", res.ID, pay.Amount)
	return pay, nil
}

func (s *ReservationService) HistoryByUser(userID int) ([]entities.ReservationDetail, error) {
	return s.store.HistoryByUser(userID)
}

func (s *ReservationService) HistoryByLot(lotID int) ([]entities.ReservationDetail, error) {
	return s.store.HistoryByLot(lotID)
}

// UsersOverview pairs each regular user with their active reservation.
func (s *ReservationService) UsersOverview(users []db.User) ([]entities.UserOverview, error) {
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	active, err := s.store.ActiveByUsers(ids)
	if err != nil {
		return nil, err
	}

	overview := make([]entities.UserOverview, 0, len(users))
	for _, u := range users {
		o := entities.UserOverview{User: u}
		if d, ok := active[u.ID]; ok {
			detail := d
			o.Reservation = &detail
		}
		overview = append(overview, o)
	}
	return overview, nil
}
