package service

import (
	"fmt"
	"sort"
	"time"

	"parkease/internal/db"
	"parkease/internal/entities"
	apperrors "parkease/internal/errors"
)

// memStore is an in-memory stand-in for the repositories, with the same
// semantics: pending guards, occupied checks, index-ordered spot picks.
type memStore struct {
	nextLotID  int
	nextSpotID int
	nextResID  int
	nextPayID  int

	lots         map[int]*db.ParkingLot
	spots        map[int]*db.ParkingSpot
	reservations map[int]*db.Reservation
	payments     map[int]*db.Payment
	users        map[int]*db.User
}

func newMemStore() *memStore {
	return &memStore{
		lots:         make(map[int]*db.ParkingLot),
		spots:        make(map[int]*db.ParkingSpot),
		reservations: make(map[int]*db.Reservation),
		payments:     make(map[int]*db.Payment),
		users:        make(map[int]*db.User),
	}
}

func (m *memStore) addUser(u db.User) db.User {
	stored := u
	m.users[u.ID] = &stored
	return u
}

// LotStore

func (m *memStore) CreateLot(lot *db.ParkingLot) error {
	m.nextLotID++
	lot.ID = m.nextLotID
	stored := *lot
	m.lots[lot.ID] = &stored
	return nil
}

func (m *memStore) GetLot(id int) (*db.ParkingLot, error) {
	lot, ok := m.lots[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("parking lot %d not found", id))
	}
	copied := *lot
	return &copied, nil
}

func (m *memStore) ListLots(onlyActive bool) ([]db.ParkingLot, error) {
	var lots []db.ParkingLot
	for _, lot := range m.lots {
		if onlyActive && !lot.IsActive {
			continue
		}
		lots = append(lots, *lot)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	return lots, nil
}

func (m *memStore) UpdateLotInfo(lot *db.ParkingLot) error {
	stored, ok := m.lots[lot.ID]
	if !ok {
		return apperrors.NotFound("lot not found")
	}
	capacity := stored.Capacity
	*stored = *lot
	stored.Capacity = capacity
	return nil
}

func (m *memStore) MaxSpotIndex(lotID int) (int, error) {
	max := 0
	for _, s := range m.spots {
		if s.LotID == lotID && s.SpotIndex > max {
			max = s.SpotIndex
		}
	}
	return max, nil
}

func (m *memStore) GrowLot(lotID int, spots []db.ParkingSpot, newCapacity int) error {
	for _, spot := range spots {
		m.nextSpotID++
		stored := spot
		stored.ID = m.nextSpotID
		stored.LotID = lotID
		m.spots[stored.ID] = &stored
	}
	m.lots[lotID].Capacity = newCapacity
	return nil
}

func (m *memStore) ShrinkLot(lotID, removeCount, newCapacity int) error {
	spots := m.lotSpots(lotID)
	sort.Slice(spots, func(i, j int) bool { return spots[i].SpotIndex > spots[j].SpotIndex })
	if removeCount > len(spots) {
		removeCount = len(spots)
	}
	victims := spots[:removeCount]
	for _, s := range victims {
		if s.Status == db.SpotOccupied {
			return apperrors.Conflict("cannot reduce capacity: some spots are occupied")
		}
	}
	for _, s := range victims {
		delete(m.spots, s.ID)
	}
	m.lots[lotID].Capacity = newCapacity
	return nil
}

func (m *memStore) DeleteLot(lotID int) error {
	for _, s := range m.lotSpots(lotID) {
		if s.Status == db.SpotOccupied {
			return apperrors.Conflict("cannot delete lot with occupied spots")
		}
	}
	for _, s := range m.lotSpots(lotID) {
		for id, res := range m.reservations {
			if res.SpotID == s.ID {
				for pid, pay := range m.payments {
					if pay.ReservationID == id {
						delete(m.payments, pid)
					}
				}
				delete(m.reservations, id)
			}
		}
		delete(m.spots, s.ID)
	}
	delete(m.lots, lotID)
	return nil
}

func (m *memStore) CountSpots(lotID int, status db.SpotStatus) (int, error) {
	count := 0
	for _, s := range m.spots {
		if s.LotID == lotID && s.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memStore) SpotsWithReservations(lotID int) ([]entities.SpotDetail, error) {
	spots := m.lotSpots(lotID)
	sort.Slice(spots, func(i, j int) bool { return spots[i].SpotIndex < spots[j].SpotIndex })

	var details []entities.SpotDetail
	for _, s := range spots {
		d := entities.SpotDetail{Spot: *s}
		for _, res := range m.reservations {
			if res.SpotID == s.ID && res.PaymentStatus == db.PaymentPending {
				copied := *res
				d.Reservation = &copied
				d.VehicleNumber = res.VehicleNumber
				if u, ok := m.users[res.UserID]; ok {
					d.ReservedBy = u.Username
				}
			}
		}
		details = append(details, d)
	}
	return details, nil
}

// ReservationStore

func (m *memStore) VehicleHasPending(vehicleNumber string) (bool, error) {
	for _, res := range m.reservations {
		if res.VehicleNumber == vehicleNumber && res.PaymentStatus == db.PaymentPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Reserve(res *db.Reservation, lotID int) error {
	spots := m.lotSpots(lotID)
	sort.Slice(spots, func(i, j int) bool { return spots[i].SpotIndex < spots[j].SpotIndex })

	var spot *db.ParkingSpot
	for _, s := range spots {
		if s.Status == db.SpotAvailable {
			spot = s
			break
		}
	}
	if spot == nil {
		return apperrors.NoCapacity("no available spot in this lot")
	}

	m.nextResID++
	res.ID = m.nextResID
	res.SpotID = spot.ID
	stored := *res
	m.reservations[res.ID] = &stored
	spot.Status = db.SpotOccupied
	return nil
}

func (m *memStore) GetReservation(id int) (*db.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("reservation %d not found", id))
	}
	copied := *res
	return &copied, nil
}

func (m *memStore) ResetParkingTime(id int, ts time.Time) error {
	res, ok := m.reservations[id]
	if !ok {
		return apperrors.NotFound("reservation not found")
	}
	res.ParkingTimestamp = ts
	return nil
}

func (m *memStore) Settle(resID, spotID int, leaving time.Time, pay *db.Payment) error {
	res, ok := m.reservations[resID]
	if !ok {
		return apperrors.NotFound("reservation not found")
	}
	if res.PaymentStatus != db.PaymentPending {
		return apperrors.AlreadySettled("reservation has already been paid")
	}
	res.PaymentStatus = db.PaymentPaid
	left := leaving
	res.LeavingTimestamp = &left

	m.nextPayID++
	pay.ID = m.nextPayID
	stored := *pay
	m.payments[pay.ID] = &stored

	if spot, ok := m.spots[spotID]; ok {
		spot.Status = db.SpotAvailable
	}
	return nil
}

func (m *memStore) HistoryByUser(userID int) ([]entities.ReservationDetail, error) {
	var details []entities.ReservationDetail
	for _, res := range m.reservations {
		if res.UserID == userID {
			details = append(details, m.detail(res))
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].ReservationTimestamp.After(details[j].ReservationTimestamp)
	})
	return details, nil
}

func (m *memStore) HistoryByLot(lotID int) ([]entities.ReservationDetail, error) {
	var details []entities.ReservationDetail
	for _, res := range m.reservations {
		if spot, ok := m.spots[res.SpotID]; ok && spot.LotID == lotID {
			details = append(details, m.detail(res))
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].ReservationTimestamp.After(details[j].ReservationTimestamp)
	})
	return details, nil
}

func (m *memStore) ActiveByUsers(userIDs []int) (map[int]entities.ReservationDetail, error) {
	active := make(map[int]entities.ReservationDetail)
	for _, id := range userIDs {
		for _, res := range m.reservations {
			if res.UserID == id && res.PaymentStatus == db.PaymentPending {
				active[id] = m.detail(res)
			}
		}
	}
	return active, nil
}

// SweepStore

func (m *memStore) ListExpiredPending(cutoff time.Time) ([]entities.ExpiredReservation, error) {
	var expired []entities.ExpiredReservation
	for _, res := range m.reservations {
		if res.PaymentStatus != db.PaymentPending || !res.ParkingTimestamp.Before(cutoff) {
			continue
		}
		e := entities.ExpiredReservation{
			ReservationID:    res.ID,
			SpotID:           res.SpotID,
			UserID:           res.UserID,
			VehicleNumber:    res.VehicleNumber,
			ParkingTimestamp: res.ParkingTimestamp,
			CostPerHour:      res.CostPerHour,
		}
		if spot, ok := m.spots[res.SpotID]; ok {
			e.SpotLabel = spot.Label
		}
		if u, ok := m.users[res.UserID]; ok {
			e.Username = u.Username
			e.UserEmail = u.Email
			e.UserPhone = u.Phone
		}
		expired = append(expired, e)
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ParkingTimestamp.Before(expired[j].ParkingTimestamp)
	})
	return expired, nil
}

func (m *memStore) CloseExpired(resID, spotID int, cutoff time.Time, pay *db.Payment) error {
	return m.Settle(resID, spotID, cutoff, pay)
}

func (m *memStore) lotSpots(lotID int) []*db.ParkingSpot {
	var spots []*db.ParkingSpot
	for _, s := range m.spots {
		if s.LotID == lotID {
			spots = append(spots, s)
		}
	}
	return spots
}

func (m *memStore) detail(res *db.Reservation) entities.ReservationDetail {
	d := entities.ReservationDetail{
		ID:                   res.ID,
		SpotID:               res.SpotID,
		UserID:               res.UserID,
		VehicleNumber:        res.VehicleNumber,
		ReservationTimestamp: res.ReservationTimestamp,
		ParkingTimestamp:     res.ParkingTimestamp,
		LeavingTimestamp:     res.LeavingTimestamp,
		CostPerHour:          res.CostPerHour,
		PaymentStatus:        res.PaymentStatus,
	}
	if spot, ok := m.spots[res.SpotID]; ok {
		d.SpotLabel = spot.Label
		d.LotID = spot.LotID
		if lot, ok := m.lots[spot.LotID]; ok {
			d.LotName = lot.Name
		}
	}
	for _, pay := range m.payments {
		if pay.ReservationID == res.ID {
			copied := *pay
			d.Payment = &copied
		}
	}
	return d
}

// recorderNotifier captures notifications for assertions.
type recorderNotifier struct {
	receipts []ReceiptDetail
	alerts   []string
}

func (r *recorderNotifier) PaymentReceipt(email, username string, detail ReceiptDetail) {
	r.receipts = append(r.receipts, detail)
}

func (r *recorderNotifier) AutoCloseAlert(phone, vehicleNumber string, amount float64) {
	r.alerts = append(r.alerts, fmt.Sprintf("%s:%s:%.2f", phone, vehicleNumber, amount))
}
