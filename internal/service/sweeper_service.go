package service

import (
	"errors"
	"log"
	"time"

	"parkease/internal/db"
	"parkease/internal/entities"
	apperrors "parkease/internal/errors"
)

// DefaultMaxAge is how long a reservation may stay pending before the
// sweeper force-closes it.
const DefaultMaxAge = 24 * time.Hour

// SweepStore is the persistence surface the expiry sweeper needs.
type SweepStore interface {
	ListExpiredPending(cutoff time.Time) ([]entities.ExpiredReservation, error)
	CloseExpired(resID, spotID int, cutoff time.Time, pay *db.Payment) error
}

type SweeperService struct {
	store    SweepStore
	notifier Notifier
	maxAge   time.Duration
	now      func() time.Time
}

func NewSweeperService(store SweepStore, notifier Notifier, maxAge time.Duration) *SweeperService {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &SweeperService{
		store:    store,
		notifier: notifier,
		maxAge:   maxAge,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sweep force-closes every pending reservation whose billing clock started
// before now - maxAge. Each one is billed the full cap, maxAge at its
// locked-in rate, regardless of actual elapsed time, and its leaving
// timestamp is set to the cutoff. Returns the number of reservations closed.
// Safe to call from any entry point: a reservation already closed is never
// revisited since it is no longer pending.
func (s *SweeperService) Sweep() (int, error) {
	cutoff := s.now().Add(-s.maxAge)
	expired, err := s.store.ListExpiredPending(cutoff)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	closed := 0
	for _, e := range expired {
		pay := &db.Payment{
			ReservationID: e.ReservationID,
			Amount:        roundCurrency(s.maxAge.Hours() * e.CostPerHour),
			Method:        db.MethodAutoCharge,
			Status:        db.PaymentCompleted,
			Timestamp:     s.now(),
		}
		if err := s.store.CloseExpired(e.ReservationID, e.SpotID, cutoff, pay); err != nil {
			var settled *apperrors.AlreadySettledError
			if errors.As(err, &settled) {
				continue
			}
			log.Printf("Sweep: failed to close reservation %d: %v", e.ReservationID, err)
			continue
		}
		closed++
		log.Printf("Sweep: closed reservation %d (spot %s), auto-charged %.2f", e.ReservationID, e.SpotLabel, pay.Amount)

		if s.notifier != nil && e.UserPhone != "" {
			s.notifier.AutoCloseAlert(e.UserPhone, e.VehicleNumber, pay.Amount)
		}
	}
	return closed, nil
}
