package repository

import (
	"database/sql"
	"fmt"
	"time"

	"parkease/internal/db"
	"parkease/internal/entities"
	apperrors "parkease/internal/errors"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// ListExpiredPending finds pending reservations whose billing clock started
// before the cutoff, joined with the contact details the sweeper sends
// alerts to.
func (r *JobRepository) ListExpiredPending(cutoff time.Time) ([]entities.ExpiredReservation, error) {
	rows, err := r.DB.Query(
		`SELECT
			res.id, res.spot_id, s.label, res.user_id, u.username, u.email, u.phone,
			res.vehicle_number, res.parking_timestamp, res.cost_per_hour
		 FROM reservations res
		 JOIN parking_spots s ON s.id = res.spot_id
		 JOIN users u ON u.id = res.user_id
		 WHERE res.payment_status = $1 AND res.parking_timestamp < $2
		 ORDER BY res.parking_timestamp`,
		db.PaymentPending, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying expired reservations: %w", err)
	}
	defer rows.Close()

	var expired []entities.ExpiredReservation
	for rows.Next() {
		var e entities.ExpiredReservation
		err := rows.Scan(
			&e.ReservationID, &e.SpotID, &e.SpotLabel, &e.UserID, &e.Username, &e.UserEmail, &e.UserPhone,
			&e.VehicleNumber, &e.ParkingTimestamp, &e.CostPerHour,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning expired reservation: %w", err)
		}
		expired = append(expired, e)
	}
	return expired, rows.Err()
}

// CloseExpired force-closes one stale reservation: marks it paid with the
// cutoff as leaving time, records the auto-charge payment and frees the spot.
// The pending guard keeps the sweep idempotent; a reservation closed by a
// concurrent sweep fails here with AlreadySettledError and is skipped.
func (r *JobRepository) CloseExpired(resID, spotID int, cutoff time.Time, pay *db.Payment) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE reservations SET payment_status = $1, leaving_timestamp = $2
		 WHERE id = $3 AND payment_status = $4`,
		db.PaymentPaid, cutoff, resID, db.PaymentPending,
	)
	if err != nil {
		return fmt.Errorf("error closing expired reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.AlreadySettled("reservation already closed")
	}

	err = tx.QueryRow(
		`INSERT INTO payments (reservation_id, amount, payment_method, payment_status, payment_timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		pay.ReservationID, pay.Amount, pay.Method, pay.Status, pay.Timestamp,
	).Scan(&pay.ID)
	if err != nil {
		return fmt.Errorf("error recording auto-charge payment: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE parking_spots SET status = $1 WHERE id = $2`,
		db.SpotAvailable, spotID,
	); err != nil {
		return fmt.Errorf("error freeing spot: %w", err)
	}
	return tx.Commit()
}
