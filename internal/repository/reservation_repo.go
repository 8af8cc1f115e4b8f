package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"parkease/internal/db"
	"parkease/internal/entities"
	apperrors "parkease/internal/errors"
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

func (r *ReservationRepository) VehicleHasPending(vehicleNumber string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(
		`SELECT EXISTS (
			SELECT 1 FROM reservations WHERE vehicle_number = $1 AND payment_status = $2
		)`,
		vehicleNumber, db.PaymentPending,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking pending reservation for vehicle: %w", err)
	}
	return exists, nil
}

// Reserve picks an available spot in the lot, inserts the reservation and
// marks the spot occupied, all in one transaction. The row lock on the spot
// keeps two concurrent reservations off the same spot.
func (r *ReservationRepository) Reserve(res *db.Reservation, lotID int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var spotID int
	err = tx.QueryRow(
		`SELECT id FROM parking_spots
		 WHERE lot_id = $1 AND status = $2
		 ORDER BY spot_index
		 LIMIT 1
		 FOR UPDATE SKIP LOCKED`,
		lotID, db.SpotAvailable,
	).Scan(&spotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NoCapacity("no available spot in this lot")
		}
		return fmt.Errorf("error selecting available spot: %w", err)
	}

	res.SpotID = spotID
	err = tx.QueryRow(
		`INSERT INTO reservations
		 (spot_id, user_id, reservation_timestamp, parking_timestamp, cost_per_hour, vehicle_number, payment_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		res.SpotID, res.UserID, res.ReservationTimestamp, res.ParkingTimestamp,
		res.CostPerHour, res.VehicleNumber, res.PaymentStatus,
	).Scan(&res.ID)
	if err != nil {
		// The unique partial index on pending vehicle numbers catches a
		// concurrent reservation that slipped past the pre-check.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Validation("an active reservation already exists for this vehicle")
		}
		return fmt.Errorf("error inserting reservation: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE parking_spots SET status = $1 WHERE id = $2`,
		db.SpotOccupied, spotID,
	); err != nil {
		return fmt.Errorf("error marking spot occupied: %w", err)
	}
	return tx.Commit()
}

func (r *ReservationRepository) GetReservation(id int) (*db.Reservation, error) {
	var res db.Reservation
	err := r.DB.QueryRow(
		`SELECT id, spot_id, user_id, reservation_timestamp, parking_timestamp, leaving_timestamp,
			cost_per_hour, vehicle_number, payment_status
		 FROM reservations WHERE id = $1`,
		id,
	).Scan(
		&res.ID, &res.SpotID, &res.UserID, &res.ReservationTimestamp, &res.ParkingTimestamp,
		&res.LeavingTimestamp, &res.CostPerHour, &res.VehicleNumber, &res.PaymentStatus,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("reservation %d not found", id))
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepository) ResetParkingTime(id int, ts time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE reservations SET parking_timestamp = $1 WHERE id = $2`,
		ts, id,
	)
	if err != nil {
		return fmt.Errorf("error resetting parking timestamp: %w", err)
	}
	return nil
}

// Settle closes a reservation: marks it paid, stamps the leaving time,
// records the payment and frees the spot, in one transaction. The pending
// guard on the update makes a double release fail with AlreadySettledError
// without writing a duplicate payment.
func (r *ReservationRepository) Settle(resID, spotID int, leaving time.Time, pay *db.Payment) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE reservations SET payment_status = $1, leaving_timestamp = $2
		 WHERE id = $3 AND payment_status = $4`,
		db.PaymentPaid, leaving, resID, db.PaymentPending,
	)
	if err != nil {
		return fmt.Errorf("error settling reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.AlreadySettled("reservation has already been paid")
	}

	err = tx.QueryRow(
		`INSERT INTO payments (reservation_id, amount, payment_method, payment_status, payment_timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		pay.ReservationID, pay.Amount, pay.Method, pay.Status, pay.Timestamp,
	).Scan(&pay.ID)
	if err != nil {
		return fmt.Errorf("error recording payment: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE parking_spots SET status = $1 WHERE id = $2`,
		db.SpotAvailable, spotID,
	); err != nil {
		return fmt.Errorf("error freeing spot: %w", err)
	}
	return tx.Commit()
}

const reservationDetailQuery = `
	SELECT
		r.id, r.spot_id, s.label, s.lot_id, l.name, r.user_id, r.vehicle_number,
		r.reservation_timestamp, r.parking_timestamp, r.leaving_timestamp,
		r.cost_per_hour, r.payment_status,
		p.id, p.amount, p.payment_method, p.payment_status, p.payment_timestamp
	FROM reservations r
	JOIN parking_spots s ON s.id = r.spot_id
	JOIN parking_lots l ON l.id = s.lot_id
	LEFT JOIN payments p ON p.reservation_id = r.id`

func scanReservationDetails(rows *sql.Rows) ([]entities.ReservationDetail, error) {
	var details []entities.ReservationDetail
	for rows.Next() {
		var d entities.ReservationDetail
		var payID sql.NullInt64
		var payAmount sql.NullFloat64
		var payMethod, payStatus sql.NullString
		var payTime sql.NullTime

		err := rows.Scan(
			&d.ID, &d.SpotID, &d.SpotLabel, &d.LotID, &d.LotName, &d.UserID, &d.VehicleNumber,
			&d.ReservationTimestamp, &d.ParkingTimestamp, &d.LeavingTimestamp,
			&d.CostPerHour, &d.PaymentStatus,
			&payID, &payAmount, &payMethod, &payStatus, &payTime,
		)
		if err != nil {
			return nil, err
		}
		if payID.Valid {
			d.Payment = &db.Payment{
				ID:            int(payID.Int64),
				ReservationID: d.ID,
				Amount:        payAmount.Float64,
				Method:        payMethod.String,
				Status:        payStatus.String,
				Timestamp:     payTime.Time,
			}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// HistoryByUser returns the user's reservations, newest first.
func (r *ReservationRepository) HistoryByUser(userID int) ([]entities.ReservationDetail, error) {
	rows, err := r.DB.Query(
		reservationDetailQuery+` WHERE r.user_id = $1 ORDER BY r.reservation_timestamp DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying user history: %w", err)
	}
	defer rows.Close()
	return scanReservationDetails(rows)
}

// HistoryByLot returns the lot's reservations, newest first.
func (r *ReservationRepository) HistoryByLot(lotID int) ([]entities.ReservationDetail, error) {
	rows, err := r.DB.Query(
		reservationDetailQuery+` WHERE s.lot_id = $1 ORDER BY r.reservation_timestamp DESC`,
		lotID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying lot history: %w", err)
	}
	defer rows.Close()
	return scanReservationDetails(rows)
}

// ActiveByUsers returns each user's pending reservation, keyed by user id.
func (r *ReservationRepository) ActiveByUsers(userIDs []int) (map[int]entities.ReservationDetail, error) {
	if len(userIDs) == 0 {
		return map[int]entities.ReservationDetail{}, nil
	}
	rows, err := r.DB.Query(
		reservationDetailQuery+` WHERE r.user_id = ANY($1) AND r.payment_status = $2`,
		pq.Array(userIDs), db.PaymentPending,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying active reservations: %w", err)
	}
	defer rows.Close()

	details, err := scanReservationDetails(rows)
	if err != nil {
		return nil, err
	}
	active := make(map[int]entities.ReservationDetail, len(details))
	for _, d := range details {
		active[d.UserID] = d
	}
	return active, nil
}
